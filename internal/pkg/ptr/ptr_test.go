//go:build unit

package ptr_test

import (
	"testing"

	"space-booking/internal/pkg/ptr"

	"github.com/stretchr/testify/assert"
)

func TestNonZero(t *testing.T) {
	assert.Nil(t, ptr.NonZero(""))
	assert.Nil(t, ptr.NonZero(0))
	if got := ptr.NonZero("note"); assert.NotNil(t, got) {
		assert.Equal(t, "note", *got)
	}
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "", ptr.Deref[string](nil))
	assert.Equal(t, 7, ptr.Deref(ptr.Of(7)))
}
