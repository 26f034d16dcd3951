//go:build unit

package memstore

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex(t *testing.T) {
	t.Run("same key serializes", func(t *testing.T) {
		km := newKeyedMutex()
		key := uuid.New()
		var inside, maxInside atomic.Int32

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := km.Lock(key)
				defer unlock()
				n := inside.Add(1)
				if n > maxInside.Load() {
					maxInside.Store(n)
				}
				time.Sleep(2 * time.Millisecond)
				inside.Add(-1)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxInside.Load())
	})

	t.Run("different keys do not block each other", func(t *testing.T) {
		km := newKeyedMutex()
		unlockA := km.Lock(uuid.New())
		defer unlockA()

		done := make(chan struct{})
		go func() {
			km.Lock(uuid.New())()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock on an unrelated key blocked")
		}
	})

	t.Run("entries are released", func(t *testing.T) {
		km := newKeyedMutex()
		km.Lock(uuid.New())()
		km.Lock(uuid.New())()
		assert.Empty(t, km.locks)
	})
}
