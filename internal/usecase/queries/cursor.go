package queries

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"space-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
	cursorVersion    = 1
)

// Cursor is the opaque page token handed to clients.
type Cursor struct {
	After string `json:"after,omitempty"`
}

// pageKey is the keyset position: guest lists are ordered by (created_at, id) descending.
type pageKey struct {
	Version   int       `json:"v"`
	CreatedAt int64     `json:"t"` // unix micros, postgres timestamp precision
	ID        uuid.UUID `json:"id"`
}

func EncodeAfterCursor(t time.Time, id uuid.UUID) string {
	b, _ := json.Marshal(pageKey{Version: cursorVersion, CreatedAt: t.UnixMicro(), ID: id})
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeAfterCursor returns ErrInvalidCursor, wrapped with the cause, for any
// token this service did not issue.
func DecodeAfterCursor(cursor string) (time.Time, uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, errs.Mark(errs.Wrap(err, "cursor encoding"), ErrInvalidCursor)
	}
	var key pageKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return time.Time{}, uuid.Nil, errs.Mark(errs.Wrap(err, "cursor payload"), ErrInvalidCursor)
	}
	if key.Version != cursorVersion || key.ID == uuid.Nil || key.CreatedAt <= 0 {
		return time.Time{}, uuid.Nil, errs.Wrapf(ErrInvalidCursor, "cursor version %d", key.Version)
	}
	return time.UnixMicro(key.CreatedAt).UTC(), key.ID, nil
}

func ValidateLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
