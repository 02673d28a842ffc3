package ledger

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadCursor is returned when a pagination cursor cannot be decoded.
var ErrBadCursor = errors.New("invalid cursor")

// pageCursor encodes the index of the last record returned by a page of
// GetClosedSessions. The wire form is opaque to callers.
type pageCursor struct {
	Index int `json:"index"`
}

func encodeCursor(lastIndex int) string {
	raw, _ := json.Marshal(pageCursor{Index: lastIndex})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(s string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	var c pageCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	if c.Index < 0 {
		return 0, fmt.Errorf("%w: negative index", ErrBadCursor)
	}
	return c.Index, nil
}
