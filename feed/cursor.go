package feed

import (
	"encoding/base64"
	"strings"
	"time"

	"camposocial/fault"

	"github.com/google/uuid"
)

// Cursor pins a position in the (created_at DESC, id DESC) ordering. The
// id tiebreak keeps pagination stable when timestamps collide.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Encode renders the cursor as an opaque page token.
func (c Cursor) Encode() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a page token. Any malformed token is a Validation
// fault; an empty token means the first page and returns nil.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.URLEncoding.DecodeString(token)

	if err != nil {
		return nil, fault.New(fault.Validation, "Invalid page cursor")
	}

	parts := strings.SplitN(string(raw), "|", 2)

	if len(parts) != 2 {
		return nil, fault.New(fault.Validation, "Invalid page cursor")
	}

	ts, err := time.Parse(time.RFC3339Nano, parts[0])

	if err != nil {
		return nil, fault.New(fault.Validation, "Invalid page cursor")
	}

	id, err := uuid.Parse(parts[1])

	if err != nil {
		return nil, fault.New(fault.Validation, "Invalid page cursor")
	}

	return &Cursor{CreatedAt: ts, ID: id}, nil
}
