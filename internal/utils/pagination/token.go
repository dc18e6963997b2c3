package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// EntryCursor is the position of the last journal entry returned in a page.
// Entries are ordered by entry date, then creation time, then entry number,
// all descending.
type EntryCursor struct {
	EntryDate   time.Time
	CreatedAt   time.Time
	EntryNumber string
}

// After reports whether an entry with the given keys sorts after the cursor,
// i.e. belongs on a later page.
func (c EntryCursor) After(entryDate, createdAt time.Time, entryNumber string) bool {
	if !entryDate.Equal(c.EntryDate) {
		return entryDate.Before(c.EntryDate)
	}
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}
	return entryNumber < c.EntryNumber
}

// EncodeToken creates a base64 encoded token from an entry cursor.
func EncodeToken(c EntryCursor) string {
	tokenStr := fmt.Sprintf("%s|%s|%s", c.EntryDate.Format(timeFormat), c.CreatedAt.Format(timeFormat), c.EntryNumber)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded token back into an entry cursor.
func DecodeToken(token string) (EntryCursor, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}
	if parts[2] == "" {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (missing entry number)")
	}

	return EntryCursor{EntryDate: entryDate, CreatedAt: createdAt, EntryNumber: parts[2]}, nil
}

// ClampLimit bounds a requested page size to [1, max], using def when the
// request is non-positive.
func ClampLimit(requested, def, max int) int {
	if requested <= 0 {
		requested = def
	}
	if requested > max {
		return max
	}
	return requested
}
