package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 100
	// MaxLimit caps how many rows any cursor query can request.
	MaxLimit = 500

	cursorPrefix = "offset:"
)

// Params holds cursor pagination inputs from resolvers or services.
type Params struct {
	Limit  int
	Cursor string
}

// PageInfo describes where a returned page sits in the full result set.
type PageInfo struct {
	HasNextPage bool
	EndCursor   string
	StartOffset int
}

// CursorFor returns the cursor pointing just past the i-th row of the page.
func (p PageInfo) CursorFor(i int) string {
	return EncodeCursor(p.StartOffset + i + 1)
}

// Page is one window of a listing.
type Page[T any] struct {
	Items    []T
	PageInfo PageInfo
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalization result plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor builds an opaque cursor for the row offset that the next page starts at.
func EncodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

// ParseCursor decodes the cursor string back into a row offset. An empty cursor
// starts at the first row.
func ParseCursor(value string) (int, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return 0, fmt.Errorf("decode cursor: %w", err)
	}
	raw, ok := strings.CutPrefix(string(decoded), cursorPrefix)
	if !ok {
		return 0, fmt.Errorf("invalid cursor format")
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid cursor offset %q", raw)
	}
	return offset, nil
}

// Paginate trims a result fetched with LimitWithBuffer down to the page size and
// fills in the page info.
func Paginate[T any](rows []T, limit, offset int) Page[T] {
	limit = NormalizeLimit(limit)
	info := PageInfo{StartOffset: offset}
	if len(rows) > limit {
		rows = rows[:limit]
		info.HasNextPage = true
	}
	if len(rows) > 0 {
		info.EndCursor = info.CursorFor(len(rows) - 1)
	}
	return Page[T]{Items: rows, PageInfo: info}
}
