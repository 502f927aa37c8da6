// internal/catalog/errors.go
package catalog

import "errors"

var (
	ErrInvalidDuration = errors.New("invalid duration")
	ErrItemUnavailable = errors.New("item not available")
	ErrItemNotBorrowed = errors.New("item not borrowed")
	ErrItemNotFound    = errors.New("item not found")
	ErrDuplicateID     = errors.New("duplicate item id")
	ErrInvalidItem     = errors.New("invalid item")
	ErrNotPlayable     = errors.New("item is not playable")
	ErrNotArchivable   = errors.New("item is not archivable")
)

// Stable error codes used on the wire.
const (
	CodeInvalidDuration = "INVALID_DURATION"
	CodeItemUnavailable = "ITEM_UNAVAILABLE"
	CodeItemNotBorrowed = "ITEM_NOT_BORROWED"
	CodeItemNotFound    = "ITEM_NOT_FOUND"
	CodeDuplicateID     = "DUPLICATE_ID"
	CodeInvalidItem     = "INVALID_ITEM"
	CodeNotPlayable     = "NOT_PLAYABLE"
	CodeNotArchivable   = "NOT_ARCHIVABLE"
	CodeInternal        = "INTERNAL"
)

var codes = []struct {
	code string
	err  error
}{
	{CodeInvalidDuration, ErrInvalidDuration},
	{CodeItemUnavailable, ErrItemUnavailable},
	{CodeItemNotBorrowed, ErrItemNotBorrowed},
	{CodeItemNotFound, ErrItemNotFound},
	{CodeDuplicateID, ErrDuplicateID},
	{CodeInvalidItem, ErrInvalidItem},
	{CodeNotPlayable, ErrNotPlayable},
	{CodeNotArchivable, ErrNotArchivable},
}

// Code returns the wire code for err, or CodeInternal if err is not a catalog error.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// ErrorForCode is the inverse of Code. It returns nil for unknown codes.
func ErrorForCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
