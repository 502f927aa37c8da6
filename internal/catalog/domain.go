// internal/catalog/domain.go
package catalog

import (
	"fmt"
	"strings"
)

// FinePerDay is the fine charged per loan day and per late day, in Rs.
const FinePerDay = 10.0

// ItemType tags the variant of a catalog item.
type ItemType string

const (
	TypeBook      ItemType = "Book"
	TypeAudioBook ItemType = "AudioBook"
	TypeEMagazine ItemType = "EMagazine"
)

func (t ItemType) String() string {
	return string(t)
}

// ParseItemType resolves a type tag case-insensitively.
func ParseItemType(s string) (ItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "book":
		return TypeBook, nil
	case "audiobook", "audio-book":
		return TypeAudioBook, nil
	case "emagazine", "e-magazine", "magazine":
		return TypeEMagazine, nil
	default:
		return "", fmt.Errorf("%w: unknown item type %q", ErrInvalidItem, s)
	}
}

// Description is a variant-specific summary of an item.
type Description struct {
	ID              int      `json:"id" mapstructure:"id"`
	Type            ItemType `json:"type" mapstructure:"type"`
	Title           string   `json:"title" mapstructure:"title"`
	Author          string   `json:"author" mapstructure:"author"`
	Available       bool     `json:"available" mapstructure:"-"`
	PageCount       int      `json:"page_count,omitempty" mapstructure:"page_count"`
	DurationMinutes float64  `json:"duration_minutes,omitempty" mapstructure:"duration_minutes"`
	IssueNumber     int      `json:"issue_number,omitempty" mapstructure:"issue_number"`
}

func (d Description) String() string {
	status := "available"
	if !d.Available {
		status = "borrowed"
	}

	switch d.Type {
	case TypeBook:
		return fmt.Sprintf("Book: %s by %s, Pages: %d [%s]", d.Title, d.Author, d.PageCount, status)
	case TypeAudioBook:
		return fmt.Sprintf("Audiobook: %s by %s, Duration: %s [%s]", d.Title, d.Author, formatMinutes(d.DurationMinutes), status)
	case TypeEMagazine:
		return fmt.Sprintf("E-Magazine: %s Issue: %d [%s]", d.Title, d.IssueNumber, status)
	default:
		return fmt.Sprintf("%s: %s by %s [%s]", d.Type, d.Title, d.Author, status)
	}
}

// Result reports a successful borrow or return.
type Result struct {
	ItemID   int     `json:"item_id"`
	Title    string  `json:"title"`
	Message  string  `json:"message"`
	Days     int     `json:"days,omitempty"`
	LateDays int     `json:"late_days,omitempty"`
	Fine     float64 `json:"fine"`
}

// FineEntry is one row of the fine ledger.
type FineEntry struct {
	ItemID int     `json:"item_id"`
	Amount float64 `json:"amount"`
}

// PlaybackEvent is emitted when an audiobook is played.
type PlaybackEvent struct {
	ItemID          int     `json:"item_id"`
	Title           string  `json:"title"`
	DurationMinutes float64 `json:"duration_minutes"`
}

func (e PlaybackEvent) String() string {
	return fmt.Sprintf("Playing audiobook: %s (%s)", e.Title, formatMinutes(e.DurationMinutes))
}

// ArchiveEvent is emitted when a magazine issue is archived.
type ArchiveEvent struct {
	ItemID      int    `json:"item_id"`
	Title       string `json:"title"`
	IssueNumber int    `json:"issue_number"`
}

func (e ArchiveEvent) String() string {
	return fmt.Sprintf("Archiving issue #%d of %s", e.IssueNumber, e.Title)
}

func formatMinutes(m float64) string {
	return fmt.Sprintf("%g min", m)
}
