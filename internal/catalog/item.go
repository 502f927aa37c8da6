// internal/catalog/item.go
package catalog

import (
	"fmt"
	"strings"
)

// Item is a borrowable catalog entry. It is implemented by *Book, *AudioBook
// and *EMagazine only.
type Item interface {
	ID() int
	Title() string
	Author() string
	Type() ItemType
	Available() bool
	Borrow(duration string, ledger *Ledger) (Result, error)
	Return(lateDays int) (Result, error)
	Details() Description

	validate() error
}

// Playable items can be played back.
type Playable interface {
	Play() PlaybackEvent
}

// Archivable items can be archived.
type Archivable interface {
	Archive() ArchiveEvent
}

// Record holds the state shared by every item variant.
type Record struct {
	id        int
	title     string
	author    string
	available bool
}

func newRecord(id int, title, author string) Record {
	return Record{id: id, title: title, author: author, available: true}
}

func (r *Record) ID() int         { return r.id }
func (r *Record) Title() string   { return r.title }
func (r *Record) Author() string  { return r.author }
func (r *Record) Available() bool { return r.available }

// Borrow marks the item as borrowed for the given duration and records the
// loan fine in ledger, which must not be nil. State is left untouched on error.
func (r *Record) Borrow(duration string, ledger *Ledger) (Result, error) {
	if ledger == nil {
		return Result{}, fmt.Errorf("item %s: no fine ledger", r.title)
	}
	if !r.available {
		return Result{}, fmt.Errorf("%w: %s is already borrowed", ErrItemUnavailable, r.title)
	}

	days, err := ParseLoanDays(duration)
	if err != nil {
		return Result{}, fmt.Errorf("item %s: %w", r.title, err)
	}

	fine := float64(days) * FinePerDay
	ledger.Record(r.id, fine)
	r.available = false

	return Result{
		ItemID:  r.id,
		Title:   r.title,
		Message: fmt.Sprintf("%s borrowed for %d days.", r.title, days),
		Days:    days,
		Fine:    fine,
	}, nil
}

// Return marks the item as available again. The late fine is reported but not
// recorded anywhere.
func (r *Record) Return(lateDays int) (Result, error) {
	if r.available {
		return Result{}, fmt.Errorf("%w: %s was not borrowed", ErrItemNotBorrowed, r.title)
	}

	r.available = true

	var fine float64
	if lateDays > 0 {
		fine = float64(lateDays) * FinePerDay
	} else {
		lateDays = 0
	}

	return Result{
		ItemID:   r.id,
		Title:    r.title,
		Message:  fmt.Sprintf("%s returned.", r.title),
		LateDays: lateDays,
		Fine:     fine,
	}, nil
}

func (r *Record) description(t ItemType) Description {
	return Description{
		ID:        r.id,
		Type:      t,
		Title:     r.title,
		Author:    r.author,
		Available: r.available,
	}
}

func (r *Record) validate() error {
	if r.id < 0 {
		return fmt.Errorf("%w: negative id %d", ErrInvalidItem, r.id)
	}
	if strings.TrimSpace(r.title) == "" {
		return fmt.Errorf("%w: item %d has no title", ErrInvalidItem, r.id)
	}
	return nil
}

type Book struct {
	Record
	pageCount int
}

func NewBook(id int, title, author string, pageCount int) *Book {
	return &Book{Record: newRecord(id, title, author), pageCount: pageCount}
}

func (b *Book) Type() ItemType { return TypeBook }
func (b *Book) PageCount() int { return b.pageCount }

func (b *Book) Details() Description {
	d := b.description(TypeBook)
	d.PageCount = b.pageCount
	return d
}

func (b *Book) validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil book", ErrInvalidItem)
	}
	if b.pageCount < 0 {
		return fmt.Errorf("%w: book %d has negative page count", ErrInvalidItem, b.id)
	}
	return b.Record.validate()
}

type AudioBook struct {
	Record
	durationMinutes float64
}

func NewAudioBook(id int, title, author string, durationMinutes float64) *AudioBook {
	return &AudioBook{Record: newRecord(id, title, author), durationMinutes: durationMinutes}
}

func (a *AudioBook) Type() ItemType           { return TypeAudioBook }
func (a *AudioBook) DurationMinutes() float64 { return a.durationMinutes }

func (a *AudioBook) Details() Description {
	d := a.description(TypeAudioBook)
	d.DurationMinutes = a.durationMinutes
	return d
}

// Play does not depend on, or change, the borrow state.
func (a *AudioBook) Play() PlaybackEvent {
	return PlaybackEvent{ItemID: a.id, Title: a.title, DurationMinutes: a.durationMinutes}
}

func (a *AudioBook) validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil audiobook", ErrInvalidItem)
	}
	if a.durationMinutes < 0 {
		return fmt.Errorf("%w: audiobook %d has negative duration", ErrInvalidItem, a.id)
	}
	return a.Record.validate()
}

type EMagazine struct {
	Record
	issueNumber int
}

func NewEMagazine(id int, title, author string, issueNumber int) *EMagazine {
	return &EMagazine{Record: newRecord(id, title, author), issueNumber: issueNumber}
}

func (m *EMagazine) Type() ItemType   { return TypeEMagazine }
func (m *EMagazine) IssueNumber() int { return m.issueNumber }

func (m *EMagazine) Details() Description {
	d := m.description(TypeEMagazine)
	d.IssueNumber = m.issueNumber
	return d
}

func (m *EMagazine) Archive() ArchiveEvent {
	return ArchiveEvent{ItemID: m.id, Title: m.title, IssueNumber: m.issueNumber}
}

func (m *EMagazine) validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil magazine", ErrInvalidItem)
	}
	if m.issueNumber < 0 {
		return fmt.Errorf("%w: magazine %d has negative issue number", ErrInvalidItem, m.id)
	}
	return m.Record.validate()
}

// NewItem builds the variant named by d.Type. Availability in d is ignored;
// new items always start available.
func NewItem(d Description) (Item, error) {
	var item Item
	switch d.Type {
	case TypeBook:
		item = NewBook(d.ID, d.Title, d.Author, d.PageCount)
	case TypeAudioBook:
		item = NewAudioBook(d.ID, d.Title, d.Author, d.DurationMinutes)
	case TypeEMagazine:
		item = NewEMagazine(d.ID, d.Title, d.Author, d.IssueNumber)
	default:
		t, err := ParseItemType(string(d.Type))
		if err != nil {
			return nil, err
		}
		d.Type = t
		return NewItem(d)
	}

	if err := item.validate(); err != nil {
		return nil, err
	}
	return item, nil
}
