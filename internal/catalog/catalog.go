// internal/catalog/catalog.go
package catalog

import "fmt"

// Catalog owns a set of uniquely identified items and the fine ledger.
// Items passed to AddItem belong to the catalog; callers only ever get
// Description copies back. A Catalog is not safe for concurrent use.
type Catalog struct {
	items []Item
	fines *Ledger
}

func New() *Catalog {
	return &Catalog{fines: NewLedger()}
}

// AddItem registers item. Item ids must be unique within the catalog.
func (c *Catalog) AddItem(item Item) error {
	if item == nil {
		return fmt.Errorf("%w: nil item", ErrInvalidItem)
	}
	if err := item.validate(); err != nil {
		return err
	}
	if _, ok := c.find(item.ID()); ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, item.ID())
	}

	c.items = append(c.items, item)
	return nil
}

// BorrowByID borrows the item with the given id for duration days.
func (c *Catalog) BorrowByID(id int, duration string) (Result, error) {
	item, err := c.lookup(id)
	if err != nil {
		return Result{}, err
	}
	return item.Borrow(duration, c.fines)
}

// ReturnByID returns the item with the given id, lateDays past its due date.
func (c *Catalog) ReturnByID(id, lateDays int) (Result, error) {
	item, err := c.lookup(id)
	if err != nil {
		return Result{}, err
	}
	return item.Return(lateDays)
}

// FindByType lists the items of one variant in catalog order.
func (c *Catalog) FindByType(t ItemType) []Description {
	var found []Description
	for _, item := range c.items {
		if item.Type() == t {
			found = append(found, item.Details())
		}
	}
	return found
}

// ShowFines returns the fine ledger in insertion order.
func (c *Catalog) ShowFines() []FineEntry {
	return c.fines.Entries()
}

func (c *Catalog) TotalFines() float64 {
	return c.fines.Total()
}

func (c *Catalog) Details(id int) (Description, error) {
	item, err := c.lookup(id)
	if err != nil {
		return Description{}, err
	}
	return item.Details(), nil
}

func (c *Catalog) Items() []Description {
	descriptions := make([]Description, 0, len(c.items))
	for _, item := range c.items {
		descriptions = append(descriptions, item.Details())
	}
	return descriptions
}

func (c *Catalog) Len() int {
	return len(c.items)
}

func (c *Catalog) Play(id int) (PlaybackEvent, error) {
	item, err := c.lookup(id)
	if err != nil {
		return PlaybackEvent{}, err
	}
	p, ok := item.(Playable)
	if !ok {
		return PlaybackEvent{}, fmt.Errorf("%w: %s is a %s", ErrNotPlayable, item.Title(), item.Type())
	}
	return p.Play(), nil
}

func (c *Catalog) Archive(id int) (ArchiveEvent, error) {
	item, err := c.lookup(id)
	if err != nil {
		return ArchiveEvent{}, err
	}
	a, ok := item.(Archivable)
	if !ok {
		return ArchiveEvent{}, fmt.Errorf("%w: %s is a %s", ErrNotArchivable, item.Title(), item.Type())
	}
	return a.Archive(), nil
}

func (c *Catalog) lookup(id int) (Item, error) {
	item, ok := c.find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	return item, nil
}

func (c *Catalog) find(id int) (Item, bool) {
	for _, item := range c.items {
		if item.ID() == id {
			return item, true
		}
	}
	return nil, false
}
