// internal/circulation/service.go
package circulation

import (
	"context"

	"libranet/internal/catalog"
	"libranet/internal/eventstore"
)

// Service defines the interface for the circulation service.
type Service interface {
	AddItem(ctx context.Context, item catalog.Item) error
	BorrowItem(ctx context.Context, id int, duration string) (catalog.Result, error)
	ReturnItem(ctx context.Context, id int, lateDays int) (catalog.Result, error)
	GetItem(ctx context.Context, id int) (catalog.Description, error)
	ListItems(ctx context.Context) ([]catalog.Description, error)
	FindByType(ctx context.Context, t catalog.ItemType) ([]catalog.Description, error)
	Fines(ctx context.Context) ([]catalog.FineEntry, error)
	Play(ctx context.Context, id int) (catalog.PlaybackEvent, error)
	Archive(ctx context.Context, id int) (catalog.ArchiveEvent, error)
	History(ctx context.Context, id int) ([]eventstore.Event, error)
	Events(ctx context.Context, afterSequence int64, limit int) ([]eventstore.Event, error)
}
