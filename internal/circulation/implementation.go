// internal/circulation/implementation.go
package circulation

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"libranet/internal/catalog"
	"libranet/internal/eventstore"
)

const instrumentationName = "libranet/circulation"

// service implements the Service interface. All catalog access is serialised
// by mu; the catalog itself is not safe for concurrent use.
type service struct {
	mu         sync.Mutex
	catalog    *catalog.Catalog
	eventStore *eventstore.EventStore
	log        logrus.FieldLogger

	tracer trace.Tracer
	meter  metric.Meter

	borrows    metric.Int64Counter
	returns    metric.Int64Counter
	rejections metric.Int64Counter
}

// NewService creates a new circulation service that takes ownership of cat.
func NewService(cat *catalog.Catalog, es *eventstore.EventStore, log logrus.FieldLogger, opts ...Option) Service {
	s := &service{
		catalog:    cat,
		eventStore: es,
		log:        log.WithField("component", "circulation"),
		tracer:     otel.Tracer(instrumentationName),
		meter:      otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.borrows = s.counter("libranet.circulation.borrows", "Successful borrows")
	s.returns = s.counter("libranet.circulation.returns", "Successful returns")
	s.rejections = s.counter("libranet.circulation.rejections", "Rejected circulation operations")

	return s
}

func (s *service) counter(name, description string) metric.Int64Counter {
	c, err := s.meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		otel.Handle(err)
		return noop.Int64Counter{}
	}
	return c
}

// AddItem registers a new item and starts its history.
func (s *service) AddItem(ctx context.Context, item catalog.Item) error {
	ctx, span := s.tracer.Start(ctx, "circulation.add_item")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.catalog.AddItem(item); err != nil {
		s.reject(ctx, span, "add", -1, err)
		return err
	}

	span.SetAttributes(
		attribute.Int("item.id", item.ID()),
		attribute.String("item.type", item.Type().String()),
	)

	s.record(ctx, item.ID(), EventItemAdded, ItemAddedEvent{
		ItemID: item.ID(),
		Type:   item.Type(),
		Title:  item.Title(),
		Author: item.Author(),
	})

	s.log.WithFields(logrus.Fields{
		"item_id": item.ID(),
		"type":    item.Type(),
		"title":   item.Title(),
	}).Info("item added")

	return nil
}

// BorrowItem borrows an item for the given duration and records the fine.
func (s *service) BorrowItem(ctx context.Context, id int, duration string) (catalog.Result, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.borrow",
		trace.WithAttributes(
			attribute.Int("item.id", id),
			attribute.String("loan.duration", duration),
		),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.catalog.BorrowByID(id, duration)
	if err != nil {
		s.reject(ctx, span, "borrow", id, err)
		return catalog.Result{}, err
	}

	span.SetAttributes(
		attribute.Int("loan.days", res.Days),
		attribute.Float64("loan.fine", res.Fine),
	)
	s.borrows.Add(ctx, 1)

	s.record(ctx, id, EventItemBorrowed, ItemBorrowedEvent{
		ItemID: id,
		Days:   res.Days,
		Fine:   res.Fine,
	})

	s.log.WithFields(logrus.Fields{
		"item_id": id,
		"days":    res.Days,
		"fine":    res.Fine,
	}).Info("item borrowed")

	return res, nil
}

// ReturnItem returns a borrowed item. The late fine is reported only.
func (s *service) ReturnItem(ctx context.Context, id int, lateDays int) (catalog.Result, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.return",
		trace.WithAttributes(
			attribute.Int("item.id", id),
			attribute.Int("return.late_days", lateDays),
		),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.catalog.ReturnByID(id, lateDays)
	if err != nil {
		s.reject(ctx, span, "return", id, err)
		return catalog.Result{}, err
	}

	span.SetAttributes(attribute.Float64("return.fine", res.Fine))
	s.returns.Add(ctx, 1)

	s.record(ctx, id, EventItemReturned, ItemReturnedEvent{
		ItemID:   id,
		LateDays: res.LateDays,
		Fine:     res.Fine,
	})

	s.log.WithFields(logrus.Fields{
		"item_id":   id,
		"late_days": res.LateDays,
		"fine":      res.Fine,
	}).Info("item returned")

	return res, nil
}

func (s *service) GetItem(ctx context.Context, id int) (catalog.Description, error) {
	_, span := s.tracer.Start(ctx, "circulation.get_item", trace.WithAttributes(attribute.Int("item.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalog.Details(id)
}

func (s *service) ListItems(ctx context.Context) ([]catalog.Description, error) {
	_, span := s.tracer.Start(ctx, "circulation.list_items")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalog.Items(), nil
}

// FindByType lists the items of one type in catalog order.
func (s *service) FindByType(ctx context.Context, t catalog.ItemType) ([]catalog.Description, error) {
	_, span := s.tracer.Start(ctx, "circulation.find_by_type", trace.WithAttributes(attribute.String("item.type", t.String())))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	found := s.catalog.FindByType(t)
	span.SetAttributes(attribute.Int("items.found", len(found)))
	return found, nil
}

func (s *service) Fines(ctx context.Context) ([]catalog.FineEntry, error) {
	_, span := s.tracer.Start(ctx, "circulation.fines")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalog.ShowFines(), nil
}

func (s *service) Play(ctx context.Context, id int) (catalog.PlaybackEvent, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.play", trace.WithAttributes(attribute.Int("item.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.catalog.Play(id)
	if err != nil {
		s.reject(ctx, span, "play", id, err)
		return catalog.PlaybackEvent{}, err
	}

	s.log.WithField("item_id", id).Info(ev.String())
	return ev, nil
}

func (s *service) Archive(ctx context.Context, id int) (catalog.ArchiveEvent, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.archive", trace.WithAttributes(attribute.Int("item.id", id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.catalog.Archive(id)
	if err != nil {
		s.reject(ctx, span, "archive", id, err)
		return catalog.ArchiveEvent{}, err
	}

	s.log.WithField("item_id", id).Info(ev.String())
	return ev, nil
}

// History returns the recorded events of one item, oldest first.
func (s *service) History(ctx context.Context, id int) ([]eventstore.Event, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.history", trace.WithAttributes(attribute.Int("item.id", id)))
	defer span.End()

	s.mu.Lock()
	_, err := s.catalog.Details(id)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	events, err := s.eventStore.LoadEvents(ctx, streamID(id), 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return events, nil
}

// Events returns up to limit events across all items, after the given sequence number.
func (s *service) Events(ctx context.Context, afterSequence int64, limit int) ([]eventstore.Event, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.events")
	defer span.End()

	events, err := s.eventStore.StreamEvents(ctx, afterSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to stream events: %w", err)
	}
	return events, nil
}

// record appends one event to an item's history. The catalog has already
// changed at this point, so a failure is logged rather than returned.
func (s *service) record(ctx context.Context, itemID int, eventType string, payload interface{}) {
	if err := s.appendEvent(ctx, itemID, eventType, payload); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		s.log.WithError(err).WithFields(logrus.Fields{
			"item_id":    itemID,
			"event_type": eventType,
		}).Error("failed to record event")
	}
}

func (s *service) appendEvent(ctx context.Context, itemID int, eventType string, payload interface{}) error {
	event, err := eventstore.NewEvent(eventType, payload)
	if err != nil {
		return err
	}

	stream := streamID(itemID)
	version, err := s.eventStore.GetCurrentVersion(ctx, stream)
	if err != nil {
		return fmt.Errorf("failed to get stream version: %w", err)
	}

	if err := s.eventStore.AppendEvents(ctx, stream, streamType, version, []eventstore.Event{event}); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (s *service) reject(ctx context.Context, span trace.Span, op string, itemID int, err error) {
	code := catalog.Code(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, code)
	s.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("reason", code),
	))

	fields := logrus.Fields{"operation": op, "reason": code}
	if itemID >= 0 {
		fields["item_id"] = itemID
	}
	s.log.WithFields(fields).WithError(err).Warn("operation rejected")
}
