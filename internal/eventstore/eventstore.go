package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrInvalidVersion      = errors.New("invalid version number")
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Event is a domain event recorded against a stream.
type Event struct {
	ID         uuid.UUID              `json:"id"`
	Sequence   int64                  `json:"sequence"`
	StreamID   string                 `json:"stream_id"`
	StreamType string                 `json:"stream_type"`
	EventType  string                 `json:"event_type"`
	EventData  json.RawMessage        `json:"event_data"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Version    int                    `json:"version"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewEvent encodes payload as the event data of a new, unsaved event.
func NewEvent(eventType string, payload interface{}) (Event, error) {
	data, err := codec.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{EventType: eventType, EventData: data}, nil
}

// Decode unmarshals the event data into v.
func (e Event) Decode(v interface{}) error {
	if err := codec.Unmarshal(e.EventData, v); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", e.EventType, err)
	}
	return nil
}

// EventStore is an in-process, append-only event journal with optimistic
// concurrency per stream. It is safe for concurrent use.
type EventStore struct {
	mu       sync.RWMutex
	streams  map[string][]Event
	all      []Event
	sequence int64
	now      func() time.Time
	tracer   trace.Tracer
}

func NewEventStore() *EventStore {
	return &EventStore{
		streams: make(map[string][]Event),
		now:     func() time.Time { return time.Now().UTC() },
		tracer:  otel.Tracer("libranet/eventstore"),
	}
}

// AppendEvents atomically appends events to a stream if its current version
// equals expectedVersion.
func (es *EventStore) AppendEvents(ctx context.Context, streamID, streamType string, expectedVersion int, events []Event) error {
	_, span := es.tracer.Start(ctx, "eventstore.append",
		trace.WithAttributes(
			attribute.String("stream.id", streamID),
			attribute.String("stream.type", streamType),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	if expectedVersion < 0 {
		return ErrInvalidVersion
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	currentVersion := len(es.streams[streamID])
	if currentVersion != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", currentVersion),
			attribute.Bool("conflict.detected", true),
		)
		return ErrConcurrencyConflict
	}

	now := es.now()
	for i, event := range events {
		es.sequence++
		event.ID = uuid.New()
		event.Sequence = es.sequence
		event.StreamID = streamID
		event.StreamType = streamType
		event.Version = expectedVersion + i + 1
		event.CreatedAt = now

		es.streams[streamID] = append(es.streams[streamID], event)
		es.all = append(es.all, event)

		span.AddEvent("event.appended", trace.WithAttributes(
			attribute.Int64("event.sequence", event.Sequence),
			attribute.Int("event.version", event.Version),
			attribute.String("event.type", event.EventType),
		))
	}

	span.SetAttributes(attribute.Bool("append.success", true))
	return nil
}

// LoadEvents returns the events of a stream with fromVersion <= version <= toVersion.
// A toVersion of 0 means no upper bound.
func (es *EventStore) LoadEvents(ctx context.Context, streamID string, fromVersion, toVersion int) ([]Event, error) {
	_, span := es.tracer.Start(ctx, "eventstore.load",
		trace.WithAttributes(
			attribute.String("stream.id", streamID),
			attribute.Int("from.version", fromVersion),
			attribute.Int("to.version", toVersion),
		),
	)
	defer span.End()

	es.mu.RLock()
	defer es.mu.RUnlock()

	var events []Event
	for _, event := range es.streams[streamID] {
		if event.Version < fromVersion {
			continue
		}
		if toVersion > 0 && event.Version > toVersion {
			break
		}
		events = append(events, event)
	}

	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, nil
}

// GetCurrentVersion returns the latest version of a stream, 0 if it is empty.
func (es *EventStore) GetCurrentVersion(ctx context.Context, streamID string) (int, error) {
	_, span := es.tracer.Start(ctx, "eventstore.get_version",
		trace.WithAttributes(attribute.String("stream.id", streamID)),
	)
	defer span.End()

	es.mu.RLock()
	version := len(es.streams[streamID])
	es.mu.RUnlock()

	span.SetAttributes(attribute.Int("current.version", version))
	return version, nil
}

// StreamEvents returns up to batchSize events from all streams with a
// sequence number greater than fromSequence, in append order.
func (es *EventStore) StreamEvents(ctx context.Context, fromSequence int64, batchSize int) ([]Event, error) {
	_, span := es.tracer.Start(ctx, "eventstore.stream",
		trace.WithAttributes(
			attribute.Int64("from.sequence", fromSequence),
			attribute.Int("batch.size", batchSize),
		),
	)
	defer span.End()

	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	// sequence numbers start at 1 and are dense
	start := int(fromSequence)
	if start < 0 {
		start = 0
	}
	if start >= len(es.all) {
		return nil, nil
	}
	end := len(es.all)
	if batchSize < end-start {
		end = start + batchSize
	}

	events := make([]Event, end-start)
	copy(events, es.all[start:end])

	span.SetAttributes(attribute.Int("events.streamed", len(events)))
	return events, nil
}
