package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libranet/internal/catalog"
	"libranet/internal/circulation"
	"libranet/internal/eventstore"
)

func newRemote(t *testing.T) *CirculationClient {
	t.Helper()

	logger, _ := test.NewNullLogger()
	svc := circulation.NewService(catalog.New(), eventstore.NewEventStore(), logger)

	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, catalog.NewBook(1, "Clean Code", "Robert C. Martin", 464)))
	require.NoError(t, svc.AddItem(ctx, catalog.NewAudioBook(2, "Atomic Habits", "James Clear", 510)))

	srv := httptest.NewServer(circulation.NewHandler(svc, nil, logger).Routes())
	t.Cleanup(srv.Close)

	return NewCirculationClient(srv.URL + "/")
}

func TestClientRoundTrip(t *testing.T) {
	c := newRemote(t)
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, catalog.NewEMagazine(3, "Tech Today", "Editorial", 42)))

	items, err := c.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "E-Magazine: Tech Today Issue: 42 [available]", items[2].String())

	res, err := c.BorrowItem(ctx, 1, "5")
	require.NoError(t, err)
	assert.Equal(t, "Clean Code borrowed for 5 days.", res.Message)
	assert.Equal(t, 50.0, res.Fine)

	item, err := c.GetItem(ctx, 1)
	require.NoError(t, err)
	assert.False(t, item.Available)

	res, err = c.ReturnItem(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.Fine)

	found, err := c.FindByType(ctx, catalog.TypeAudioBook)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].ID)

	play, err := c.Play(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Playing audiobook: Atomic Habits (510 min)", play.String())

	arch, err := c.Archive(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Archiving issue #42 of Tech Today", arch.String())

	fines, err := c.Fines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.FineEntry{{ItemID: 1, Amount: 50}}, fines)

	history, err := c.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, circulation.EventItemReturned, history[2].EventType)

	var returned circulation.ItemReturnedEvent
	require.NoError(t, history[2].Decode(&returned))
	assert.Equal(t, 2, returned.LateDays)

	events, err := c.Events(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestClientErrorsUnwrapToSentinels(t *testing.T) {
	c := newRemote(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		target error
		status int
	}{
		{
			name:   "invalid duration",
			call:   func() error { _, err := c.BorrowItem(ctx, 2, "abc"); return err },
			target: catalog.ErrInvalidDuration,
			status: http.StatusBadRequest,
		},
		{
			name:   "not found",
			call:   func() error { _, err := c.GetItem(ctx, 99); return err },
			target: catalog.ErrItemNotFound,
			status: http.StatusNotFound,
		},
		{
			name:   "not borrowed",
			call:   func() error { _, err := c.ReturnItem(ctx, 2, 0); return err },
			target: catalog.ErrItemNotBorrowed,
			status: http.StatusConflict,
		},
		{
			name:   "not archivable",
			call:   func() error { _, err := c.Archive(ctx, 1); return err },
			target: catalog.ErrNotArchivable,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "duplicate",
			call:   func() error { return c.AddItem(ctx, catalog.NewBook(2, "Copy", "Someone", 1)) },
			target: catalog.ErrDuplicateID,
			status: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, catalog.Code(tt.target), apiErr.Code)
		})
	}
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewCirculationClient(srv.URL).ListItems(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, catalog.CodeInternal, apiErr.Code)
	assert.Nil(t, errors.Unwrap(err))
}
