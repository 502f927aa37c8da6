package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowRecordsFineAndMarksUnavailable(t *testing.T) {
	ledger := NewLedger()
	book := NewBook(1, "Clean Code", "Robert C. Martin", 464)

	res, err := book.Borrow("5", ledger)
	require.NoError(t, err)

	assert.False(t, book.Available())
	assert.Equal(t, 50.0, res.Fine)
	assert.Equal(t, 5, res.Days)
	assert.Equal(t, "Clean Code borrowed for 5 days.", res.Message)
	assert.Equal(t, []FineEntry{{ItemID: 1, Amount: 50}}, ledger.Entries())
}

func TestBorrowTwiceIsRejected(t *testing.T) {
	ledger := NewLedger()
	mag := NewEMagazine(3, "Tech Today", "Editorial", 42)

	_, err := mag.Borrow("7", ledger)
	require.NoError(t, err)

	_, err = mag.Borrow("2", ledger)
	require.ErrorIs(t, err, ErrItemUnavailable)

	assert.False(t, mag.Available())
	assert.Equal(t, []FineEntry{{ItemID: 3, Amount: 70}}, ledger.Entries())
}

func TestBorrowInvalidDurationLeavesStateUnchanged(t *testing.T) {
	ledger := NewLedger()
	audio := NewAudioBook(2, "Atomic Habits", "James Clear", 510)

	_, err := audio.Borrow("abc", ledger)
	require.ErrorIs(t, err, ErrInvalidDuration)

	assert.True(t, audio.Available())
	assert.Zero(t, ledger.Len())
}

func TestReturn(t *testing.T) {
	t.Run("late return reports fine", func(t *testing.T) {
		book := NewBook(1, "Clean Code", "Robert C. Martin", 464)
		_, err := book.Borrow("5", NewLedger())
		require.NoError(t, err)

		res, err := book.Return(2)
		require.NoError(t, err)
		assert.True(t, book.Available())
		assert.Equal(t, 20.0, res.Fine)
		assert.Equal(t, 2, res.LateDays)
		assert.Equal(t, "Clean Code returned.", res.Message)
	})

	t.Run("on time return has no fine", func(t *testing.T) {
		book := NewBook(1, "Clean Code", "Robert C. Martin", 464)
		_, err := book.Borrow("5", NewLedger())
		require.NoError(t, err)

		res, err := book.Return(-4)
		require.NoError(t, err)
		assert.Zero(t, res.Fine)
		assert.Zero(t, res.LateDays)
	})

	t.Run("never borrowed", func(t *testing.T) {
		book := NewBook(1, "Clean Code", "Robert C. Martin", 464)

		_, err := book.Return(3)
		require.ErrorIs(t, err, ErrItemNotBorrowed)
		assert.True(t, book.Available())
	})

	t.Run("ledger is not cleared", func(t *testing.T) {
		ledger := NewLedger()
		book := NewBook(1, "Clean Code", "Robert C. Martin", 464)
		_, err := book.Borrow("5", ledger)
		require.NoError(t, err)

		_, err = book.Return(0)
		require.NoError(t, err)

		amount, ok := ledger.Amount(1)
		assert.True(t, ok)
		assert.Equal(t, 50.0, amount)
	})
}

func TestDetails(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want Description
		text string
	}{
		{
			name: "book",
			item: NewBook(1, "Clean Code", "Robert C. Martin", 464),
			want: Description{ID: 1, Type: TypeBook, Title: "Clean Code", Author: "Robert C. Martin", Available: true, PageCount: 464},
			text: "Book: Clean Code by Robert C. Martin, Pages: 464 [available]",
		},
		{
			name: "audiobook",
			item: NewAudioBook(2, "Atomic Habits", "James Clear", 510),
			want: Description{ID: 2, Type: TypeAudioBook, Title: "Atomic Habits", Author: "James Clear", Available: true, DurationMinutes: 510},
			text: "Audiobook: Atomic Habits by James Clear, Duration: 510 min [available]",
		},
		{
			name: "emagazine",
			item: NewEMagazine(3, "Tech Today", "Editorial", 42),
			want: Description{ID: 3, Type: TypeEMagazine, Title: "Tech Today", Author: "Editorial", Available: true, IssueNumber: 42},
			text: "E-Magazine: Tech Today Issue: 42 [available]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.item.Details()
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.text, d.String())
		})
	}
}

func TestCapabilities(t *testing.T) {
	audio := NewAudioBook(2, "Atomic Habits", "James Clear", 510)
	_, err := audio.Borrow("3", NewLedger())
	require.NoError(t, err)

	// Playback works while borrowed and leaves the state alone.
	ev := audio.Play()
	assert.Equal(t, PlaybackEvent{ItemID: 2, Title: "Atomic Habits", DurationMinutes: 510}, ev)
	assert.Equal(t, "Playing audiobook: Atomic Habits (510 min)", ev.String())
	assert.False(t, audio.Available())

	mag := NewEMagazine(3, "Tech Today", "Editorial", 42)
	arch := mag.Archive()
	assert.Equal(t, "Archiving issue #42 of Tech Today", arch.String())
	assert.True(t, mag.Available())

	var item Item = NewBook(1, "Clean Code", "Robert C. Martin", 464)
	_, playable := item.(Playable)
	_, archivable := item.(Archivable)
	assert.False(t, playable)
	assert.False(t, archivable)
}

func TestNewItem(t *testing.T) {
	item, err := NewItem(Description{ID: 9, Type: "audiobook", Title: "Dune", Author: "Frank Herbert", DurationMinutes: 1260, Available: false})
	require.NoError(t, err)
	assert.Equal(t, TypeAudioBook, item.Type())
	assert.True(t, item.Available())

	_, err = NewItem(Description{ID: 1, Type: "Scroll", Title: "Dead Sea"})
	require.ErrorIs(t, err, ErrInvalidItem)

	_, err = NewItem(Description{ID: 1, Type: TypeBook, Title: "Negative", PageCount: -1})
	require.ErrorIs(t, err, ErrInvalidItem)

	_, err = NewItem(Description{ID: 1, Type: TypeEMagazine, Title: " "})
	require.ErrorIs(t, err, ErrInvalidItem)
}

func TestParseItemType(t *testing.T) {
	for in, want := range map[string]ItemType{
		"Book":       TypeBook,
		"book":       TypeBook,
		"AudioBook":  TypeAudioBook,
		"audio-book": TypeAudioBook,
		"EMagazine":  TypeEMagazine,
		"magazine":   TypeEMagazine,
	} {
		got, err := ParseItemType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseItemType("dvd")
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestErrorCodes(t *testing.T) {
	for _, err := range []error{
		ErrInvalidDuration, ErrItemUnavailable, ErrItemNotBorrowed, ErrItemNotFound,
		ErrDuplicateID, ErrInvalidItem, ErrNotPlayable, ErrNotArchivable,
	} {
		code := Code(err)
		assert.NotEqual(t, CodeInternal, code)
		assert.Equal(t, err, ErrorForCode(code))
	}

	assert.Equal(t, CodeInternal, Code(assert.AnError))
	assert.Nil(t, ErrorForCode("NOPE"))
}

func TestBorrowWithoutLedger(t *testing.T) {
	book := NewBook(1, "Clean Code", "Robert C. Martin", 464)

	_, err := book.Borrow("5", nil)
	require.Error(t, err)
	assert.True(t, book.Available())
}
