package model_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/labb/internal/model"
)

var t0 = time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

func intro(text string) func() (string, error) {
	return func() (string, error) { return text, nil }
}

func note(t *testing.T, text string) model.Datum {
	t.Helper()
	d, err := model.NewDatum(model.KindNote, text, "", t0)
	require.NoError(t, err)
	return d
}

func TestSelectOrCreateBook(t *testing.T) {
	lb := model.New("Ada")

	created, err := lb.SelectOrCreateBook("lab1", intro("first notebook"), t0)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "lab1", lb.Current)
	assert.Equal(t, "first notebook", lb.Books["lab1"].Introduction)

	calls := 0
	created, err = lb.SelectOrCreateBook("lab1", func() (string, error) {
		calls++
		return "", nil
	}, t0)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, calls, "intro provider must not run for existing books")
}

func TestSelectOrCreateBookProviderFailure(t *testing.T) {
	lb := model.New("Ada")
	boom := errors.New("aborted")

	_, err := lb.SelectOrCreateBook("lab1", func() (string, error) { return "", boom }, t0)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, lb.Books)
	assert.Empty(t, lb.Current)
}

func TestSelectOrCreateBookInvalidName(t *testing.T) {
	for _, name := range []string{"", " ", ".", "..", "a/b", `a\b`, ".hidden"} {
		t.Run(name, func(t *testing.T) {
			lb := model.New("Ada")
			_, err := lb.SelectOrCreateBook(name, intro("x"), t0)
			assert.ErrorIs(t, err, model.ErrInvalidBookName)
		})
	}
}

func TestSwitchWithOpenEntry(t *testing.T) {
	lb := model.New("Ada")
	_, err := lb.SelectOrCreateBook("lab1", intro(""), t0)
	require.NoError(t, err)
	_, err = lb.OpenEntry(t0)
	require.NoError(t, err)

	_, err = lb.SelectOrCreateBook("lab2", intro(""), t0)
	require.ErrorIs(t, err, model.ErrInvalidTransition)
	assert.Equal(t, "lab1", lb.Current)
	assert.NotContains(t, lb.Books, "lab2")

	// Re-selecting the same book is fine.
	_, err = lb.SelectOrCreateBook("lab1", intro(""), t0)
	require.NoError(t, err)
}

func TestAppendWithoutCurrentBook(t *testing.T) {
	lb := model.New("Ada")

	_, err := lb.AppendDatum(note(t, "orphan"))
	require.ErrorIs(t, err, model.ErrNoOpenEntry)
	assert.ErrorIs(t, err, model.ErrNoCurrentBook)
	_, err = lb.AppendTag("orphan")
	require.ErrorIs(t, err, model.ErrNoOpenEntry)
	_, err = lb.CloseEntry()
	require.ErrorIs(t, err, model.ErrNoOpenEntry)
	_, _, err = lb.OpenEntryOfCurrent()
	require.ErrorIs(t, err, model.ErrNoOpenEntry)
}

func TestEntryLifecycle(t *testing.T) {
	lb := model.New("Ada")

	_, err := lb.OpenEntry(t0)
	require.ErrorIs(t, err, model.ErrNoCurrentBook)

	_, err = lb.SelectOrCreateBook("lab1", intro(""), t0)
	require.NoError(t, err)

	_, err = lb.CloseEntry()
	require.ErrorIs(t, err, model.ErrNoOpenEntry)

	e, err := lb.OpenEntry(t0)
	require.NoError(t, err)
	assert.True(t, e.Open)

	_, err = lb.OpenEntry(t0.Add(time.Second))
	require.ErrorIs(t, err, model.ErrEntryAlreadyOpen)

	_, err = lb.AppendDatum(note(t, "observed X"))
	require.NoError(t, err)
	_, err = lb.AppendTag("  chemistry ")
	require.NoError(t, err)
	_, err = lb.AppendTag("   ")
	require.ErrorIs(t, err, model.ErrEmptyTag)

	closed, err := lb.CloseEntry()
	require.NoError(t, err)
	assert.Same(t, e, closed)
	assert.False(t, e.Open)
	assert.Equal(t, []string{"chemistry"}, e.Tags)
	require.Len(t, e.Data, 1)
	assert.Equal(t, "observed X", e.Data[0].Text)

	_, err = lb.AppendDatum(note(t, "late"))
	require.ErrorIs(t, err, model.ErrNoOpenEntry)
	_, err = lb.AppendTag("late")
	require.ErrorIs(t, err, model.ErrNoOpenEntry)
	assert.Len(t, e.Data, 1)
	assert.Len(t, e.Tags, 1)
}

func TestOpenEntryTimestampCollision(t *testing.T) {
	lb := model.New("Ada")
	_, err := lb.SelectOrCreateBook("lab1", intro(""), t0)
	require.NoError(t, err)
	_, err = lb.OpenEntry(t0)
	require.NoError(t, err)
	_, err = lb.CloseEntry()
	require.NoError(t, err)

	_, err = lb.OpenEntry(t0)
	require.ErrorIs(t, err, model.ErrTimestampCollision)
	assert.Len(t, lb.Books["lab1"].Entries, 1)

	_, err = lb.OpenEntry(t0.Add(time.Nanosecond))
	require.NoError(t, err)
}

func TestNewDatumAttachmentInvariant(t *testing.T) {
	tests := []struct {
		kind       model.Kind
		attachment string
		wantErr    error
	}{
		{model.KindNote, "", nil},
		{model.KindTable, "", nil},
		{model.KindCitation, "books/a/x.bib", model.ErrUnexpectedAttachment},
		{model.KindImage, "books/a/x.png", nil},
		{model.KindCode, "books/a/x.go", nil},
		{model.KindImage, "", model.ErrAttachmentRequired},
		{model.KindCode, "", model.ErrAttachmentRequired},
		{model.Kind("video"), "", model.ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			d, err := model.NewDatum(tt.kind, "text", tt.attachment, t0)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, d.ID)
			assert.Equal(t, tt.attachment != "", d.HasAttachment())
		})
	}
}

func TestListBooksOrder(t *testing.T) {
	lb := model.New("Ada")
	for i, name := range []string{"zeta", "alpha", "mid"} {
		_, err := lb.SelectOrCreateBook(name, intro(""), t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}
	_, err := lb.OpenEntry(t0)
	require.NoError(t, err)

	got := lb.ListBooks()
	assert.Equal(t, []model.BookStatus{
		{Name: "zeta"},
		{Name: "alpha"},
		{Name: "mid", Current: true, Open: true},
	}, got)

	_, err = lb.Book("missing")
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

// TestRandomOperationsKeepInvariants drives random operation sequences and
// checks the labbook invariants after every step.
func TestRandomOperationsKeepInvariants(t *testing.T) {
	names := []string{"a", "b", "c"}
	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		lb := model.New("Ada")
		now := t0
		for step := 0; step < 200; step++ {
			now = now.Add(time.Millisecond)
			before := lb.Current
			switch rng.Intn(5) {
			case 0:
				name := names[rng.Intn(len(names))]
				_, err := lb.SelectOrCreateBook(name, intro(""), now)
				if errors.Is(err, model.ErrInvalidTransition) {
					require.Equal(t, before, lb.Current)
				}
			case 1:
				_, _ = lb.OpenEntry(now)
			case 2:
				_, _ = lb.CloseEntry()
			case 3:
				_, _ = lb.AppendDatum(note(t, "x"))
			case 4:
				_, _ = lb.AppendTag("t")
			}
			require.NoError(t, lb.Validate(), "seed %d step %d", seed, step)
			for _, b := range lb.Books {
				open := 0
				for _, e := range b.Entries {
					if e.Open {
						open++
					}
				}
				require.LessOrEqual(t, open, 1)
			}
		}
	}
}
