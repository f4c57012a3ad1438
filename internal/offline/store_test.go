package offline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/bookshape"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func localBook(id uint, title string) bookshape.LocalBook {
	return bookshape.ToLocal(entities.Book{ID: id, DeviceID: "device-1", Title: title})
}

func titles(books []bookshape.LocalBook) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func TestStore_ReplaceSnapshot(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceSnapshot(ctx,
		[]bookshape.LocalBook{localBook(3, "C"), localBook(1, "A")},
		[]bookshape.LocalShelf{{ID: 2, Name: "Work"}, {ID: 1, Name: "Favorites"}},
	))

	books, err := store.Books(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, titles(books), "server order is kept")

	shelves, err := store.Shelves(ctx)
	require.NoError(t, err)
	require.Len(t, shelves, 2)
	assert.Equal(t, "Favorites", shelves[0].Name)

	names, err := store.ShelfNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{1: "Favorites", 2: "Work"}, names)

	require.NoError(t, store.ReplaceSnapshot(ctx, []bookshape.LocalBook{localBook(9, "Z")}, nil))
	books, err = store.Books(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Z"}, titles(books))
	shelves, err = store.Shelves(ctx)
	require.NoError(t, err)
	assert.Empty(t, shelves)
}

func TestStore_PutBook(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.ReplaceSnapshot(ctx, []bookshape.LocalBook{localBook(1, "A"), localBook(2, "B")}, nil))

	t.Run("replacing keeps the position", func(t *testing.T) {
		require.NoError(t, store.PutBook(ctx, "2", localBook(2, "B2")))
		books, err := store.Books(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B2"}, titles(books))
	})

	t.Run("new books list first", func(t *testing.T) {
		b := localBook(0, "Offline")
		b.LocalID = "local-1"
		require.NoError(t, store.PutBook(ctx, b.Key(), b))
		books, err := store.Books(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Offline", "A", "B2"}, titles(books))
	})

	t.Run("server id moves the entry", func(t *testing.T) {
		b := localBook(5, "Offline")
		b.LocalID = "local-1"
		require.NoError(t, store.PutBook(ctx, "local-1", b))

		_, err := store.Book(ctx, "local-1")
		assert.ErrorIs(t, err, ErrNotCached)
		got, err := store.Book(ctx, "5")
		require.NoError(t, err)
		assert.Equal(t, "local-1", got.LocalID)

		books, err := store.Books(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Offline", "A", "B2"}, titles(books))
	})
}

func TestStore_Queue(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first := &Mutation{Kind: KindCreateBook, Target: "book:local-1", LocalID: "local-1"}
	second := &Mutation{Kind: KindUpdateReview, Target: "book:4", State: StatePendingLocal}
	require.NoError(t, store.Enqueue(ctx, first))
	require.NoError(t, store.Enqueue(ctx, second))
	assert.Equal(t, StateQueuedOffline, first.State)
	assert.Less(t, first.ID, second.ID)

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, StatePendingLocal, pending[1].State)

	has, err := store.HasPendingFor(ctx, "book:4", "book:9")
	require.NoError(t, err)
	assert.True(t, has)
	has, err = store.HasPendingFor(ctx, "book:9")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.MarkFailed(ctx, first.ID, &APIError{StatusCode: 500}))
	require.NoError(t, store.MarkFailed(ctx, first.ID, &APIError{StatusCode: 502}))
	m, err := store.Mutation(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, StateReplayFailed, m.State)
	assert.Equal(t, 2, m.Attempts)
	assert.Equal(t, "server returned HTTP 502", m.LastError)

	require.NoError(t, store.MarkReplayed(ctx, first.ID))
	_, err = store.Mutation(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotQueued)

	require.NoError(t, store.Discard(ctx, second.ID))
	assert.ErrorIs(t, store.Discard(ctx, second.ID), ErrNotQueued)

	n, err := store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_Aliases(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, ok, err := store.ResolveAlias(ctx, "local-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetAlias(ctx, "local-1", 12))
	require.NoError(t, store.SetAlias(ctx, "local-2", 12))

	id, ok, err := store.ResolveAlias(ctx, "local-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)

	aliases, err := store.AliasesFor(ctx, 12)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"local-1", "local-2"}, aliases)
}

func TestStore_Settings(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	v, err := store.GetSetting(ctx, SettingDeviceID)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, store.SetSetting(ctx, SettingDeviceID, "a"))
	require.NoError(t, store.SetSetting(ctx, SettingDeviceID, "b"))

	v, err = store.GetSetting(ctx, SettingDeviceID)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}
