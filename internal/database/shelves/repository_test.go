package shelves

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := database.NewDatabase(database.Options{
		DSN:      filepath.Join(t.TempDir(), "shelves.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB), db.DB
}

func TestRepository_Create_NameUniquePerDevice(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, "device-a", entities.ShelfInput{Name: "Favorites"})
	require.NoError(t, err)

	b, err := repo.Create(ctx, "device-b", entities.ShelfInput{Name: "Favorites"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	_, err = repo.Create(ctx, "device-a", entities.ShelfInput{Name: "Favorites"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	// Case-sensitive as stored.
	_, err = repo.Create(ctx, "device-a", entities.ShelfInput{Name: "favorites"})
	assert.NoError(t, err)
}

func TestRepository_Create_RequiresName(t *testing.T) {
	repo, _ := setupTestDB(t)

	_, err := repo.Create(context.Background(), "device-a", entities.ShelfInput{Name: "   "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRepository_ListWithBookCount(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	desc := "to read next"
	queue, err := repo.Create(ctx, "device-a", entities.ShelfInput{Name: "Queue", Description: &desc})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "device-a", entities.ShelfInput{Name: "Archive"})
	require.NoError(t, err)

	for _, title := range []string{"Dune", "Emma"} {
		book := entities.Book{DeviceID: "device-a", Title: title}
		require.NoError(t, db.Create(&book).Error)
		require.NoError(t, db.Create(&entities.BookShelf{BookID: book.ID, ShelfID: queue.ID}).Error)
	}

	shelves, err := repo.List(ctx, "device-a")
	require.NoError(t, err)
	require.Len(t, shelves, 2)
	assert.Equal(t, "Archive", shelves[0].Name)
	assert.Equal(t, int64(0), shelves[0].BookCount)
	assert.Equal(t, "Queue", shelves[1].Name)
	assert.Equal(t, int64(2), shelves[1].BookCount)
	require.NotNil(t, shelves[1].Description)
	assert.Equal(t, "to read next", *shelves[1].Description)

	got, err := repo.Get(ctx, "device-a", queue.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.BookCount)

	_, err = repo.Get(ctx, "device-b", queue.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepository_Update(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	shelf, err := repo.Create(ctx, "device-a", entities.ShelfInput{Name: "Queue"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "device-a", entities.ShelfInput{Name: "Archive"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, "device-a", shelf.ID, entities.ShelfInput{Name: "Up Next"})
	require.NoError(t, err)
	assert.Equal(t, "Up Next", updated.Name)

	_, err = repo.Update(ctx, "device-a", shelf.ID, entities.ShelfInput{Name: "Archive"})
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	_, err = repo.Update(ctx, "device-b", shelf.ID, entities.ShelfInput{Name: "Mine"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepository_Delete_KeepsBooks(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	shelf, err := repo.Create(ctx, "device-a", entities.ShelfInput{Name: "Queue"})
	require.NoError(t, err)
	book := entities.Book{DeviceID: "device-a", Title: "Dune"}
	require.NoError(t, db.Create(&book).Error)
	require.NoError(t, db.Create(&entities.BookShelf{BookID: book.ID, ShelfID: shelf.ID}).Error)

	assert.ErrorIs(t, repo.Delete(ctx, "device-b", shelf.ID), apperr.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "device-a", shelf.ID))

	var memberships, books int64
	db.Model(&entities.BookShelf{}).Count(&memberships)
	db.Model(&entities.Book{}).Count(&books)
	assert.Zero(t, memberships)
	assert.Equal(t, int64(1), books)
}
