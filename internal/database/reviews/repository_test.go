package reviews

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDatabase(database.Options{
		DSN:      filepath.Join(t.TempDir(), "reviews.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB)
}

func TestRepository_ForBook_AggregatesNormalizedTitles(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for _, in := range []entities.ReviewInput{
		{Title: "Dune", Author: "Frank Herbert", Rating: 5, ReviewText: "Classic."},
		{Title: "dune!", Author: "  frank   herbert", Rating: 4},
		{Title: "Dune Messiah", Author: "Frank Herbert", Rating: 2},
	} {
		_, err := repo.Create(ctx, in)
		require.NoError(t, err)
	}

	summary, err := repo.ForBook(ctx, "DUNE", "Frank Herbert.")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Len(t, summary.Reviews, 2)
	assert.InDelta(t, 4.5, summary.AverageRating, 0.001)

	empty, err := repo.ForBook(ctx, "Emma", "Jane Austen")
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.NotNil(t, empty.Reviews)
	assert.Zero(t, empty.AverageRating)
}

func TestRepository_Create_Validates(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, entities.ReviewInput{Title: " ", Rating: 3})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = repo.Create(ctx, entities.ReviewInput{Title: "Dune", Rating: 6})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRepository_List_NewestFirst(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for _, title := range []string{"Dune", "Emma", "Ulysses"} {
		_, err := repo.Create(ctx, entities.ReviewInput{Title: title, Rating: 3})
		require.NoError(t, err)
	}

	reviews, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Ulysses", reviews[0].Title)
	assert.Equal(t, "Emma", reviews[1].Title)
}
