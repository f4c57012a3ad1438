package devices

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDatabase(database.Options{
		DSN:      filepath.Join(t.TempDir(), "devices.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB)
}

func TestRepository_Register_Upserts(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	first, err := repo.Register(ctx, entities.Device{DeviceID: "device-a", Name: "Kitchen tablet", UserAgent: "curl/8"})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen tablet", first.Name)

	time.Sleep(10 * time.Millisecond)

	second, err := repo.Register(ctx, entities.Device{DeviceID: "device-a", UserAgent: "libraryctl"})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen tablet", second.Name)
	assert.Equal(t, "libraryctl", second.UserAgent)
	assert.True(t, second.LastAccessed.After(first.LastAccessed))
	assert.Equal(t, first.CreatedAt.UnixMilli(), second.CreatedAt.UnixMilli())
}

func TestRepository_Register_RequiresID(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Register(context.Background(), entities.Device{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
