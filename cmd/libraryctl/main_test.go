package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/offline"
)

func openTestStore(t *testing.T) *offline.Store {
	t.Helper()
	store, err := offline.OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestResolveDeviceID(t *testing.T) {
	ctx := context.Background()

	t.Run("generates once and reuses", func(t *testing.T) {
		store := openTestStore(t)

		first, err := resolveDeviceID(ctx, store, "")
		require.NoError(t, err)
		assert.Len(t, first, 36)

		second, err := resolveDeviceID(ctx, store, "")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("configured id wins and is stored", func(t *testing.T) {
		store := openTestStore(t)

		id, err := resolveDeviceID(ctx, store, "laptop-1")
		require.NoError(t, err)
		assert.Equal(t, "laptop-1", id)

		stored, err := store.GetSetting(ctx, offline.SettingDeviceID)
		require.NoError(t, err)
		assert.Equal(t, "laptop-1", stored)
	})
}

func parseBookFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("update", pflag.ContinueOnError)
	addBookFlags(flags, true)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestApplyBookFlags_OnlyChangedFields(t *testing.T) {
	author := "Frank Herbert"
	in := entities.BookInput{
		Title:   "Dune",
		Author:  &author,
		Shelves: []uint{1},
		Tags:    []string{"#scifi"},
	}

	flags := parseBookFlags(t, "--rating", "5", "--tag", "#classic", "--tag", "#scifi", "--status", "finished")
	require.NoError(t, applyBookFlags(flags, &in))

	assert.Equal(t, "Dune", in.Title)
	assert.Equal(t, "Frank Herbert", *in.Author)
	assert.Equal(t, 5, *in.PersonalRating)
	assert.Equal(t, entities.ReadingStatusFinished, in.ReadingStatus)
	assert.Equal(t, []uint{1}, in.Shelves)
	assert.Equal(t, []string{"#classic", "#scifi"}, in.Tags)
}

func TestApplyBookFlags_Clear(t *testing.T) {
	in := entities.BookInput{Title: "Dune", Shelves: []uint{1, 2}, Tags: []string{"#scifi"}}

	flags := parseBookFlags(t, "--clear-shelves", "--clear-tags")
	require.NoError(t, applyBookFlags(flags, &in))

	assert.Empty(t, in.Shelves)
	assert.NotNil(t, in.Shelves)
	assert.Empty(t, in.Tags)
}

func TestApplyBookFlags_RejectsUnknownStatus(t *testing.T) {
	var in entities.BookInput
	flags := parseBookFlags(t, "--status", "someday")
	assert.Error(t, applyBookFlags(flags, &in))
}

func TestSaveRegistration(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	t.Run("stores name and time", func(t *testing.T) {
		store := openTestStore(t)
		require.NoError(t, saveRegistration(ctx, store, "kitchen tablet", at))

		name, err := store.GetSetting(ctx, offline.SettingDeviceName)
		require.NoError(t, err)
		assert.Equal(t, "kitchen tablet", name)

		registered, err := store.GetSetting(ctx, offline.SettingRegisteredAt)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-01T11:00:00Z", registered)
	})

	t.Run("reports store failures", func(t *testing.T) {
		store := openTestStore(t)
		require.NoError(t, store.Close())

		err := saveRegistration(ctx, store, "", at)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "saving registration time")
	})
}
