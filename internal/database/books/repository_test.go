package books

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

const deviceA = "device-a"

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	db, err := database.NewDatabase(database.Options{
		DSN:      filepath.Join(t.TempDir(), "books.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB), db.DB
}

func createShelf(t *testing.T, db *gorm.DB, deviceID, name string) entities.Shelf {
	t.Helper()
	shelf := entities.Shelf{DeviceID: deviceID, Name: name}
	require.NoError(t, db.Create(&shelf).Error)
	return shelf
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestRepository_CreateBook_ReturnsDenormalizedBook(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	s1 := createShelf(t, db, deviceA, "Favorites")

	book, err := repo.CreateBook(ctx, deviceA, entities.BookInput{
		Title:   "Dune",
		Author:  strPtr("Frank Herbert"),
		Shelves: []uint{s1.ID},
		Tags:    []string{"#scifi"},
	})

	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.Equal(t, deviceA, book.DeviceID)
	assert.Equal(t, entities.ReadingStatusToRead, book.ReadingStatus)
	assert.NotNil(t, book.DateAdded)
	assert.Equal(t, []entities.ShelfRef{{ID: s1.ID, Name: "Favorites"}}, book.Shelves)
	assert.Equal(t, []string{"#scifi"}, book.Tags)

	books, err := repo.ListBooks(ctx, deviceA, entities.BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, []string{"#scifi"}, books[0].Tags)
}

func TestRepository_CreateBook_NormalizesTags(t *testing.T) {
	repo, _ := setupTestDB(t)

	book, err := repo.CreateBook(context.Background(), deviceA, entities.BookInput{
		Title: "Dune",
		Tags:  []string{"scifi", "#scifi", " classic ", ""},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"#classic", "#scifi"}, book.Tags)
}

func TestRepository_UpdateBook_FullReplacement(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	s1 := createShelf(t, db, deviceA, "Favorites")

	book, err := repo.CreateBook(ctx, deviceA, entities.BookInput{
		Title:   "Dune",
		Shelves: []uint{s1.ID},
		Tags:    []string{"#scifi"},
	})
	require.NoError(t, err)

	updated, err := repo.UpdateBook(ctx, deviceA, book.ID, entities.BookInput{
		Title: "Dune",
		Tags:  []string{},
	})

	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
	assert.NotNil(t, updated.Tags)
	assert.Empty(t, updated.Shelves)
	assert.NotNil(t, updated.Shelves)

	var memberships int64
	require.NoError(t, db.Model(&entities.BookShelf{}).Where("book_id = ?", book.ID).Count(&memberships).Error)
	assert.Zero(t, memberships)
}

func TestRepository_UpdateBook_IsIdempotent(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	s1 := createShelf(t, db, deviceA, "Favorites")
	s2 := createShelf(t, db, deviceA, "Borrowed")

	book, err := repo.CreateBook(ctx, deviceA, entities.BookInput{Title: "Dune"})
	require.NoError(t, err)

	input := entities.BookInput{
		Title:   "Dune",
		Shelves: []uint{s2.ID, s1.ID, s2.ID},
		Tags:    []string{"#scifi", "#classic"},
	}
	first, err := repo.UpdateBook(ctx, deviceA, book.ID, input)
	require.NoError(t, err)
	second, err := repo.UpdateBook(ctx, deviceA, book.ID, input)
	require.NoError(t, err)

	assert.Equal(t, first.Shelves, second.Shelves)
	assert.Equal(t, first.Tags, second.Tags)
	assert.Equal(t, []entities.ShelfRef{{ID: s1.ID, Name: "Favorites"}, {ID: s2.ID, Name: "Borrowed"}}, second.Shelves)
	assert.Equal(t, []string{"#classic", "#scifi"}, second.Tags)
}

func TestRepository_UpdateBook_ReusesExistingTags(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	existing := entities.Tag{DeviceID: deviceA, Name: "#scifi"}
	require.NoError(t, db.Create(&existing).Error)

	first, err := repo.CreateBook(ctx, deviceA, entities.BookInput{Title: "Dune", Tags: []string{"#scifi"}})
	require.NoError(t, err)
	_, err = repo.CreateBook(ctx, deviceA, entities.BookInput{Title: "Hyperion", Tags: []string{"#scifi"}})
	require.NoError(t, err)
	_, err = repo.UpdateBook(ctx, deviceA, first.ID, entities.BookInput{Title: "Dune", Tags: []string{"#scifi"}})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&entities.Tag{}).Where("device_id = ? AND name = ?", deviceA, "#scifi").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var tagIDs []uint
	require.NoError(t, db.Model(&entities.BookTag{}).Distinct().Pluck("tag_id", &tagIDs).Error)
	assert.Equal(t, []uint{existing.ID}, tagIDs)
}

func TestRepository_UpdateBook_RollsBackOnInvalidShelf(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	s1 := createShelf(t, db, deviceA, "Favorites")
	foreign := createShelf(t, db, "device-b", "Theirs")

	book, err := repo.CreateBook(ctx, deviceA, entities.BookInput{
		Title:   "Dune",
		Shelves: []uint{s1.ID},
		Tags:    []string{"#scifi"},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		shelves []uint
	}{
		{"unknown shelf", []uint{s1.ID, 9999}},
		{"shelf of another device", []uint{foreign.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.UpdateBook(ctx, deviceA, book.ID, entities.BookInput{
				Title:   "Dune Messiah",
				Shelves: tt.shelves,
				Tags:    []string{"#sequel"},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrValidation)

			after, err := repo.GetBook(ctx, deviceA, book.ID)
			require.NoError(t, err)
			assert.Equal(t, "Dune", after.Title)
			assert.Equal(t, []entities.ShelfRef{{ID: s1.ID, Name: "Favorites"}}, after.Shelves)
			assert.Equal(t, []string{"#scifi"}, after.Tags)
		})
	}

	var sequel int64
	require.NoError(t, db.Model(&entities.Tag{}).Where("name = ?", "#sequel").Count(&sequel).Error)
	assert.Zero(t, sequel, "tags created inside a failed write must roll back")
}

func TestRepository_CreateBook_RollsBackOnInvalidShelf(t *testing.T) {
	repo, db := setupTestDB(t)

	_, err := repo.CreateBook(context.Background(), deviceA, entities.BookInput{
		Title:   "Dune",
		Shelves: []uint{42},
		Tags:    []string{"#scifi"},
	})
	require.Error(t, err)

	var books, tags int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&books).Error)
	require.NoError(t, db.Model(&entities.Tag{}).Count(&tags).Error)
	assert.Zero(t, books)
	assert.Zero(t, tags)
}

func TestRepository_UpdateBook_NotOwned(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	book, err := repo.CreateBook(ctx, deviceA, entities.BookInput{Title: "Dune"})
	require.NoError(t, err)

	_, err = repo.UpdateBook(ctx, "device-b", book.ID, entities.BookInput{Title: "Stolen"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = repo.GetBook(ctx, "device-b", book.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = repo.UpdateBook(ctx, deviceA, 9999, entities.BookInput{Title: "Missing"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepository_UpdateBook_ClearsOmittedFields(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	book, err := repo.CreateBook(ctx, deviceA, entities.BookInput{
		Title:     "Dune",
		Author:    strPtr("Frank Herbert"),
		Pages:     intPtr(412),
		PagesRead: intPtr(500),
	})
	require.NoError(t, err)
	require.NotNil(t, book.PagesRead)
	assert.Equal(t, 500, *book.PagesRead)

	updated, err := repo.UpdateBook(ctx, deviceA, book.ID, entities.BookInput{
		Title:         "Dune",
		ReadingStatus: entities.ReadingStatusFinished,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Author)
	assert.Nil(t, updated.Pages)
	assert.Equal(t, entities.ReadingStatusFinished, updated.ReadingStatus)
	assert.Equal(t, book.DateAdded.Unix(), updated.DateAdded.Unix())
}

func TestRepository_InvalidReadingStatus(t *testing.T) {
	repo, _ := setupTestDB(t)

	_, err := repo.CreateBook(context.Background(), deviceA, entities.BookInput{
		Title:         "Dune",
		ReadingStatus: "skimmed",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRepository_BlankTitle(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateBook(ctx, deviceA, entities.BookInput{Title: "   ", Tags: []string{"#x"}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	var count int64
	require.NoError(t, db.Model(&entities.Tag{}).Count(&count).Error)
	assert.Zero(t, count)

	book, err := repo.CreateBook(ctx, deviceA, entities.BookInput{Title: "  Dune  "})
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)

	_, err = repo.UpdateBook(ctx, deviceA, book.ID, entities.BookInput{Title: "\t"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	stored, err := repo.GetBook(ctx, deviceA, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", stored.Title)
}

func TestRepository_UpdateReview_OnlyTouchesGivenFields(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	book, err := repo.CreateBook(ctx, deviceA, entities.BookInput{
		Title:          "Dune",
		PersonalReview: strPtr("Spice!"),
		Tags:           []string{"#scifi"},
	})
	require.NoError(t, err)

	updated, err := repo.UpdateReview(ctx, deviceA, book.ID, entities.ReviewPatch{PersonalRating: intPtr(4)})

	require.NoError(t, err)
	require.NotNil(t, updated.PersonalRating)
	assert.Equal(t, 4, *updated.PersonalRating)
	require.NotNil(t, updated.PersonalReview)
	assert.Equal(t, "Spice!", *updated.PersonalReview)
	assert.Equal(t, []string{"#scifi"}, updated.Tags)

	_, err = repo.UpdateReview(ctx, "device-b", book.ID, entities.ReviewPatch{PersonalRating: intPtr(1)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepository_ClearingReviewNeedsFullUpdate(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	book, err := repo.CreateBook(ctx, deviceA, entities.BookInput{
		Title:          "Dune",
		PersonalRating: intPtr(5),
		PersonalReview: strPtr("Spice!"),
	})
	require.NoError(t, err)

	patched, err := repo.UpdateReview(ctx, deviceA, book.ID, entities.ReviewPatch{})
	require.NoError(t, err)
	require.NotNil(t, patched.PersonalRating)
	require.NotNil(t, patched.PersonalReview)

	cleared, err := repo.UpdateBook(ctx, deviceA, book.ID, entities.BookInput{Title: "Dune"})
	require.NoError(t, err)
	assert.Nil(t, cleared.PersonalRating)
	assert.Nil(t, cleared.PersonalReview)
}

func TestRepository_ListBooks_Filters(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	shelf := createShelf(t, db, deviceA, "Favorites")

	_, err := repo.CreateBook(ctx, deviceA, entities.BookInput{
		Title: "Dune", Author: strPtr("Frank Herbert"), Shelves: []uint{shelf.ID}, Tags: []string{"#scifi"},
	})
	require.NoError(t, err)
	_, err = repo.CreateBook(ctx, deviceA, entities.BookInput{
		Title: "Emma", Author: strPtr("Jane Austen"), ReadingStatus: entities.ReadingStatusFinished,
	})
	require.NoError(t, err)
	_, err = repo.CreateBook(ctx, "device-b", entities.BookInput{Title: "Dune"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter entities.BookFilter
		want   []string
	}{
		{"no filter", entities.BookFilter{}, []string{"Emma", "Dune"}},
		{"shelf", entities.BookFilter{ShelfID: shelf.ID}, []string{"Dune"}},
		{"tag", entities.BookFilter{Tag: "#scifi"}, []string{"Dune"}},
		{"status", entities.BookFilter{Status: entities.ReadingStatusFinished}, []string{"Emma"}},
		{"query matches author", entities.BookFilter{Query: "austen"}, []string{"Emma"}},
		{"query without match", entities.BookFilter{Query: "tolkien"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := repo.ListBooks(ctx, deviceA, tt.filter)
			require.NoError(t, err)
			titles := []string{}
			for _, b := range books {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestRepository_DeleteBook(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	shelf := createShelf(t, db, deviceA, "Favorites")

	book, err := repo.CreateBook(ctx, deviceA, entities.BookInput{
		Title: "Dune", Shelves: []uint{shelf.ID}, Tags: []string{"#scifi"},
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(&entities.Quote{BookID: book.ID, Text: "Fear is the mind-killer."}).Error)

	assert.ErrorIs(t, repo.DeleteBook(ctx, "device-b", book.ID), apperr.ErrNotFound)
	require.NoError(t, repo.DeleteBook(ctx, deviceA, book.ID))

	_, err = repo.GetBook(ctx, deviceA, book.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var quotes, shelfRows, tagRows, shelves int64
	db.Model(&entities.Quote{}).Count(&quotes)
	db.Model(&entities.BookShelf{}).Count(&shelfRows)
	db.Model(&entities.BookTag{}).Count(&tagRows)
	db.Model(&entities.Shelf{}).Count(&shelves)
	assert.Zero(t, quotes)
	assert.Zero(t, shelfRows)
	assert.Zero(t, tagRows)
	assert.Equal(t, int64(1), shelves, "deleting a book keeps its shelves")
}
