// Package books provides the book write coordinator and book read queries.
//
// Every write runs in a single transaction. A book's shelf and tag
// memberships are replaced wholesale on each write: the stored sets always
// equal the sets in the last successful payload, and readers never observe
// a half-applied relationship set.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.CreateBook(ctx, deviceID, entities.BookInput{
//	    Title:   "Dune",
//	    Shelves: []uint{shelfID},
//	    Tags:    []string{"#scifi"},
//	})
package books

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts a book with its shelf and tag memberships and returns
// the stored, denormalized record.
func (r *Repository) CreateBook(ctx context.Context, deviceID string, input entities.BookInput) (*entities.Book, error) {
	status, err := checkInput(&input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	book := newBook(deviceID, input)
	book.ReadingStatus = status
	book.DateAdded = &now

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(book).Error; err != nil {
			return fmt.Errorf("insert book: %w", err)
		}
		return replaceMemberships(ctx, tx, deviceID, book.ID, input.Shelves, input.Tags)
	})
	if err != nil {
		return nil, err
	}

	return r.GetBook(ctx, deviceID, book.ID)
}

// UpdateBook overwrites the book's fields and replaces its memberships with
// exactly the given shelves and tags. Empty lists clear the memberships.
func (r *Repository) UpdateBook(ctx context.Context, deviceID string, id uint, input entities.BookInput) (*entities.Book, error) {
	status, err := checkInput(&input)
	if err != nil {
		return nil, err
	}

	columns := bookColumns(input)
	columns["reading_status"] = status

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Book{}).
			Where("id = ? AND device_id = ?", id, deviceID).
			Updates(columns)
		if result.Error != nil {
			return fmt.Errorf("update book: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("book")
		}
		return replaceMemberships(ctx, tx, deviceID, id, input.Shelves, input.Tags)
	})
	if err != nil {
		return nil, err
	}

	return r.GetBook(ctx, deviceID, id)
}

// UpdateReview sets only the personal review fields present in patch.
func (r *Repository) UpdateReview(ctx context.Context, deviceID string, id uint, patch entities.ReviewPatch) (*entities.Book, error) {
	columns := map[string]any{}
	if patch.PersonalRating != nil {
		columns["personal_rating"] = *patch.PersonalRating
	}
	if patch.PersonalReview != nil {
		columns["personal_review"] = *patch.PersonalReview
	}
	if patch.ReadingStatus != nil {
		if !patch.ReadingStatus.Valid() {
			return nil, apperr.Validation("invalid reading_status %q", *patch.ReadingStatus)
		}
		columns["reading_status"] = *patch.ReadingStatus
	}
	if patch.ReadingNotes != nil {
		columns["reading_notes"] = *patch.ReadingNotes
	}

	if len(columns) == 0 {
		return r.GetBook(ctx, deviceID, id)
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Book{}).
		Where("id = ? AND device_id = ?", id, deviceID).
		Updates(columns)
	if result.Error != nil {
		return nil, fmt.Errorf("update review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("book")
	}
	return r.GetBook(ctx, deviceID, id)
}

// GetBook returns a device's book with its current shelves and tags.
func (r *Repository) GetBook(ctx context.Context, deviceID string, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).
		Where("id = ? AND device_id = ?", id, deviceID).
		Take(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("book")
	}
	if err != nil {
		return nil, err
	}

	books := []entities.Book{book}
	if err := attachRelations(ctx, r.db, books); err != nil {
		return nil, err
	}
	return &books[0], nil
}

// ListBooks returns the device's books, newest first.
func (r *Repository) ListBooks(ctx context.Context, deviceID string, filter entities.BookFilter) ([]entities.Book, error) {
	query := r.db.WithContext(ctx).Where("device_id = ?", deviceID)

	if filter.ShelfID != 0 {
		query = query.Where("id IN (?)",
			r.db.Model(&entities.BookShelf{}).Select("book_id").Where("shelf_id = ?", filter.ShelfID))
	}
	if filter.Tag != "" {
		query = query.Where("id IN (?)",
			r.db.Model(&entities.BookTag{}).
				Select("book_tags.book_id").
				Joins("JOIN tags ON tags.id = book_tags.tag_id").
				Where("tags.device_id = ? AND tags.name = ?", deviceID, filter.Tag))
	}
	if filter.Status != "" {
		query = query.Where("reading_status = ?", filter.Status)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where("(LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?))", pattern, pattern)
	}

	books := []entities.Book{}
	if err := query.Order("created_at DESC, id DESC").Find(&books).Error; err != nil {
		return nil, err
	}
	if err := attachRelations(ctx, r.db, books); err != nil {
		return nil, err
	}
	return books, nil
}

// DeleteBook removes a book together with its quotes and memberships.
func (r *Repository) DeleteBook(ctx context.Context, deviceID string, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		err := tx.Where("id = ? AND device_id = ?", id, deviceID).Take(&book).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("book")
		}
		if err != nil {
			return err
		}

		if err := tx.Where("book_id = ?", id).Delete(&entities.Quote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.BookShelf{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.BookTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&book).Error
	})
}

// checkInput trims the title in place and resolves the reading status.
func checkInput(in *entities.BookInput) (entities.ReadingStatus, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return "", apperr.Validation("title is required")
	}
	return readingStatus(in.ReadingStatus)
}

func readingStatus(s entities.ReadingStatus) (entities.ReadingStatus, error) {
	if s == "" {
		return entities.ReadingStatusToRead, nil
	}
	if !s.Valid() {
		return "", apperr.Validation("invalid reading_status %q", s)
	}
	return s, nil
}

func newBook(deviceID string, in entities.BookInput) *entities.Book {
	return &entities.Book{
		DeviceID:        deviceID,
		Title:           in.Title,
		Author:          in.Author,
		Series:          in.Series,
		Volume:          in.Volume,
		PublicationDate: in.PublicationDate,
		ISBN:            in.ISBN,
		Language:        in.Language,
		Pages:           in.Pages,
		Genre:           in.Genre,
		Description:     in.Description,
		CoverImageURL:   in.CoverImageURL,
		Rating:          in.Rating,
		PersonalRating:  in.PersonalRating,
		PersonalReview:  in.PersonalReview,
		ReadingNotes:    in.ReadingNotes,
		PagesRead:       in.PagesRead,
		DateStarted:     in.DateStarted,
		DateFinished:    in.DateFinished,
		DueDate:         in.DueDate,
		LendTo:          in.LendTo,
		BorrowFrom:      in.BorrowFrom,
	}
}

// bookColumns lists every mutable column so an update writes NULL for
// fields the payload leaves out.
func bookColumns(in entities.BookInput) map[string]any {
	return map[string]any{
		"title":            in.Title,
		"author":           in.Author,
		"series":           in.Series,
		"volume":           in.Volume,
		"publication_date": in.PublicationDate,
		"isbn":             in.ISBN,
		"language":         in.Language,
		"pages":            in.Pages,
		"genre":            in.Genre,
		"description":      in.Description,
		"cover_image_url":  in.CoverImageURL,
		"rating":           in.Rating,
		"personal_rating":  in.PersonalRating,
		"personal_review":  in.PersonalReview,
		"reading_notes":    in.ReadingNotes,
		"pages_read":       in.PagesRead,
		"date_started":     in.DateStarted,
		"date_finished":    in.DateFinished,
		"due_date":         in.DueDate,
		"lend_to":          in.LendTo,
		"borrow_from":      in.BorrowFrom,
	}
}
