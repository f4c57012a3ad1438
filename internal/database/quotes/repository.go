// Package quotes provides database operations for book quotes.
//
// Quotes carry no device column; every operation is scoped through the
// owning book, which must belong to the requesting device.
package quotes

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all quote database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new quotes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ownedBooks(deviceID string) *gorm.DB {
	return r.db.Model(&entities.Book{}).Select("id").Where("device_id = ?", deviceID)
}

func (r *Repository) withBookTitle(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entities.Quote{}).
		Select("book_quotes.*, books.title AS book_title").
		Joins("JOIN books ON books.id = book_quotes.book_id")
}

// List returns every quote of the device, newest first.
func (r *Repository) List(ctx context.Context, deviceID string) ([]entities.Quote, error) {
	quotes := []entities.Quote{}
	err := r.withBookTitle(ctx).
		Where("books.device_id = ?", deviceID).
		Order("book_quotes.created_at DESC, book_quotes.id DESC").
		Find(&quotes).Error
	return quotes, err
}

// ListForBook returns a book's quotes in page order, unpaged quotes last.
func (r *Repository) ListForBook(ctx context.Context, deviceID string, bookID uint) ([]entities.Quote, error) {
	if err := r.ensureBook(ctx, deviceID, bookID); err != nil {
		return nil, err
	}

	quotes := []entities.Quote{}
	err := r.withBookTitle(ctx).
		Where("book_quotes.book_id = ?", bookID).
		Order("book_quotes.page_number IS NULL, book_quotes.page_number ASC, book_quotes.created_at ASC").
		Find(&quotes).Error
	return quotes, err
}

func (r *Repository) Get(ctx context.Context, deviceID string, id uint) (*entities.Quote, error) {
	var quote entities.Quote
	err := r.withBookTitle(ctx).
		Where("book_quotes.id = ? AND books.device_id = ?", id, deviceID).
		Take(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("quote")
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Create adds a quote to one of the device's books.
func (r *Repository) Create(ctx context.Context, deviceID string, input entities.QuoteInput) (*entities.Quote, error) {
	if input.BookID == 0 {
		return nil, apperr.Validation("book_id is required")
	}
	if err := r.ensureBook(ctx, deviceID, input.BookID); err != nil {
		return nil, err
	}

	quote := &entities.Quote{
		BookID:     input.BookID,
		Text:       input.Text,
		PageNumber: input.PageNumber,
		Chapter:    input.Chapter,
		Notes:      input.Notes,
		IsFavorite: input.IsFavorite,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(quote).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, deviceID, quote.ID)
}

// Update replaces a quote's content. The owning book cannot change.
func (r *Repository) Update(ctx context.Context, deviceID string, id uint, input entities.QuoteInput) (*entities.Quote, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Quote{}).
		Where("id = ? AND book_id IN (?)", id, r.ownedBooks(deviceID)).
		Updates(map[string]any{
			"text":        input.Text,
			"page_number": input.PageNumber,
			"chapter":     input.Chapter,
			"notes":       input.Notes,
			"is_favorite": input.IsFavorite,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("quote")
	}
	return r.Get(ctx, deviceID, id)
}

func (r *Repository) Delete(ctx context.Context, deviceID string, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND book_id IN (?)", id, r.ownedBooks(deviceID)).
		Delete(&entities.Quote{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("quote")
	}
	return nil
}

func (r *Repository) ensureBook(ctx context.Context, deviceID string, bookID uint) error {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Book{}).
		Where("id = ? AND device_id = ?", bookID, deviceID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("book")
	}
	return nil
}
