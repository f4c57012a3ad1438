// Package shelves provides database operations for shelf management.
package shelves

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all shelf database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new shelves repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) withBookCount(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entities.Shelf{}).
		Select("shelves.*, COUNT(book_shelves.book_id) AS book_count").
		Joins("LEFT JOIN book_shelves ON book_shelves.shelf_id = shelves.id").
		Group("shelves.id")
}

// List returns the device's shelves ordered by name.
func (r *Repository) List(ctx context.Context, deviceID string) ([]entities.Shelf, error) {
	shelves := []entities.Shelf{}
	err := r.withBookCount(ctx).
		Where("shelves.device_id = ?", deviceID).
		Order("shelves.name ASC").
		Find(&shelves).Error
	return shelves, err
}

func (r *Repository) Get(ctx context.Context, deviceID string, id uint) (*entities.Shelf, error) {
	var shelf entities.Shelf
	err := r.withBookCount(ctx).
		Where("shelves.id = ? AND shelves.device_id = ?", id, deviceID).
		Take(&shelf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("shelf")
	}
	if err != nil {
		return nil, err
	}
	return &shelf, nil
}

// Create adds a shelf. Names are unique per device and compared as stored.
func (r *Repository) Create(ctx context.Context, deviceID string, input entities.ShelfInput) (*entities.Shelf, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("shelf name is required")
	}

	shelf := &entities.Shelf{
		DeviceID:    deviceID,
		Name:        name,
		Description: input.Description,
	}
	if err := r.db.WithContext(ctx).Create(shelf).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.AlreadyExists("Shelf name already exists").WithCause(err)
		}
		return nil, err
	}
	return shelf, nil
}

// Update replaces a shelf's name and description.
func (r *Repository) Update(ctx context.Context, deviceID string, id uint, input entities.ShelfInput) (*entities.Shelf, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("shelf name is required")
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Shelf{}).
		Where("id = ? AND device_id = ?", id, deviceID).
		Updates(map[string]any{
			"name":        name,
			"description": input.Description,
		})
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return nil, apperr.AlreadyExists("Shelf name already exists").WithCause(result.Error)
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("shelf")
	}
	return r.Get(ctx, deviceID, id)
}

// Delete removes a shelf and its memberships. The books stay in the library.
func (r *Repository) Delete(ctx context.Context, deviceID string, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shelf entities.Shelf
		err := tx.Where("id = ? AND device_id = ?", id, deviceID).Take(&shelf).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("shelf")
		}
		if err != nil {
			return err
		}
		if err := tx.Where("shelf_id = ?", id).Delete(&entities.BookShelf{}).Error; err != nil {
			return err
		}
		return tx.Delete(&shelf).Error
	})
}
