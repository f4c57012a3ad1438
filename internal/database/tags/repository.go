// Package tags provides database operations for tag management.
//
// Tags are scoped to a device and unique by (device_id, name). Book writes
// create them implicitly through FindOrCreate; the tag endpoints manage them
// explicitly.
//
// # Usage
//
//	repo := tags.NewRepository(db)
//	tag, err := repo.FindOrCreate(ctx, deviceID, "#scifi")
package tags

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/normalize"
)

// Repository handles all tag database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tags repository. db may be a transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindOrCreate returns the device's tag called name, inserting it on a miss.
//
// Two writers racing on the same new name both reach the insert; the loser's
// insert is ignored by the unique index and it re-reads the winner's row.
func (r *Repository) FindOrCreate(ctx context.Context, deviceID, name string) (*entities.Tag, error) {
	db := r.db.WithContext(ctx)

	tag, err := r.findByName(db, deviceID, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := entities.Tag{DeviceID: deviceID, Name: name}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&created)
	if result.Error != nil && !database.IsUniqueViolation(result.Error) {
		return nil, fmt.Errorf("create tag %q: %w", name, result.Error)
	}
	if result.Error == nil && result.RowsAffected == 1 && created.ID != 0 {
		return &created, nil
	}

	return r.findByName(db, deviceID, name)
}

func (r *Repository) findByName(db *gorm.DB, deviceID, name string) (*entities.Tag, error) {
	var tag entities.Tag
	err := db.Where("device_id = ? AND name = ?", deviceID, name).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *Repository) withBookCount(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entities.Tag{}).
		Select("tags.*, COUNT(book_tags.book_id) AS book_count").
		Joins("LEFT JOIN book_tags ON book_tags.tag_id = tags.id").
		Group("tags.id")
}

// List returns the device's tags ordered by name.
func (r *Repository) List(ctx context.Context, deviceID string) ([]entities.Tag, error) {
	tags := []entities.Tag{}
	err := r.withBookCount(ctx).
		Where("tags.device_id = ?", deviceID).
		Order("tags.name ASC").
		Find(&tags).Error
	return tags, err
}

// Get returns a single tag owned by the device.
func (r *Repository) Get(ctx context.Context, deviceID string, id uint) (*entities.Tag, error) {
	var tag entities.Tag
	err := r.withBookCount(ctx).
		Where("tags.id = ? AND tags.device_id = ?", id, deviceID).
		Take(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("tag")
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Create adds a tag. Names are normalized to carry the '#' prefix.
func (r *Repository) Create(ctx context.Context, deviceID string, input entities.TagInput) (*entities.Tag, error) {
	name := normalize.TagName(input.Name)
	if name == "" {
		return nil, apperr.Validation("tag name is required")
	}

	tag := &entities.Tag{DeviceID: deviceID, Name: name}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.AlreadyExists("Tag name already exists").WithCause(err)
		}
		return nil, err
	}
	return tag, nil
}

// Update renames a tag.
func (r *Repository) Update(ctx context.Context, deviceID string, id uint, input entities.TagInput) (*entities.Tag, error) {
	name := normalize.TagName(input.Name)
	if name == "" {
		return nil, apperr.Validation("tag name is required")
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Tag{}).
		Where("id = ? AND device_id = ?", id, deviceID).
		Update("name", name)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return nil, apperr.AlreadyExists("Tag name already exists").WithCause(result.Error)
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("tag")
	}
	return r.Get(ctx, deviceID, id)
}

// Delete removes a tag and its book memberships. Books are untouched.
func (r *Repository) Delete(ctx context.Context, deviceID string, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag entities.Tag
		err := tx.Where("id = ? AND device_id = ?", id, deviceID).Take(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("tag")
		}
		if err != nil {
			return err
		}
		if err := tx.Where("tag_id = ?", id).Delete(&entities.BookTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
}

// DeleteOrphanTags removes tags no book refers to any more. An empty
// deviceID cleans up every device.
func (r *Repository) DeleteOrphanTags(ctx context.Context, deviceID string) (int64, error) {
	query := r.db.WithContext(ctx).
		Where("id NOT IN (?)", r.db.Model(&entities.BookTag{}).Select("tag_id"))
	if deviceID != "" {
		query = query.Where("device_id = ?", deviceID)
	}

	result := query.Delete(&entities.Tag{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
