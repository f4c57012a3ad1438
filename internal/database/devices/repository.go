// Package devices provides database operations for device registration.
package devices

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Register upserts the device and refreshes last_accessed. Name and user
// agent are only overwritten when given.
func (r *Repository) Register(ctx context.Context, device entities.Device) (*entities.Device, error) {
	if device.DeviceID == "" {
		return nil, apperr.Validation("device_id is required")
	}

	now := time.Now()
	device.CreatedAt = now
	device.LastAccessed = now

	updates := []string{"last_accessed"}
	if device.Name != "" {
		updates = append(updates, "name")
	}
	if device.UserAgent != "" {
		updates = append(updates, "user_agent")
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(&device).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, device.DeviceID)
}

func (r *Repository) Get(ctx context.Context, deviceID string) (*entities.Device, error) {
	var device entities.Device
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Take(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("device")
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}
