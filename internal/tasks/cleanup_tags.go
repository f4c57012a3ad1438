package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

const cleanupOrphanTagsQueue = "cleanup_orphan_tags"

// OrphanTagsCleaner deletes tags that no book references.
type OrphanTagsCleaner interface {
	DeleteOrphanTags(ctx context.Context, deviceID string) (int64, error)
}

// CleanupOrphanTagsTask sweeps tags left without books after full-replacement
// updates dropped their last membership. An empty DeviceID sweeps every device.
type CleanupOrphanTagsTask struct {
	DeviceID string `json:"device_id,omitempty"`
}

// Config runs each sweep once: a failed sweep is simply repeated by the next
// schedule tick or manual request. Only failures are kept, for a day.
func (CleanupOrphanTagsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        cleanupOrphanTagsQueue,
		MaxAttempts: 1,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupOrphanTagsProcessor deletes the orphan tags of task.DeviceID.
func CleanupOrphanTagsProcessor(cleaner OrphanTagsCleaner) backlite.QueueProcessor[CleanupOrphanTagsTask] {
	return func(ctx context.Context, task CleanupOrphanTagsTask) error {
		if cleaner == nil {
			return errors.New("no orphan tag cleaner registered")
		}

		removed, err := cleaner.DeleteOrphanTags(ctx, task.DeviceID)
		if err != nil {
			return fmt.Errorf("cleanup orphan tags for %s: %w", scopeName(task.DeviceID), err)
		}
		log.Printf("[TASK] Removed %d orphan tags for %s", removed, scopeName(task.DeviceID))
		return nil
	}
}

func NewCleanupOrphanTagsQueue(cleaner OrphanTagsCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupOrphanTagsProcessor(cleaner))
}

func scopeName(deviceID string) string {
	if deviceID == "" {
		return "all devices"
	}
	return "device " + deviceID
}
