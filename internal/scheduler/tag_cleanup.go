package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// TagCleanupEnqueuer hands the cleanup to the background task queue.
type TagCleanupEnqueuer interface {
	EnqueueTagCleanup(deviceID string) (string, error)
}

// OrphanTagsCleaner removes orphan tags synchronously.
type OrphanTagsCleaner interface {
	DeleteOrphanTags(ctx context.Context, deviceID string) (int64, error)
}

// TagCleanupScheduler periodically removes tags no book uses any more, for
// every device. When a task queue is available the job only enqueues a
// task; otherwise it runs the cleanup inline.
type TagCleanupScheduler struct {
	schedule string
	queue    TagCleanupEnqueuer
	cleaner  OrphanTagsCleaner

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isCleaning bool
	cancelFunc context.CancelFunc
}

// NewTagCleanupScheduler creates a scheduler. queue may be nil, in which case
// cleaner is used directly.
func NewTagCleanupScheduler(schedule string, queue TagCleanupEnqueuer, cleaner OrphanTagsCleaner) *TagCleanupScheduler {
	return &TagCleanupScheduler{
		schedule: schedule,
		queue:    queue,
		cleaner:  cleaner,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start registers the cron job and starts the scheduler. It stops on its own
// when ctx is cancelled.
func (s *TagCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.queue == nil && s.cleaner == nil {
		return fmt.Errorf("tag cleanup scheduler: neither task queue nor cleaner configured")
	}
	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.RunNow)
	if err != nil {
		return fmt.Errorf("failed to schedule tag cleanup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule, time.Now())
	log.Printf("[SCHEDULER] Tag cleanup: started with schedule '%s' (%s). Next run: %v",
		s.schedule, CronDescription(s.schedule), nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops accepting new jobs and waits for a running job to complete.
func (s *TagCleanupScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	if cancel != nil {
		cancel()
	}
	log.Printf("[SCHEDULER] Tag cleanup: stopped")
}

// IsRunning returns whether the scheduler is active
func (s *TagCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the job fires next, or nil when stopped.
func (s *TagCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if entry.ID == 0 {
		return nil
	}
	return &entry.Next
}

// RunNow performs one cleanup pass. Overlapping runs are skipped.
func (s *TagCleanupScheduler) RunNow() {
	s.mu.Lock()
	if s.isCleaning {
		s.mu.Unlock()
		log.Printf("[SCHEDULER] Tag cleanup: skipped (already running)")
		return
	}
	s.isCleaning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isCleaning = false
		s.mu.Unlock()
	}()

	if s.queue != nil {
		id, err := s.queue.EnqueueTagCleanup("")
		if err != nil {
			log.Printf("[SCHEDULER] Tag cleanup: failed to enqueue: %v", err)
			return
		}
		log.Printf("[SCHEDULER] Tag cleanup: enqueued task %s", id)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.cleaner.DeleteOrphanTags(ctx, "")
	if err != nil {
		log.Printf("[SCHEDULER] Tag cleanup: failed: %v", err)
		return
	}
	log.Printf("[SCHEDULER] Tag cleanup: removed %d orphan tags", deleted)
}
