package offline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/bookshape"
)

// ErrNotCached is returned when a book is not in the local snapshot.
var ErrNotCached = errors.New("book not in local cache")

// ErrNotQueued is returned for a mutation id that is not in the queue.
var ErrNotQueued = errors.New("mutation not queued")

// Store is the client's durable local state: the last book/shelf snapshot,
// the offline mutation queue, id aliases and client settings.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (or creates) the SQLite file at path and migrates it.
func OpenStore(path string) (*Store, error) {
	dsn := path
	if !strings.Contains(dsn, "_busy_timeout") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_busy_timeout=5000&_journal=WAL"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return NewStore(db)
}

// NewStore wraps an existing connection and migrates the local schema.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&CachedBook{}, &CachedShelf{}, &Mutation{}, &IDAlias{}, &ClientSetting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// -----------------------------------------------------------------------------
// Snapshot
// -----------------------------------------------------------------------------

// ReplaceSnapshot overwrites the cached books and shelves in one transaction.
func (s *Store) ReplaceSnapshot(ctx context.Context, books []bookshape.LocalBook, shelves []bookshape.LocalShelf) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CachedBook{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&CachedShelf{}).Error; err != nil {
			return err
		}

		if len(books) > 0 {
			rows := make([]CachedBook, 0, len(books))
			for i, b := range books {
				rows = append(rows, CachedBook{
					Key:      b.Key(),
					ServerID: b.ID,
					Position: i,
					Book:     datatypes.NewJSONType(b),
				})
			}
			if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
				return err
			}
		}

		if len(shelves) > 0 {
			rows := make([]CachedShelf, 0, len(shelves))
			for _, sh := range shelves {
				rows = append(rows, CachedShelf{
					ID:          sh.ID,
					Name:        sh.Name,
					Description: sh.Description,
					BookCount:   sh.BookCount,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Books returns the cached books in list order.
func (s *Store) Books(ctx context.Context) ([]bookshape.LocalBook, error) {
	var rows []CachedBook
	if err := s.db.WithContext(ctx).Order("position ASC, key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	books := make([]bookshape.LocalBook, 0, len(rows))
	for _, r := range rows {
		books = append(books, r.Book.Data())
	}
	return books, nil
}

// Book returns one cached book by key.
func (s *Store) Book(ctx context.Context, key string) (*bookshape.LocalBook, error) {
	var row CachedBook
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, err
	}
	b := row.Book.Data()
	return &b, nil
}

// PutBook stores b under key, replacing the entry cached under key and
// keeping its list position. When b.Key() differs from key (an offline
// book that now has a server id) the entry is moved to the new key.
func (s *Store) PutBook(ctx context.Context, key string, b bookshape.LocalBook) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		position, err := s.position(tx, key)
		if err != nil {
			return err
		}
		if key != b.Key() {
			if err := tx.Where("key = ?", key).Delete(&CachedBook{}).Error; err != nil {
				return err
			}
			// The server copy may already be cached from a snapshot
			if existing, err := s.position(tx, b.Key()); err != nil {
				return err
			} else if existing != nil {
				position = existing
			}
		}

		row := CachedBook{
			Key:      b.Key(),
			ServerID: b.ID,
			Book:     datatypes.NewJSONType(b),
		}
		if position != nil {
			row.Position = *position
		} else {
			var first struct{ Min *int }
			if err := tx.Model(&CachedBook{}).Select("MIN(position) AS min").Scan(&first).Error; err != nil {
				return err
			}
			if first.Min != nil {
				row.Position = *first.Min - 1
			}
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"server_id", "position", "payload", "updated_at"}),
		}).Create(&row).Error
	})
}

func (s *Store) position(tx *gorm.DB, key string) (*int, error) {
	var row CachedBook
	err := tx.Select("position").Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.Position, nil
}

// Shelves returns the cached shelves ordered by name.
func (s *Store) Shelves(ctx context.Context) ([]bookshape.LocalShelf, error) {
	var rows []CachedShelf
	if err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	shelves := make([]bookshape.LocalShelf, 0, len(rows))
	for _, r := range rows {
		shelves = append(shelves, bookshape.LocalShelf{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			BookCount:   r.BookCount,
		})
	}
	return shelves, nil
}

// ShelfNames maps cached shelf ids to names.
func (s *Store) ShelfNames(ctx context.Context) (map[uint]string, error) {
	shelves, err := s.Shelves(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(shelves))
	for _, sh := range shelves {
		names[sh.ID] = sh.Name
	}
	return names, nil
}

// -----------------------------------------------------------------------------
// Offline queue
// -----------------------------------------------------------------------------

// Enqueue appends m to the queue. m.ID is assigned.
func (s *Store) Enqueue(ctx context.Context, m *Mutation) error {
	if m.State == "" {
		m.State = StateQueuedOffline
	}
	return s.db.WithContext(ctx).Create(m).Error
}

// Pending returns every queued mutation in enqueue order.
func (s *Store) Pending(ctx context.Context) ([]Mutation, error) {
	var out []Mutation
	err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// PendingCount returns the queue length.
func (s *Store) PendingCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Mutation{}).Count(&n).Error
	return n, err
}

// HasPendingFor reports whether any queued mutation targets one of targets.
func (s *Store) HasPendingFor(ctx context.Context, targets ...string) (bool, error) {
	if len(targets) == 0 {
		return false, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&Mutation{}).Where("target IN ?", targets).Count(&n).Error
	return n > 0, err
}

// Mutation returns one queued mutation.
func (s *Store) Mutation(ctx context.Context, id uint) (*Mutation, error) {
	var m Mutation
	err := s.db.WithContext(ctx).Take(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotQueued
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkReplayed removes a confirmed mutation from the queue.
func (s *Store) MarkReplayed(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&Mutation{}, id).Error
}

// MarkFailed keeps a mutation queued and records the failed attempt.
func (s *Store) MarkFailed(ctx context.Context, id uint, cause error) error {
	return s.db.WithContext(ctx).Model(&Mutation{}).Where("id = ?", id).Updates(map[string]any{
		"state":      StateReplayFailed,
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": cause.Error(),
		"updated_at": time.Now(),
	}).Error
}

// Discard drops a mutation without replaying it. It is the only way an
// entry leaves the queue without server confirmation.
func (s *Store) Discard(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Mutation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("mutation %d: %w", id, ErrNotQueued)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Id aliases
// -----------------------------------------------------------------------------

// SetAlias records that localID became serverID.
func (s *Store) SetAlias(ctx context.Context, localID string, serverID uint) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "local_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"server_id"}),
	}).Create(&IDAlias{LocalID: localID, ServerID: serverID}).Error
}

// ResolveAlias returns the server id for localID, if it has one.
func (s *Store) ResolveAlias(ctx context.Context, localID string) (uint, bool, error) {
	var alias IDAlias
	err := s.db.WithContext(ctx).Where("local_id = ?", localID).Take(&alias).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return alias.ServerID, true, nil
}

// AliasesFor returns the local ids that resolved to serverID.
func (s *Store) AliasesFor(ctx context.Context, serverID uint) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&IDAlias{}).Where("server_id = ?", serverID).Pluck("local_id", &ids).Error
	return ids, err
}

// -----------------------------------------------------------------------------
// Client settings
// -----------------------------------------------------------------------------

// GetSetting returns the value for key, or "" when unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var setting ClientSetting
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// SetSetting creates or updates a setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&ClientSetting{Key: key, Value: value}).Error
}
