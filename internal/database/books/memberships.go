package books

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database/tags"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/normalize"
)

// replaceMemberships deletes every shelf and tag membership of the book and
// inserts the given sets. It always runs inside the caller's transaction,
// also when the sets are unchanged.
func replaceMemberships(ctx context.Context, tx *gorm.DB, deviceID string, bookID uint, shelfIDs []uint, tagNames []string) error {
	if err := tx.Where("book_id = ?", bookID).Delete(&entities.BookShelf{}).Error; err != nil {
		return fmt.Errorf("clear shelves: %w", err)
	}
	if err := tx.Where("book_id = ?", bookID).Delete(&entities.BookTag{}).Error; err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	if err := insertShelves(tx, deviceID, bookID, shelfIDs); err != nil {
		return err
	}
	return insertTags(ctx, tx, deviceID, bookID, tagNames)
}

func insertShelves(tx *gorm.DB, deviceID string, bookID uint, shelfIDs []uint) error {
	ids := uniqueIDs(shelfIDs)
	if len(ids) == 0 {
		return nil
	}

	var owned int64
	err := tx.Model(&entities.Shelf{}).
		Where("id IN ? AND device_id = ?", ids, deviceID).
		Count(&owned).Error
	if err != nil {
		return fmt.Errorf("check shelves: %w", err)
	}
	if owned != int64(len(ids)) {
		return apperr.Validation("unknown shelf id in shelves")
	}

	rows := make([]entities.BookShelf, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, entities.BookShelf{BookID: bookID, ShelfID: id})
	}
	err = tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("insert shelves: %w", err)
	}
	return nil
}

func insertTags(ctx context.Context, tx *gorm.DB, deviceID string, bookID uint, tagNames []string) error {
	names := normalize.TagNames(tagNames)
	if len(names) == 0 {
		return nil
	}

	repo := tags.NewRepository(tx)
	rows := make([]entities.BookTag, 0, len(names))
	for _, name := range names {
		tag, err := repo.FindOrCreate(ctx, deviceID, name)
		if err != nil {
			return fmt.Errorf("resolve tag %q: %w", name, err)
		}
		rows = append(rows, entities.BookTag{BookID: bookID, TagID: tag.ID})
	}

	err := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("insert tags: %w", err)
	}
	return nil
}

type shelfRow struct {
	BookID  uint
	ShelfID uint
	Name    string
}

type tagRow struct {
	BookID uint
	TagID  uint
	Name   string
}

// attachRelations fills Shelves (by shelf id) and Tags (by name) for books.
// Both are always non-nil.
func attachRelations(ctx context.Context, db *gorm.DB, books []entities.Book) error {
	if len(books) == 0 {
		return nil
	}

	ids := make([]uint, len(books))
	index := make(map[uint]int, len(books))
	for i := range books {
		ids[i] = books[i].ID
		index[books[i].ID] = i
		books[i].Shelves = []entities.ShelfRef{}
		books[i].Tags = []string{}
	}

	var shelves []shelfRow
	err := db.WithContext(ctx).
		Model(&entities.BookShelf{}).
		Select("book_shelves.book_id, shelves.id AS shelf_id, shelves.name").
		Joins("JOIN shelves ON shelves.id = book_shelves.shelf_id").
		Where("book_shelves.book_id IN ?", ids).
		Order("shelves.id ASC").
		Scan(&shelves).Error
	if err != nil {
		return fmt.Errorf("load shelves: %w", err)
	}
	for _, s := range shelves {
		b := &books[index[s.BookID]]
		b.Shelves = append(b.Shelves, entities.ShelfRef{ID: s.ShelfID, Name: s.Name})
	}

	var tagRows []tagRow
	err = db.WithContext(ctx).
		Model(&entities.BookTag{}).
		Select("book_tags.book_id, tags.id AS tag_id, tags.name").
		Joins("JOIN tags ON tags.id = book_tags.tag_id").
		Where("book_tags.book_id IN ?", ids).
		Order("tags.name ASC, tags.id ASC").
		Scan(&tagRows).Error
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	seen := make(map[[2]uint]struct{}, len(tagRows))
	for _, t := range tagRows {
		key := [2]uint{t.BookID, t.TagID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		b := &books[index[t.BookID]]
		b.Tags = append(b.Tags, t.Name)
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
