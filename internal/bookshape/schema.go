package bookshape

import (
	"sort"
	"strconv"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/normalize"
)

// Default describes the value a field takes when it is unset.
type Default string

const (
	DefaultServer    Default = "server-assigned"
	DefaultRequired  Default = "required"
	DefaultNull      Default = "null"
	DefaultEmptyList Default = "[]"
	DefaultToRead    Default = "to_read"
)

// Field maps one wire field to its local path.
type Field struct {
	Wire    string
	Local   string
	Default Default
}

// Schema lists every wire field of a book with its local path and default.
var Schema = []Field{
	{"id", "id", DefaultServer},
	{"device_id", "deviceId", DefaultServer},
	{"title", "title", DefaultRequired},
	{"author", "author", DefaultNull},
	{"series", "series", DefaultNull},
	{"volume", "volume", DefaultNull},
	{"publication_date", "publicationDate", DefaultNull},
	{"isbn", "isbn", DefaultNull},
	{"language", "language", DefaultNull},
	{"pages", "pages", DefaultNull},
	{"genre", "genre", DefaultNull},
	{"description", "description", DefaultNull},
	{"cover_image_url", "coverImageUrl", DefaultNull},
	{"rating", "rating", DefaultNull},
	{"personal_rating", "personalRating", DefaultNull},
	{"personal_review", "personalReview", DefaultNull},
	{"reading_status", "readingStatus", DefaultToRead},
	{"reading_notes", "readingNotes", DefaultNull},
	{"pages_read", "meta.pagesRead", DefaultNull},
	{"date_started", "meta.dateStarted", DefaultNull},
	{"date_finished", "meta.dateFinished", DefaultNull},
	{"due_date", "meta.dueDate", DefaultNull},
	{"lend_to", "meta.lendTo", DefaultNull},
	{"borrow_from", "meta.borrowFrom", DefaultNull},
	{"date_added", "meta.dateAdded", DefaultNull},
	{"shelves", "meta.shelves", DefaultEmptyList},
	{"tags", "meta.tags", DefaultEmptyList},
	{"created_at", "createdAt", DefaultServer},
	{"updated_at", "updatedAt", DefaultServer},
}

func status(s entities.ReadingStatus) entities.ReadingStatus {
	if s == "" {
		return entities.ReadingStatusToRead
	}
	return s
}

func shelves(in []entities.ShelfRef) []entities.ShelfRef {
	out := make([]entities.ShelfRef, len(in))
	copy(out, in)
	return out
}

func tags(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// normalizedTags mirrors what the server stores: prefixed, distinct, by name.
func normalizedTags(in []string) []string {
	out := normalize.TagNames(in)
	sort.Strings(out)
	return out
}

func sortShelves(refs []entities.ShelfRef) {
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
