// Package bookshape translates books between the wire representation served
// by the REST API (flat, snake_case) and the local representation kept by
// the offline client (camelCase, progress/logistics/relationships nested
// under meta).
//
// Every translation is pure. Optional scalars stay nil pointers in both
// directions (JSON null), relationship lists are never nil, and an empty
// reading status becomes to_read. Schema enumerates each field and its
// default.
package bookshape

import (
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// LocalBook is the client-side shape of a book.
type LocalBook struct {
	ID       uint   `json:"id"`
	LocalID  string `json:"localId,omitempty"`
	DeviceID string `json:"deviceId"`

	Title           string   `json:"title"`
	Author          *string  `json:"author"`
	Series          *string  `json:"series"`
	Volume          *int     `json:"volume"`
	PublicationDate *string  `json:"publicationDate"`
	ISBN            *string  `json:"isbn"`
	Language        *string  `json:"language"`
	Pages           *int     `json:"pages"`
	Genre           *string  `json:"genre"`
	Description     *string  `json:"description"`
	CoverImageURL   *string  `json:"coverImageUrl"`
	Rating          *float64 `json:"rating"`

	PersonalRating *int                   `json:"personalRating"`
	PersonalReview *string                `json:"personalReview"`
	ReadingStatus  entities.ReadingStatus `json:"readingStatus"`
	ReadingNotes   *string                `json:"readingNotes"`

	Meta BookMeta `json:"meta"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookMeta groups progress, logistics and relationship fields.
type BookMeta struct {
	PagesRead    *int    `json:"pagesRead"`
	DateStarted  *string `json:"dateStarted"`
	DateFinished *string `json:"dateFinished"`

	DueDate    *string    `json:"dueDate"`
	LendTo     *string    `json:"lendTo"`
	BorrowFrom *string    `json:"borrowFrom"`
	DateAdded  *time.Time `json:"dateAdded"`

	Shelves []entities.ShelfRef `json:"shelves"`
	Tags    []string            `json:"tags"`
}

// LocalShelf is the client-side shape of a shelf.
type LocalShelf struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	BookCount   int64   `json:"bookCount"`
}

// Key identifies a local book: the server id when known, the local id otherwise.
func (b LocalBook) Key() string {
	if b.ID != 0 {
		return idKey(b.ID)
	}
	return b.LocalID
}

// ToLocal converts a wire book into the local shape.
func ToLocal(b entities.Book) LocalBook {
	return LocalBook{
		ID:              b.ID,
		DeviceID:        b.DeviceID,
		Title:           b.Title,
		Author:          b.Author,
		Series:          b.Series,
		Volume:          b.Volume,
		PublicationDate: b.PublicationDate,
		ISBN:            b.ISBN,
		Language:        b.Language,
		Pages:           b.Pages,
		Genre:           b.Genre,
		Description:     b.Description,
		CoverImageURL:   b.CoverImageURL,
		Rating:          b.Rating,
		PersonalRating:  b.PersonalRating,
		PersonalReview:  b.PersonalReview,
		ReadingStatus:   status(b.ReadingStatus),
		ReadingNotes:    b.ReadingNotes,
		Meta: BookMeta{
			PagesRead:    b.PagesRead,
			DateStarted:  b.DateStarted,
			DateFinished: b.DateFinished,
			DueDate:      b.DueDate,
			LendTo:       b.LendTo,
			BorrowFrom:   b.BorrowFrom,
			DateAdded:    b.DateAdded,
			Shelves:      shelves(b.Shelves),
			Tags:         tags(b.Tags),
		},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ToWire converts a local book back into the wire shape. LocalID has no wire
// counterpart and is dropped.
func ToWire(b LocalBook) entities.Book {
	return entities.Book{
		ID:              b.ID,
		DeviceID:        b.DeviceID,
		Title:           b.Title,
		Author:          b.Author,
		Series:          b.Series,
		Volume:          b.Volume,
		PublicationDate: b.PublicationDate,
		ISBN:            b.ISBN,
		Language:        b.Language,
		Pages:           b.Pages,
		Genre:           b.Genre,
		Description:     b.Description,
		CoverImageURL:   b.CoverImageURL,
		Rating:          b.Rating,
		PersonalRating:  b.PersonalRating,
		PersonalReview:  b.PersonalReview,
		ReadingStatus:   status(b.ReadingStatus),
		ReadingNotes:    b.ReadingNotes,
		PagesRead:       b.Meta.PagesRead,
		DateStarted:     b.Meta.DateStarted,
		DateFinished:    b.Meta.DateFinished,
		DueDate:         b.Meta.DueDate,
		LendTo:          b.Meta.LendTo,
		BorrowFrom:      b.Meta.BorrowFrom,
		DateAdded:       b.Meta.DateAdded,
		Shelves:         shelves(b.Meta.Shelves),
		Tags:            tags(b.Meta.Tags),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// ToInput builds the create/update payload for a local book.
func ToInput(b LocalBook) entities.BookInput {
	shelfIDs := make([]uint, 0, len(b.Meta.Shelves))
	for _, s := range b.Meta.Shelves {
		shelfIDs = append(shelfIDs, s.ID)
	}
	return entities.BookInput{
		Title:           b.Title,
		Author:          b.Author,
		Series:          b.Series,
		Volume:          b.Volume,
		PublicationDate: b.PublicationDate,
		ISBN:            b.ISBN,
		Language:        b.Language,
		Pages:           b.Pages,
		Genre:           b.Genre,
		Description:     b.Description,
		CoverImageURL:   b.CoverImageURL,
		Rating:          b.Rating,
		PersonalRating:  b.PersonalRating,
		PersonalReview:  b.PersonalReview,
		ReadingStatus:   status(b.ReadingStatus),
		ReadingNotes:    b.ReadingNotes,
		PagesRead:       b.Meta.PagesRead,
		DateStarted:     b.Meta.DateStarted,
		DateFinished:    b.Meta.DateFinished,
		DueDate:         b.Meta.DueDate,
		LendTo:          b.Meta.LendTo,
		BorrowFrom:      b.Meta.BorrowFrom,
		Shelves:         shelfIDs,
		Tags:            tags(b.Meta.Tags),
	}
}

// FromInput builds the optimistic local copy of a book that only exists as a
// payload so far. Shelf names are resolved through names; unknown ids keep an
// empty name until the next load.
func FromInput(in entities.BookInput, deviceID string, names map[uint]string, now time.Time) LocalBook {
	refs := make([]entities.ShelfRef, 0, len(in.Shelves))
	seen := make(map[uint]bool, len(in.Shelves))
	for _, id := range in.Shelves {
		if seen[id] {
			continue
		}
		seen[id] = true
		refs = append(refs, entities.ShelfRef{ID: id, Name: names[id]})
	}
	sortShelves(refs)

	added := now
	return LocalBook{
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
		ReadingStatus:   status(in.ReadingStatus),
		ReadingNotes:    in.ReadingNotes,
		Meta: BookMeta{
			PagesRead:    in.PagesRead,
			DateStarted:  in.DateStarted,
			DateFinished: in.DateFinished,
			DueDate:      in.DueDate,
			LendTo:       in.LendTo,
			BorrowFrom:   in.BorrowFrom,
			DateAdded:    &added,
			Shelves:      refs,
			Tags:         normalizedTags(in.Tags),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyInput overwrites a local book with an update payload, keeping its
// identity, timestamps of creation and date added. Relationships are fully
// replaced, matching the server's update semantics.
func ApplyInput(b LocalBook, in entities.BookInput, names map[uint]string, now time.Time) LocalBook {
	next := FromInput(in, b.DeviceID, names, now)
	next.ID = b.ID
	next.LocalID = b.LocalID
	next.CreatedAt = b.CreatedAt
	next.Meta.DateAdded = b.Meta.DateAdded
	return next
}

// ApplyReview applies a partial personal review update.
func ApplyReview(b LocalBook, p entities.ReviewPatch, now time.Time) LocalBook {
	if p.PersonalRating != nil {
		b.PersonalRating = p.PersonalRating
	}
	if p.PersonalReview != nil {
		b.PersonalReview = p.PersonalReview
	}
	if p.ReadingStatus != nil {
		b.ReadingStatus = status(*p.ReadingStatus)
	}
	if p.ReadingNotes != nil {
		b.ReadingNotes = p.ReadingNotes
	}
	b.UpdatedAt = now
	return b
}

// ToLocalShelf converts a wire shelf into the local shape.
func ToLocalShelf(s entities.Shelf) LocalShelf {
	return LocalShelf{ID: s.ID, Name: s.Name, Description: s.Description, BookCount: s.BookCount}
}

// ToWireShelf converts a local shelf back into the wire shape.
func ToWireShelf(s LocalShelf) entities.Shelf {
	return entities.Shelf{ID: s.ID, Name: s.Name, Description: s.Description, BookCount: s.BookCount}
}
