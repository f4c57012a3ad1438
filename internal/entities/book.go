package entities

import "time"

type ReadingStatus string

const (
	ReadingStatusToRead           ReadingStatus = "to_read"
	ReadingStatusCurrentlyReading ReadingStatus = "currently_reading"
	ReadingStatusFinished         ReadingStatus = "finished"
	ReadingStatusAbandoned        ReadingStatus = "abandoned"
)

// Valid reports whether s is one of the known reading statuses.
func (s ReadingStatus) Valid() bool {
	switch s {
	case ReadingStatusToRead, ReadingStatusCurrentlyReading, ReadingStatusFinished, ReadingStatusAbandoned:
		return true
	}
	return false
}

// Book is a catalog entry owned by exactly one device.
//
// Shelves and Tags are not columns: they are recomputed from the membership
// tables every time a book is read.
type Book struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	DeviceID string `gorm:"index;size:128;not null" json:"device_id"`

	// Bibliographic
	Title           string   `gorm:"size:512;not null" json:"title"`
	Author          *string  `gorm:"size:256" json:"author"`
	Series          *string  `gorm:"size:256" json:"series"`
	Volume          *int     `json:"volume"`
	PublicationDate *string  `gorm:"size:32" json:"publication_date"`
	ISBN            *string  `gorm:"column:isbn;size:20" json:"isbn"`
	Language        *string  `gorm:"size:64" json:"language"`
	Pages           *int     `json:"pages"`
	Genre           *string  `gorm:"size:128" json:"genre"`
	Description     *string  `gorm:"type:text" json:"description"`
	CoverImageURL   *string  `gorm:"column:cover_image_url;size:2048" json:"cover_image_url"`
	Rating          *float64 `json:"rating"`

	// Personal
	PersonalRating *int          `json:"personal_rating"`
	PersonalReview *string       `gorm:"type:text" json:"personal_review"`
	ReadingStatus  ReadingStatus `gorm:"size:32;default:'to_read'" json:"reading_status"`
	ReadingNotes   *string       `gorm:"type:text" json:"reading_notes"`

	// Progress
	PagesRead    *int    `json:"pages_read"`
	DateStarted  *string `gorm:"size:32" json:"date_started"`
	DateFinished *string `gorm:"size:32" json:"date_finished"`

	// Logistics
	DueDate    *string    `gorm:"size:32" json:"due_date"`
	LendTo     *string    `gorm:"size:256" json:"lend_to"`
	BorrowFrom *string    `gorm:"size:256" json:"borrow_from"`
	DateAdded  *time.Time `json:"date_added"`

	Shelves []ShelfRef `gorm:"-" json:"shelves"`
	Tags    []string   `gorm:"-" json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// ShelfRef is the denormalized shelf membership attached to a book.
type ShelfRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// BookInput is the create/update payload accepted by the book endpoints.
// Shelves holds shelf ids and Tags holds tag names; both replace the
// book's current memberships entirely.
type BookInput struct {
	Title           string        `json:"title" binding:"required"`
	Author          *string       `json:"author"`
	Series          *string       `json:"series"`
	Volume          *int          `json:"volume"`
	PublicationDate *string       `json:"publication_date"`
	ISBN            *string       `json:"isbn"`
	Language        *string       `json:"language"`
	Pages           *int          `json:"pages" binding:"omitempty,min=0"`
	Genre           *string       `json:"genre"`
	Description     *string       `json:"description"`
	CoverImageURL   *string       `json:"cover_image_url"`
	Rating          *float64      `json:"rating" binding:"omitempty,min=0,max=5"`
	PersonalRating  *int          `json:"personal_rating" binding:"omitempty,min=1,max=5"`
	PersonalReview  *string       `json:"personal_review"`
	ReadingStatus   ReadingStatus `json:"reading_status"`
	ReadingNotes    *string       `json:"reading_notes"`
	PagesRead       *int          `json:"pages_read" binding:"omitempty,min=0"`
	DateStarted     *string       `json:"date_started"`
	DateFinished    *string       `json:"date_finished"`
	DueDate         *string       `json:"due_date"`
	LendTo          *string       `json:"lend_to"`
	BorrowFrom      *string       `json:"borrow_from"`

	Shelves []uint   `json:"shelves"`
	Tags    []string `json:"tags"`
}

// ReviewPatch carries the personal review fields of a book. Nil fields are
// left untouched, so a patch cannot reset personal_rating or personal_review
// to null; a full book update (PUT) is the way to clear them.
type ReviewPatch struct {
	PersonalRating *int           `json:"personal_rating" binding:"omitempty,min=1,max=5"`
	PersonalReview *string        `json:"personal_review"`
	ReadingStatus  *ReadingStatus `json:"reading_status"`
	ReadingNotes   *string        `json:"reading_notes"`
}

// BookFilter narrows ListBooks. Zero values mean "no filter".
type BookFilter struct {
	ShelfID uint
	Tag     string
	Status  ReadingStatus
	Query   string
}

// BookShelf is a membership row linking a book to a shelf.
type BookShelf struct {
	BookID    uint      `gorm:"primaryKey;autoIncrement:false"`
	ShelfID   uint      `gorm:"primaryKey;autoIncrement:false;index"`
	Book      Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	Shelf     Shelf     `gorm:"foreignKey:ShelfID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (BookShelf) TableName() string {
	return "book_shelves"
}

// BookTag is a membership row linking a book to a tag.
type BookTag struct {
	BookID    uint      `gorm:"primaryKey;autoIncrement:false"`
	TagID     uint      `gorm:"primaryKey;autoIncrement:false;index"`
	Book      Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	Tag       Tag       `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (BookTag) TableName() string {
	return "book_tags"
}
