package entities

import "time"

type Shelf struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DeviceID    string    `gorm:"uniqueIndex:idx_shelves_device_name;size:128;not null" json:"device_id"`
	Name        string    `gorm:"uniqueIndex:idx_shelves_device_name;size:255;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	BookCount   int64     `gorm:"->;-:migration" json:"book_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Shelf) TableName() string {
	return "shelves"
}

// Tag names are conventionally prefixed with '#', see normalize.TagName.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DeviceID  string    `gorm:"uniqueIndex:idx_tags_device_name;size:128;not null" json:"device_id"`
	Name      string    `gorm:"uniqueIndex:idx_tags_device_name;size:100;not null" json:"name"`
	BookCount int64     `gorm:"->;-:migration" json:"book_count"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// Device is the opaque, client-chosen identity every other entity is scoped to.
type Device struct {
	DeviceID     string    `gorm:"primaryKey;size:128" json:"device_id"`
	Name         string    `gorm:"size:256" json:"name,omitempty"`
	UserAgent    string    `gorm:"size:500" json:"user_agent,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
}

func (Device) TableName() string {
	return "devices"
}

type Quote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookID     uint      `gorm:"index;not null" json:"book_id"`
	Book       Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	PageNumber *int      `json:"page_number"`
	Chapter    *string   `gorm:"size:256" json:"chapter"`
	Notes      *string   `gorm:"type:text" json:"notes"`
	IsFavorite bool      `gorm:"default:false" json:"is_favorite"`
	BookTitle  string    `gorm:"->;-:migration" json:"book_title,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Quote) TableName() string {
	return "book_quotes"
}

// QuoteInput is the create/update payload for quotes. BookID is only read on create.
type QuoteInput struct {
	BookID     uint    `json:"book_id"`
	Text       string  `json:"text" binding:"required"`
	PageNumber *int    `json:"page_number" binding:"omitempty,min=0"`
	Chapter    *string `json:"chapter"`
	Notes      *string `json:"notes"`
	IsFavorite bool    `json:"is_favorite"`
}

// Review is an anonymous public review. It is keyed by the normalized
// title and author of the book rather than by a catalog row.
type Review struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ReviewKey    string    `gorm:"index;size:800;not null" json:"-"`
	Title        string    `gorm:"size:512;not null" json:"title"`
	Author       string    `gorm:"size:256" json:"author"`
	Rating       int       `gorm:"not null" json:"rating"`
	ReviewText   string    `gorm:"type:text" json:"review_text"`
	ReviewerName string    `gorm:"size:100" json:"reviewer_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

type ReviewInput struct {
	Title        string `json:"title" binding:"required"`
	Author       string `json:"author"`
	Rating       int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewText   string `json:"review_text"`
	ReviewerName string `json:"reviewer_name"`
}

// ReviewSummary aggregates the reviews sharing one normalized title+author.
type ReviewSummary struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"averageRating"`
	Count         int      `json:"count"`
}

type ShelfInput struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
}

type TagInput struct {
	Name string `json:"name" binding:"required,max=100"`
}
