package http

import (
	"context"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Implementations live in internal/database/<domain>; compile-time checks
// are in internal/interfaces.

// BookStore is the book write coordinator plus book reads.
type BookStore interface {
	CreateBook(ctx context.Context, deviceID string, input entities.BookInput) (*entities.Book, error)
	UpdateBook(ctx context.Context, deviceID string, id uint, input entities.BookInput) (*entities.Book, error)
	UpdateReview(ctx context.Context, deviceID string, id uint, patch entities.ReviewPatch) (*entities.Book, error)
	GetBook(ctx context.Context, deviceID string, id uint) (*entities.Book, error)
	ListBooks(ctx context.Context, deviceID string, filter entities.BookFilter) ([]entities.Book, error)
	DeleteBook(ctx context.Context, deviceID string, id uint) error
}

type ShelfStore interface {
	List(ctx context.Context, deviceID string) ([]entities.Shelf, error)
	Get(ctx context.Context, deviceID string, id uint) (*entities.Shelf, error)
	Create(ctx context.Context, deviceID string, input entities.ShelfInput) (*entities.Shelf, error)
	Update(ctx context.Context, deviceID string, id uint, input entities.ShelfInput) (*entities.Shelf, error)
	Delete(ctx context.Context, deviceID string, id uint) error
}

type TagStore interface {
	List(ctx context.Context, deviceID string) ([]entities.Tag, error)
	Get(ctx context.Context, deviceID string, id uint) (*entities.Tag, error)
	Create(ctx context.Context, deviceID string, input entities.TagInput) (*entities.Tag, error)
	Update(ctx context.Context, deviceID string, id uint, input entities.TagInput) (*entities.Tag, error)
	Delete(ctx context.Context, deviceID string, id uint) error
}

type QuoteStore interface {
	List(ctx context.Context, deviceID string) ([]entities.Quote, error)
	ListForBook(ctx context.Context, deviceID string, bookID uint) ([]entities.Quote, error)
	Create(ctx context.Context, deviceID string, input entities.QuoteInput) (*entities.Quote, error)
	Update(ctx context.Context, deviceID string, id uint, input entities.QuoteInput) (*entities.Quote, error)
	Delete(ctx context.Context, deviceID string, id uint) error
}

type DeviceStore interface {
	Register(ctx context.Context, device entities.Device) (*entities.Device, error)
}

type ReviewStore interface {
	List(ctx context.Context, limit int) ([]entities.Review, error)
	ForBook(ctx context.Context, title, author string) (*entities.ReviewSummary, error)
	Create(ctx context.Context, input entities.ReviewInput) (*entities.Review, error)
}

// TagCleanupQueue schedules orphan tag cleanup in the background.
type TagCleanupQueue interface {
	EnqueueTagCleanup(deviceID string) (string, error)
}
