// Package reviews stores anonymous public reviews.
//
// Reviews are grouped by normalize.ReviewKey(title, author), not by book id,
// so reviews written against different catalog entries of the same book
// aggregate together.
package reviews

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/normalize"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns the most recent reviews across all books.
func (r *Repository) List(ctx context.Context, limit int) ([]entities.Review, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	reviews := []entities.Review{}
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

// ForBook aggregates the reviews matching the normalized title and author.
func (r *Repository) ForBook(ctx context.Context, title, author string) (*entities.ReviewSummary, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Validation("title is required")
	}

	reviews := []entities.Review{}
	err := r.db.WithContext(ctx).
		Where("review_key = ?", normalize.ReviewKey(title, author)).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	summary := &entities.ReviewSummary{Reviews: reviews, Count: len(reviews)}
	if len(reviews) > 0 {
		total := 0
		for _, rv := range reviews {
			total += rv.Rating
		}
		summary.AverageRating = float64(total) / float64(len(reviews))
	}
	return summary, nil
}

func (r *Repository) Create(ctx context.Context, input entities.ReviewInput) (*entities.Review, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	review := &entities.Review{
		ReviewKey:    normalize.ReviewKey(title, input.Author),
		Title:        title,
		Author:       strings.TrimSpace(input.Author),
		Rating:       input.Rating,
		ReviewText:   input.ReviewText,
		ReviewerName: strings.TrimSpace(input.ReviewerName),
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}
