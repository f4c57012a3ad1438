package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// ReviewsController serves anonymous public reviews. These routes do not
// use the device id.
type ReviewsController struct {
	store ReviewStore
}

func NewReviewsController(store ReviewStore) *ReviewsController {
	return &ReviewsController{store: store}
}

// GET /api/reviews?limit=
func (rc *ReviewsController) ListReviews(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondBadRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	reviews, err := rc.store.List(c.Request.Context(), limit)
	if err != nil {
		respondStoreError(c, err, "list reviews")
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// BookReviews aggregates reviews for a normalized title and author.
// GET /api/reviews/book?title=&author=
func (rc *ReviewsController) BookReviews(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		respondBadRequest(c, "title is required")
		return
	}

	summary, err := rc.store.ForBook(c.Request.Context(), title, c.Query("author"))
	if err != nil {
		respondStoreError(c, err, "book reviews")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// POST /api/reviews
func (rc *ReviewsController) CreateReview(c *gin.Context) {
	var input entities.ReviewInput
	if !bindJSON(c, &input) {
		return
	}

	review, err := rc.store.Create(c.Request.Context(), input)
	if err != nil {
		respondStoreError(c, err, "create review")
		return
	}
	respondCreated(c, review)
}
