package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/normalize"
)

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{store: store}
}

// ListBooks returns the device's books with shelves and tags.
// GET /api/books?shelf_id=&tag=&status=&q=
func (bc *BooksController) ListBooks(c *gin.Context) {
	shelfID, ok := parseOptionalQueryID(c, "shelf_id")
	if !ok {
		return
	}

	filter := entities.BookFilter{
		ShelfID: shelfID,
		Status:  entities.ReadingStatus(c.Query("status")),
		Query:   c.Query("q"),
	}
	if tag := c.Query("tag"); tag != "" {
		filter.Tag = normalize.TagName(tag)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		respondBadRequest(c, "invalid status")
		return
	}

	books, err := bc.store.ListBooks(c.Request.Context(), GetDeviceID(c), filter)
	if err != nil {
		respondStoreError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// GetBook returns a single book.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBook(c.Request.Context(), GetDeviceID(c), id)
	if err != nil {
		respondStoreError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBook stores a book with its shelf and tag memberships.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var input entities.BookInput
	if !bindJSON(c, &input) {
		return
	}

	book, err := bc.store.CreateBook(c.Request.Context(), GetDeviceID(c), input)
	if err != nil {
		respondStoreError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

// UpdateBook replaces a book's fields and memberships.
// PUT /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input entities.BookInput
	if !bindJSON(c, &input) {
		return
	}

	book, err := bc.store.UpdateBook(c.Request.Context(), GetDeviceID(c), id, input)
	if err != nil {
		respondStoreError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// UpdateReview changes only the personal review fields.
// PATCH /api/books/:id/review
func (bc *BooksController) UpdateReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var patch entities.ReviewPatch
	if !bindJSON(c, &patch) {
		return
	}

	book, err := bc.store.UpdateReview(c.Request.Context(), GetDeviceID(c), id, patch)
	if err != nil {
		respondStoreError(c, err, "update review")
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book with its quotes and memberships.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.DeleteBook(c.Request.Context(), GetDeviceID(c), id); err != nil {
		respondStoreError(c, err, "delete book")
		return
	}
	respondSuccess(c, "book deleted")
}
