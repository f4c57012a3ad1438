package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type QuotesController struct {
	store QuoteStore
}

func NewQuotesController(store QuoteStore) *QuotesController {
	return &QuotesController{store: store}
}

// GET /api/quotes
func (qc *QuotesController) ListQuotes(c *gin.Context) {
	quotes, err := qc.store.List(c.Request.Context(), GetDeviceID(c))
	if err != nil {
		respondStoreError(c, err, "list quotes")
		return
	}
	c.JSON(http.StatusOK, quotes)
}

// GET /api/quotes/book/:id
func (qc *QuotesController) ListBookQuotes(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quotes, err := qc.store.ListForBook(c.Request.Context(), GetDeviceID(c), bookID)
	if err != nil {
		respondStoreError(c, err, "list book quotes")
		return
	}
	c.JSON(http.StatusOK, quotes)
}

// POST /api/quotes
func (qc *QuotesController) CreateQuote(c *gin.Context) {
	var input entities.QuoteInput
	if !bindJSON(c, &input) {
		return
	}

	quote, err := qc.store.Create(c.Request.Context(), GetDeviceID(c), input)
	if err != nil {
		respondStoreError(c, err, "create quote")
		return
	}
	respondCreated(c, quote)
}

// PUT /api/quotes/:quoteId
func (qc *QuotesController) UpdateQuote(c *gin.Context) {
	id, ok := parseIDParam(c, "quoteId")
	if !ok {
		return
	}

	var input entities.QuoteInput
	if !bindJSON(c, &input) {
		return
	}

	quote, err := qc.store.Update(c.Request.Context(), GetDeviceID(c), id, input)
	if err != nil {
		respondStoreError(c, err, "update quote")
		return
	}
	c.JSON(http.StatusOK, quote)
}

// DELETE /api/quotes/:quoteId
func (qc *QuotesController) DeleteQuote(c *gin.Context) {
	id, ok := parseIDParam(c, "quoteId")
	if !ok {
		return
	}

	if err := qc.store.Delete(c.Request.Context(), GetDeviceID(c), id); err != nil {
		respondStoreError(c, err, "delete quote")
		return
	}
	respondSuccess(c, "quote deleted")
}
