package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type ShelvesController struct {
	store ShelfStore
}

func NewShelvesController(store ShelfStore) *ShelvesController {
	return &ShelvesController{store: store}
}

// GET /api/shelves
func (sc *ShelvesController) ListShelves(c *gin.Context) {
	shelves, err := sc.store.List(c.Request.Context(), GetDeviceID(c))
	if err != nil {
		respondStoreError(c, err, "list shelves")
		return
	}
	c.JSON(http.StatusOK, shelves)
}

// GET /api/shelves/:id
func (sc *ShelvesController) GetShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shelf, err := sc.store.Get(c.Request.Context(), GetDeviceID(c), id)
	if err != nil {
		respondStoreError(c, err, "get shelf")
		return
	}
	c.JSON(http.StatusOK, shelf)
}

// POST /api/shelves
func (sc *ShelvesController) CreateShelf(c *gin.Context) {
	var input entities.ShelfInput
	if !bindJSON(c, &input) {
		return
	}

	shelf, err := sc.store.Create(c.Request.Context(), GetDeviceID(c), input)
	if err != nil {
		respondStoreError(c, err, "create shelf")
		return
	}
	respondCreated(c, shelf)
}

// PUT /api/shelves/:id
func (sc *ShelvesController) UpdateShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input entities.ShelfInput
	if !bindJSON(c, &input) {
		return
	}

	shelf, err := sc.store.Update(c.Request.Context(), GetDeviceID(c), id, input)
	if err != nil {
		respondStoreError(c, err, "update shelf")
		return
	}
	c.JSON(http.StatusOK, shelf)
}

// DeleteShelf removes the shelf and its memberships; books are kept.
// DELETE /api/shelves/:id
func (sc *ShelvesController) DeleteShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := sc.store.Delete(c.Request.Context(), GetDeviceID(c), id); err != nil {
		respondStoreError(c, err, "delete shelf")
		return
	}
	respondSuccess(c, "shelf deleted")
}
