package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type TagsController struct {
	store   TagStore
	cleanup TagCleanupQueue
}

// NewTagsController creates a tags controller. cleanup may be nil when the
// task queue is disabled.
func NewTagsController(store TagStore, cleanup TagCleanupQueue) *TagsController {
	return &TagsController{store: store, cleanup: cleanup}
}

// GetAllTags returns all tags for the current device
// GET /api/tags
func (tc *TagsController) GetAllTags(c *gin.Context) {
	tags, err := tc.store.List(c.Request.Context(), GetDeviceID(c))
	if err != nil {
		respondStoreError(c, err, "get all tags")
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GET /api/tags/:id
func (tc *TagsController) GetTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tag, err := tc.store.Get(c.Request.Context(), GetDeviceID(c), id)
	if err != nil {
		respondStoreError(c, err, "get tag")
		return
	}
	c.JSON(http.StatusOK, tag)
}

// CreateTag creates a new tag
// POST /api/tags
func (tc *TagsController) CreateTag(c *gin.Context) {
	var input entities.TagInput
	if !bindJSON(c, &input) {
		return
	}

	tag, err := tc.store.Create(c.Request.Context(), GetDeviceID(c), input)
	if err != nil {
		respondStoreError(c, err, "create tag")
		return
	}
	respondCreated(c, tag)
}

// UpdateTag renames a tag
// PUT /api/tags/:id
func (tc *TagsController) UpdateTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input entities.TagInput
	if !bindJSON(c, &input) {
		return
	}

	tag, err := tc.store.Update(c.Request.Context(), GetDeviceID(c), id, input)
	if err != nil {
		respondStoreError(c, err, "update tag")
		return
	}
	c.JSON(http.StatusOK, tag)
}

// DeleteTag removes a tag
// DELETE /api/tags/:id
func (tc *TagsController) DeleteTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := tc.store.Delete(c.Request.Context(), GetDeviceID(c), id); err != nil {
		respondStoreError(c, err, "delete tag")
		return
	}
	respondSuccess(c, "tag deleted")
}

// CleanupOrphanTags removes the device's tags that no book uses any more.
// Requires the task queue to be enabled.
// POST /api/tags/cleanup
func (tc *TagsController) CleanupOrphanTags(c *gin.Context) {
	if tc.cleanup == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is not enabled")
		return
	}

	id, err := tc.cleanup.EnqueueTagCleanup(GetDeviceID(c))
	if err != nil {
		respondInternalError(c, err, "enqueue cleanup task")
		return
	}
	log.Printf("Enqueued CleanupOrphanTagsTask with ID: %s", id)

	respondAccepted(c, "cleanup task started", gin.H{"task_id": id})
}
