package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type DevicesController struct {
	store DeviceStore
}

func NewDevicesController(store DeviceStore) *DevicesController {
	return &DevicesController{store: store}
}

// RegisterDevice upserts the calling device and refreshes last_accessed.
// The id comes from the body, falling back to the X-Device-ID header.
// POST /api/devices
func (dc *DevicesController) RegisterDevice(c *gin.Context) {
	var req struct {
		DeviceID string `json:"device_id" binding:"omitempty,max=128"`
		Name     string `json:"name" binding:"omitempty,max=256"`
	}
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req) {
			return
		}
	}

	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		deviceID = strings.TrimSpace(c.GetHeader(HeaderDeviceID))
	}
	if deviceID == "" {
		respondBadRequest(c, "device_id is required")
		return
	}

	userAgent := c.Request.UserAgent()
	if len(userAgent) > 500 {
		userAgent = userAgent[:500]
	}

	device, err := dc.store.Register(c.Request.Context(), entities.Device{
		DeviceID:  deviceID,
		Name:      strings.TrimSpace(req.Name),
		UserAgent: userAgent,
	})
	if err != nil {
		respondStoreError(c, err, "register device")
		return
	}
	c.JSON(http.StatusOK, device)
}
