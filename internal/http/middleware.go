package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

const (
	// HeaderDeviceID carries the client-chosen device identity.
	HeaderDeviceID = "X-Device-ID"

	// ContextKeyDeviceID is the gin context key DeviceIDMiddleware sets.
	ContextKeyDeviceID = "device_id"
)

// DeviceIDMiddleware rejects requests without an X-Device-ID header and
// stores the id in the gin context.
func DeviceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := strings.TrimSpace(c.GetHeader(HeaderDeviceID))
		if deviceID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "X-Device-ID header is required"})
			return
		}
		c.Set(ContextKeyDeviceID, deviceID)
		c.Next()
	}
}

// GetDeviceID returns the device id set by DeviceIDMiddleware, or "".
func GetDeviceID(c *gin.Context) string {
	return c.GetString(ContextKeyDeviceID)
}

// CORSMiddleware adapts go-chi/cors to gin. Preflight requests are answered
// by the cors handler and never reach the route.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", HeaderDeviceID},
		AllowCredentials: false,
		MaxAge:           300,
	})

	return func(c *gin.Context) {
		handler := corsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		}))
		handler.ServeHTTP(c.Writer, c.Request)

		if c.Request.Method == http.MethodOptions && c.Request.Header.Get("Access-Control-Request-Method") != "" {
			c.Abort()
		}
	}
}

// SecurityHeadersMiddleware adds security headers suitable for a JSON API.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}
