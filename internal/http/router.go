package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	if len(cfg.CORSOrigins) > 0 {
		router.Use(CORSMiddleware(cfg.CORSOrigins))
	}

	health := NewHealthController(cfg.Version,
		Dependency{Name: "database", Pinger: cfg.Database},
		Dependency{Name: "task_queue", Pinger: cfg.TaskQueue},
	)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Device registration is the only call allowed without X-Device-ID.
	devices := NewDevicesController(cfg.Devices)
	api.POST("/devices", devices.RegisterDevice)

	// Anonymous reviews are public.
	reviews := NewReviewsController(cfg.Reviews)
	api.GET("/reviews", reviews.ListReviews)
	api.GET("/reviews/book", reviews.BookReviews)
	api.POST("/reviews", reviews.CreateReview)

	scoped := api.Group("", DeviceIDMiddleware())

	books := NewBooksController(cfg.Books)
	scoped.GET("/books", books.ListBooks)
	scoped.POST("/books", books.CreateBook)
	scoped.GET("/books/:id", books.GetBook)
	scoped.PUT("/books/:id", books.UpdateBook)
	scoped.DELETE("/books/:id", books.DeleteBook)
	scoped.PATCH("/books/:id/review", books.UpdateReview)

	shelves := NewShelvesController(cfg.Shelves)
	scoped.GET("/shelves", shelves.ListShelves)
	scoped.POST("/shelves", shelves.CreateShelf)
	scoped.GET("/shelves/:id", shelves.GetShelf)
	scoped.PUT("/shelves/:id", shelves.UpdateShelf)
	scoped.DELETE("/shelves/:id", shelves.DeleteShelf)

	tags := NewTagsController(cfg.Tags, cfg.TagCleanup)
	scoped.GET("/tags", tags.GetAllTags)
	scoped.POST("/tags", tags.CreateTag)
	scoped.POST("/tags/cleanup", tags.CleanupOrphanTags)
	scoped.GET("/tags/:id", tags.GetTag)
	scoped.PUT("/tags/:id", tags.UpdateTag)
	scoped.DELETE("/tags/:id", tags.DeleteTag)

	quotes := NewQuotesController(cfg.Quotes)
	scoped.GET("/quotes", quotes.ListQuotes)
	scoped.GET("/quotes/book/:id", quotes.ListBookQuotes)
	scoped.POST("/quotes", quotes.CreateQuote)
	scoped.PUT("/quotes/:quoteId", quotes.UpdateQuote)
	scoped.DELETE("/quotes/:quoteId", quotes.DeleteQuote)

	return router
}
