package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/devices"
	"github.com/mrlokans/bookshelf/internal/database/quotes"
	"github.com/mrlokans/bookshelf/internal/database/reviews"
	"github.com/mrlokans/bookshelf/internal/database/shelves"
	"github.com/mrlokans/bookshelf/internal/database/tags"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/offline"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.BookStore = (*books.Repository)(nil)
var _ http.ShelfStore = (*shelves.Repository)(nil)
var _ http.TagStore = (*tags.Repository)(nil)
var _ http.QuoteStore = (*quotes.Repository)(nil)
var _ http.DeviceStore = (*devices.Repository)(nil)
var _ http.ReviewStore = (*reviews.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TagCleanupQueue = (*tasks.Client)(nil)
var _ http.Pinger = (*tasks.Client)(nil)
var _ tasks.OrphanTagsCleaner = (*tags.Repository)(nil)
var _ scheduler.TagCleanupEnqueuer = (*tasks.Client)(nil)
var _ scheduler.OrphanTagsCleaner = (*tags.Repository)(nil)

// =============================================================================
// Offline Client
// =============================================================================

var _ offline.API = (*offline.Client)(nil)
var _ offline.Prober = (*offline.Client)(nil)
var _ offline.Notifier = offline.LogNotifier{}
var _ offline.Notifier = offline.NopNotifier{}
var _ offline.Notifier = offline.ChanNotifier(nil)
