// Package interfaces holds compile-time checks tying concrete types to the
// interfaces their consumers declare.
//
// # Interface Categories
//
// ## Data Access Interfaces (internal/http/stores.go)
//
//   - BookStore: book write coordinator plus book reads (internal/database/books)
//   - ShelfStore, TagStore, QuoteStore: per-device CRUD
//   - DeviceStore: device registration
//   - ReviewStore: anonymous reviews keyed by normalized title and author
//   - Pinger: database reachability for /health
//
// ## Background Work
//
//   - TagCleanupQueue / scheduler.TagCleanupEnqueuer: implemented by tasks.Client
//   - tasks.OrphanTagsCleaner / scheduler.OrphanTagsCleaner: implemented by tags.Repository
//
// ## Offline Client (internal/offline)
//
//   - API: the REST calls the offline library makes; implemented by offline.Client
//   - Notifier: user-facing notices when a change is queued or replay fails
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Declare the store interface next to its controller in internal/http
//
//  4. Add compile-time check to checks.go:
//
//     var _ http.SomeStore = (*somedomain.Repository)(nil)
package interfaces
