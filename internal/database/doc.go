// Package database provides the data access layer for the library server.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, driver selection, migrations
//	├── books/           # Book write coordinator and book reads
//	├── shelves/         # Shelf CRUD
//	├── tags/            # Tag CRUD, find-or-create, orphan cleanup
//	├── quotes/          # Quotes, scoped through the owning book
//	├── devices/         # Device registration
//	└── reviews/         # Anonymous reviews keyed by title and author
//
// # Drivers
//
// DSNs starting with postgres:// or postgresql://, or containing host=,
// open PostgreSQL. Anything else is treated as a SQLite file path.
//
//	db, err := database.NewDatabase(database.Options{DSN: "./library.db"})
//
//	booksRepo := books.NewRepository(db.DB)
//	book, err := booksRepo.GetBook(ctx, deviceID, 123)
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the store interface the controller declares in internal/http
//  5. Add a compile-time check to internal/interfaces/checks.go
package database
