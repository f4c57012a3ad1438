package http

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Stores
	Books   BookStore
	Shelves ShelfStore
	Tags    TagStore
	Quotes  QuoteStore
	Devices DeviceStore
	Reviews ReviewStore

	// Reachability checks for /health (optional)
	Database  Pinger
	TaskQueue Pinger

	// Task queue for orphan tag cleanup (optional)
	TagCleanup TagCleanupQueue

	// Allowed CORS origins; empty disables the CORS middleware
	CORSOrigins []string

	// Application info
	Version string
}
