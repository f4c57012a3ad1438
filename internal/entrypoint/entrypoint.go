package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/devices"
	"github.com/mrlokans/bookshelf/internal/database/quotes"
	"github.com/mrlokans/bookshelf/internal/database/reviews"
	"github.com/mrlokans/bookshelf/internal/database/shelves"
	"github.com/mrlokans/bookshelf/internal/database/tags"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// OpenDatabase connects using the DATABASE_URL / DB_* settings.
func OpenDatabase(cfg *config.Config) (*database.Database, error) {
	return database.NewDatabase(database.Options{
		DSN:             cfg.Database.URL,
		LogLevel:        cfg.Database.LogLevel,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	})
}

func tasksDBPath(cfg *config.Config) string {
	if cfg.Tasks.DBPath != "" {
		return cfg.Tasks.DBPath
	}
	return tasks.DefaultDBPath(cfg.Database.URL, database.IsPostgresDSN(cfg.Database.URL))
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting bookshelf v%s", version)

	db, err := OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	tagRepo := tags.NewRepository(db.DB)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(tasksDBPath(cfg), taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewCleanupOrphanTagsQueue(tagRepo))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	} else {
		log.Printf("Task queue disabled: POST /api/tags/cleanup will return 503")
	}

	var cleanupScheduler *scheduler.TagCleanupScheduler
	if cfg.TagCleanup.Enabled {
		var queue scheduler.TagCleanupEnqueuer
		if taskClient != nil {
			queue = taskClient
		}
		cleanupScheduler = scheduler.NewTagCleanupScheduler(cfg.TagCleanup.Schedule, queue, tagRepo)
		if err := cleanupScheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: tag cleanup scheduler not started: %v", err)
			cleanupScheduler = nil
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Books:       books.NewRepository(db.DB),
		Shelves:     shelves.NewRepository(db.DB),
		Tags:        tagRepo,
		Quotes:      quotes.NewRepository(db.DB),
		Devices:     devices.NewRepository(db.DB),
		Reviews:     reviews.NewRepository(db.DB),
		Database:    db,
		CORSOrigins: cfg.CORS.Origins,
		Version:     version,
	}
	if taskClient != nil {
		routerCfg.TagCleanup = taskClient
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// CleanupTags removes orphan tags once and exits. An empty deviceID cleans
// every device.
func CleanupTags(ctx context.Context, cfg *config.Config, deviceID string) (int64, error) {
	db, err := OpenDatabase(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return tags.NewRepository(db.DB).DeleteOrphanTags(ctx, deviceID)
}
