// Command libraryctl is an offline-first client for the bookshelf server.
// Changes made while the server is unreachable are kept in a local SQLite
// cache and replayed by "libraryctl sync" or "libraryctl watch".
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrlokans/bookshelf/internal/offline"
)

// Version information - set at build time via ldflags
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "libraryctl",
	Short: "Offline-first client for a bookshelf server",
	Long: `libraryctl manages the books of one device on a bookshelf server.

Every command works against a local cache. When the server cannot be
reached, changes are applied to the cache and queued; they are sent in
their original order on the next sync.

Settings can also be given as environment variables:
  LIBRARY_SERVER_URL   server base URL (default http://localhost:8080)
  LIBRARY_DEVICE_ID    device id (generated and stored on first use)
  LIBRARY_CACHE_PATH   local cache file (default ~/.libraryctl/cache.db)`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("server", "http://localhost:8080", "Server base URL")
	flags.String("device", "", "Device id (default: stored or generated)")
	flags.String("cache", defaultCachePath(), "Local cache file")
	flags.Duration("timeout", 15*time.Second, "Request timeout")

	viper.SetEnvPrefix("LIBRARY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("server_url", flags.Lookup("server"))
	_ = viper.BindPFlag("device_id", flags.Lookup("device"))
	_ = viper.BindPFlag("cache_path", flags.Lookup("cache"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("libraryctl %s\n", Version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "libraryctl-cache.db"
	}
	return filepath.Join(home, ".libraryctl", "cache.db")
}

// session bundles everything a command needs to talk to the library.
type session struct {
	store   *offline.Store
	client  *offline.Client
	conn    *offline.Connectivity
	library *offline.Library
}

// openSession opens the cache, resolves the device id and probes the server
// once so the connectivity flag starts out right.
func openSession(ctx context.Context) *session {
	cachePath := viper.GetString("cache_path")
	if dir := filepath.Dir(cachePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating cache directory: %v\n", err)
			os.Exit(1)
		}
	}

	store, err := offline.OpenStore(cachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
		os.Exit(1)
	}

	deviceID, err := resolveDeviceID(ctx, store, viper.GetString("device_id"))
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error resolving device id: %v\n", err)
		os.Exit(1)
	}

	serverURL := viper.GetString("server_url")
	if err := store.SetSetting(ctx, offline.SettingServerURL, serverURL); err != nil {
		log.Printf("Warning: could not record server URL: %v", err)
	}

	client := offline.NewClient(serverURL, deviceID,
		offline.WithUserAgent("libraryctl/"+Version),
		offline.WithHTTPClient(newHTTPClient(viper.GetDuration("timeout"))),
	)

	conn := offline.NewConnectivity(probe(ctx, client))
	logger := log.New(os.Stderr, "[SYNC] ", log.LstdFlags)
	library := offline.NewLibrary(client, store, conn, deviceID,
		offline.WithLogger(logger),
		offline.WithNotifier(offline.LogNotifier{Logger: logger}),
	)

	return &session{store: store, client: client, conn: conn, library: library}
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		log.Printf("Warning: closing cache: %v", err)
	}
}

// resolveDeviceID returns the configured id, the stored one, or a freshly
// generated id that is stored for next time.
func resolveDeviceID(ctx context.Context, store *offline.Store, configured string) (string, error) {
	if configured != "" {
		return configured, store.SetSetting(ctx, offline.SettingDeviceID, configured)
	}
	stored, err := store.GetSetting(ctx, offline.SettingDeviceID)
	if err != nil {
		return "", err
	}
	if stored != "" {
		return stored, nil
	}
	generated := uuid.NewString()
	return generated, store.SetSetting(ctx, offline.SettingDeviceID, generated)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func probe(ctx context.Context, client *offline.Client) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	err := client.Health(ctx)
	return err == nil || !offline.IsConnectivityError(err)
}

// commandContext returns a context cancelled on SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
