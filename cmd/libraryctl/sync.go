package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrlokans/bookshelf/internal/offline"
)

var registerCmd = &cobra.Command{
	Use:   "register [name]",
	Short: "Register this device with the server",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		device, err := s.client.RegisterDevice(ctx, name)
		if err != nil {
			fail("registering device: %v", err)
		}
		if err := saveRegistration(ctx, s.store, name, device.LastAccessed); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		fmt.Printf("Registered device %s\n", device.DeviceID)
	},
}

// saveRegistration records the registered name and time in the local cache.
func saveRegistration(ctx context.Context, store *offline.Store, name string, at time.Time) error {
	if name != "" {
		if err := store.SetSetting(ctx, offline.SettingDeviceName, name); err != nil {
			return fmt.Errorf("saving device name: %w", err)
		}
	}
	if err := store.SetSetting(ctx, offline.SettingRegisteredAt, at.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("saving registration time: %w", err)
	}
	return nil
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued changes in order",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		if !s.conn.Online() {
			fail("server unreachable, nothing sent")
		}
		start := time.Now()
		report, err := s.library.Sync(ctx)
		if err != nil {
			fail("sync: %v", err)
		}
		fmt.Printf("Sync complete in %v\n", time.Since(start).Round(time.Millisecond))
		fmt.Printf("   Replayed: %d\n", report.Replayed)
		fmt.Printf("   Failed: %d\n", report.Failed)
		fmt.Printf("   Still queued: %d\n", report.Remaining)
		if report.Failed > 0 {
			os.Exit(1)
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Probe the server and replay the queue whenever it comes back",
	Run: func(cmd *cobra.Command, args []string) {
		interval, _ := cmd.Flags().GetDuration("interval")

		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		unsubscribe := s.conn.Subscribe(func(online bool) {
			if online {
				fmt.Fprintln(os.Stderr, "Server reachable")
			} else {
				fmt.Fprintln(os.Stderr, "Server unreachable")
			}
		})
		defer unsubscribe()

		if s.conn.Online() {
			if _, err := s.library.Sync(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error: initial sync: %v\n", err)
			}
		}

		go s.conn.Watch(ctx, s.client, interval)
		fmt.Fprintf(os.Stderr, "Watching %s every %v (Ctrl+C to stop)\n", viper.GetString("server_url"), interval)
		if err := s.library.Run(ctx); err != nil {
			fail("%v", err)
		}
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show changes waiting to be sent",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		queue, err := s.library.Queue(ctx)
		if err != nil {
			fail("reading queue: %v", err)
		}
		if len(queue) == 0 {
			fmt.Println("Nothing queued")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tTARGET\tSTATE\tATTEMPTS\tQUEUED\tLAST ERROR")
		for _, m := range queue {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
				m.ID, m.Kind, m.Target, m.State, m.Attempts,
				m.CreatedAt.Local().Format("2006-01-02 15:04"), m.LastError)
		}
		w.Flush()
	},
}

var queueDiscardCmd = &cobra.Command{
	Use:   "discard <id>",
	Short: "Drop a queued change without sending it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])

		ctx, cancel := commandContext()
		defer cancel()
		s := openSession(ctx)
		defer s.Close()

		if err := s.library.Discard(ctx, id); err != nil {
			fail("discarding #%d: %v", id, err)
		}
		fmt.Printf("Discarded #%d\n", id)
	},
}

func init() {
	watchCmd.Flags().Duration("interval", 30*time.Second, "Probe interval")

	queueCmd.AddCommand(queueDiscardCmd)
	rootCmd.AddCommand(registerCmd, syncCmd, watchCmd, queueCmd)
}
