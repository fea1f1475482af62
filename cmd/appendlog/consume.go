package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/bft-labs/appendlog/internal/cliconfig"
	"github.com/bft-labs/appendlog/pkg/appendlog"
	"github.com/bft-labs/appendlog/pkg/log"
)

// newConsumeCommand polls the log and reports delivered frames.
func newConsumeCommand(cfg *cliconfig.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Poll committed frames from the log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsume(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&cfg.Wait, "wait", cfg.Wait, "wait for the log file to be created by a producer")
	return cmd
}

func runConsume(ctx context.Context, cfg *cliconfig.Config) error {
	logger := log.NewZerologLogger(cliconfig.Logger())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Wait {
		if err := waitForFile(ctx, cfg.Path); err != nil {
			return err
		}
	}

	alog, err := appendlog.New(appendlog.Config{
		Path:              cfg.Path,
		TermLength:        appendlog.TermLengthForSize(cfg.TermLength()),
		StreamID:          int32(cfg.StreamID),
		PollFragmentLimit: cfg.FragmentLimit,
		IdleMinSleep:      cfg.IdleMinSleep,
		IdleMaxSleep:      cfg.IdleMaxSleep,
	}, appendlog.WithLogger(logger))
	if err != nil {
		return err
	}
	defer alog.Close()

	var consumed, bytes atomic.Int64
	alog.OnAppend(func(payload []byte, _ appendlog.FrameInfo) {
		consumed.Add(1)
		bytes.Add(int64(len(payload)))
	})
	alog.OnError(func(err error) {
		logger.Error("poll error", log.Err(err))
	})

	if err := alog.StartPolling(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := alog.Stop(); err != nil {
				return err
			}
			fmt.Printf("consumed %d messages, %d bytes (subscriber position %d)\n",
				consumed.Load(), bytes.Load(), alog.SubscriberPosition())
			return nil
		case <-ticker.C:
			logger.Info("progress",
				log.Int64("messages", consumed.Load()),
				log.Int64("bytes", bytes.Load()),
				log.Int64("subscriber_position", alog.SubscriberPosition()),
				log.Int64("position", alog.Position()),
			)
		}
	}
}

// waitForFile blocks until path exists, watching its directory so a
// producer can create the log after the consumer starts.
func waitForFile(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// The file may have appeared between the stat and the watch.
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-watcher.Events:
			if event.Name == path && event.Op.Has(fsnotify.Create) {
				return nil
			}
		case err := <-watcher.Errors:
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
}
