package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/llkb/internal/analytics"
)

// watchDebounce coalesces bursts of file events into one roll-up run.
const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the analytics roll-up whenever the source stores change",
	Long: `watch observes lessons.json and components.json under the knowledge
root and recomputes analytics.json whenever either changes. The roll-up is
a pure recomputation, so re-running it on every change is always safe.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	svc, err := analytics.NewService(cfg.Root, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return fmt.Errorf("failed to create knowledge root: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to initialize filesystem watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the files: atomic replaces swap inodes.
	if err := watcher.Add(cfg.Root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Root, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("watching source stores", zap.String("root", cfg.Root))

	var timer *time.Timer
	var timerCh <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSourceStore(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("source store changed",
				zap.String("file", filepath.Base(event.Name)),
				zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerCh = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			if err := svc.Update(); err != nil {
				// Sources may be mid-rewrite; the next change retries.
				logger.Warn("analytics refresh failed", zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))

		case sig := <-sigCh:
			logger.Info("stopping watch", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// isSourceStore reports whether the path is one of the analytics source
// stores.
func isSourceStore(path string) bool {
	switch filepath.Base(path) {
	case "lessons.json", "components.json":
		return true
	}
	return false
}
