package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/modeler/internal/logger"
	"github.com/Faultbox/modeler/internal/project"
)

// cmdWatch prints a project summary now and after every change to the file
// until ctx is cancelled.
func cmdWatch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: watch <project>", errUsage)
	}
	log := logger.Named("watch")

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// Saves replace the file by renaming a temporary sibling over it, so
	// the directory is watched rather than the file.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	reload := func() {
		p, err := project.Load(path)
		if err != nil {
			log.Warn("reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		printSummary(os.Stdout, path, p)
		fmt.Println()
	}
	reload()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Debug("project changed", zap.String("op", ev.Op.String()))
			reload()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}
