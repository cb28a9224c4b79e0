package kms

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// WaitForDevice returns the first card node in dir, blocking until udev creates
// one when none exists yet.
func WaitForDevice(ctx context.Context, dir string) (string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return "", fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch before globbing so a node created in between is not missed.
	if err := watcher.Add(dir); err != nil {
		return "", fmt.Errorf("watch %s: %w", dir, err)
	}

	if paths, err := CardNodes(dir); err == nil && len(paths) > 0 {
		return paths[0], nil
	}
	log.Info().Str("dir", dir).Msg("waiting for a DRM card node to appear")

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return "", fmt.Errorf("watcher closed")
			}
			if event.Op&fsnotify.Create == fsnotify.Create && isCardNode(event.Name) {
				log.Info().Str("path", event.Name).Msg("DRM card node appeared")
				return event.Name, nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return "", fmt.Errorf("watcher closed")
			}
			log.Warn().Err(err).Msg("device watcher error")
		}
	}
}

func isCardNode(path string) bool {
	base := filepath.Base(path)
	rest, ok := strings.CutPrefix(base, "card")
	if !ok || rest == "" {
		return false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
