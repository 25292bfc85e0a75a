package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration whenever the file at path is rewritten and
// hands each good reload to onChange. Of the reloaded settings only the rate
// limits and the auth credentials take effect live; http_port and the
// artifact paths need a restart, and the log line says so when they move.
//
// A rewrite that fails to parse or validate is swallowed: it is logged,
// onChange is not called, and the settings applied last stay in force.
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	// Baseline for change reporting. The server already loaded this file at
	// startup, so a failure here only degrades the "changed" log field.
	prev, _ := Load(path)

	slog.Info("config: hot reload armed", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, open := <-watcher.Events:
			if !open {
				return nil
			}
			// Atomic saves land as Create (rename over the old inode), plain
			// saves as Write. Chmod and rename-away are not reloads.
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			next, err := Load(path)
			if err != nil {
				slog.Error("config: rejected reload, last good settings stay active",
					"path", path, "err", err)
				continue
			}

			slog.Info("config: reloaded", "changed", changedSettings(prev, next))
			prev = next
			onChange(next)

			// An atomic save replaced the inode we were watching.
			_ = watcher.Add(path)

		case err, open := <-watcher.Errors:
			if !open {
				return nil
			}
			slog.Warn("config: watch error", "err", err)
		}
	}
}

// changedSettings names the settings that differ between two loaded configs,
// marking the ones a running server cannot apply. Returns ["unknown"] when
// there is no baseline to compare against and ["none"] for a no-op rewrite.
func changedSettings(prev, next *Config) []string {
	if prev == nil {
		return []string{"unknown"}
	}

	var changed []string
	p, n := prev.Server, next.Server
	if p.RateLimit != n.RateLimit {
		changed = append(changed, "rate_limit")
	}
	if p.Auth != n.Auth {
		changed = append(changed, "auth")
	}
	if p.HTTPPort != n.HTTPPort {
		changed = append(changed, "http_port (restart to apply)")
	}
	if p.Artifacts != n.Artifacts {
		changed = append(changed, "artifacts (restart to apply)")
	}
	if len(changed) == 0 {
		return []string{"none"}
	}
	return changed
}
