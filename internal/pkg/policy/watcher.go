package policy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a policy file into a Holder whenever it changes on disk.
type Watcher struct {
	path   string
	base   Policy
	holder *Holder
	logger *zap.Logger
}

// NewWatcher creates a watcher. base is the policy the file is merged onto on
// every reload, so removing a key from the file restores the base value.
func NewWatcher(path string, base Policy, holder *Holder, logger *zap.Logger) *Watcher {
	return &Watcher{
		path:   filepath.Clean(path),
		base:   base,
		holder: holder,
		logger: logger.With(zap.String("component", "policy-watcher"), zap.String("path", path)),
	}
}

// Reload reads the file and stores the result. On error the policy in force
// is kept.
func (w *Watcher) Reload() error {
	p, err := LoadFile(w.path, w.base)
	if err != nil {
		return err
	}
	if err = w.holder.Store(p); err != nil {
		return err
	}
	w.logger.Info("policy loaded",
		zap.Int("max_retries", p.MaxRetries),
		zap.Duration("heartbeat_staleness", p.StalenessWindow),
		zap.Duration("heartbeat_interval", p.HeartbeatInterval),
		zap.Int("missed_heartbeats", p.MissedHeartbeats),
		zap.Float64("min_battery", p.MinBattery),
		zap.Duration("dispatch_interval", p.DispatchInterval),
		zap.Int("dispatch_batch_size", p.BatchSize),
	)
	return nil
}

// Run watches the file's directory until ctx is done. Editors often replace
// files by rename, so the directory is watched rather than the file.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err = watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.Reload(); err != nil {
				w.logger.Warn("policy reload rejected, keeping previous policy", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("fsnotify error", zap.Error(err))
		}
	}
}
