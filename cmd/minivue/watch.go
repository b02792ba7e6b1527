package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/delaneyj/minivue/internal/appconfig"
	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"
)

const defaultDebounce = 100 * time.Millisecond

var errNoDataFile = errors.New("watch needs a data file")

func watch(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if a.dataFile == "" {
		return errNoDataFile
	}
	document := cmd.Bool(documentKey)
	if err := a.print(stdout, document); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors often replace the file instead of writing it, so watch the
	// directory and filter by name.
	target, err := filepath.Abs(a.dataFile)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", a.dataFile, err)
	}
	a.log.WithField("file", target).Info("watching")

	debounce := cmd.Duration(debounceKey)
	var last time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if time.Since(last) < debounce {
				a.log.Debugf("debounced %s", event.Name)
				continue
			}
			last = time.Now()

			if err := a.reload(); err != nil {
				a.log.WithError(err).Warn("reload failed")
				continue
			}
			if err := a.print(stdout, document); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Errorf("watcher error: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}

// reload re-reads the data file and writes every proxied key through the
// view-model. Keys gone from the file fall back to the inline config data.
func (a *app) reload() error {
	data, err := appconfig.LoadData(a.dataFile)
	if err != nil {
		return err
	}
	keys := 0
	for _, key := range a.vm.Keys() {
		value, ok := data[key]
		if !ok {
			value = a.cfg.Data[key]
		}
		a.vm.Set(key, value)
		keys++
	}
	a.log.WithField("keys", keys).Info("reloaded")
	return nil
}
