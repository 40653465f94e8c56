package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/kgview/pkg/debounce"
	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/pipeline"
)

// watch re-runs the transform whenever opts.File changes until ctx ends.
// Editors often save by rename, so the parent directory is watched and
// events are filtered by name. Bursts of events collapse into one run
// through a trailing debounce.
func (c *CLI) watch(ctx context.Context, out io.Writer, opts pipeline.Options, f transformFlags) error {
	logger := loggerFromContext(ctx)

	svc, err := c.newServices(ctx, f.noCache)
	if err != nil {
		return err
	}
	defer svc.close(ctx)

	target, err := filepath.Abs(opts.File)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", opts.File)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "start watcher")
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(target)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "watch %s", filepath.Dir(target))
	}

	runs := make(chan struct{}, 1)
	rerun := debounce.Func(func() {
		select {
		case runs <- struct{}{}:
		default:
		}
	}, c.Config.Watch.Debounce.Std(), false)

	run := func() {
		res, err := c.execute(ctx, svc.runner, opts)
		if err != nil {
			printError("%s", errors.UserMessage(err))
			return
		}
		if err := c.emit(out, res, f); err != nil {
			printError("%s", errors.UserMessage(err))
		}
	}

	run()
	printInfo("Watching %s (ctrl+c to stop)", opts.File)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, target) {
				continue
			}
			logger.Debug("file changed", "op", ev.Op.String(), "path", ev.Name)
			rerun()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		case <-runs:
			run()
		}
	}
}

// relevant reports whether ev touches target with a content change.
func relevant(ev fsnotify.Event, target string) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
