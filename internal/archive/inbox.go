package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/ideaservice"
	"github.com/starford/jotter/internal/vault"
)

const debounce = 200 * time.Millisecond

// Inbox imports Markdown files dropped into a directory on behalf of one
// owner. Imported files are removed; files that fail validation are moved
// to the failed/ subdirectory.
type Inbox struct {
	archiver *Archiver
	vault    *vault.FS
	owner    string
	logger   *slog.Logger

	// onImport is called after each file is handled; nil in production.
	onImport func(path string, err error)
}

// NewInbox creates an inbox over dir, creating the directory if needed.
func NewInbox(ideas *ideaservice.Service, dir, owner string, logger *slog.Logger) (*Inbox, error) {
	v, err := vault.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("archive: inbox: %w", err)
	}
	a := New(ideas, v, logger)
	return &Inbox{archiver: a, vault: v, owner: owner, logger: a.logger}, nil
}

// Root returns the inbox directory.
func (in *Inbox) Root() string { return in.vault.Root() }

// Drain imports every Markdown file currently in the inbox and returns how
// many were imported.
func (in *Inbox) Drain(ctx context.Context) (int, error) {
	entries, err := in.vault.List("")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if in.process(ctx, e.Path) {
			n++
		}
	}
	return n, nil
}

// Watch drains the inbox, then imports new files as they appear until ctx
// is cancelled. Events are debounced so a file is read once its writer is
// done with it.
func (in *Inbox) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := in.vault.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	if _, err := in.Drain(ctx); err != nil {
		in.logger.Warn("inbox: initial drain failed", slog.String("error", err.Error()))
	}
	in.logger.Info("inbox: watching", slog.String("dir", root))

	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			in.logger.Info("inbox: stopped")
			return nil

		case <-fire:
			for rel := range pending {
				delete(pending, rel)
				in.process(ctx, rel)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
				if in.skipped(ev.Name) {
					continue
				}
				if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
					in.logger.Warn("inbox: add dir failed",
						slog.String("path", ev.Name),
						slog.String("error", addErr.Error()))
				}
				if qErr := queueDir(in.vault, ev.Name, pending); qErr != nil {
					in.logger.Warn("inbox: scan dir failed",
						slog.String("path", ev.Name),
						slog.String("error", qErr.Error()))
				}
				schedule()
				continue
			}
			if !vault.IsMarkdown(ev.Name) || in.skipped(ev.Name) {
				continue
			}
			rel, relErr := in.vault.Rel(ev.Name)
			if relErr != nil {
				continue
			}
			pending[rel] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox: watch error", slog.String("error", watchErr.Error()))
		}
	}
}

// process imports one file and reports whether an idea was created.
func (in *Inbox) process(ctx context.Context, rel string) bool {
	if strings.HasPrefix(rel, failedDir+"/") {
		return false
	}
	info, err := os.Stat(filepath.Join(in.vault.Root(), filepath.FromSlash(rel)))
	if err != nil || info.Size() == 0 {
		// Gone already, or still being created.
		return false
	}

	d, err := in.archiver.Import(ctx, in.owner, rel)
	if in.onImport != nil {
		defer in.onImport(rel, err)
	}
	switch {
	case err == nil:
		if delErr := in.vault.Delete(rel); delErr != nil {
			in.logger.Warn("inbox: remove failed", slog.String("path", rel), slog.String("error", delErr.Error()))
		}
		in.logger.Info("inbox: imported", slog.String("path", rel), slog.String("id", d.ID))
		return true
	case errors.Is(err, apperr.ErrInvalid):
		target := path.Join(failedDir, rel)
		if mvErr := in.vault.Move(rel, target); mvErr != nil {
			in.logger.Warn("inbox: quarantine failed", slog.String("path", rel), slog.String("error", mvErr.Error()))
		}
		in.logger.Warn("inbox: rejected", slog.String("path", rel), slog.String("error", err.Error()))
	default:
		in.logger.Error("inbox: import failed", slog.String("path", rel), slog.String("error", err.Error()))
	}
	return false
}

func (in *Inbox) skipped(abs string) bool {
	rel, err := in.vault.Rel(abs)
	return err != nil || rel == failedDir || strings.HasPrefix(rel, failedDir+"/")
}

// queueDir adds every Markdown file under dir to pending. Unreadable
// entries are skipped and reported together in the returned error.
func queueDir(v *vault.FS, dir string, pending map[string]struct{}) error {
	var errs []error
	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			if d != nil && d.IsDir() && p != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !vault.IsMarkdown(p) {
			return nil
		}
		rel, relErr := v.Rel(p)
		if relErr != nil {
			errs = append(errs, relErr)
			return nil
		}
		pending[rel] = struct{}{}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	return errors.Join(errs...)
}

// addDirsRecursive adds root and all its subdirectories except failed/.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p == filepath.Join(root, failedDir) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
