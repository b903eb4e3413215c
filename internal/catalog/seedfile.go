package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"catatan/internal/core"
)

// SeedFile is a JSON category list overriding the built-in seeds. It can be
// watched and is reloaded when the file changes on disk.
type SeedFile struct {
	path string

	mu       sync.RWMutex
	cats     []core.Category
	onReload []func()
}

// LoadSeedFile reads and validates the file at path.
func LoadSeedFile(path string) (*SeedFile, error) {
	s := &SeedFile{path: path}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Categories implements Seeds
func (s *SeedFile) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.cats...)
}

// OnReload registers fn to run after each successful reload by Watch.
func (s *SeedFile) OnReload(fn func()) {
	s.mu.Lock()
	s.onReload = append(s.onReload, fn)
	s.mu.Unlock()
}

func (s *SeedFile) notifyReload() {
	s.mu.RLock()
	hooks := append([]func(){}, s.onReload...)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

func (s *SeedFile) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	cats, err := parseSeeds(data)
	if err != nil {
		return fmt.Errorf("parse seed file %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.cats = cats
	s.mu.Unlock()
	return nil
}

func parseSeeds(data []byte) ([]core.Category, error) {
	var cats []core.Category
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(cats))
	for i, c := range cats {
		if c.ID == "" {
			return nil, fmt.Errorf("category %d: empty id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("category %q: duplicate id", c.ID)
		}
		seen[c.ID] = struct{}{}
		if !c.Flow.Valid() {
			return nil, fmt.Errorf("category %q: %w", c.ID, core.ErrInvalidFlow)
		}
		if c.Label == "" {
			cats[i].Label = c.ID
		}
	}
	return cats, nil
}

// Watch reloads the file on change until ctx is cancelled. Events are
// debounced; a file that fails to parse keeps the previous list.
func (s *SeedFile) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are noticed.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	go func() {
		defer w.Close()
		var pending <-chan time.Time
		target := filepath.Clean(s.path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					pending = time.After(250 * time.Millisecond)
				}
			case <-pending:
				pending = nil
				if err := s.reload(); err != nil {
					slog.WarnContext(ctx, "Seed file reload failed, keeping previous categories", "error", err, "path", s.path)
					continue
				}
				slog.InfoContext(ctx, "Seed categories reloaded", "path", s.path, "count", len(s.Categories()))
				s.notifyReload()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Seed file watcher error", "error", err)
			}
		}
	}()
	return nil
}
