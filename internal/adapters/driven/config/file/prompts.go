package file

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed prompts
var builtin embed.FS

// PromptExt is the extension of template files in the prompt directory.
const PromptExt = ".txt"

// reloadDelay batches the burst of events an editor emits on save.
const reloadDelay = 100 * time.Millisecond

// PromptStore serves templates from a directory the user may edit.
// Missing, empty or unreadable files fall back to the built-in copy.
type PromptStore struct {
	dir string
	// seedErr is set when the directory could not be prepared. Only
	// built-in templates are served then.
	seedErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore opens dir, creating it and writing the built-in templates
// next to any the user already has. An empty dir means ~/.daylog/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".daylog", "prompts")
	}

	s := &PromptStore{dir: dir, cache: map[string]string{}}
	if err := seed(dir); err != nil {
		s.seedErr = err
		logger.Warn("prompts: %v; using built-in templates", err)
	}
	return s, nil
}

// seed copies every built-in file that dir lacks.
func seed(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	entries, err := builtin.ReadDir("prompts")
	if err != nil {
		return err
	}
	for _, e := range entries {
		target := filepath.Join(dir, e.Name())
		if _, err := os.Stat(target); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		data, err := builtin.ReadFile(path.Join("prompts", e.Name()))
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Builtin returns the template shipped for name.
func Builtin(name string) (string, bool) {
	data, err := builtin.ReadFile(path.Join("prompts", name+PromptExt))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// Load returns the user's template for name, or the built-in one.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.RLock()
	text, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	text, err := s.read(name)
	if err != nil {
		fallback, ok := Builtin(name)
		if !ok {
			return "", fmt.Errorf("load prompt %q: %w", name, err)
		}
		// Not cached: a file created later is picked up without a reload.
		return fallback, nil
	}

	s.mu.Lock()
	s.cache[name] = text
	s.mu.Unlock()
	return text, nil
}

func (s *PromptStore) read(name string) (string, error) {
	if s.seedErr != nil {
		return "", s.seedErr
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+PromptExt))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("file is empty")
	}
	return text, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Watch reloads the store after template files change. It blocks until
// ctx ends.
func (s *PromptStore) Watch(ctx context.Context) error {
	if s.seedErr != nil {
		return s.seedErr
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != PromptExt {
				continue
			}
			logger.Debug("prompts: %s %s", filepath.Base(ev.Name), ev.Op)
			if pending == nil {
				pending = time.AfterFunc(reloadDelay, s.Reload)
			} else {
				pending.Reset(reloadDelay)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompts: watcher: %v", err)
		}
	}
}
