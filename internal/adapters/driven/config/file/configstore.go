package file

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFile is the settings file name inside the daylog home.
const ConfigFile = "config.toml"

// ConfigStore backs the settings with ~/.daylog/config.toml. Tables are
// flattened into dotted keys when read and rebuilt when written, so
// "archive.s3.bucket" lands under [archive.s3].
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// NewConfigStore opens the settings file in home, which defaults to
// ~/.daylog. A missing file is an empty configuration.
func NewConfigStore(home string) (*ConfigStore, error) {
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home directory: %w", err)
		}
		home = filepath.Join(userHome, ".daylog")
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", home, err)
	}

	s := &ConfigStore{path: filepath.Join(home, ConfigFile)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Set stores value and rewrites the file. The in-memory value is rolled
// back when the write fails.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, had := s.values[key]
	s.values[key] = value
	if err := s.write(); err != nil {
		if had {
			s.values[key] = old
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *ConfigStore) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, had := s.values[key]
	if !had {
		return nil
	}
	delete(s.values, key)
	if err := s.write(); err != nil {
		s.values[key] = old
		return err
	}
	return nil
}

func (s *ConfigStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		data, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	tree := map[string]any{}
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}

	values := map[string]any{}
	flatten(values, "", tree)

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}

// write replaces the file through a temp file so a crash never leaves a
// half-written config. The caller holds the lock.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(nest(s.values))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	// The file may hold API keys.
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// flatten copies tree into dst with tables folded into dotted keys.
func flatten(dst map[string]any, prefix string, tree map[string]any) {
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flatten(dst, k, table)
			continue
		}
		dst[k] = v
	}
}

// nest rebuilds the tables that flatten folded.
func nest(flat map[string]any) map[string]any {
	root := map[string]any{}
	for key, v := range flat {
		table := root
		path := strings.Split(key, ".")
		for _, name := range path[:len(path)-1] {
			child, ok := table[name].(map[string]any)
			if !ok {
				child = map[string]any{}
				table[name] = child
			}
			table = child
		}
		table[path[len(path)-1]] = v
	}
	return root
}
