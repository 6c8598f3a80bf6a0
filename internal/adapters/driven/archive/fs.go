package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// Ensure FSArchive implements the interface.
var _ driven.RawArchive = (*FSArchive)(nil)

// FSArchive stores archive objects as files below a directory.
type FSArchive struct {
	dir string
}

// NewFSArchive creates an archive rooted at dir.
func NewFSArchive(dir string) (*FSArchive, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &FSArchive{dir: dir}, nil
}

// Put stores data under key.
func (a *FSArchive) Put(_ context.Context, key string, data []byte) error {
	full, err := a.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o700); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp) //nolint:errcheck // best effort
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Get returns the object stored under key.
func (a *FSArchive) Get(_ context.Context, key string) ([]byte, error) {
	full, err := a.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// List returns the keys under prefix in lexical order.
func (a *FSArchive) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(a.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(a.dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (a *FSArchive) resolve(key string) (string, error) {
	clean := path.Clean(key)
	if key == "" || path.IsAbs(key) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: archive key %q", domain.ErrInvalidInput, key)
	}
	return filepath.Join(a.dir, filepath.FromSlash(clean)), nil
}
