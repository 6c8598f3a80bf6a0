// Package vault stores daily and weekly documents as markdown files
// under a root directory and optionally records their history in git.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/daylog/internal/core/domain"
	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// backupStamp is the timestamp layout of backup file names.
const backupStamp = "20060102-150405"

// Store is a filesystem implementation of driven.DocumentStore.
// Every write goes through a temp file and a rename; the previous
// content is copied to the backup directory first.
type Store struct {
	root      string
	backupDir string
	now       func() time.Time
}

// New creates a document store rooted at root. backupDir may be empty
// to disable backups.
func New(root, backupDir string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create vault root: %w", err)
	}
	if backupDir != "" {
		if backupDir, err = filepath.Abs(backupDir); err != nil {
			return nil, fmt.Errorf("resolve backup dir: %w", err)
		}
	}
	return &Store{root: abs, backupDir: backupDir, now: time.Now}, nil
}

// Root returns the absolute vault root.
func (s *Store) Root() string {
	return s.root
}

// Read returns the document text.
func (s *Store) Read(_ context.Context, p string) (string, error) {
	full, err := s.resolve(p)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	return string(data), nil
}

// Write replaces the document atomically. Identical content is a no-op.
func (s *Store) Write(_ context.Context, p, text string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}

	current, err := os.ReadFile(full)
	switch {
	case err == nil:
		if string(current) == text {
			return nil
		}
		if err := s.backup(p, current); err != nil {
			return err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("read %s: %w", p, err)
	}

	if err := writeAtomic(full, []byte(text)); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	logger.Debug("Wrote %s (%d bytes)", p, len(text))
	return nil
}

// Exists reports whether the document exists.
func (s *Store) Exists(_ context.Context, p string) (bool, error) {
	full, err := s.resolve(p)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
	return !info.IsDir(), nil
}

// resolve maps a vault-relative path to an absolute path inside the root.
func (s *Store) resolve(p string) (string, error) {
	rel := strings.ReplaceAll(p, "\\", "/")
	if rel == "" || path.IsAbs(rel) || filepath.IsAbs(p) {
		return "", fmt.Errorf("%w: %s", domain.ErrOutsideRoot, p)
	}
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", domain.ErrOutsideRoot, p)
	}
	full := filepath.Join(s.root, filepath.FromSlash(clean))

	// Refuse symlinked parents that lead out of the root.
	if dir, err := filepath.EvalSymlinks(filepath.Dir(full)); err == nil {
		root, rerr := filepath.EvalSymlinks(s.root)
		if rerr == nil && !within(root, dir) {
			return "", fmt.Errorf("%w: %s", domain.ErrOutsideRoot, p)
		}
	}
	return full, nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// backup copies the previous content of p to <backupDir>/<dir>/<name>.<stamp>.bak.
func (s *Store) backup(p string, content []byte) error {
	if s.backupDir == "" {
		return nil
	}
	dir := filepath.Join(s.backupDir, filepath.FromSlash(path.Dir(path.Clean(p))))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	base := path.Base(p) + "." + s.now().Format(backupStamp)
	target := filepath.Join(dir, base+".bak")
	for i := 1; ; i++ {
		if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
			break
		}
		target = filepath.Join(dir, fmt.Sprintf("%s-%d.bak", base, i))
	}

	if err := os.WriteFile(target, content, 0o644); err != nil {
		return fmt.Errorf("write backup of %s: %w", p, err)
	}
	logger.Debug("Backed up %s to %s", p, target)
	return nil
}

// writeAtomic writes data to a temp file next to target and renames it
// into place.
func writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}
