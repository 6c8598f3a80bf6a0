package vault

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// Ensure GitHistory implements the interface.
var _ driven.DocumentHistory = (*GitHistory)(nil)

// GitHistory commits each written document to a git repository at the
// vault root, giving every automated write a reviewable diff.
type GitHistory struct {
	mu     sync.Mutex
	repo   *git.Repository
	author string
	email  string
	now    func() time.Time
}

// OpenHistory opens the repository at root, initialising it if needed.
func OpenHistory(root string) (*GitHistory, error) {
	repo, err := git.PlainOpen(root)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(root, false)
		if err != nil {
			return nil, fmt.Errorf("init repo: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	return &GitHistory{
		repo:   repo,
		author: "daylog",
		email:  "daylog@localhost",
		now:    time.Now,
	}, nil
}

// Commit stages p and commits it. A document without changes is skipped.
func (h *GitHistory) Commit(_ context.Context, p, message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	p = path.Clean(p)
	worktree, err := h.repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if _, err := worktree.Add(p); err != nil {
		return fmt.Errorf("git add %s: %w", p, err)
	}

	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("git status: %w", err)
	}
	if fs, ok := status[p]; !ok || fs.Staging == git.Unmodified {
		return nil
	}

	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  h.author,
			Email: h.email,
			When:  h.now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit %s: %w", p, err)
	}
	return nil
}
