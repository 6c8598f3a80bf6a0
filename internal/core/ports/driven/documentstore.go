package driven

import "context"

// DocumentStore reads and writes the text documents of the vault.
// Paths are relative to the vault root using forward slashes.
type DocumentStore interface {
	// Read returns the document text, or domain.ErrNotFound.
	Read(ctx context.Context, path string) (string, error)

	// Write replaces the document atomically (temp file + rename).
	// Writing identical content is a no-op. Paths escaping the root
	// return domain.ErrOutsideRoot.
	Write(ctx context.Context, path, text string) error

	// Exists reports whether the document exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// DocumentHistory records versions of written documents.
type DocumentHistory interface {
	// Commit records the current content of path with a message.
	Commit(ctx context.Context, path, message string) error
}
