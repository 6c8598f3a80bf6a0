package driven

import "context"

// RawArchive stores verbatim copies of ingested payloads and analysis
// transcripts. Keys use forward slashes, e.g. "raw/mobile/2026-02-10/<id>.json".
type RawArchive interface {
	// Put stores data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the object stored under key, or domain.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns the keys under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}
