// Package archive persists sweep artifacts (result tables, per-run equity
// curves, summaries) to a local directory or an S3-compatible bucket.
package archive

import (
	"context"
	"fmt"
)

// Store is a flat key/value blob store addressed by slash-separated paths.
type Store interface {
	// Put stores data at the given path, replacing any previous content
	Put(ctx context.Context, path string, data []byte) error

	// Get retrieves data from the given path. Missing paths return core.ErrArtifactNotFound.
	Get(ctx context.Context, path string) ([]byte, error)

	// List returns all paths under the prefix, sorted
	List(ctx context.Context, prefix string) ([]string, error)

	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)
}

// Backend names accepted by Open.
const (
	BackendNone    = "none"
	BackendLocalFS = "localfs"
	BackendS3      = "s3"
)

// Options selects and configures a backend.
type Options struct {
	Type string
	Path string
	S3   S3Config
}

// Open builds the Store named by opts.Type. BackendNone (or an empty type)
// returns a nil Store and no error.
func Open(opts Options) (Store, error) {
	switch opts.Type {
	case "", BackendNone:
		return nil, nil
	case BackendLocalFS:
		return NewLocalFS(opts.Path)
	case BackendS3:
		return NewS3(opts.S3)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", opts.Type)
	}
}
