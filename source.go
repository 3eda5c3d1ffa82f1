package starschema

import (
	"context"
	"io"
)

// NamedReadCloser is a single raw object (a file, an S3 object) produced by a
// RawSource. Name identifies the object within its dataset and is used in error
// messages.
type NamedReadCloser interface {
	io.ReadCloser
	Name() string
}

// RawSource is the interface for getting at the raw objects which make up a
// dataset, one object at a time. NextReader returns io.EOF once every object
// has been handed out. Callers must close each reader they receive.
//
// It is not the job of a RawSource to decode its objects in any way - the
// Record Reader (ReadSongs, ReadActivity) does that.
type RawSource interface {
	NextReader(ctx context.Context) (NamedReadCloser, error)
}

// Store is the destination side of the pipeline. Paths are slash separated and
// relative to the root the Store was created with.
type Store interface {
	// Create returns a writer for the object at path. The object is complete
	// once Close returns nil.
	Create(ctx context.Context, path string) (io.WriteCloser, error)

	// RemoveAll deletes every object below prefix. It is not an error if
	// nothing exists there.
	RemoveAll(ctx context.Context, prefix string) error
}
