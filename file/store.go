package file

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Store is a starschema.Store on the local filesystem.
type Store struct {
	root string
}

// NewStore returns a Store writing below root, which is created if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrap(err, "creating destination root")
	}
	return &Store{root: root}, nil
}

// Root returns the directory the store writes below.
func (s *Store) Root() string { return s.root }

// atomicFile is written under a temporary name and renamed into place on
// Close, so readers never see a partial file.
type atomicFile struct {
	*os.File
	path string
}

func (f *atomicFile) Close() error {
	if err := f.File.Close(); err != nil {
		os.Remove(f.File.Name())
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(f.File.Name(), f.path); err != nil {
		os.Remove(f.File.Name())
		return errors.Wrapf(err, "renaming into %s", f.path)
	}
	return nil
}

// Create implements starschema.Store.
func (s *Store) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, errors.Wrap(err, "creating directory")
	}
	f, err := os.CreateTemp(filepath.Dir(full), "."+filepath.Base(full)+".tmp-*")
	if err != nil {
		return nil, errors.Wrap(err, "creating temp file")
	}
	return &atomicFile{File: f, path: full}, nil
}

// RemoveAll implements starschema.Store.
func (s *Store) RemoveAll(ctx context.Context, prefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Wrap(os.RemoveAll(filepath.Join(s.root, filepath.FromSlash(prefix))), "removing")
}
