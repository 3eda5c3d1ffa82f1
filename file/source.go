package file

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/pilosa/starschema"
	"github.com/pkg/errors"
)

// RawSource is a starschema.RawSource over the .json files in a directory
// tree (or a single file). Files are handed out in lexical path order.
type RawSource struct {
	files   []string
	fileIdx *uint64
}

// NewRawSource gets a RawSource over pathname, which may be a file or a
// directory. Directories are walked recursively, and only files with a .json
// extension are included.
func NewRawSource(pathname string) (*RawSource, error) {
	fileIdx := uint64(0)
	s := &RawSource{
		fileIdx: &fileIdx,
	}
	info, err := os.Stat(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "statting path")
	}
	if !info.IsDir() {
		s.files = []string{pathname}
		return s, nil
	}
	err = filepath.WalkDir(pathname, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		s.files = append(s.files, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walking directory")
	}
	return s, nil
}

// Files returns the files the source will read, in order.
func (s *RawSource) Files() []string { return s.files }

type namedFile struct {
	*os.File
	name string
}

func (f *namedFile) Name() string { return f.name }

// NextReader implements starschema.RawSource.
func (s *RawSource) NextReader(ctx context.Context) (starschema.NamedReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := atomic.AddUint64(s.fileIdx, 1) - 1
	if int(idx) >= len(s.files) {
		return nil, io.EOF
	}

	file, err := os.Open(s.files[idx])
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.files[idx])
	}
	return &namedFile{File: file, name: filepath.Base(s.files[idx])}, nil
}
