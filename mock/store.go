package mock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pilosa/starschema"
	"github.com/pkg/errors"
)

// Store is an in memory starschema.Store.
type Store struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailPrefix makes Create fail for every path starting with it.
	FailPrefix string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{files: make(map[string][]byte)}
}

type memFile struct {
	bytes.Buffer
	path  string
	store *Store
}

func (f *memFile) Close() error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.files[f.path] = f.Bytes()
	return nil
}

// Create implements starschema.Store. The file shows up once it is closed.
func (s *Store) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	if s.FailPrefix != "" && strings.HasPrefix(path, s.FailPrefix) {
		return nil, errors.Errorf("create %s: injected failure", path)
	}
	return &memFile{path: path, store: s}, nil
}

// RemoveAll implements starschema.Store.
func (s *Store) RemoveAll(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.files {
		if p == prefix || strings.HasPrefix(p, strings.TrimSuffix(prefix, "/")+"/") {
			delete(s.files, p)
		}
	}
	return nil
}

// Paths returns the sorted paths of every file below prefix.
func (s *Store) Paths(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := make([]string, 0)
	for p := range s.files {
		if strings.HasPrefix(p, prefix) {
			ps = append(ps, p)
		}
	}
	sort.Strings(ps)
	return ps
}

// File returns the contents of the file at path.
func (s *Store) File(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[path]
	return b, ok
}

// RawSource is an in memory starschema.RawSource which serves each of its
// objects once, in order.
type RawSource struct {
	mu      sync.Mutex
	objects []string
	next    int

	// Err, if set, is returned from NextReader instead of the next object.
	Err error
}

// NewRawSource returns a RawSource whose objects have the given contents.
func NewRawSource(objects ...string) *RawSource {
	return &RawSource{objects: objects}
}

type namedReader struct {
	io.ReadCloser
	name string
}

func (n namedReader) Name() string { return n.name }

// NextReader implements starschema.RawSource.
func (r *RawSource) NextReader(ctx context.Context) (starschema.NamedReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if r.next >= len(r.objects) {
		return nil, io.EOF
	}
	obj := r.objects[r.next]
	r.next++
	return namedReader{
		ReadCloser: io.NopCloser(strings.NewReader(obj)),
		name:       fmt.Sprintf("object-%d.json", r.next-1),
	}, nil
}
