// Package staticfs is an in-memory store of named byte blobs served as HTTP
// responses. A blob holds the complete bytes written to the client, status
// line and headers included.
package staticfs

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/zbqxyz/ESP-AT-Lib/optionals"
)

// A File is an open handle on one stored blob. Callers borrow the handle for
// the duration of a write and must return it with Store.Close.
type File struct {
	Path string
	Data []byte
}

// Store maps request paths to blobs. One path may be designated as the
// not-found page, returned only when explicitly asked for.
type Store struct {
	mu       sync.Mutex
	files    map[string][]byte
	notFound optionals.Optional[string]
	open     int
}

func NewStore() *Store {
	return &Store{
		files: make(map[string][]byte),
	}
}

// AddFile stores data under path, replacing any previous blob.
func (s *Store) AddFile(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
}

// SetNotFound stores data under path and designates it as the not-found
// page.
func (s *Store) SetNotFound(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
	s.notFound = optionals.Some(path)
}

// Open resolves a path to an open file handle. When wantNotFound is set the
// path is ignored and the designated not-found page is returned instead, if
// one is configured. Returns None when nothing resolves.
func (s *Store) Open(path string, wantNotFound bool) optionals.Optional[*File] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wantNotFound {
		nf, ok := s.notFound.Get()
		if !ok {
			return optionals.None[*File]()
		}
		path = nf
	}

	data, ok := s.files[path]
	if !ok {
		return optionals.None[*File]()
	}
	s.open++
	return optionals.Some(&File{Path: path, Data: data})
}

// Close returns an open handle to the store. Closing nil is a no-op.
func (s *Store) Close(f *File) {
	if f == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open--
}

// NotFoundPath returns the path designated as the not-found page, if any.
func (s *Store) NotFoundPath() optionals.Optional[string] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notFound
}

// OpenCount returns the number of handles currently open.
func (s *Store) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Paths lists all stored paths in sorted order.
func (s *Store) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := maps.Keys(s.files)
	slices.Sort(paths)
	return paths
}
