package filesvc

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

// MemoryStore keeps objects in memory. Used by tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

var _ core.FileStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (s *MemoryStore) PublicURL(bucket, path string) string {
	return "memory://" + bucket + "/" + path
}

func (s *MemoryStore) Upload(_ context.Context, bucket, path, contentType string, r io.Reader) (core.StoredFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.StoredFile{}, errors.Wrap(err, "reading file")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+path] = data
	s.types[bucket+"/"+path] = contentType
	return core.StoredFile{Bucket: bucket, Path: path, URL: s.PublicURL(bucket, path), ContentType: contentType, Size: int64(len(data))}, nil
}

func (s *MemoryStore) Delete(_ context.Context, bucket, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, bucket+"/"+path)
	delete(s.types, bucket+"/"+path)
	return nil
}

// Object returns a stored object and its content type.
func (s *MemoryStore) Object(bucket, path string) (io.Reader, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[bucket+"/"+path]
	return bytes.NewReader(data), s.types[bucket+"/"+path], ok
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
