package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	blob Blob
	data []byte
}

// MemoryStore keeps objects in process memory. Used for tests and local runs;
// URLs point at publicBase, which is expected to route to ServeHandler.
type MemoryStore struct {
	mu         sync.RWMutex
	objects    map[string]memoryEntry
	publicBase string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(publicBase string) *MemoryStore {
	return &MemoryStore{
		objects:    make(map[string]memoryEntry),
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// Put stores body under pathname, replacing any existing object.
func (s *MemoryStore) Put(_ context.Context, pathname string, body io.Reader, _ int64, opts PutOptions) (*Blob, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	key := pathname
	if opts.AddRandomSuffix {
		key = WithRandomSuffix(pathname)
	}
	url := publicURL(s.publicBase, key)
	b := Blob{
		URL:         url,
		DownloadURL: localDownloadURL(url),
		Pathname:    key,
		Size:        int64(len(data)),
		UploadedAt:  time.Now().UTC(),
		ContentType: opts.ContentType,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryEntry{blob: b, data: data}
	return &b, nil
}

// List returns objects under opts.Prefix ordered by pathname.
func (s *MemoryStore) List(_ context.Context, opts ListOptions) ([]Blob, error) {
	s.mu.RLock()
	blobs := make([]Blob, 0, len(s.objects))
	for key, e := range s.objects {
		if strings.HasPrefix(key, opts.Prefix) {
			blobs = append(blobs, e.blob)
		}
	}
	s.mu.RUnlock()

	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Pathname < blobs[j].Pathname })
	if limit := clampLimit(opts.Limit); len(blobs) > limit {
		blobs = blobs[:limit]
	}
	return blobs, nil
}

// Delete removes the object addressed by url.
func (s *MemoryStore) Delete(_ context.Context, url string) error {
	key, err := KeyFromURL(s.publicBase, url)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Get returns a copy of the object at pathname.
func (s *MemoryStore) Get(_ context.Context, pathname string) (*Blob, io.ReadCloser, error) {
	s.mu.RLock()
	e, ok := s.objects[pathname]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrNotFound
	}
	data := make([]byte, len(e.data))
	copy(data, e.data)
	b := e.blob
	return &b, io.NopCloser(bytes.NewReader(data)), nil
}

// Len reports how many objects are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
