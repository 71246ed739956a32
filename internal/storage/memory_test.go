package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func put(t *testing.T, s *MemoryStore, pathname, content string, opts PutOptions) *Blob {
	t.Helper()
	b, err := s.Put(context.Background(), pathname, strings.NewReader(content), int64(len(content)), opts)
	require.NoError(t, err)
	return b
}

func TestMemoryStore_Put(t *testing.T) {
	s := NewMemoryStore("http://localhost:8080/blobs/")

	b := put(t, s, "enhanced/enhanced_1.jpg", "pixels", PutOptions{Access: AccessPublic, ContentType: "image/jpeg"})

	assert.Equal(t, "http://localhost:8080/blobs/enhanced/enhanced_1.jpg", b.URL)
	assert.Equal(t, "http://localhost:8080/blobs/enhanced/enhanced_1.jpg?download=1", b.DownloadURL)
	assert.Equal(t, "enhanced/enhanced_1.jpg", b.Pathname)
	assert.EqualValues(t, 6, b.Size)
	assert.False(t, b.UploadedAt.IsZero())
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	s := NewMemoryStore("http://blobs.test")

	put(t, s, "cc-filters/a.json", "old", PutOptions{})
	put(t, s, "cc-filters/a.json", "newer", PutOptions{})

	assert.Equal(t, 1, s.Len())
	b, body, err := s.Get(context.Background(), "cc-filters/a.json")
	require.NoError(t, err)
	data, _ := io.ReadAll(body)
	assert.Equal(t, "newer", string(data))
	assert.EqualValues(t, 5, b.Size)
}

func TestMemoryStore_RandomSuffix(t *testing.T) {
	s := NewMemoryStore("http://blobs.test")

	a := put(t, s, "uploads/photo.jpg", "1", PutOptions{AddRandomSuffix: true})
	b := put(t, s, "uploads/photo.jpg", "2", PutOptions{AddRandomSuffix: true})

	assert.NotEqual(t, a.Pathname, b.Pathname)
	assert.Equal(t, 2, s.Len())
}

func TestMemoryStore_List(t *testing.T) {
	s := NewMemoryStore("http://blobs.test")
	for i := 3; i >= 1; i-- {
		put(t, s, fmt.Sprintf("uploads/%d.jpg", i), "x", PutOptions{})
	}
	put(t, s, "metadata/meta_1.json", "{}", PutOptions{})

	blobs, err := s.List(context.Background(), ListOptions{Prefix: "uploads/"})
	require.NoError(t, err)
	require.Len(t, blobs, 3)
	assert.Equal(t, "uploads/1.jpg", blobs[0].Pathname)
	assert.Equal(t, "uploads/3.jpg", blobs[2].Pathname)

	blobs, err = s.List(context.Background(), ListOptions{Prefix: "uploads/", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, blobs, 2)

	blobs, err = s.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, blobs, 4)

	blobs, err = s.List(context.Background(), ListOptions{Prefix: "nothing/"})
	require.NoError(t, err)
	assert.NotNil(t, blobs)
	assert.Empty(t, blobs)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore("http://blobs.test")
	b := put(t, s, "uploads/a.jpg", "x", PutOptions{})

	require.NoError(t, s.Delete(context.Background(), b.URL))
	assert.Zero(t, s.Len())

	// already gone
	assert.NoError(t, s.Delete(context.Background(), b.URL))

	err := s.Delete(context.Background(), "http://other.test/uploads/a.jpg")
	assert.ErrorIs(t, err, ErrForeignURL)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore("http://blobs.test")

	_, _, err := s.Get(context.Background(), "uploads/none.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore("http://blobs.test")
	put(t, s, "uploads/a.bin", "abc", PutOptions{})

	_, body, err := s.Get(context.Background(), "uploads/a.bin")
	require.NoError(t, err)
	data, _ := io.ReadAll(body)
	data[0] = 'z'

	_, body, err = s.Get(context.Background(), "uploads/a.bin")
	require.NoError(t, err)
	again, _ := io.ReadAll(body)
	assert.Equal(t, "abc", string(again))
}
