// Package storage defines the blob store consumed by the action handlers.
// Swap implementations by changing the driver selected at startup. MinIO and
// S3 stores talk to a bucket; the Postgres and memory stores keep object bytes
// themselves and are served back by this process under /blobs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no object exists for a pathname.
var ErrNotFound = errors.New("blob not found")

// ErrForeignURL is returned when a URL does not belong to the store it is passed to.
var ErrForeignURL = errors.New("url does not belong to this store")

// Access controls who may read a stored object.
type Access string

// AccessPublic makes an object readable by anyone holding its URL.
const AccessPublic Access = "public"

// PutOptions configures a single write.
type PutOptions struct {
	Access          Access
	ContentType     string
	AddRandomSuffix bool
}

// ListOptions selects objects by pathname prefix.
type ListOptions struct {
	Prefix string
	Limit  int
}

// Blob describes a stored object.
type Blob struct {
	URL         string    `json:"url"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	Pathname    string    `json:"pathname"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
	ContentType string    `json:"-"`
}

// BlobStore is the interface for writing, listing and deleting objects.
type BlobStore interface {
	// Put stores body under pathname. size must be the exact byte count.
	Put(ctx context.Context, pathname string, body io.Reader, size int64, opts PutOptions) (*Blob, error)
	// List returns up to opts.Limit objects whose pathname starts with opts.Prefix.
	List(ctx context.Context, opts ListOptions) ([]Blob, error)
	// Delete removes the object addressed by url. Deleting a missing object is not an error.
	Delete(ctx context.Context, url string) error
}

// Reader is implemented by stores whose objects can be streamed back by pathname.
type Reader interface {
	Get(ctx context.Context, pathname string) (*Blob, io.ReadCloser, error)
}

// WithRandomSuffix inserts a short random token before the pathname's extension:
// "uploads/photo.jpg" becomes "uploads/photo-1a2b3c4d5e6f.jpg".
func WithRandomSuffix(pathname string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	ext := path.Ext(pathname)
	return strings.TrimSuffix(pathname, ext) + "-" + token + ext
}

// KeyFromURL returns the object key addressed by rawURL, which must live below
// publicBase. The key is path-unescaped; query and fragment are ignored.
func KeyFromURL(publicBase, rawURL string) (string, error) {
	base, err := url.Parse(strings.TrimRight(publicBase, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("parse public base: %w", err)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ErrForeignURL
	}
	if u.Scheme != base.Scheme || u.Host != base.Host || !strings.HasPrefix(u.Path, base.Path) {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(u.Path, base.Path)
	if key == "" {
		return "", ErrForeignURL
	}
	return key, nil
}

// publicURL joins the base with a key, escaping each key segment.
func publicURL(publicBase, key string) string {
	return strings.TrimRight(publicBase, "/") + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// localDownloadURL is the download link for objects served by ServeHandler.
func localDownloadURL(objectURL string) string {
	return objectURL + "?download=1"
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 1000
	}
	return limit
}
