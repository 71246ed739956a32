package action

import (
	"net/http"
	"strconv"
	"time"

	"github.com/blobgate/service/internal/storage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

type uploadItem struct {
	URL         string    `json:"url"`
	DownloadURL string    `json:"downloadUrl"`
	Pathname    string    `json:"pathname"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type uploadList struct {
	Success bool         `json:"success"`
	Uploads []uploadItem `json:"uploads"`
	Count   int          `json:"count"`
}

func (h *Handler) listUploads(r *http.Request) (any, error) {
	q := r.URL.Query()
	prefix := q.Get("prefix")
	if prefix == "" {
		prefix = uploadPrefix
	}

	blobs, err := h.store.List(r.Context(), storage.ListOptions{Prefix: prefix, Limit: parseLimit(q.Get("limit"))})
	if err != nil {
		return nil, upstream(err)
	}

	items := make([]uploadItem, 0, len(blobs))
	for _, b := range blobs {
		items = append(items, uploadItem{
			URL:         b.URL,
			DownloadURL: b.DownloadURL,
			Pathname:    b.Pathname,
			Size:        b.Size,
			UploadedAt:  b.UploadedAt,
		})
	}
	return uploadList{Success: true, Uploads: items, Count: len(items)}, nil
}

func (h *Handler) deleteUpload(r *http.Request) (any, error) {
	url := r.URL.Query().Get("url")
	if url == "" {
		return nil, invalid("Missing url parameter")
	}
	if err := h.store.Delete(r.Context(), url); err != nil {
		return nil, upstream(err)
	}
	return deleted{Success: true, Message: "File deleted successfully"}, nil
}

// parseLimit reads the limit parameter; unparsable or non-positive values
// fall back to the default.
func parseLimit(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}
