package action

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/blobgate/service/internal/storage"
)

const uploadPrefix = "uploads/"

type uploadResult struct {
	Success     bool      `json:"success"`
	URL         string    `json:"url"`
	DownloadURL string    `json:"downloadUrl"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// upload stores the raw request body under uploads/. Any byte stream is accepted.
func (h *Handler) upload(r *http.Request) (any, error) {
	filename := path.Base(r.URL.Query().Get("filename"))
	if filename == "." || filename == "/" {
		filename = fmt.Sprintf("upload-%d.jpg", h.now().UnixMilli())
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, internal(fmt.Errorf("read request body: %w", err))
	}

	b, err := h.store.Put(r.Context(), uploadPrefix+filename, bytes.NewReader(body), int64(len(body)), storage.PutOptions{
		Access:          storage.AccessPublic,
		ContentType:     uploadContentType(r, filename),
		AddRandomSuffix: true,
	})
	if err != nil {
		return nil, upstream(err)
	}

	return uploadResult{
		Success:     true,
		URL:         b.URL,
		DownloadURL: b.DownloadURL,
		Size:        b.Size,
		UploadedAt:  b.UploadedAt,
	}, nil
}

func uploadContentType(r *http.Request, filename string) string {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(path.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
