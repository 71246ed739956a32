package action

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"

	"github.com/blobgate/service/internal/storage"
)

const (
	enhancedPrefix = "enhanced/"
	metadataPrefix = "metadata/"
)

// dataURLPattern captures the base64 payload of an image data URL.
var dataURLPattern = regexp.MustCompile(`^data:image/\w+;base64,(.+)$`)

type enhancedSaved struct {
	Success     bool   `json:"success"`
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl"`
	Size        int64  `json:"size"`
	// Outcome of the optional metadata document; the image write stands either way.
	MetadataURL   string `json:"metadataUrl,omitempty"`
	MetadataError string `json:"metadataError,omitempty"`
}

func (h *Handler) saveEnhanced(r *http.Request) (any, error) {
	var req struct {
		Image    string          `json:"image"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, internal(fmt.Errorf("parse request body: %w", err))
	}
	// A falsy metadata value means no metadata document.
	var metadata map[string]json.RawMessage
	if !isFalsy(req.Metadata) {
		if err := json.Unmarshal(req.Metadata, &metadata); err != nil {
			return nil, internal(fmt.Errorf("parse metadata: %w", err))
		}
	}
	if req.Image == "" {
		return nil, invalid("Missing image data")
	}
	m := dataURLPattern.FindStringSubmatch(req.Image)
	if m == nil {
		return nil, invalid("Invalid image format")
	}
	data, err := decodeBase64(m[1])
	if err != nil {
		return nil, invalid("Invalid image format")
	}

	ctx := r.Context()
	now := h.now()
	ms := now.UnixMilli()

	b, err := h.store.Put(ctx, fmt.Sprintf("%senhanced_%d.jpg", enhancedPrefix, ms), bytes.NewReader(data), int64(len(data)), storage.PutOptions{
		Access:      storage.AccessPublic,
		ContentType: "image/jpeg",
	})
	if err != nil {
		return nil, upstream(err)
	}

	result := enhancedSaved{
		Success:     true,
		URL:         b.URL,
		DownloadURL: b.DownloadURL,
		Size:        b.Size,
	}
	if metadata == nil {
		return result, nil
	}

	doc := make(map[string]json.RawMessage, len(metadata)+2)
	for k, v := range metadata {
		doc[k] = v
	}
	doc["imageUrl"] = mustJSON(b.URL)
	doc["timestamp"] = mustJSON(now.UTC())
	body := mustJSON(doc)

	mb, err := h.store.Put(ctx, fmt.Sprintf("%smeta_%d.json", metadataPrefix, ms), bytes.NewReader(body), int64(len(body)), storage.PutOptions{
		Access:      storage.AccessPublic,
		ContentType: "application/json",
	})
	if err != nil {
		log.Printf("action %s: metadata for %s not saved: %v", SaveEnhanced, b.URL, err)
		result.MetadataError = err.Error()
		return result, nil
	}
	result.MetadataURL = mb.URL
	return result, nil
}

// decodeBase64 accepts padded and unpadded standard base64.
func decodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
