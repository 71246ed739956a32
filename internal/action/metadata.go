package action

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/blobgate/service/internal/storage"
)

type metadataList struct {
	Success  bool                         `json:"success"`
	Metadata []map[string]json.RawMessage `json:"metadata"`
	Count    int                          `json:"count"`
}

func (h *Handler) getMetadata(r *http.Request) (any, error) {
	ctx := r.Context()
	blobs, err := h.store.List(ctx, storage.ListOptions{Prefix: metadataPrefix, Limit: aggregateLimit})
	if err != nil {
		return nil, upstream(err)
	}

	items := keep(h, GetMetadata, resolveEach(ctx, blobs, h.concurrency, h.resolveMetadata))
	return metadataList{Success: true, Metadata: items, Count: len(items)}, nil
}

// resolveMetadata fetches one metadata document and annotates it with where
// it lives and when it was stored.
func (h *Handler) resolveMetadata(ctx context.Context, b storage.Blob) (map[string]json.RawMessage, error) {
	doc, _, err := h.fetchObject(ctx, b.URL)
	if err != nil {
		return nil, err
	}
	doc["metadataUrl"] = mustJSON(b.URL)
	doc["uploadedAt"] = mustJSON(b.UploadedAt)
	return doc, nil
}
