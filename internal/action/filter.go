package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"time"

	"github.com/blobgate/service/internal/storage"
)

const filterPrefix = "cc-filters/"

// unsafeNameChars matches everything a filter name may not contribute to a pathname.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9-_]`)

type filterItem struct {
	URL        string          `json:"url"`
	Name       string          `json:"name"`
	Values     json.RawMessage `json:"values"`
	UploadedAt time.Time       `json:"uploadedAt"`
}

type filterList struct {
	Success bool         `json:"success"`
	Filters []filterItem `json:"filters"`
	Count   int          `json:"count"`
}

type filterCreated struct {
	Success    bool      `json:"success"`
	URL        string    `json:"url"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type deleted struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// storedFilter is the document written under cc-filters/.
type storedFilter struct {
	Name      string          `json:"name"`
	Values    json.RawMessage `json:"values"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (h *Handler) filters(r *http.Request) (any, error) {
	switch r.Method {
	case http.MethodGet:
		return h.listFilters(r)
	case http.MethodPost:
		return h.createFilter(r)
	default:
		return h.deleteFilter(r)
	}
}

func (h *Handler) listFilters(r *http.Request) (any, error) {
	ctx := r.Context()
	blobs, err := h.store.List(ctx, storage.ListOptions{Prefix: filterPrefix, Limit: aggregateLimit})
	if err != nil {
		return nil, upstream(err)
	}

	items := keep(h, Filters, resolveEach(ctx, blobs, h.concurrency, h.resolveFilter))
	return filterList{Success: true, Filters: items, Count: len(items)}, nil
}

// resolveFilter fetches one filter document. name falls back to the last
// pathname segment; values falls back to the whole document.
func (h *Handler) resolveFilter(ctx context.Context, b storage.Blob) (filterItem, error) {
	doc, raw, err := h.fetchObject(ctx, b.URL)
	if err != nil {
		return filterItem{}, err
	}

	item := filterItem{
		URL:        b.URL,
		Name:       path.Base(b.Pathname),
		Values:     raw,
		UploadedAt: b.UploadedAt,
	}
	var name string
	if json.Unmarshal(doc["name"], &name) == nil && name != "" {
		item.Name = name
	}
	if v := doc["values"]; !isFalsy(v) {
		item.Values = v
	}
	return item, nil
}

func (h *Handler) createFilter(r *http.Request) (any, error) {
	var req struct {
		Name   string          `json:"name"`
		Values json.RawMessage `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, internal(fmt.Errorf("parse request body: %w", err))
	}
	if req.Name == "" || isFalsy(req.Values) {
		return nil, invalid("Missing name or values")
	}

	now := h.now()
	pathname := fmt.Sprintf("%s%s_%d.json", filterPrefix, safeName(req.Name), now.UnixMilli())
	doc, err := json.Marshal(storedFilter{Name: req.Name, Values: req.Values, CreatedAt: now.UTC()})
	if err != nil {
		return nil, internal(fmt.Errorf("encode filter: %w", err))
	}

	b, err := h.store.Put(r.Context(), pathname, bytes.NewReader(doc), int64(len(doc)), storage.PutOptions{
		Access:      storage.AccessPublic,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, upstream(err)
	}

	return filterCreated{Success: true, URL: b.URL, Name: req.Name, UploadedAt: b.UploadedAt}, nil
}

func (h *Handler) deleteFilter(r *http.Request) (any, error) {
	url := r.URL.Query().Get("url")
	if url == "" {
		return nil, invalid("Missing url parameter")
	}
	if err := h.store.Delete(r.Context(), url); err != nil {
		return nil, upstream(err)
	}
	return deleted{Success: true, Message: "Filter deleted successfully"}, nil
}

// safeName replaces every character outside [a-zA-Z0-9-_] with '_'.
func safeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}
