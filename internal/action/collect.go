package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/blobgate/service/internal/storage"
)

// aggregateLimit caps how many documents the listing actions resolve.
const aggregateLimit = 100

var errNotObject = errors.New("document is not a JSON object")

// outcome is the result of resolving one stored object.
type outcome[T any] struct {
	source string
	item   T
	err    error
}

// resolveEach runs resolve for every blob with at most limit in flight and
// returns one outcome per blob, in input order. It never fails as a whole.
func resolveEach[T any](ctx context.Context, blobs []storage.Blob, limit int, resolve func(context.Context, storage.Blob) (T, error)) []outcome[T] {
	outcomes := make([]outcome[T], len(blobs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, b := range blobs {
		g.Go(func() error {
			item, err := resolve(ctx, b)
			outcomes[i] = outcome[T]{source: b.URL, item: item, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// succeeded keeps the successful items and returns the failed outcomes separately.
func succeeded[T any](outcomes []outcome[T]) ([]T, []outcome[T]) {
	items := make([]T, 0, len(outcomes))
	var failed []outcome[T]
	for _, o := range outcomes {
		if o.err != nil {
			failed = append(failed, o)
			continue
		}
		items = append(items, o.item)
	}
	return items, failed
}

// keep applies the drop-on-failure policy for a, logging what was dropped.
func keep[T any](h *Handler, a Action, outcomes []outcome[T]) []T {
	items, failed := succeeded(outcomes)
	for _, o := range failed {
		log.Printf("action %s: skipping %s: %v", a, o.source, o.err)
	}
	if len(failed) > 0 {
		h.observer.ObserveDropped(string(a), len(failed))
	}
	return items
}

// fetchObject fetches url and parses it as a JSON object. raw is the body as fetched.
func (h *Handler) fetchObject(ctx context.Context, url string) (doc map[string]json.RawMessage, raw []byte, err error) {
	raw, err = h.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", url, err)
	}
	if doc == nil {
		return nil, nil, errNotObject
	}
	return doc, raw, nil
}

// isFalsy reports whether raw is absent or a JSON value a client treats as empty:
// null, false, 0 or "".
func isFalsy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	}
	return false
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
