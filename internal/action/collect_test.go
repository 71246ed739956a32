package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blobgate/service/internal/storage"
)

func blobsNamed(names ...string) []storage.Blob {
	blobs := make([]storage.Blob, len(names))
	for i, n := range names {
		blobs[i] = storage.Blob{URL: "http://blobs.test/" + n, Pathname: n}
	}
	return blobs
}

func TestResolveEach_KeepsInputOrder(t *testing.T) {
	blobs := blobsNamed("a", "b", "c", "d", "e")

	outcomes := resolveEach(context.Background(), blobs, 2, func(_ context.Context, b storage.Blob) (string, error) {
		// later items finish first
		time.Sleep(time.Duration('f'-b.Pathname[0]) * time.Millisecond)
		return b.Pathname, nil
	})

	require.Len(t, outcomes, 5)
	for i, o := range outcomes {
		assert.NoError(t, o.err)
		assert.Equal(t, blobs[i].Pathname, o.item)
		assert.Equal(t, blobs[i].URL, o.source)
	}
}

func TestResolveEach_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32

	resolveEach(context.Background(), blobsNamed("a", "b", "c", "d", "e", "f", "g", "h"), 3, func(context.Context, storage.Blob) (int, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return 0, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Positive(t, peak.Load())
}

func TestResolveEach_FailuresAreIsolated(t *testing.T) {
	outcomes := resolveEach(context.Background(), blobsNamed("ok1", "bad", "ok2"), 4, func(_ context.Context, b storage.Blob) (string, error) {
		if b.Pathname == "bad" {
			return "", fmt.Errorf("fetch %s: boom", b.URL)
		}
		return b.Pathname, nil
	})

	items, failed := succeeded(outcomes)
	assert.Equal(t, []string{"ok1", "ok2"}, items)
	require.Len(t, failed, 1)
	assert.Equal(t, "http://blobs.test/bad", failed[0].source)
	assert.EqualError(t, failed[0].err, "fetch http://blobs.test/bad: boom")
}

func TestSucceeded_EmptyIsNotNil(t *testing.T) {
	items, failed := succeeded([]outcome[int]{{err: errors.New("x")}})

	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Len(t, failed, 1)
}

func TestIsFalsy(t *testing.T) {
	cases := map[string]bool{
		``:           true,
		`null`:       true,
		`false`:      true,
		`0`:          true,
		`0.0`:        true,
		`""`:         true,
		`true`:       false,
		`1`:          false,
		`"x"`:        false,
		`{}`:         false,
		`[]`:         false,
		`{"a":1}`:    false,
		`not-json!!`: true,
	}
	for raw, want := range cases {
		assert.Equal(t, want, isFalsy(json.RawMessage(raw)), "isFalsy(%q)", raw)
	}
}

func TestSafeName(t *testing.T) {
	cases := map[string]string{
		"My Filter!":   "My_Filter_",
		"vivid-warm_2": "vivid-warm_2",
		"../etc":       "___etc",
		"café":         "caf_",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeName(in), in)
	}
}

func TestParseLimit(t *testing.T) {
	cases := map[string]int{
		"":     defaultListLimit,
		"abc":  defaultListLimit,
		"0":    defaultListLimit,
		"-4":   defaultListLimit,
		"7":    7,
		"1000": 1000,
		"5000": maxListLimit,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLimit(in), "parseLimit(%q)", in)
	}
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, 400, KindValidation.Status())
	assert.Equal(t, 401, KindUnauthorized.Status())
	assert.Equal(t, 404, KindUnknownAction.Status())
	assert.Equal(t, 405, KindMethodNotAllowed.Status())
	assert.Equal(t, 500, KindUpstream.Status())
	assert.Equal(t, 500, KindInternal.Status())
}

func TestAsFailure(t *testing.T) {
	f := asFailure(fmt.Errorf("wrapped: %w", invalid("Missing image data")))
	assert.Equal(t, KindValidation, f.Kind)
	assert.Equal(t, "Missing image data", f.Message)

	cause := errors.New("disk on fire")
	f = asFailure(cause)
	assert.Equal(t, KindInternal, f.Kind)
	assert.ErrorIs(t, f, cause)
	assert.NotEmpty(t, f.Stack)
}
