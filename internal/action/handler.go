package action

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/blobgate/service/internal/response"
	"github.com/blobgate/service/internal/storage"
)

const unknownAction = "unknown"

// Observer receives per-request telemetry.
type Observer interface {
	ObserveAction(action string, status int, elapsed time.Duration)
	ObserveDropped(action string, n int)
}

type nopObserver struct{}

func (nopObserver) ObserveAction(string, int, time.Duration) {}
func (nopObserver) ObserveDropped(string, int)               {}

// Options tunes a Handler. The zero value is usable.
type Options struct {
	// Production hides stack traces from error responses.
	Production bool
	// FetchConcurrency bounds concurrent document fetches per request.
	FetchConcurrency int
	Observer         Observer
	Now              func() time.Time
}

// Handler serves the action endpoint.
type Handler struct {
	store       storage.BlobStore
	fetcher     storage.Fetcher
	production  bool
	concurrency int
	observer    Observer
	now         func() time.Time
}

// NewHandler creates a Handler backed by store. fetcher resolves stored
// documents by URL for the listing actions.
func NewHandler(store storage.BlobStore, fetcher storage.Fetcher, opts Options) *Handler {
	h := &Handler{
		store:       store,
		fetcher:     fetcher,
		production:  opts.Production,
		concurrency: opts.FetchConcurrency,
		observer:    opts.Observer,
		now:         opts.Now,
	}
	if h.concurrency <= 0 {
		h.concurrency = 8
	}
	if h.observer == nil {
		h.observer = nopObserver{}
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// ServeHTTP godoc
//
//	@Summary		Storage action endpoint
//	@Description	Dispatches on the action query parameter: upload, cc, save-enhanced, list-uploads, delete-upload, get-metadata, health. OPTIONS always answers 200 with CORS headers.
//	@Tags			actions
//	@Accept			json
//	@Produce		json
//	@Param			action		query		string	true	"Action name"
//	@Param			filename	query		string	false	"upload: object file name"
//	@Param			prefix		query		string	false	"list-uploads: pathname prefix"
//	@Param			limit		query		int		false	"list-uploads: max results"
//	@Param			url			query		string	false	"cc DELETE / delete-upload: object URL"
//	@Success		200			{object}	map[string]interface{}
//	@Failure		400			{object}	response.Envelope
//	@Failure		401			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		405			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/api [get]
//	@Router			/api [post]
//	@Router			/api [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		response.Preflight(w)
		return
	}

	start := time.Now()
	name := r.URL.Query().Get("action")
	if name == "" {
		name = unknownAction
	}
	a := Action(name)
	status := h.dispatch(w, r, a)

	label := name
	if _, ok := h.route(a); !ok {
		label = unknownAction
	}
	h.observer.ObserveAction(label, status, time.Since(start))
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, a Action) (status int) {
	defer func() {
		if p := recover(); p != nil {
			if p == http.ErrAbortHandler {
				panic(p)
			}
			status = h.fail(w, r, a, &Failure{
				Kind:    KindInternal,
				Message: fmt.Sprint(p),
				Stack:   debug.Stack(),
			})
		}
	}()

	rt, ok := h.route(a)
	if !ok {
		return h.fail(w, r, a, errInvalidAction)
	}
	if !rt.allows(r.Method) {
		return h.fail(w, r, a, errMethodNotAllowed)
	}

	payload, err := rt.handle(r)
	if err != nil {
		return h.fail(w, r, a, err)
	}
	response.OK(w, r, payload)
	return http.StatusOK
}

// fail translates err into the failure envelope and writes it.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, a Action, err error) int {
	f := asFailure(err)
	status := f.Kind.Status()

	env := response.Envelope{Error: f.Message}
	if f.Kind == KindUnknownAction {
		env.AvailableActions = Names()
	}
	if status >= http.StatusInternalServerError {
		log.Printf("action %s: %v", a, f.Message)
		if !h.production {
			env.Stack = string(f.Stack)
		}
	}
	response.Fail(w, r, status, env)
	return status
}
