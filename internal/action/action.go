// Package action implements the single action-keyed storage endpoint: a closed
// set of actions, each with its allowed methods and a handler that returns
// either a success payload or a *Failure.
package action

import (
	"net/http"
	"slices"
)

// Action selects the operation a request performs (the ?action= parameter).
type Action string

const (
	Upload       Action = "upload"
	Filters      Action = "cc"
	SaveEnhanced Action = "save-enhanced"
	ListUploads  Action = "list-uploads"
	DeleteUpload Action = "delete-upload"
	GetMetadata  Action = "get-metadata"
	Health       Action = "health"
)

// All lists every action in the order advertised to clients.
var All = []Action{Upload, Filters, SaveEnhanced, ListUploads, DeleteUpload, GetMetadata, Health}

// Names returns the advertised action names.
func Names() []string {
	names := make([]string, len(All))
	for i, a := range All {
		names[i] = string(a)
	}
	return names
}

// route binds an action to its method set and handler. A nil method set
// accepts any method.
type route struct {
	methods []string
	handle  func(*http.Request) (any, error)
}

func (rt route) allows(method string) bool {
	return rt.methods == nil || slices.Contains(rt.methods, method)
}

// route resolves a to its variant. Every constant in All must have a case.
func (h *Handler) route(a Action) (route, bool) {
	switch a {
	case Upload:
		return route{methods: []string{http.MethodPost}, handle: h.upload}, true
	case Filters:
		return route{methods: []string{http.MethodGet, http.MethodPost, http.MethodDelete}, handle: h.filters}, true
	case SaveEnhanced:
		return route{methods: []string{http.MethodPost}, handle: h.saveEnhanced}, true
	case ListUploads:
		return route{methods: []string{http.MethodGet}, handle: h.listUploads}, true
	case DeleteUpload:
		return route{methods: []string{http.MethodDelete}, handle: h.deleteUpload}, true
	case GetMetadata:
		return route{methods: []string{http.MethodGet}, handle: h.getMetadata}, true
	case Health:
		return route{handle: h.health}, true
	}
	return route{}, false
}

// Mutates reports whether r would write to or delete from the store.
func Mutates(r *http.Request) bool {
	switch Action(r.URL.Query().Get("action")) {
	case Upload, SaveEnhanced:
		return r.Method == http.MethodPost
	case DeleteUpload:
		return r.Method == http.MethodDelete
	case Filters:
		return r.Method == http.MethodPost || r.Method == http.MethodDelete
	}
	return false
}
