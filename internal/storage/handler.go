package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/blobgate/service/internal/response"
)

// ServeHandler streams objects from rd. Mount it on a wildcard route such as
// "/blobs/*"; the wildcard is the pathname. "?download=1" asks the browser to
// save the object instead of displaying it.
func ServeHandler(rd Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathname := chi.URLParam(r, "*")
		// chi matches on RawPath when the request carried one.
		if r.URL.RawPath != "" {
			unescaped, err := url.PathUnescape(pathname)
			if err != nil {
				response.NotFound(w, r, "blob not found")
				return
			}
			pathname = unescaped
		}
		if pathname == "" {
			response.NotFound(w, r, "blob not found")
			return
		}

		b, body, err := rd.Get(r.Context(), pathname)
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, r, "blob not found")
			return
		}
		if err != nil {
			log.Printf("storage: serve %q: %v", pathname, err)
			response.InternalError(w, r, err.Error())
			return
		}
		defer body.Close()

		h := w.Header()
		response.CORS(h)
		contentType := b.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		h.Set("Content-Length", strconv.FormatInt(b.Size, 10))
		if r.URL.Query().Get("download") == "1" {
			h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(pathname)))
		}
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, body); err != nil {
			log.Printf("storage: stream %q: %v", pathname, err)
		}
	}
}
