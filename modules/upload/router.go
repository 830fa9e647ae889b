package upload

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mountable is anything that exposes its routes as a handler.
type Mountable interface {
	Handle() http.Handler
}

// RouterOptions selects what is mounted under the API prefix.
// Nil entries are skipped.
type RouterOptions struct {
	Files  Mountable
	Health Mountable
}

// Router builds the application routes:
//
//	/api/v1/files/...  upload service
//	/health/...        liveness and readiness
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//	r.Mount("/", upload.Router(upload.RouterOptions{
//		Files:  upload.New(pipeline, upload.WithLogger(log)),
//		Health: httpserver.NewHealth(storage),
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.Files != nil {
		r.Route("/api/v1", func(api chi.Router) {
			api.Mount("/files", opts.Files.Handle())
		})
	}
	if opts.Health != nil {
		r.Mount("/health", opts.Health.Handle())
	}

	return r
}
