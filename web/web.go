// Package web provides the thin HTTP transport over the dispatch
// pipeline: it parses requests, invokes the dispatcher, and renders
// Outcomes as HTTP responses. No business or authorization logic lives
// here.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/artpar/scaffold/app"
	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

// Targets builds navigation targets for redirect outcomes. It is the
// transport-layer implementation of ports.TargetResolver: URL
// construction belongs here, not in the dispatcher.
type Targets struct {
	// Prefix is the mount point of the module routes, e.g. "/modules".
	Prefix string
}

// View returns the canonical URL showing one entity.
func (t Targets) View(module, id string) string {
	return t.Prefix + "/" + module + "/" + id
}

// Listing returns the canonical URL showing the module's collection.
func (t Targets) Listing(module string) string {
	return t.Prefix + "/" + module
}

// Ensure interface compliance.
var _ ports.TargetResolver = Targets{}

// Handler provides the HTTP endpoints.
type Handler struct {
	dispatcher *app.Dispatcher
	media      *app.MediaService
	search     *app.SearchService
	modules    *resource.Set
	logger     zerolog.Logger
}

// Deps contains dependencies for the web handler.
type Deps struct {
	Dispatcher *app.Dispatcher
	Media      *app.MediaService
	Search     *app.SearchService
	Modules    *resource.Set
	Logger     zerolog.Logger
}

// NewHandler creates a new web handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		dispatcher: deps.Dispatcher,
		media:      deps.Media,
		search:     deps.Search,
		modules:    deps.Modules,
		logger:     deps.Logger,
	}
}

// Routes returns the router for all scaffold endpoints.
func (h *Handler) Routes(metricsPath string) chi.Router {
	r := chi.NewRouter()
	r.Use(h.requestLogger)

	if metricsPath != "" {
		r.Handle(metricsPath, promhttp.Handler())
	}

	r.Get("/search", h.searchRefs)

	r.Route("/modules/{module}", func(r chi.Router) {
		r.Get("/", h.index)
		r.Post("/", h.store)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.view)
			r.Put("/", h.update)
			r.Delete("/", h.delete)

			r.Post("/actions/{action}", h.customAction)

			r.Get("/media", h.fetchMedia)
			r.Post("/media/{collection}", h.attachMedia)
			r.Delete("/media/{mediaID}", h.detachMedia)
			r.Delete("/attachments/{mediaID}", h.deleteAttachment)
		})
	})

	return r
}

// requestLogger logs each request with method, path, and duration.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// actor builds the acting identity from the request. Authentication is
// an outer concern; this layer trusts the header placed by it.
func (h *Handler) actor(r *http.Request) resource.Actor {
	if id := r.Header.Get("X-Actor-ID"); id != "" {
		return headerActor(id)
	}
	return nil
}

type headerActor string

func (a headerActor) ActorID() string { return string(a) }

// module resolves the {module} URL parameter against the module set.
func (h *Handler) module(w http.ResponseWriter, r *http.Request) (resource.Module, bool) {
	name := chi.URLParam(r, "module")
	mod, ok := h.modules.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown module "+name)
		return nil, false
	}
	return mod, true
}
