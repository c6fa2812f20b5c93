// Package http provides the HTTP delivery layer of the link shortener.
// It wires the chi router, authenticates callers from access tokens,
// validates request bodies and renders every answer in the response envelope.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/ziplink/pkg/middleware/recoverer"

	httpSwagger "github.com/swaggo/http-swagger"
)

type routerOptions struct {
	requestTimeout time.Duration
	docsFile       string
}

type RouterOption func(*routerOptions)

// WithRequestTimeout cancels the request context after d. Zero disables the timeout.
func WithRequestTimeout(d time.Duration) RouterOption {
	return func(o *routerOptions) {
		o.requestTimeout = d
	}
}

func WithDocsFile(path string) RouterOption {
	return func(o *routerOptions) {
		o.docsFile = path
	}
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(
	logger *httplog.Logger,
	tokens TokenVerifier,
	links LinkUseCase,
	analytics AnalyticsUseCase,
	opts ...RouterOption,
) http.Handler {
	options := routerOptions{
		docsFile: "./docs/swagger.yml",
	}
	for _, opt := range opts {
		opt(&options)
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))
	if options.requestTimeout > 0 {
		r.Use(middleware.Timeout(options.requestTimeout))
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, options.docsFile)
	})

	r.Route("/api/v1", func(r chi.Router) {
		validate := getValidate()

		r.Get("/ping", handlePing)

		r.Route("/links", func(r chi.Router) {
			r.Use(authenticate(tokens))

			r.Post("/guest", handleCreateGuestLink(links, validate))
			r.Get("/public-links", handlePublicLinks(links))

			r.Route("/{id}/analytics", func(r chi.Router) {
				r.Get("/daily", handleDailyClicks(analytics))
				r.Get("/referrer", handleReferrerClicks(analytics))
				r.Get("/monthly", handleMonthlyClicks(analytics))
				r.Get("/country", handleCountryClicks(analytics))
			})

			r.Group(func(r chi.Router) {
				r.Use(requireCaller)

				r.Post("/", handleCreateLink(links, validate))
				r.Get("/my-links", handleMyLinks(links))
				r.Get("/stats", handleOwnerStats(links))
				r.Put("/{id}", handleUpdateLink(links, validate))
				r.Delete("/{id}", handleDeleteLink(links))
			})
		})
	})

	r.Get("/{slug}", handleRedirect(links))

	return r
}
