// Package http is the HTTP delivery layer of the URL shortener.
// It decodes and validates requests, calls the URL use case and
// renders fixed per-endpoint JSON shapes or a redirect.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/linkmap/url-shortener/docs"
	"github.com/linkmap/url-shortener/pkg/middleware/recoverer"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter returns a chi router serving the shortening API, the redirect endpoint and the API docs.
func NewRouter(logger *httplog.Logger, urlUseCase urlUseCase) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(docs.Swagger)
	})

	r.Get("/ping", handlePing)

	h := newURLHandler(urlUseCase, validator.New())

	r.Get("/", h.listURLs)
	r.Get("/r/{shortCode}", h.redirect)

	r.Route("/shorten", func(r chi.Router) {
		r.Post("/", h.shortenURL)

		r.Route("/{shortCode}", func(r chi.Router) {
			r.Get("/", h.resolveShortCode)
			r.Put("/", h.modifyURL)
			r.Delete("/", h.deactivateURL)
			r.Get("/stats", h.getURLStats)
		})
	})

	return r
}
