package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stencilproject/stencil/internal/api/handlers"
	"github.com/stencilproject/stencil/internal/api/middleware"
	"github.com/stencilproject/stencil/internal/config"
	"github.com/stencilproject/stencil/internal/domain/items"
	"github.com/stencilproject/stencil/internal/domain/users"
	"github.com/stencilproject/stencil/internal/metrics"
	"github.com/stencilproject/stencil/internal/storage/memory"
	"github.com/stencilproject/stencil/web"
)

// NewRouter wires the HTTP surface over the shared in-memory store and
// returns the fully middleware-wrapped handler.
func NewRouter(cfg config.Config, logger zerolog.Logger, store *memory.Repository, version, gitCommit, buildDate string) http.Handler {
	itemsService := items.NewService(store.Items())
	usersService := users.NewService(store.Users())

	itemsHandler := handlers.NewItemsHandler(itemsService, cfg.Environment)
	usersHandler := handlers.NewUsersHandler(usersService, cfg.Environment)
	healthChecker := handlers.NewHealthChecker(store, version, gitCommit)

	mux := http.NewServeMux()

	mux.Handle("/{$}", web.IndexHandler())
	mux.Handle("/docs", web.APIDocsHandler())
	mux.Handle("/health", healthChecker.Health())
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz())
	mux.Handle("/version", VersionHandler(version, gitCommit, buildDate))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/api/v1/openapi.json", OpenAPIHandler())

	mux.Handle("/api/v1/items", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(itemsHandler.List),
		http.MethodPost: http.HandlerFunc(itemsHandler.Create),
	}))
	mux.Handle("/api/v1/items/paginated", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(itemsHandler.Paginated),
	}))
	mux.Handle("/api/v1/items/bulk", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(itemsHandler.CreateBulk),
	}))
	mux.Handle("/api/v1/items/search/by-name", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(itemsHandler.SearchByName),
	}))
	mux.Handle("/api/v1/items/search/by-category/{category}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(itemsHandler.SearchByCategory),
	}))
	mux.Handle("/api/v1/items/stats/summary", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(itemsHandler.Stats),
	}))
	mux.Handle("/api/v1/items/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(itemsHandler.Get),
		http.MethodPut:    http.HandlerFunc(itemsHandler.Update),
		http.MethodDelete: http.HandlerFunc(itemsHandler.Delete),
	}))

	mux.Handle("/api/v1/users", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(usersHandler.List),
		http.MethodPost: http.HandlerFunc(usersHandler.Create),
	}))
	mux.Handle("/api/v1/users/search/by-username/{username}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(usersHandler.GetByUsername),
	}))
	mux.Handle("/api/v1/users/search/by-email/{email}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(usersHandler.GetByEmail),
	}))
	mux.Handle("/api/v1/users/stats/summary", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(usersHandler.Stats),
	}))
	mux.Handle("/api/v1/users/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(usersHandler.Get),
		http.MethodPut:    http.HandlerFunc(usersHandler.Update),
		http.MethodDelete: http.HandlerFunc(usersHandler.Delete),
	}))
	mux.Handle("/api/v1/users/{id}/activate", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(usersHandler.Activate),
	}))
	mux.Handle("/api/v1/users/{id}/deactivate", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(usersHandler.Deactivate),
	}))

	var handler http.Handler = mux
	handler = middleware.PublicRequestSize()(handler)
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	if cfg.Tracing.Enabled {
		handler = middleware.Tracing(handler)
	}
	handler = middleware.Recovery(cfg.Environment)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)

	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
