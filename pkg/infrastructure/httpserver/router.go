package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mateusmacedo/bus-booking/pkg/application"
)

// NewRouter cria o roteador com request id, IP real, log de acesso e
// recuperação de panics, além de GET /healthz.
func NewRouter(logger application.AppLogger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	return router
}

// RequestLogger registra uma linha por requisição no AppLogger.
func RequestLogger(logger application.AppLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				application.LogInfo(r.Context(), logger, "http request", map[string]interface{}{
					"method":   r.Method,
					"path":     r.URL.Path,
					"status":   ww.Status(),
					"bytes":    ww.BytesWritten(),
					"remote":   r.RemoteAddr,
					"duration": time.Since(start).String(),
				})
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
