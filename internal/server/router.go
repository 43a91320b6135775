// Package server wires the book handlers and the shared middleware into a chi
// router and runs it under an http.Server with graceful shutdown.
package server

import (
	"context"
	"net/http"
	"time"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readyTimeout = 500 * time.Millisecond

// NewRouter builds the HTTP handler. ctx bounds background work started by
// middleware such as the rate limiter sweep.
func NewRouter(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger, db Pinger, books *book.HTTPHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(httpx.RequestIDMiddleware(logger))
	r.Use(httpx.AccessLogMiddleware(logger))
	r.Use(httpx.RecoveryMiddleware(logger))
	r.Use(httpx.SecurityHeadersMiddleware(cfg.EnableHSTS))
	r.Use(httpx.CORSMiddleware(cfg.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			httpx.LoggerFrom(r.Context(), logger).Warn("readiness check failed", zap.Error(err))
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "Database not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	limiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.Route("/books", func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Use(httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes))

		r.Get("/", books.List)
		r.Post("/", books.Create)
		r.Get("/{isbn}", books.Get)
		r.Put("/{isbn}", books.Update)
		r.Delete("/{isbn}", books.Delete)
	})

	return r
}
