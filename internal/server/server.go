package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"bookstore/internal/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// New returns an http.Server for handler configured from cfg.
func New(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Run serves on ln until ctx is cancelled or serving fails, then shuts the
// server down within cfg.ShutdownTimeout. A nil ln listens on srv.Addr.
func Run(ctx context.Context, cfg config.ServerConfig, srv *http.Server, ln net.Listener, logger *zap.Logger) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api server starting", zap.String("addr", srv.Addr))

		var err error
		if ln != nil {
			err = srv.Serve(ln)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gCtx.Done()

		if ctx.Err() != nil {
			logger.Info("api server stopping", zap.String("reason", "requested to stop"))
		} else {
			logger.Info("api server stopping", zap.String("reason", "errored at running"))
		}

		sCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(sCtx)
		switch {
		case err == nil:
			logger.Info("api server graceful shutdown succeeded")
		case errors.Is(err, context.DeadlineExceeded):
			logger.Warn("api server graceful shutdown timed out")
		default:
			logger.Warn("api server graceful shutdown failed", zap.Error(err))
		}
		if err != nil {
			logger.Warn("api server going to force shutdown", zap.Error(srv.Close()))
		}
		return nil
	})

	err := g.Wait()
	logger.Info("api server stopped", zap.Error(err))
	return err
}
