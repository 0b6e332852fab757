// Package thttp serves the HTTP endpoints of a run, such as Prometheus
// metrics, under a context: the server stops gracefully when the context
// passed to Run is closed, and a panicking handler stops it with the panic as
// the error.
package thttp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ridge/must/v2"
	"github.com/ridge/parallel"
	"github.com/ridge/quarry/tlog"
	"go.uber.org/zap"
)

const gracefulShutdownTimeout = 5 * time.Second

// Server serves HTTP requests on one listener
type Server struct {
	listener net.Listener
	handler  http.Handler
	active   sync.WaitGroup
}

// Listen creates a server listening on the TCP address addr. Port 0 picks a
// free port.
func Listen(addr string, handler http.Handler) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &Server{listener: l, handler: handler}, nil
}

// Addr returns the address the server listens on
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

type panicKeyType int

const panicKey panicKeyType = iota

// Run serves requests until ctx is closed, then waits up to
// gracefulShutdownTimeout for running requests
func (s *Server) Run(ctx context.Context) error {
	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		logger := tlog.Get(ctx).With(zap.Stringer("httpServer", s.listener.Addr()))

		// requests outlive ctx during the shutdown
		panics := make(chan error, 1)
		reqCtx, reqCancel := context.WithCancel(context.WithValue(tlog.WithLogger(context.Background(), logger), panicKey, panics))

		server := http.Server{
			Handler:           s.track(s.handler),
			ErrorLog:          must.OK1(zap.NewStdLogAt(logger, zap.WarnLevel)),
			BaseContext:       func(net.Listener) context.Context { return reqCtx },
			ReadHeaderTimeout: 10 * time.Second,
		}

		spawn("serve", parallel.Fail, func(ctx context.Context) error {
			logger.Info("Serving requests")
			err := server.Serve(s.listener)
			if errors.Is(err, http.ErrServerClosed) && ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		})

		spawn("panics", parallel.Fail, func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-panics:
				return err
			}
		})

		spawn("shutdown", parallel.Fail, func(ctx context.Context) error {
			<-ctx.Done()
			logger.Info("Shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
			defer cancel()
			defer reqCancel()
			defer server.Close()

			if err := server.Shutdown(shutdownCtx); err != nil && shutdownCtx.Err() != nil {
				logger.Info("Shutdown canceled", zap.Error(err))
				return err
			}
			reqCancel()
			s.active.Wait()

			logger.Info("Shutdown complete")
			return ctx.Err()
		})
		return nil
	})
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.active.Add(1)
		defer s.active.Done()
		next.ServeHTTP(w, r)
	})
}
