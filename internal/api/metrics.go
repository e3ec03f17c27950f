// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/samber/oops"

	"github.com/taibuivan/passport/internal/platform/constants"
)

// MetricsServer serves /metrics on its own internal listener.
//
// Event counters reveal traffic patterns, so they are never mounted on the
// public router.
type MetricsServer struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	log        *slog.Logger
}

// NewMetricsServer creates a metrics server for addr ("host:port").
func NewMetricsServer(addr string, metrics http.Handler, log *slog.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics)

	return &MetricsServer{
		addr: addr,
		log:  log,
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

/*
Start binds the listener and serves in the background.

Returns:
  - <-chan error: Receives a serve failure; closed when the server stops
  - error: Bind failures
*/
func (s *MetricsServer) Start() (<-chan error, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, oops.In("metrics").With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := s.httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.log.Error("metrics_server_failed", slog.Any("error", serveErr))
			errCh <- serveErr
		}
	}()

	s.log.Info("metrics_server_started", slog.String("addr", listener.Addr().String()))
	return errCh, nil
}

// Stop gracefully shuts the listener down.
func (s *MetricsServer) Stop(context context.Context) error {
	if err := s.httpServer.Shutdown(context); err != nil {
		return oops.In("metrics").Code("metrics_server_shutdown_failed").Wrap(err)
	}
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *MetricsServer) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
