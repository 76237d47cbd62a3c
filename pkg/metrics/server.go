package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// NewServer returns an HTTP server exposing /metrics on port. Extra
// handlers, such as health probes, can be mounted on the same listener.
func NewServer(port int, extra map[string]http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", Handler())
	for pattern, h := range extra {
		mux.Handle(pattern, h)
	}
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// StartServer serves NewServer(port, nil) in the background and returns
// its shutdown function. Used by the batch indexer, which has no API
// server of its own.
func StartServer(port int) (shutdown func(context.Context) error) {
	server := NewServer(port, nil)
	go func() {
		slog.Info("metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "error", err)
		}
	}()
	return server.Shutdown
}
