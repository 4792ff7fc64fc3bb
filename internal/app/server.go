package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/sheetcalc/internal/ctxlog"
	"github.com/specialistvlad/sheetcalc/internal/result"
)

// maxRequestBytes bounds the size of a snapshot accepted over HTTP.
const maxRequestBytes = 8 << 20

// shutdownTimeout bounds how long Serve waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// Handler returns the HTTP API of the evaluation service.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", a.healthHandler)
	r.Post("/evaluate", a.evaluateHandler)
	r.Handle("/metrics", promhttp.HandlerFor(a.metrics.Registry(), promhttp.HandlerOpts{}))

	return r
}

// requestLogger places the app logger, tagged with the request id, in the
// request context.
func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxlog.With(a.Context(r.Context()), "request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Serve listens on the configured port and serves the HTTP API until ctx is
// cancelled, then shuts the server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.ListenPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener serves the HTTP API on ln until ctx is cancelled.
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	a.httpServer = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return a.Context(context.Background()) },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Evaluation server starting", "address", fmt.Sprintf("http://%s", ln.Addr()))
		// Serve returns http.ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("Evaluation server failed unexpectedly", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	return a.closeServer()
}

func (a *App) closeServer() error {
	a.logger.Debug("Closing evaluation server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Evaluation server shutdown failed", "error", err)
		return err
	}

	a.logger.Info("Evaluation server shut down gracefully.")
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// evaluateHandler answers POST /evaluate. The body is a JSON mapping of
// coordinate to raw cell text and the response maps every coordinate to its
// result record.
func (a *App) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		a.metrics.observeFailure(outcomeBadRequest)
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		a.respond(w, status, errorResponse{Error: err.Error()})
		return
	}

	snapshot, err := DecodeSnapshot(body, EncodingJSON)
	if err != nil {
		a.metrics.observeFailure(outcomeBadRequest)
		logger.Warn("Evaluate: invalid request body", "error", err)
		a.respond(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	start := time.Now()
	records, err := a.evaluateWithTimeout(r.Context(), snapshot)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		a.metrics.observeFailure(outcomeTimeout)
		logger.Warn("Evaluate: timed out", "cells", len(snapshot), "timeout", a.config.EvalTimeout)
		a.respond(w, http.StatusGatewayTimeout, errorResponse{Error: "evaluation timed out"})
		return
	case errors.Is(err, context.Canceled):
		logger.Debug("Evaluate: request cancelled by client")
		return
	case err != nil:
		a.metrics.observeFailure(outcomeRejected)
		logger.Warn("Evaluate: snapshot rejected", "error", err)
		a.respond(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	a.metrics.observePass(records, time.Since(start))
	a.respond(w, http.StatusOK, records)
}

type passResult struct {
	records map[string]result.Record
	err     error
}

// evaluateWithTimeout runs one pass bounded by the configured timeout. When
// the deadline passes first, the pass is abandoned: the engine notices the
// cancelled context before its next cell and its state is dropped with the
// goroutine.
func (a *App) evaluateWithTimeout(ctx context.Context, snapshot map[string]string) (map[string]result.Record, error) {
	if a.config.EvalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.EvalTimeout)
		defer cancel()
	}

	done := make(chan passResult, 1)
	go func() {
		records, err := a.engine.Evaluate(ctx, snapshot)
		done <- passResult{records: records, err: err}
	}()

	select {
	case res := <-done:
		return res.records, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *App) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := writeJSON(w, v); err != nil {
		a.logger.Error("Failed to write response", "error", err)
	}
}
