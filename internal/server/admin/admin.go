// Package admin serves the operator HTTP surface: health, prometheus
// metrics and a read-only view of the signal journal.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/logging"
	"github.com/dmitrijs2005/hireledger/internal/signals"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxSignalsPage caps one /signals response.
const MaxSignalsPage = 500

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NewRouter builds the admin routes. journal may be nil, in which case
// /signals is not served.
func NewRouter(ping Pinger, gatherer prometheus.Gatherer, journal *signals.Journal) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if journal != nil {
		r.Get("/signals", func(w http.ResponseWriter, r *http.Request) {
			var after uint64
			if v := r.URL.Query().Get("after"); v != "" {
				n, err := strconv.ParseUint(v, 10, 64)
				if err != nil {
					writeJSON(w, http.StatusBadRequest, map[string]string{"error": "after must be a sequence number"})
					return
				}
				after = n
			}

			page := []signals.Signal{}
			errPageFull := errors.New("page full")
			err := journal.Replay(r.Context(), after, func(sig signals.Signal) error {
				page = append(page, sig)
				if len(page) == MaxSignalsPage {
					return errPageFull
				}
				return nil
			})
			if err != nil && !errors.Is(err, errPageFull) {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "journal unavailable"})
				return
			}
			writeJSON(w, http.StatusOK, page)
		})
	}

	return r
}

type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewServer(address string, handler http.Handler, l logging.Logger) *Server {
	return &Server{address: address, handler: handler, logger: l.With("module", "admin_server")}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping admin server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting admin server", "address", s.address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
