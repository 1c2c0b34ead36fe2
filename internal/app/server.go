package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statusHandler reports the finished session's report, the live
// progress snapshot while one runs, or idle.
func (a *App) statusHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var payload any
	switch live, ok := a.tracker.snapshot(); {
	case a.report() != nil && a.report().SessionID == live.SessionID:
		payload = a.report()
	case ok:
		payload = live
	default:
		fmt.Fprintln(w, `{"state":"idle"}`)
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("Status encoding failed", "error", err)
	}
}

// statusServer initializes and runs the status HTTP server: liveness,
// last-session status, and Prometheus metrics.
func (a *App) statusServer() {
	a.logger.Debug("Configuring status server.")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(a.promReg, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf(":%d", a.config.HealthcheckPort)
	a.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Run the server in a goroutine so it doesn't block.
	go func() {
		a.logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns http.ErrServerClosed on graceful
		// shutdown; anything else is a real failure.
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Status server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeStatusServer() error {
	if a.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down status server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Status server shutdown failed", "error", err)
		return err
	}
	return nil
}
