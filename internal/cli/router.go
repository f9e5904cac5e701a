package cli

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vnykmshr/taskflow/pkg/async/scheduler"
)

type healthResponse struct {
	Status    string `json:"status"`
	Scheduler string `json:"scheduler"`
	Workers   int    `json:"workers"`
	Pending   int    `json:"pending"`
	Executed  int64  `json:"executed"`
}

func newRouter(gatherer prometheus.Gatherer, s *scheduler.Scheduler, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	metricsHandler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		// Stats refreshes the queue depth gauges.
		s.Stats()
		metricsHandler.ServeHTTP(w, req)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		st := s.Stats()
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(healthResponse{
			Status:    "ok",
			Scheduler: s.Name(),
			Workers:   st.Workers,
			Pending:   st.Pending,
			Executed:  st.Executed,
		})
		if err != nil {
			logger.Warn("writing health response", "error", err)
		}
	})

	return r
}
