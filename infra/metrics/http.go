package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromHandler serves the metrics gathered by g.
func PromHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// NewServeMux mounts /metrics for g next to the given routes.
func NewServeMux(g prometheus.Gatherer, routes map[string]http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", PromHandler(g))
	for pattern, h := range routes {
		mux.Handle(pattern, h)
	}
	return mux
}

// StartPromServer serves /metrics from the default gatherer, plus routes, on
// addr until ctx is canceled.
func StartPromServer(ctx context.Context, addr string, routes map[string]http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewServeMux(prometheus.DefaultGatherer, routes),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
