package boats

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/porttwin/core/boatstatus"
)

// NewStatusHandler returns an HTTP handler exposing boat status data via GET /api/boats/status.
func NewStatusHandler(store boatstatus.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		f := boatstatus.Filter{
			Port:   r.URL.Query().Get("port"),
			Status: r.URL.Query().Get("status"),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(store.List(f)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
