package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

// Health answers "ok" when every dependency responds.
func Health(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				writeError(w, http.StatusServiceUnavailable, "unavailable", name+": "+err.Error())
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
