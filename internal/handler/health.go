package handler

import (
	"net/http"
	"time"
)

var startedAt = time.Now()

// HealthHandler reports process liveness. Upstream reachability is not part
// of liveness here: the service degrades per request, it does not die.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"uptime_seconds": int(time.Since(startedAt).Seconds()),
		})
	}
}
