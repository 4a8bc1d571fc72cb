package api

import (
	"net/http"

	"github.com/civilllm/civilllm/internal/rag"
)

// health is a simple health check endpoint for Docker/Kubernetes probes.
// Returns 200 OK with {"status":"ok"}.
func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readiness reports whether the server can answer questions, including
// knowledge store stats. The store being empty does not fail readiness:
// retrieval is optional, answering is not.
func readiness(store *rag.Store, configured bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := "ok"
		code := http.StatusOK
		if !configured {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		body := map[string]any{
			"status": status,
			"model":  configured,
		}
		if store != nil {
			body["knowledge"] = map[string]any{
				"domain": store.Domain(),
				"chunks": store.Count(),
			}
		}
		writeJSON(w, code, body)
	})
}
