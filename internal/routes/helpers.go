package routes

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	pkghttpx "adaptrack-server/pkg/httpx"
	pkgrequestctx "adaptrack-server/pkg/requestctx"
)

// writeJSON is a tiny helper for handlers in this package.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError standardizes error responses and logs with correlation id.
func writeError(w http.ResponseWriter, r *http.Request, he *pkghttpx.HTTPError) {
	cid := pkgrequestctx.CorrelationID(r.Context())
	if cid != "" {
		w.Header().Set("X-Correlation-Id", cid)
	}
	payload := map[string]any{
		"error": map[string]any{
			"code":           he.Code,
			"message":        he.Message,
			"correlation_id": cid,
		},
	}
	if he.Details != nil {
		payload["error"].(map[string]any)["details"] = he.Details
	}
	status := he.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	log.Error().Str("correlation_id", cid).Str("code", he.Code).Err(he.Err).Msg(he.Message)
	writeJSON(w, status, payload)
}

// currentUser reads the authenticated user id injected by the auth
// middleware. Handlers behind the middleware can assume ok.
func currentUser(r *http.Request) (int64, bool) {
	return pkgrequestctx.UserID(r.Context())
}

// pathID parses the named path value as an int64 id.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
