package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/shopkit/auth-service/auth"
)

const contentTypeJSON = "application/json; charset=utf-8"

// maxBodyBytes caps request bodies; auth payloads are tiny.
const maxBodyBytes = 1 << 16

func decodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeRejection maps a resolution failure onto the HTTP contract: 401 for
// any unresolved credential state, 403 only for a resolved principal lacking
// the required role, 500 only for infrastructure failure - never for "just
// not logged in".
func writeRejection(w http.ResponseWriter, reason error) {
	switch {
	case stderrors.Is(reason, auth.ErrStoreUnavailable):
		writeError(w, http.StatusInternalServerError, "store unavailable")
	case stderrors.Is(reason, auth.ErrRoleForbidden):
		writeError(w, http.StatusForbidden, "insufficient role")
	default:
		writeError(w, http.StatusUnauthorized, "not authenticated")
	}
}
