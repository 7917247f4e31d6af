package server

import (
	stderrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shopkit/auth-service/auth"
	"github.com/shopkit/auth-service/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string         `json:"token"`
	User  auth.Principal `json:"user"`
}

type validateResponse struct {
	User auth.Principal `json:"user"`
	// Fallback marks degraded-trust authentication: the presented session id
	// did not match a stored session, but the account exists. Write-path
	// consumers should treat it differently from full authentication.
	Fallback bool `json:"fallback,omitempty"`
}

// LoginHandler verifies an email/password pair, creates a session and issues
// the bearer token plus the full cookie set.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSONBody(r, &req); err != nil || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		ctx, cancel := s.storeContext(r)
		defer cancel()

		user, err := s.users.GetByEmail(ctx, req.Email)
		if stderrors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			log.Err(err).Msg("user lookup failed during login")
			writeError(w, http.StatusInternalServerError, "store unavailable")
			return
		}

		if !users.CheckPasswordHash(req.Password, user.PasswordHash) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		bearer, err := s.tokens.Issue(user.ID, user.Email, user.Role)
		if err != nil {
			log.Err(err).Msg("token issuance failed")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		sessionID := uuid.New().String()
		if err := s.sessions.Create(ctx, user.ID, sessionID); err != nil {
			log.Err(err).Str("user_id", user.ID).Msg("session creation failed")
			writeError(w, http.StatusInternalServerError, "store unavailable")
			return
		}

		setCookies(w, s.cookies.SessionCookies(sessionID, user.Email, bearer))
		writeJSON(w, http.StatusOK, loginResponse{
			Token: bearer,
			User:  auth.Principal{UserID: user.ID, Email: user.Email, Role: user.Role},
		})
	}
}

// LogoutHandler invalidates the current session, if one can be identified,
// and clears every customer-path cookie either way.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := auth.FromRequest(r)

		if creds.HasSessionPair() {
			ctx, cancel := s.storeContext(r)
			defer cancel()

			user, err := s.users.GetByEmail(ctx, creds.Email)
			switch {
			case stderrors.Is(err, users.ErrNotFound):
				// Nothing stored to invalidate; clearing cookies is enough.
			case err != nil:
				log.Err(err).Msg("user lookup failed during logout")
				writeError(w, http.StatusInternalServerError, "store unavailable")
				return
			default:
				if err := s.sessions.Invalidate(ctx, user.ID, creds.SessionID); err != nil {
					log.Err(err).Str("user_id", user.ID).Msg("session invalidation failed")
					writeError(w, http.StatusInternalServerError, "store unavailable")
					return
				}
			}
		}

		setCookies(w, s.cookies.ClearedSessionCookies())
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

// ValidateSessionHandler resolves the caller's credentials and refreshes the
// session cookies on success.
func (s *Server) ValidateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := auth.FromRequest(r)

		ctx, cancel := s.storeContext(r)
		defer cancel()

		result := s.resolver.Resolve(ctx, creds)
		if !result.Resolved() {
			writeRejection(w, result.Reason)
			return
		}

		if creds.SessionID != "" {
			setCookies(w, s.cookies.RefreshedSessionCookies(creds.SessionID, result.Principal.Email))
		}
		writeJSON(w, http.StatusOK, validateResponse{
			User:     result.Principal,
			Fallback: result.Status == auth.StatusFallback,
		})
	}
}
