package server

import (
	stderrors "errors"
	"net/http"

	"github.com/shopkit/auth-service/auth"
	"github.com/shopkit/auth-service/users"
)

type adminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginHandler exchanges the shared admin secret for an admin session
// cookie. A wrong secret gets 401 and no cookie.
func (s *Server) AdminLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := decodeJSONBody(r, &req); err != nil || req.Password == "" {
			writeError(w, http.StatusBadRequest, "password is required")
			return
		}

		tokenValue, err := s.gate.Login(req.Password)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		http.SetCookie(w, s.cookies.AdminSessionCookie(tokenValue))
		writeJSON(w, http.StatusOK, map[string]string{"status": "admin session created"})
	}
}

// ValidateAdminHandler is the strict admin path: store-backed session
// resolution plus a role check. A resolved customer gets 403, not 401.
func (s *Server) ValidateAdminHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := auth.FromRequest(r)

		ctx, cancel := s.storeContext(r)
		defer cancel()

		result := s.resolver.Resolve(ctx, creds)
		if err := auth.RequireRole(result, users.RoleAdmin); err != nil {
			writeRejection(w, err)
			return
		}

		writeJSON(w, http.StatusOK, validateResponse{
			User:     result.Principal,
			Fallback: result.Status == auth.StatusFallback,
		})
	}
}

// ValidateAdminSessionHandler checks the admin credential according to the
// configured gate mode and refreshes the cookie's lifetime on success.
func (s *Server) ValidateAdminSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := auth.FromRequest(r)

		ctx, cancel := s.storeContext(r)
		defer cancel()

		if err := s.gate.Validate(ctx, creds); err != nil {
			if stderrors.Is(err, auth.ErrStoreUnavailable) {
				writeError(w, http.StatusInternalServerError, "store unavailable")
				return
			}
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		if creds.AdminToken != "" {
			http.SetCookie(w, s.cookies.AdminSessionCookie(creds.AdminToken))
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "admin session valid"})
	}
}

// AdminLogoutHandler clears the admin session cookie. There is no server-side
// record to remove.
func (s *Server) AdminLogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, s.cookies.ClearedAdminSessionCookie())
		writeJSON(w, http.StatusOK, map[string]string{"status": "admin session cleared"})
	}
}

// CheckAuthHandler is the cheap presence-only check: a non-empty admin
// session cookie is the entire test, with no signature or store lookup.
func (s *Server) CheckAuthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.CookieAdminSession)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "authenticated"})
	}
}
