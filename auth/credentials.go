package auth

import (
	"net/http"
	"net/url"
	"strings"
)

// Cookie names shared between the extractor and the HTTP boundary.
const (
	CookieSession      = "user_session"  // http-only session identifier
	CookieEmail        = "user_email"    // readable by the client for display
	CookieAuthToken    = "auth_token"    // http-only bearer token
	CookieAdminSession = "admin_session" // http-only admin gate token
	CookieAuthStatus   = "auth_status"   // readable UI hint, never trusted
)

// Credentials are the typed candidates extracted from a request. Zero or more
// fields may be populated; the resolver decides what they amount to.
type Credentials struct {
	BearerToken string
	SessionID   string
	Email       string
	AdminToken  string
}

// HasBearer reports whether a bearer token was presented.
func (c Credentials) HasBearer() bool {
	return c.BearerToken != ""
}

// HasSessionPair reports whether both halves of the cookie-session pair were
// presented.
func (c Credentials) HasSessionPair() bool {
	return c.SessionID != "" && c.Email != ""
}

// BearerFromAuthorizationHeader extracts the token from an
// "Authorization: Bearer <token>" header. Returns "" for anything else.
func BearerFromAuthorizationHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// FromCookieHeader parses a raw "Cookie:" header value. Some callers only
// have the raw header string rather than a structured request, so this path
// has to work standalone.
func FromCookieHeader(rawHeader string) Credentials {
	var creds Credentials
	for _, pair := range strings.Split(rawHeader, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		switch name {
		case CookieSession:
			creds.SessionID = value
		case CookieEmail:
			creds.Email = value
		case CookieAuthToken:
			creds.BearerToken = value
		case CookieAdminSession:
			creds.AdminToken = value
		}
	}
	return creds
}

// FromRequest extracts all candidate credentials from a request: the
// Authorization header first, then the structured cookie accessor, then the
// raw Cookie header for anything the structured path missed.
func FromRequest(r *http.Request) Credentials {
	creds := FromCookieHeader(r.Header.Get("Cookie"))

	if c, err := r.Cookie(CookieSession); err == nil && c.Value != "" {
		creds.SessionID = c.Value
	}
	if c, err := r.Cookie(CookieEmail); err == nil && c.Value != "" {
		if decoded, err := url.QueryUnescape(c.Value); err == nil {
			creds.Email = decoded
		} else {
			creds.Email = c.Value
		}
	}
	if c, err := r.Cookie(CookieAdminSession); err == nil && c.Value != "" {
		creds.AdminToken = c.Value
	}

	// A bearer token in the Authorization header wins over the cookie copy.
	if bearer := BearerFromAuthorizationHeader(r.Header.Get("Authorization")); bearer != "" {
		creds.BearerToken = bearer
	} else if c, err := r.Cookie(CookieAuthToken); err == nil && c.Value != "" {
		creds.BearerToken = c.Value
	}

	return creds
}
