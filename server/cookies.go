package server

import (
	"net/http"
	"net/url"

	"github.com/shopkit/auth-service/auth"
)

// Cookie lifetimes in seconds.
const (
	sessionCookieMaxAge = 30 * 24 * 60 * 60 // 30 days
	tokenCookieMaxAge   = 7 * 24 * 60 * 60  // 7 days
	adminCookieMaxAge   = 8 * 60 * 60       // 8 hours
)

// CookiePolicy is a pure mapping from "what just happened" to the cookies the
// response should carry. Handlers apply its output with http.SetCookie; the
// policy itself never touches a ResponseWriter.
type CookiePolicy struct {
	// Secure marks cookies Secure, true outside local development.
	Secure bool
}

func (p CookiePolicy) cookie(name, value string, maxAge int, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (p CookiePolicy) expired(name string, httpOnly bool) *http.Cookie {
	return p.cookie(name, "", -1, httpOnly)
}

// SessionCookies are issued on login: the http-only session id and bearer
// token, plus the client-readable email and auth-status hint. The status
// cookie is a UI convenience only and is never trusted for authorization.
func (p CookiePolicy) SessionCookies(sessionID, email, bearerToken string) []*http.Cookie {
	return []*http.Cookie{
		p.cookie(auth.CookieSession, sessionID, sessionCookieMaxAge, true),
		p.cookie(auth.CookieEmail, url.QueryEscape(email), sessionCookieMaxAge, false),
		p.cookie(auth.CookieAuthToken, bearerToken, tokenCookieMaxAge, true),
		p.cookie(auth.CookieAuthStatus, "authenticated", sessionCookieMaxAge, false),
	}
}

// RefreshedSessionCookies extend the session pair's lifetime on successful
// validation without reissuing the bearer token.
func (p CookiePolicy) RefreshedSessionCookies(sessionID, email string) []*http.Cookie {
	return []*http.Cookie{
		p.cookie(auth.CookieSession, sessionID, sessionCookieMaxAge, true),
		p.cookie(auth.CookieEmail, url.QueryEscape(email), sessionCookieMaxAge, false),
		p.cookie(auth.CookieAuthStatus, "authenticated", sessionCookieMaxAge, false),
	}
}

// ClearedSessionCookies expire every customer-path cookie on logout.
func (p CookiePolicy) ClearedSessionCookies() []*http.Cookie {
	return []*http.Cookie{
		p.expired(auth.CookieSession, true),
		p.expired(auth.CookieEmail, false),
		p.expired(auth.CookieAuthToken, true),
		p.expired(auth.CookieAuthStatus, false),
	}
}

// AdminSessionCookie carries the admin gate token.
func (p CookiePolicy) AdminSessionCookie(tokenValue string) *http.Cookie {
	return p.cookie(auth.CookieAdminSession, tokenValue, adminCookieMaxAge, true)
}

// ClearedAdminSessionCookie expires the admin gate cookie.
func (p CookiePolicy) ClearedAdminSessionCookie() *http.Cookie {
	return p.expired(auth.CookieAdminSession, true)
}

func setCookies(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
}
