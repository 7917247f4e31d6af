package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/shopkit/auth-service/auth"
	"github.com/shopkit/auth-service/internal/config"
	"github.com/shopkit/auth-service/sessions"
	"github.com/shopkit/auth-service/token"
	"github.com/shopkit/auth-service/users"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   *config.Config
	users    users.Repo
	sessions sessions.Store
	tokens   *token.Service
	resolver *auth.Resolver
	gate     *auth.Gate
	cookies  CookiePolicy
}

func New(cfg *config.Config, userRepo users.Repo, sessionStore sessions.Store) (*Server, error) {
	tokenService, err := token.New(cfg.TokenSecret)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] token service")
	}

	resolver, err := auth.NewResolver(
		userRepo,
		sessionStore,
		tokenService,
		auth.WithStrictSessions(cfg.StrictSessions),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] resolver")
	}

	gate, err := auth.NewGate(auth.GateMode(cfg.AdminGateMode), cfg.AdminPassword, []byte(cfg.TokenSecret), resolver)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] admin gate")
	}

	s := &Server{
		env:      cfg.Env,
		mux:      http.NewServeMux(),
		config:   cfg,
		users:    userRepo,
		sessions: sessionStore,
		tokens:   tokenService,
		resolver: resolver,
		gate:     gate,
		cookies:  CookiePolicy{Secure: cfg.IsProd()},
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Info().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Info().Str("path", parts[0]).Msg("route registered")
		}
	}
}

// storeContext bounds a document-store call by the configured timeout so no
// request hangs on the store.
func (s *Server) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.config.StoreTimeout)
}
