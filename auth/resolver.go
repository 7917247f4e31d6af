package auth

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/shopkit/auth-service/sessions"
	"github.com/shopkit/auth-service/token"
	"github.com/shopkit/auth-service/users"
)

const defaultBestEffortTimeout = 3 * time.Second

// Resolver turns a request's candidate credentials into a single Result,
// applying the precedence policy: bearer token first, then the
// cookie-session pair, short-circuiting on the first success.
type Resolver struct {
	users    users.Repo
	sessions sessions.Store
	tokens   *token.Service

	// strict rejects unmatched session ids instead of degrading to fallback.
	strict bool

	// bestEffortTimeout bounds the detached refresh/self-heal writes.
	bestEffortTimeout time.Duration
}

// ResolverOption defines a function type to modify the Resolver instance.
type ResolverOption func(*Resolver)

// WithStrictSessions controls whether an unmatched session id is rejected
// outright or accepted as fallback authentication.
func WithStrictSessions(strict bool) ResolverOption {
	return func(r *Resolver) {
		r.strict = strict
	}
}

// WithBestEffortTimeout sets the timeout for detached refresh and self-heal
// store writes.
func WithBestEffortTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.bestEffortTimeout = d
	}
}

// NewResolver initializes a Resolver with required dependencies.
func NewResolver(userRepo users.Repo, sessionStore sessions.Store, tokenService *token.Service, options ...ResolverOption) (*Resolver, error) {
	if userRepo == nil {
		return nil, errors.New("[NewResolver] user repo is required")
	}
	if sessionStore == nil {
		return nil, errors.New("[NewResolver] session store is required")
	}
	if tokenService == nil {
		return nil, errors.New("[NewResolver] token service is required")
	}

	resolver := &Resolver{
		users:             userRepo,
		sessions:          sessionStore,
		tokens:            tokenService,
		bestEffortTimeout: defaultBestEffortTimeout,
	}

	for _, opt := range options {
		opt(resolver)
	}

	return resolver, nil
}

// Resolve applies the precedence and fallback policy.
//
// A bearer verification failure is not immediately fatal: the cookie-session
// pair may independently authenticate the same request, so resolution falls
// through to the cookie path and only the final exhausted outcome surfaces.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) Result {
	var bearerErr error

	if creds.HasBearer() {
		claims, err := r.tokens.Verify(creds.BearerToken)
		if err == nil {
			return Authenticated(Principal{
				UserID: claims.UserID,
				Email:  claims.Email,
				Role:   users.RoleFromString(claims.Role),
			})
		}
		bearerErr = err
		log.Debug().Err(err).Msg("bearer token rejected, trying cookie session")
	}

	if creds.HasSessionPair() {
		result, done := r.resolveSessionPair(ctx, creds)
		if done {
			return result
		}
	}

	if bearerErr != nil {
		return Rejected(bearerErr)
	}
	return Rejected(ErrNoCredentials)
}

// resolveSessionPair handles step 2. The boolean is false only when the user
// record does not exist, which falls through to the caller's rejection.
func (r *Resolver) resolveSessionPair(ctx context.Context, creds Credentials) (Result, bool) {
	user, err := r.users.GetByEmail(ctx, creds.Email)
	if stderrors.Is(err, users.ErrNotFound) {
		return Result{}, false
	}
	if err != nil {
		log.Error().Err(err).Msg("user lookup failed")
		return Rejected(ErrStoreUnavailable), true
	}

	principal := Principal{UserID: user.ID, Email: user.Email, Role: user.Role}

	valid, err := r.sessions.IsValid(ctx, user.ID, creds.SessionID)
	if err != nil {
		log.Error().Err(err).Msg("session validation failed")
		return Rejected(ErrStoreUnavailable), true
	}

	if valid {
		go r.refreshLastActive(user.ID, creds.SessionID)
		return Authenticated(principal), true
	}

	if r.strict {
		return Rejected(ErrInvalidSession), true
	}

	// The session id is unknown but the account exists. The upstream store
	// has a history of dropping session entries, so known-email requests are
	// accepted at degraded trust and the missing entry is re-created for
	// future calls. Callers see StatusFallback and choose for themselves.
	log.Warn().
		Str("user_id", user.ID).
		Msg("session id not found for known user, degrading to fallback")
	go r.selfHeal(user.ID, creds.SessionID)

	return Fallback(principal), true
}

// refreshLastActive is fire-and-forget: its failure never fails resolution.
func (r *Resolver) refreshLastActive(userID, sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.bestEffortTimeout)
	defer cancel()
	if err := r.sessions.RefreshLastActive(ctx, userID, sessionID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("last-active refresh failed")
	}
}

func (r *Resolver) selfHeal(userID, sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.bestEffortTimeout)
	defer cancel()
	if err := r.sessions.Create(ctx, userID, sessionID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("session self-heal failed")
	}
}
