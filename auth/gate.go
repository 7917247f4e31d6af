package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/shopkit/auth-service/users"
)

// GateMode is the tagged admin authentication strategy. Exactly one is
// chosen at startup; the two are never mixed ad hoc.
type GateMode string

const (
	// GateModeSharedSecret accepts one shared password and issues an opaque
	// signed session token that is never checked against the store.
	GateModeSharedSecret GateMode = "shared-secret"
	// GateModeStoreBacked resolves the cookie-session pair against the store
	// and additionally requires the admin role.
	GateModeStoreBacked GateMode = "store-backed"
)

// AdminSessionLifetime is how long an admin gate token stays valid.
const AdminSessionLifetime = 8 * time.Hour

// Gate is the administrative authentication path. The shared-secret flavour
// is intentionally weaker than customer authentication: the cookie value is
// the entire credential, with no server-side record behind it. The token is
// HMAC-signed with an embedded expiry so it at least cannot be forged or
// live forever, which preserves the external contract of
// "cookie accepted => admin request accepted".
type Gate struct {
	mode     GateMode
	password string
	secret   []byte
	resolver *Resolver
	nowTime  func() time.Time
}

// GateOption defines a function type to modify the Gate instance.
type GateOption func(*Gate)

// WithGateNowTime sets the now time function (primarily for testing)
func WithGateNowTime(nowFunc func() time.Time) GateOption {
	return func(g *Gate) {
		g.nowTime = nowFunc
	}
}

// NewGate initializes the admin gate. The resolver is required only for
// store-backed mode; the signing secret always is.
func NewGate(mode GateMode, password string, secret []byte, resolver *Resolver, options ...GateOption) (*Gate, error) {
	if mode != GateModeSharedSecret && mode != GateModeStoreBacked {
		return nil, errors.Errorf("[NewGate] unknown gate mode %q", mode)
	}
	if len(secret) == 0 {
		return nil, errors.New("[NewGate] signing secret is required")
	}
	if mode == GateModeStoreBacked && resolver == nil {
		return nil, errors.New("[NewGate] resolver is required for store-backed mode")
	}

	gate := &Gate{
		mode:     mode,
		password: password,
		secret:   secret,
		resolver: resolver,
		nowTime:  time.Now,
	}

	for _, opt := range options {
		opt(gate)
	}

	return gate, nil
}

func (g *Gate) Mode() GateMode {
	return g.mode
}

// Login checks the supplied password against the shared secret and mints an
// admin session token. In store-backed mode shared-secret login is disabled
// and admins authenticate through the regular login flow instead.
func (g *Gate) Login(password string) (string, error) {
	if g.mode == GateModeStoreBacked {
		log.Warn().Msg("shared-secret admin login attempted while gate is store-backed")
		return "", ErrInvalidCredentials
	}
	if g.password == "" {
		log.Warn().Msg("admin login attempted but no admin password is configured")
		return "", ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		return "", ErrInvalidCredentials
	}

	expiresAt := g.nowTime().Add(AdminSessionLifetime).Unix()
	payload := uuid.New().String() + "." + strconv.FormatInt(expiresAt, 10)
	return payload + "." + g.sign(payload), nil
}

// Validate checks an admin credential according to the gate's mode. A nil
// return means the request is accepted as administrative.
func (g *Gate) Validate(ctx context.Context, creds Credentials) error {
	switch g.mode {
	case GateModeStoreBacked:
		return RequireRole(g.resolver.Resolve(ctx, creds), users.RoleAdmin)
	default:
		return g.verifyAdminToken(creds.AdminToken)
	}
}

func (g *Gate) verifyAdminToken(tokenValue string) error {
	if tokenValue == "" {
		return ErrNoCredentials
	}

	parts := strings.Split(tokenValue, ".")
	if len(parts) != 3 {
		return ErrInvalidSession
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(g.sign(payload)), []byte(parts[2])) {
		return ErrInvalidSession
	}

	expiresAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || g.nowTime().Unix() > expiresAt {
		return ErrInvalidSession
	}
	return nil
}

func (g *Gate) sign(payload string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
