package token

import (
	stderrors "errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shopkit/auth-service/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Lifetime is how long an issued bearer token stays valid.
const Lifetime = 7 * 24 * time.Hour

var (
	ErrTokenExpired      = stderrors.New("token expired")
	ErrTokenMalformed    = stderrors.New("token malformed")
	ErrSignatureMismatch = stderrors.New("token signature mismatch")
)

// Claims is the bearer token payload: identity plus standard time claims.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwtlib.RegisteredClaims
}

// Service issues and verifies HS256-signed bearer tokens. It is a pure
// function of the secret and its input - no store access - so it runs fine in
// restricted execution environments.
type Service struct {
	secret []byte
}

// New creates a token service. An empty secret is refused: issuing tokens
// against a silently defaulted key would make every deployment share one.
func New(secret string) (*Service, error) {
	if secret == "" {
		return nil, errors.New("[token.New] signing secret is required")
	}
	return &Service{secret: []byte(secret)}, nil
}

// Issue signs a bearer token for the user, expiring in Lifetime.
func (s *Service) Issue(userID, email string, role users.Role) (string, error) {
	now := NowTimeFunc()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   string(role),
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(Lifetime)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "[Service.Issue] sign")
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// Failures map onto ErrTokenExpired, ErrSignatureMismatch or
// ErrTokenMalformed. Absence of a token is the caller's concern - Verify is
// never called with an empty string by the resolver.
func (s *Service) Verify(rawToken string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(
		rawToken,
		&Claims{},
		func(t *jwtlib.Token) (any, error) { return s.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }),
	)
	if err != nil {
		switch {
		case stderrors.Is(err, jwtlib.ErrTokenExpired):
			return nil, ErrTokenExpired
		case stderrors.Is(err, jwtlib.ErrTokenSignatureInvalid):
			return nil, ErrSignatureMismatch
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
