package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/config"
)

// ClockSkew is the leeway applied to exp/iat checks.
const ClockSkew = 30 * time.Second

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	signingMethod = jwt.SigningMethodHS256
)

// keyring is the validated form of JWTConfig.
type keyring struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func newKeyring(cfg config.JWTConfig) (keyring, error) {
	switch {
	case cfg.Secret == "":
		return keyring{}, errors.New("jwt secret is required")
	case strings.TrimSpace(cfg.Issuer) == "":
		return keyring{}, errors.New("jwt issuer is required")
	}
	return keyring{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    time.Duration(cfg.ExpirationMinutes) * time.Minute,
	}, nil
}

func (k keyring) key(token *jwt.Token) (interface{}, error) {
	if token.Method != signingMethod {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return k.secret, nil
}

// MintAccessToken signs a token for payload valid from now for the configured TTL.
// Logins happen in the identity service; this backs tooling and tests.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	keys, err := newKeyring(cfg)
	if err != nil {
		return "", err
	}
	if keys.ttl <= 0 {
		return "", errors.New("jwt expiration minutes must be positive")
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}
	claims := AccessTokenClaims{
		UserID:        payload.UserID,
		ActiveStoreID: payload.ActiveStoreID,
		Role:          payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    keys.issuer,
			Subject:   payload.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(keys.ttl)),
			ID:        jti,
		},
	}
	if err := claims.validate(); err != nil {
		return "", err
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(keys.secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, issuer and expiry and returns the
// typed claims. Failures wrap ErrTokenExpired or ErrTokenInvalid.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	keys, err := newKeyring(cfg)
	if err != nil {
		return nil, err
	}

	claims := &AccessTokenClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, keys.key,
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(keys.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(ClockSkew),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if err := claims.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims, nil
}
