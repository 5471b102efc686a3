// Package auth verifies bearer tokens issued by the account service. It only
// maps a valid token to a login; owner ids are resolved by the caller.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds verification parameters.
type Config struct {
	Secret string
	Issuer string
}

// Identity is the authenticated caller.
type Identity struct {
	Login       string
	DisplayName string
}

var (
	// ErrMissingToken is returned when no bearer token was sent.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken wraps parsing and validation failures.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// Parse validates an HS256 token. The login is the email claim, falling back to sub.
func Parse(token string, cfg Config) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	subject, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	login := strings.TrimSpace(email)
	if login == "" {
		login = strings.TrimSpace(subject)
	}
	if login == "" {
		return nil, fmt.Errorf("%w: no email or sub claim", ErrInvalidToken)
	}
	return &Identity{Login: login, DisplayName: name}, nil
}

// Issue signs a token for login. It backs local tooling and tests; production
// tokens come from the account service.
func Issue(id Identity, cfg Config, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   id.Login,
		"email": id.Login,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	if id.DisplayName != "" {
		claims["name"] = id.DisplayName
	}
	if cfg.Issuer != "" {
		claims["iss"] = cfg.Issuer
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
