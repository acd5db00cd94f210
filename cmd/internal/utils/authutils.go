package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type TokenData struct {
	Sub   string
	Email string
	Exp   int64
}

// TokenVerifier validates a bearer token and extracts its identity claims.
type TokenVerifier interface {
	Verify(token string) (*TokenData, error)
}

// JWKSVerifier validates Cognito-issued tokens against the pool's public keys.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	issuer string
}

func NewJWKSVerifier(region, poolID string) (*JWKSVerifier, error) {
	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, poolID)
	// URL where Cognito publishes its public keys
	jwksURL := issuer + "/.well-known/jwks.json"

	jwks, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS from resource at %s: %w", jwksURL, err)
	}

	log.Infof("JWKS initialized. Keys loaded from %s", jwksURL)
	return &JWKSVerifier{jwks: jwks, issuer: issuer}, nil
}

// Verify parses AND validates the signature locally.
// It returns the data if the token is authentic and unexpired.
func (v *JWKSVerifier) Verify(tokenString string) (*TokenData, error) {
	clean := sanitizeToken(tokenString)
	if clean == "" {
		return nil, errors.New("empty token")
	}

	token, err := jwt.Parse(clean, v.jwks.Keyfunc, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return tokenDataFromClaims(token)
}

// HMACVerifier validates HS256 tokens signed with a shared secret. It backs
// local development and tests where no Cognito pool is reachable.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(tokenString string) (*TokenData, error) {
	clean := sanitizeToken(tokenString)
	token, err := jwt.Parse(clean, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return tokenDataFromClaims(token)
}

// Sign issues a token for the given subject. Only meaningful for HMAC setups.
func (v *HMACVerifier) Sign(sub, email string, exp int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   exp,
	})
	return token.SignedString(v.secret)
}

func ParseTokenDataCtx(ctx echo.Context, verifier TokenVerifier) (*TokenData, error) {
	token := ctx.Request().Header.Get(echo.HeaderAuthorization)
	return verifier.Verify(token)
}

func tokenDataFromClaims(token *jwt.Token) (*TokenData, error) {
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims format")
	}

	data := &TokenData{
		Sub:   getValue(claims, "sub"),
		Email: getValue(claims, "email"),
		Exp:   getInt64(claims, "exp"),
	}
	if data.Sub == "" {
		return nil, errors.New("token has no subject")
	}
	return data, nil
}

func sanitizeToken(token string) string {
	return strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
}

func getValue(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}

func getInt64(claims jwt.MapClaims, key string) int64 {
	val, ok := claims[key]
	if !ok {
		return 0
	}
	if f, ok := val.(float64); ok {
		return int64(f)
	}
	if i, ok := val.(int64); ok {
		return i
	}
	return 0
}
