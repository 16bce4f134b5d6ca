package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alphabatem/common/context"

	"github.com/nimbus-sec/authgate/model"
	"github.com/nimbus-sec/authgate/shared"
)

// JWTService is the token codec: it issues and verifies HMAC-SHA256 signed
// identity tokens. Operations are pure; the service holds only configuration.
type JWTService struct {
	context.DefaultService

	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	jwtSecretKey         string
}

const JWT_SVC = "jwt_svc"

// Claim key for the token kind (access/refresh).
const kindClaim = "type"

func (svc JWTService) Id() string {
	return JWT_SVC
}

func (svc *JWTService) Configure(ctx *context.Context) error {
	svc.jwtSecretKey = os.Getenv("JWT_SECRET")
	svc.AccessTokenDuration = envSeconds("ACCESS_TOKEN_TTL_SECONDS", time.Hour)
	svc.RefreshTokenDuration = envSeconds("REFRESH_TOKEN_TTL_SECONDS", 7*24*time.Hour)
	return svc.DefaultService.Configure(ctx)
}

func (svc *JWTService) Start() error {
	if svc.jwtSecretKey == "" {
		return errors.New("JWT_SECRET is not set")
	}
	return nil
}

// Issue signs a token embedding subject, issued-at = now, expires-at =
// now + ttl, the token kind and any extra claims. Extra claims never
// override the reserved fields.
func (svc *JWTService) Issue(subject, kind string, ttl time.Duration, extra map[string]interface{}) (string, error) {
	if subject == "" {
		return "", errors.New("subject must not be empty")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     subject,
		"iat":     jwt.NewNumericDate(now),
		"exp":     jwt.NewNumericDate(now.Add(ttl)),
		kindClaim: kind,
	}

	for k, v := range extra {
		if _, reserved := claims[k]; reserved {
			continue
		}
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(svc.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}

	return signed, nil
}

// Verify validates signature and expiry and returns the decoded claims.
// Expired tokens fail with shared.ErrTokenExpired; every other failure wraps
// shared.ErrTokenMalformed so no library internals escape the codec.
func (svc *JWTService) Verify(tokenString string) (*model.Claims, error) {
	token, err := jwt.Parse(tokenString, svc.getJWTKey, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenMalformed, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, shared.ErrTokenMalformed
	}

	claims, err := claimsFromMap(mapClaims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenMalformed, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", shared.ErrTokenMalformed)
	}

	return claims, nil
}

// PeekUnverified decodes the claims without checking the signature or
// expiry. Inspection only: callers must never authorize on its output.
func (svc *JWTService) PeekUnverified(tokenString string) (*model.Claims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenMalformed, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, shared.ErrTokenMalformed
	}

	claims, err := claimsFromMap(mapClaims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenMalformed, err)
	}

	return claims, nil
}

// ExtractTokenFromHeader pulls the bearer token out of an Authorization
// header value: exactly two whitespace-separated parts, the first
// case-insensitively "bearer".
func (svc *JWTService) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", shared.ErrMissingAuthHeader
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", shared.ErrInvalidAuthHeader
	}

	return parts[1], nil
}

func (svc *JWTService) getJWTKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	return []byte(svc.jwtSecretKey), nil
}

func claimsFromMap(mapClaims jwt.MapClaims) (*model.Claims, error) {
	sub, err := mapClaims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %v", err)
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("missing or invalid expiration claim")
	}

	iat, err := mapClaims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid issued-at claim: %v", err)
	}

	claims := &model.Claims{
		Subject:   sub,
		ExpiresAt: exp.Time,
	}
	if iat != nil {
		claims.IssuedAt = iat.Time
	}

	if kind, ok := mapClaims[kindClaim].(string); ok {
		claims.Kind = kind
	}

	for k, v := range mapClaims {
		switch k {
		case "sub", "iat", "exp", kindClaim:
			continue
		}
		if claims.Extra == nil {
			claims.Extra = make(map[string]interface{})
		}
		claims.Extra[k] = v
	}

	return claims, nil
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
