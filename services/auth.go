package services

import (
	"errors"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/nimbus-sec/authgate/model"
	"github.com/nimbus-sec/authgate/shared"
)

// AuthMiddleware gates requests on bearer tokens. Three policies:
// RequiredAuth rejects anything without a valid token, OptionalAuth lets
// anonymous requests through but attaches identity when a valid token is
// present, RequireRole additionally demands the caller hold a role.
type AuthMiddleware struct {
	context.DefaultService

	jwtSvc        *JWTService
	revocationSvc *RevocationService
	monitoringSvc *MonitoringService
}

const AUTH_MIDDLEWARE_SVC = "auth_middleware_svc"

func (svc AuthMiddleware) Id() string {
	return AUTH_MIDDLEWARE_SVC
}

func (svc *AuthMiddleware) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthMiddleware) Start() error {
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.revocationSvc = svc.Service(REVOCATION_SVC).(*RevocationService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// RequiredAuth rejects the request with 401 unless it carries a valid,
// unrevoked access token. On success the subject and claims are attached to
// the request context.
func (svc *AuthMiddleware) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, appErr := svc.authenticate(c)
		if appErr != nil {
			svc.monitoringSvc.RecordAuthFailure(appErr.ErrorCode)
			return appErr
		}

		c.Locals(shared.UserID, claims.Subject)
		c.Locals(shared.Claims, claims)
		return c.Next()
	}
}

// OptionalAuth attaches identity when a valid token is present and treats
// every failure, including missing or revoked tokens, as anonymous. It never
// rejects.
func (svc *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, appErr := svc.authenticate(c)
		if appErr == nil {
			c.Locals(shared.UserID, claims.Subject)
			c.Locals(shared.Claims, claims)
		}
		return c.Next()
	}
}

// RequireRole runs after RequiredAuth and checks the caller holds one of the
// given roles. Role data is not yet carried in tokens, so the check admits
// every authenticated caller for now.
func (svc *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(shared.UserID).(string)
		if !ok || userID == "" {
			svc.monitoringSvc.RecordAuthFailure(shared.CodeAuthRequired)
			return shared.NewUnauthorizedError(shared.CodeAuthRequired, "authentication required")
		}

		// TODO: enforce once role claims are embedded at issuance.
		_ = roles

		return c.Next()
	}
}

// authenticate runs the verification pipeline in order: header present,
// header well-formed, token verified, token not revoked. The first failure
// wins and determines the error code.
func (svc *AuthMiddleware) authenticate(c *fiber.Ctx) (*model.Claims, *shared.AppError) {
	authHeader := c.Get(fiber.HeaderAuthorization)

	token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
	if err != nil {
		if errors.Is(err, shared.ErrMissingAuthHeader) {
			return nil, shared.NewUnauthorizedError(shared.CodeMissingToken, "authorization header is required")
		}
		return nil, shared.NewUnauthorizedError(shared.CodeInvalidAuthHeader, "authorization header must be in the format: Bearer <token>")
	}

	claims, err := svc.jwtSvc.Verify(token)
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			return nil, shared.NewUnauthorizedError(shared.CodeTokenExpired, "token has expired")
		}
		log.WithError(err).Debug("Token verification failed")
		return nil, shared.NewUnauthorizedError(shared.CodeInvalidToken, "invalid token")
	}

	if svc.revocationSvc.IsRevoked(token) {
		return nil, shared.NewUnauthorizedError(shared.CodeInvalidToken, "token has been revoked")
	}

	return claims, nil
}
