package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	_ "github.com/nimbus-sec/authgate/docs"
	"github.com/nimbus-sec/authgate/services/handlers"
	"github.com/nimbus-sec/authgate/shared"
)

// Route policies. None is open, Optional attaches identity when present,
// Required rejects anonymous callers, Role additionally gates on a role.
type routePolicy int

const (
	policyNone routePolicy = iota
	policyOptional
	policyRequired
	policyRole
)

type route struct {
	method    string
	path      string
	policy    routePolicy
	roles     []string
	limitType string
	handler   fiber.Handler
}

// HttpService is the public API surface: it owns the fiber app, the route
// table and the boundary where AppErrors become error envelopes.
type HttpService struct {
	context.DefaultService

	jwtSvc        *JWTService
	accountSvc    *AccountService
	knowledgeSvc  *KnowledgeService
	rateLimitSvc  *RateLimitService
	authMW        *AuthMiddleware
	monitoringSvc *MonitoringService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.accountSvc = svc.Service(ACCOUNT_SVC).(*AccountService)
	svc.knowledgeSvc = svc.Service(KNOWLEDGE_SVC).(*KnowledgeService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.authMW = svc.Service(AUTH_MIDDLEWARE_SVC).(*AuthMiddleware)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.app = svc.buildApp()

	log.WithField("port", svc.port).Info("HTTP server starting")
	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// buildApp assembles the fiber app and route table. Split from Start so
// tests can exercise the full middleware chain without a listener.
func (svc *HttpService) buildApp() *fiber.App {
	app := fiber.New(fiber.Config{
		CaseSensitive: false,
		ErrorHandler:  svc.handleError,
		JSONEncoder:   shared.JSONMarshal,
		JSONDecoder:   shared.JSONUnmarshal,
	})

	app.Use(recover.New())
	app.Use(svc.corsMiddleware())
	app.Use(MonitoringMiddleware(svc.monitoringSvc))
	app.Use(svc.rateLimitSvc.Limit(EndpointTypeGeneral))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	authHandler := handlers.NewAuthHandler(svc.accountSvc, svc.jwtSvc)
	profileHandler := handlers.NewProfileHandler(svc.accountSvc)
	knowledgeHandler := handlers.NewKnowledgeHandler(svc.knowledgeSvc)
	adminHandler := handlers.NewAdminHandler(svc.rateLimitSvc)

	routes := []route{
		{fiber.MethodGet, "/api/v1/ping", policyNone, nil, "", svc.ping},

		{fiber.MethodPost, "/api/v1/auth/register", policyNone, nil, "register", authHandler.Register},
		{fiber.MethodPost, "/api/v1/auth/login", policyNone, nil, "login", authHandler.Login},
		{fiber.MethodPost, "/api/v1/auth/refresh", policyNone, nil, "refresh", authHandler.RefreshToken},
		{fiber.MethodPost, "/api/v1/auth/logout", policyOptional, nil, "", authHandler.Logout},
		{fiber.MethodPost, "/api/v1/auth/password/reset", policyNone, nil, "forgot_password", authHandler.RequestPasswordReset},
		{fiber.MethodPost, "/api/v1/auth/password/reset/confirm", policyNone, nil, "reset_password", authHandler.ConfirmPasswordReset},

		{fiber.MethodGet, "/api/v1/profile", policyRequired, nil, "", profileHandler.GetProfile},
		{fiber.MethodPut, "/api/v1/profile", policyRequired, nil, "profile_update", profileHandler.UpdateProfile},

		{fiber.MethodGet, "/api/v1/knowledge", policyOptional, nil, "", knowledgeHandler.GetEntries},

		{fiber.MethodGet, "/api/v1/admin/rate-limits", policyRole, []string{"admin"}, "", adminHandler.GetRateLimits},
		{fiber.MethodPost, "/api/v1/admin/rate-limits/reset", policyRole, []string{"admin"}, "", adminHandler.ResetRateLimit},
	}

	for _, r := range routes {
		app.Add(r.method, r.path, svc.chain(r)...)
	}

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseError(c, http.StatusNotFound, "page not found", shared.CodeNotFound)
	})

	return app
}

// chain builds the per-route middleware stack: auth policy first so the rate
// limiter can key on the authenticated subject, then the endpoint budget.
func (svc *HttpService) chain(r route) []fiber.Handler {
	var hs []fiber.Handler

	switch r.policy {
	case policyOptional:
		hs = append(hs, svc.authMW.OptionalAuth())
	case policyRequired:
		hs = append(hs, svc.authMW.RequiredAuth())
	case policyRole:
		hs = append(hs, svc.authMW.RequiredAuth(), svc.authMW.RequireRole(r.roles...))
	}

	if r.limitType != "" {
		hs = append(hs, svc.rateLimitSvc.Limit(r.limitType))
	}

	return append(hs, r.handler)
}

func (svc *HttpService) corsMiddleware() fiber.Handler {
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		origins = "*"
	}

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: strings.Join([]string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodPut,
			fiber.MethodDelete,
			fiber.MethodOptions,
		}, ","),
		AllowHeaders: "Content-Type,Authorization",
		MaxAge:       3600,
	})
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.MessageBody
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseMessage(c, http.StatusOK, "pong")
}

// handleError is the single point where errors become the error envelope.
func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseError(c, appErr.StatusCode, appErr.Message, appErr.ErrorCode)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := shared.CodeInternalError
		if fiberErr.Code < http.StatusInternalServerError {
			code = shared.CodeValidationFailed
		}
		return shared.ResponseError(c, fiberErr.Code, fiberErr.Message, code)
	}

	log.WithError(err).Error("Unhandled error")
	return shared.ResponseError(c, http.StatusInternalServerError, "internal server error", shared.CodeInternalError)
}
