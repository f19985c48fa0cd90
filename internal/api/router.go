package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/smartlpd/enforcement-api/docs"
	"github.com/smartlpd/enforcement-api/internal/api/handler"
	"github.com/smartlpd/enforcement-api/internal/api/middleware"
	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

// Deps carries everything the HTTP layer needs. Services are built by the
// caller so the router stays free of storage details.
type Deps struct {
	JWTSecret string
	Log       zerolog.Logger

	Auth      ports.AuthService
	Fines     ports.FineService
	Detection ports.DetectionService

	// Limiter throttles the auth and detect routes. Nil disables rate limiting.
	Limiter middleware.Limiter

	Readiness *handler.HealthDependenciesHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddleware("smartlpd"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth)
	fineHandler := handler.NewFineHandler(d.Fines)
	detectionHandler := handler.NewDetectionHandler(d.Detection)

	requireAuth := middleware.Auth(d.JWTSecret)
	anyRole := []echo.MiddlewareFunc{requireAuth}
	authority := []echo.MiddlewareFunc{requireAuth, middleware.RBAC(domain.RoleAuthority)}

	throttle := func(group string) echo.MiddlewareFunc {
		if d.Limiter == nil {
			return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
		}
		return middleware.RateLimit(group, d.Limiter, d.Log)
	}

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/register", authHandler.Register, throttle("auth"))
	api.POST("/auth/login", authHandler.Login, throttle("auth"))

	// --- Detection routes ---
	api.POST("/detect", detectionHandler.Detect, requireAuth, throttle("detect"))
	api.GET("/detect/health", detectionHandler.MLHealth, anyRole...)
	api.GET("/detections", detectionHandler.History, anyRole...)

	// --- Fine routes ---
	api.GET("/fines/check", fineHandler.Check, anyRole...)
	api.POST("/fines/pay/:id", fineHandler.Pay, anyRole...)

	api.POST("/fines", fineHandler.Create, authority...)
	api.GET("/fines", fineHandler.List, authority...)
	api.GET("/fines/search", fineHandler.Search, authority...)
	api.GET("/fines/stats", fineHandler.Stats, authority...)
	api.PUT("/fines/:id/status", fineHandler.UpdateStatus, authority...)

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness) // liveness  – is the process alive?
	if d.Readiness != nil {
		e.GET("/health/ready", d.Readiness.Readiness) // readiness – are dependencies up?
	}

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency.Round(time.Microsecond)).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
