package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/userplatform/user-api/internal/api/handler"
	"github.com/userplatform/user-api/internal/api/middleware"
	"github.com/userplatform/user-api/internal/core/domain"
	"github.com/userplatform/user-api/internal/core/ports"
	"github.com/userplatform/user-api/internal/core/service"
	"github.com/userplatform/user-api/internal/infrastructure/config"
)

// Dependencies carries the external collaborators the router wires together.
// Redis is optional and only used by the readiness probe here; cache
// decoration of UserRepo happens at startup.
type Dependencies struct {
	UserRepo ports.UserRepository
	Mongo    *mongo.Database
	Redis    *redis.Client
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("userapi"))
	e.Use(middleware.Token(middleware.TokenConfig{
		Secret:             cfg.Auth.JWTSecret,
		InsecureSkipVerify: cfg.Auth.InsecureSkipVerify,
	}))

	// --- Identity pipeline ---
	userService := service.NewUserService(deps.UserRepo, deps.Log)
	requireSub := middleware.HasClaim(domain.ClaimSubject)
	enrich := middleware.Enrich(userService, deps.Log)

	// --- User management ---
	userHandler := handler.NewUserHandler(userService)
	users := e.Group("/api/user", requireSub, enrich)
	users.GET("/me", userHandler.Me)
	users.GET("/:userId", userHandler.Get)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.PUT("/:userId", userHandler.Update)
	users.DELETE("/:userId", userHandler.Delete)

	// --- Demo ---
	helloHandler := handler.NewHelloHandler()
	e.GET("/hello", helloHandler.Hello, requireSub, enrich)

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness) // liveness – is the process alive?
	if deps.Mongo != nil {
		healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)
		e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	}
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
