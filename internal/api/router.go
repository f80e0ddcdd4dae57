package api

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freelaz/marketplace-api/internal/api/handler"
	"github.com/freelaz/marketplace-api/internal/api/middleware"
	"github.com/freelaz/marketplace-api/internal/core/service"
	"github.com/freelaz/marketplace-api/internal/guard"
	"github.com/freelaz/marketplace-api/internal/infrastructure/config"
	mongodb "github.com/freelaz/marketplace-api/internal/infrastructure/db/mongo"
	"github.com/freelaz/marketplace-api/internal/infrastructure/db/postgres"
	redisdb "github.com/freelaz/marketplace-api/internal/infrastructure/db/redis"
	"github.com/freelaz/marketplace-api/internal/infrastructure/mail"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The provisioner is constructed in main so its worker lifetime is bound to
// the process context.
func NewRouter(db *mongo.Database, pg *sqlx.DB, rdb *redis.Client, cfg *config.Config, prov *service.Provisioner, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	// --- Dependencies ---
	identityRepo := mongodb.NewIdentityRepository(db)
	profileRepo := postgres.NewProfileRepository(pg)
	roleRepo := postgres.NewRoleRepository(pg)
	freelancerRepo := postgres.NewFreelancerRepository(pg)
	sessionStore := redisdb.NewSessionStore(rdb)
	resetStore := redisdb.NewResetTokenStore(rdb)

	authService := service.NewAuthService(service.Deps{
		Identities:  identityRepo,
		Profiles:    profileRepo,
		Roles:       roleRepo,
		Freelancers: freelancerRepo,
		Sessions:    sessionStore,
		Resets:      resetStore,
		Mailer:      mail.NewLogMailer(log),
		Provisioner: prov,
	}, cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour, time.Duration(cfg.ResetTTLMinutes)*time.Minute, log)
	accessService := service.NewAccessService(profileRepo, roleRepo)

	authHandler := handler.NewAuthHandler(authService, accessService, cfg.BaseURL)
	profileHandler := handler.NewProfileHandler(accessService)
	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)
	e.GET("/auth/session", authHandler.Session, authMiddleware)

	e.GET("/me", profileHandler.Me, authMiddleware)

	// --- Role-guarded areas ---
	marketplace := e.Group(guard.MarketplaceHome,
		middleware.RoleGuard(authService, accessService, guard.RequireClient, "", log))
	marketplace.GET("", handler.NewAreaHandler("marketplace").Index)

	freelas := e.Group(guard.FreelancerHome,
		middleware.RoleGuard(authService, accessService, guard.RequireFreelancer, "", log))
	freelas.GET("", handler.NewAreaHandler("freelas").Index)

	admin := e.Group(guard.AdminHome,
		middleware.AdminGuard(authService, accessService, log))
	admin.GET("", handler.NewAreaHandler("admin").Index)

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, pg, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
