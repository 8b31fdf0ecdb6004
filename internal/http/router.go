package http

import (
	"log/slog"

	"paso-monitor-server/internal/config"
	"paso-monitor-server/internal/http/handlers"
	"paso-monitor-server/internal/http/middleware"
	"paso-monitor-server/internal/services"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Config       *config.Config
	UserStore    services.UserStore
	AuthService  *services.AuthService
	UserService  *services.UserService
	PassStore    handlers.PassStore
	WeatherStore handlers.WeatherStore
	Logger       *slog.Logger
	RateLimiter  *middleware.RateLimiter
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(deps.Config.AllowedOrigins))

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	meHandler := handlers.NewMeHandler()
	passHandler := handlers.NewPassHandler(deps.PassStore)
	weatherHandler := handlers.NewWeatherHandler(deps.WeatherStore, deps.Config.WeatherCity)
	userHandler := handlers.NewUserHandler(deps.UserService)

	authCfg := middleware.AuthConfig{Secret: deps.Config.JWTSecret, Users: deps.UserStore}
	authenticated := middleware.TokenAuth(authCfg, "")
	adminOnly := middleware.TokenAuth(authCfg, "admin")

	router.GET("/healthz", handlers.Health)

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(deps.RateLimiter.Middleware())
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)

		api.GET("/pass/public", passHandler.GetPublic)
		api.GET("/weather", weatherHandler.Get)

		protected := api.Group("")
		protected.Use(authenticated)
		{
			protected.GET("/pass", passHandler.Get)
			protected.GET("/me", meHandler.GetMe)
		}

		admin := api.Group("/users")
		admin.Use(adminOnly)
		{
			admin.GET("", userHandler.List)
			admin.PATCH("/:id", userHandler.UpdateRole)
			admin.DELETE("/:id", userHandler.Delete)
		}
	}

	return router
}
