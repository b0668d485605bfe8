package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/letsconnect/connect-backend/internal/delivery/http/handler"
	"github.com/letsconnect/connect-backend/internal/delivery/http/middleware"
	"github.com/letsconnect/connect-backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

type Router struct {
	profileHandler    *handler.ProfileHandler
	discoveryHandler  *handler.DiscoveryHandler
	connectionHandler *handler.ConnectionHandler
	poapHandler       *handler.PoapHandler
	authMiddleware    *middleware.AuthMiddleware
	allowedOrigins    []string
	logger            *zap.Logger
}

func NewRouter(
	profileHandler *handler.ProfileHandler,
	discoveryHandler *handler.DiscoveryHandler,
	connectionHandler *handler.ConnectionHandler,
	poapHandler *handler.PoapHandler,
	authMiddleware *middleware.AuthMiddleware,
	allowedOrigins []string,
	logger *zap.Logger,
) *Router {
	return &Router{
		profileHandler:    profileHandler,
		discoveryHandler:  discoveryHandler,
		connectionHandler: connectionHandler,
		poapHandler:       poapHandler,
		authMiddleware:    authMiddleware,
		allowedOrigins:    allowedOrigins,
		logger:            logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	// Unknown JSON fields are client bugs; reject them.
	binding.EnableDecoderDisallowUnknownFields = true

	router := gin.New()
	router.Use(logger.GinMiddleware(r.logger), logger.Recovery(r.logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     r.allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	v1 := router.Group("/api/v1")
	v1.Use(r.authMiddleware.RequireAuth())
	{
		profile := v1.Group("/profile")
		{
			profile.GET("/me", r.profileHandler.GetMyProfile)
			profile.PUT("/me", r.profileHandler.UpdateMyProfile)
			profile.PUT("/me/wallet", r.profileHandler.LinkWallet)
			profile.GET("/:user_id", r.profileHandler.GetProfileByUserID)
		}

		v1.GET("/discover", r.discoveryHandler.Discover)
		v1.POST("/swipe", r.discoveryHandler.Swipe)

		matches := v1.Group("/matches")
		{
			matches.GET("", r.discoveryHandler.ListMatches)
			matches.GET("/:match_id/icebreakers", r.discoveryHandler.Icebreakers)
		}

		connections := v1.Group("/connections")
		{
			connections.GET("", r.connectionHandler.List)
			connections.POST("", r.connectionHandler.Add)
			connections.PATCH("/:user_id", r.connectionHandler.UpdateNotes)
			connections.DELETE("/:user_id", r.connectionHandler.Remove)
		}

		poaps := v1.Group("/poaps")
		{
			poaps.GET("/me", r.poapHandler.Mine)
			poaps.POST("/sync", r.poapHandler.Sync)
			poaps.GET("/shared/:user_id", r.poapHandler.Shared)
		}
	}

	return router
}
