package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/letsconnect/connect-backend/internal/config"
	"github.com/letsconnect/connect-backend/internal/delivery/http"
	"github.com/letsconnect/connect-backend/internal/delivery/http/handler"
	"github.com/letsconnect/connect-backend/internal/delivery/http/middleware"
	"github.com/letsconnect/connect-backend/internal/infrastructure/cache"
	"github.com/letsconnect/connect-backend/internal/infrastructure/database"
	"github.com/letsconnect/connect-backend/internal/infrastructure/gemini"
	"github.com/letsconnect/connect-backend/internal/infrastructure/logger"
	"github.com/letsconnect/connect-backend/internal/infrastructure/poapapi"
	"github.com/letsconnect/connect-backend/internal/infrastructure/retry"
	"github.com/letsconnect/connect-backend/internal/infrastructure/server"
	"github.com/letsconnect/connect-backend/internal/repository/postgres"
	"github.com/letsconnect/connect-backend/internal/usecase/auth"
	"github.com/letsconnect/connect-backend/internal/usecase/connection"
	"github.com/letsconnect/connect-backend/internal/usecase/feed"
	"github.com/letsconnect/connect-backend/internal/usecase/match"
	"github.com/letsconnect/connect-backend/internal/usecase/poap"
	"github.com/letsconnect/connect-backend/internal/usecase/profile"
	"github.com/letsconnect/connect-backend/internal/usecase/ranking"
	"github.com/letsconnect/connect-backend/internal/usecase/swipe"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
	Gemini *gemini.GeminiClient
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log := logger.NewForEnvironment(cfg.Server.Env, cfg.Logging.Level)
	c := &Container{Config: cfg, Logger: log}

	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	// The hot cache is optional; the persisted cache still serves without it.
	var hot poap.HotCache
	if cfg.RedisEnabled() {
		redisClient, err := database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, POAP hot cache disabled", zap.Error(err))
		} else {
			c.Redis = redisClient
			hot = cache.NewRedisPoapCache(redisClient, "")
		}
	}

	var icebreakers match.IcebreakerGenerator
	if cfg.Gemini.APIKey != "" {
		geminiClient, err := gemini.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Warn("Gemini unavailable, using template icebreakers", zap.Error(err))
		} else {
			c.Gemini = geminiClient
			icebreakers = geminiClient
		}
	}

	// Initialize repositories
	profileRepo := postgres.NewProfileRepository(db)
	swipeRepo := postgres.NewSwipeRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	connectionRepo := postgres.NewConnectionRepository(db)
	poapRepo := postgres.NewPoapRepository(db)

	poapClient := poapapi.NewClient(poapapi.Config{
		BaseURL:   cfg.POAP.APIURL,
		APIKey:    cfg.POAP.APIKey,
		Timeout:   cfg.POAP.Timeout,
		RateLimit: cfg.POAP.RateLimit,
		RateBurst: cfg.POAP.RateBurst,
	})

	// Initialize use cases
	ranker := ranking.NewRanker()
	tokens := auth.NewTokenVerifier(cfg.Auth.JWTSecret)

	poapService := poap.NewService(profileRepo, poapRepo, hot, poapClient, poap.Config{
		CacheTTL:     cfg.POAP.CacheTTL,
		FetchTimeout: cfg.POAP.Timeout,
	}, log.Named("poap"))

	matchUseCase := match.NewMatchUseCase(
		matchRepo,
		profileRepo,
		connectionRepo,
		poapService,
		icebreakers,
		log.Named("match"),
	)

	retryPolicy := retry.DefaultPolicy()
	retryPolicy.MaxRetries = cfg.Swipe.MaxRetries
	swipeUseCase := swipe.NewSwipeUseCase(
		swipeRepo,
		poapService,
		matchUseCase,
		swipe.Config{SnapshotTimeout: cfg.Swipe.SnapshotTimeout, Retry: retryPolicy},
		log.Named("swipe"),
	)

	feedUseCase := feed.NewFeedUseCase(
		profileRepo,
		ranker,
		poapService,
		feed.NewSampleProvider(ranker),
		feed.Config{MaxCandidates: cfg.Feed.MaxCandidates, EnrichTimeout: cfg.Feed.EnrichTimeout},
		log.Named("feed"),
	)

	profileUseCase := profile.NewProfileUseCase(profileRepo, ranker, poapService, log.Named("profile"))
	connectionUseCase := connection.NewConnectionUseCase(connectionRepo, profileRepo, log.Named("connection"))

	// Initialize router
	router := http.NewRouter(
		handler.NewProfileHandler(profileUseCase),
		handler.NewDiscoveryHandler(feedUseCase, swipeUseCase, matchUseCase),
		handler.NewConnectionHandler(connectionUseCase),
		handler.NewPoapHandler(poapService),
		middleware.NewAuthMiddleware(tokens),
		cfg.CORS.AllowedOrigins,
		log,
	)

	c.Server = server.NewServer(&cfg.Server, router.Setup(), log)
	return c, nil
}

// Close closes all connections
func (c *Container) Close() error {
	var errs []error
	if c.Gemini != nil {
		c.Gemini.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	_ = c.Logger.Sync()
	return errors.Join(errs...)
}
