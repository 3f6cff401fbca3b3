package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
	"github.com/reelwise/reelwise/internal/database"
	"github.com/reelwise/reelwise/internal/handlers"
	"github.com/reelwise/reelwise/internal/messaging"
	"github.com/reelwise/reelwise/internal/middleware"
	"github.com/reelwise/reelwise/internal/services"
	"github.com/reelwise/reelwise/internal/storage"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	producer *messaging.RatingEventProducer
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	store := storage.NewArtifactStore(db.PG, app.logger)

	catalog, similarity, err := loadArtifacts(cfg, app.logger, store)
	if err != nil {
		return nil, err
	}

	app.producer = messaging.NewRatingEventProducer(cfg, app.logger)

	svc, err := services.New(cfg, app.logger, db, store, app.producer, catalog, similarity)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svc

	app.handlers = handlers.New(app.logger, svc, cfg, catalog, similarity)
	app.setupRouter()

	return app, nil
}

// loadArtifacts prefers the persisted catalog and similarity artifacts and
// falls back to rebuilding them from raw metadata, persisting the rebuild for
// the next start.
func loadArtifacts(
	cfg *config.Config,
	logger *logrus.Logger,
	store *storage.ArtifactStore,
) (*services.FeatureCatalog, *services.SimilarityMatrix, error) {
	ctx := context.Background()

	catalogService := services.NewCatalogService(logger)
	similarityService := services.NewSimilarityService(&cfg.Recommendation, logger)

	catalog, err := store.LoadCatalog(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalog artifact: %w", err)
	}
	if catalog == nil {
		logger.Info("No catalog artifact found, rebuilding from metadata")
		movieIDs, err := store.LoadMovieList(ctx)
		if err != nil {
			return nil, nil, err
		}
		sources, err := store.LoadMetadata(ctx)
		if err != nil {
			return nil, nil, err
		}
		catalog, err = catalogService.BuildCatalog(movieIDs, sources)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build catalog: %w", err)
		}
		if err := store.SaveCatalog(ctx, catalog); err != nil {
			logger.WithError(err).Warn("Failed to persist catalog artifact")
		}
	}

	capped := cfg.Recommendation.NeighborCap > 0
	similarity, err := store.LoadSimilarity(ctx, catalog.MovieCount(), capped)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load similarity artifact: %w", err)
	}
	if similarity == nil {
		logger.Info("No similarity artifact found, deriving from catalog")
		similarity = similarityService.BuildSimilarity(catalog)
		if err := store.SaveSimilarity(ctx, similarity); err != nil {
			logger.WithError(err).Warn("Failed to persist similarity artifact")
		}
	}

	return catalog, similarity, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.producer.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing rating event producer")
	}
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}
	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	router.GET("/health", a.handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/session", a.handlers.Session.Create)

		api.GET("/movies/:id", a.handlers.Movie.Get)
		api.GET("/movies/:id/similar", a.handlers.Movie.Similar)

		authed := api.Group("")
		authed.Use(middleware.Auth(a.services.Auth, a.services.Sessions, a.logger))
		{
			authed.GET("/recommendations", a.handlers.Recommendation.Get)
			authed.DELETE("/session", a.handlers.Session.Delete)
		}
	}

	a.router = router
}
