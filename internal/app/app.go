package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mediamorph/mediamorph/internal/config"
	"github.com/mediamorph/mediamorph/internal/db"
	"github.com/mediamorph/mediamorph/internal/media"
	"github.com/mediamorph/mediamorph/internal/repository"
	"github.com/mediamorph/mediamorph/internal/service"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	AuthService    *service.AuthService
	VideoService   *service.VideoService
	ImageService   *service.ImageService
	WebhookService *service.WebhookService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	videoRepository := repository.NewVideoRepository(database)

	// Media CDN provider based on config
	mediaProvider, err := media.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media provider: %v", err)
	}

	// Services
	authService := service.NewAuthService(cfg.SessionJWTSecret, cfg.IsProduction())
	videoService := service.NewVideoService(videoRepository, mediaProvider, cfg.MediaUploadTimeout, cfg.MaxVideoUploadSize)
	imageService := service.NewImageService(mediaProvider, cfg.MediaUploadTimeout)
	webhookService := service.NewWebhookService(videoRepository, cfg.MediaWebhookSecret)

	return &App{
		Cfg:            cfg,
		DB:             database,
		AuthService:    authService,
		VideoService:   videoService,
		ImageService:   imageService,
		WebhookService: webhookService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
