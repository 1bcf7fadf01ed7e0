package routes

import (
	"net/http"

	"github.com/mediamorph/mediamorph/internal/app"
	"github.com/mediamorph/mediamorph/internal/handler"
	"github.com/mediamorph/mediamorph/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	pages := handler.NewPageHandler()
	video := handler.NewVideoHandler(app.VideoService)
	image := handler.NewImageHandler(app.ImageService)
	webhook := handler.NewWebhookHandler(app.WebhookService)

	mux := http.NewServeMux()

	// ============================================================================
	// PAGES
	// ============================================================================

	mux.HandleFunc("GET /{$}", pages.Landing)
	mux.HandleFunc("GET /home", pages.Home)
	mux.HandleFunc("GET /signin", pages.SignIn)
	mux.HandleFunc("GET /signup", pages.SignUp)
	mux.HandleFunc("GET /video-upload", pages.VideoUpload)
	mux.HandleFunc("GET /social-share", pages.SocialShare)

	// ============================================================================
	// API
	// ============================================================================

	// Uploads are rate limited per IP
	rateLimiter := middleware.RateLimitUpload()

	// Public API (the access gate allows this one anonymously)
	mux.HandleFunc("GET /api/videos", video.List)

	// Protected API (the access gate redirects anonymous callers)
	mux.HandleFunc("POST /api/video-upload", rateLimiter(video.Upload))
	mux.HandleFunc("POST /api/image-upload", rateLimiter(image.Upload))
	mux.HandleFunc("GET /api/image-transform", image.TransformURL)
	mux.HandleFunc("GET /api/video-preview", video.PreviewURL)
	mux.HandleFunc("GET /api/video-download", video.DownloadURL)

	// ============================================================================
	// WEBHOOKS
	// ============================================================================

	// Media CDN processing notifications (signature-verified, gate-exempt)
	mux.HandleFunc("POST /webhooks/media", webhook.Media)

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", pages.NotFound)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg),
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService), // Resolve identity before the gate
		middleware.Gate,                            // Access decisions for every route
		middleware.WithURLPath,
	)

	return handler
}
