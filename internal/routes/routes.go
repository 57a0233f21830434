package routes

import (
	"io/fs"
	"net/http"

	"github.com/jewelcase/jewelcase/assets"
	"github.com/jewelcase/jewelcase/internal/app"
	"github.com/jewelcase/jewelcase/internal/handler"
	"github.com/jewelcase/jewelcase/internal/middleware"
	"github.com/jewelcase/jewelcase/internal/model"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	gallery := handler.NewGalleryHandler(app.GalleryService, app.Cfg.MaxUploadSize)
	seo := handler.NewSEOHandler(app.GalleryService, app.Cfg.AppURL)

	mux := http.NewServeMux()

	// Static files
	sub, _ := fs.Sub(assets.AssetsFS, ".")
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(sub))))

	// Stored images: /uploads/{category}/{name}
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads", app.Storage.Handler()))

	// SEO
	mux.HandleFunc("GET /robots.txt", seo.Robots)
	mux.HandleFunc("GET /sitemap.xml", seo.Sitemap)

	// Home
	mux.HandleFunc("GET /{$}", gallery.HomePage)

	// Categories (rate limited uploads)
	uploadLimit := middleware.RateLimitUploads(
		middleware.NewRateLimiter(app.Cfg.UploadRateLimit, app.Cfg.UploadRateWindow),
		app.Cfg.TrustedProxies,
	)
	for _, c := range model.Categories {
		mux.HandleFunc("GET /"+c.String(), gallery.UploadPage(c))
		mux.HandleFunc("POST /upload/"+c.String(), uploadLimit(gallery.Upload(c)))
		mux.HandleFunc("GET /view/"+c.String(), gallery.ViewGallery(c))
	}

	// 404
	mux.HandleFunc("/{path...}", gallery.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.SecurityHeaders,
		middleware.Config(app.Cfg),
		middleware.RequestLogging,
	)

	return handler
}
