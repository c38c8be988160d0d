package httpapi

import (
	"net/http"
	"time"

	"artstudio/internal/http/handlers"
	"artstudio/internal/infra"
	appmw "artstudio/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the API and the static front-end. lookup may be nil when
// no GeoIP database is configured.
func NewRouter(app *handlers.App, lookup appmw.CountryLookup) http.Handler {
	cfg := app.Config
	r := chi.NewRouter()

	r.Use(
		middleware.RealIP,
		appmw.RequestID,
		middleware.Recoverer,
		appmw.I18N(cfg.DefaultLocale, lookup),
		appmw.Logger(*app.Logger),
		appmw.CORS(cfg.CORSAllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", app.Status)
		r.Get("/history", app.History)

		r.Group(func(r chi.Router) {
			r.Use(appmw.RateLimit(cfg.RateLimitPerMin, time.Minute))
			r.Post("/text-to-image", app.TextToImage)
			r.Post("/generate", app.TextToImage)
			r.Post("/generate-image", app.TextToImage)
			r.Post("/style-transfer", app.StyleTransfer)
			r.Post("/upload", app.Upload)
		})
	})

	if cfg.StorageBackend == infra.StorageBackendFilesystem {
		mountDir(r, "/generated", cfg.GeneratedDir)
	}
	mountDir(r, "/uploads", cfg.UploadDir)
	mountDir(r, "/img", cfg.PlaceholderDir)
	r.Handle("/*", fileServer(cfg.StaticDir))

	return r
}

func mountDir(r chi.Router, prefix, dir string) {
	if dir == "" {
		return
	}
	r.Handle(prefix+"/*", http.StripPrefix(prefix, fileServer(dir)))
}
