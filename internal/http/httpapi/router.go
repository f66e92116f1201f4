package httpapi

import (
	stdhttp "net/http"
	"time"

	"videorelay/internal/http/handlers"
	"videorelay/internal/infra"
	"videorelay/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Options carries the cross-cutting configuration the router wires in front
// of the handlers.
type Options struct {
	Logger          infra.Logger
	APIKeys         []string
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
}

// NewRouter assembles the OpenAI-compatible video API.
func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(opts.Logger))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}
	r.Use(middleware.I18N(opts.DefaultLocale, opts.CountryLookup))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/videos", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(opts.APIKeys))
		if opts.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		}
		r.Post("/", app.VideosCreate)
		r.Post("/generations", app.VideosCreate)
		r.Get("/", app.VideosList)
		r.Get("/{video_id}", app.VideosGet)
		r.Delete("/{video_id}", app.VideosDelete)
		r.Post("/{video_id}/remix", app.VideosRemix)
		r.Get("/{video_id}/content", app.VideosContent)
	})

	return r
}
