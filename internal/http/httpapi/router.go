package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/http/handlers"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/middleware"
)

// Options configures the router.
type Options struct {
	Logger zerolog.Logger
	// StoragePath is served under /static when set.
	StoragePath     string
	RateLimitPerMin int
	CORSOrigins     []string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/runs", func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		r.Post("/", app.CreateRun)
		r.Post("/stream", app.StreamRun)
	})

	if opts.StoragePath != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StoragePath)))
		r.Handle("/static/*", fs)
	}

	return r
}
