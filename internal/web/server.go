package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jaminalder/logiqube/internal/app"
	"github.com/jaminalder/logiqube/internal/domain"
	"github.com/jaminalder/logiqube/internal/logging"
)

// Options tune the HTTP surface. Zero values fall back to defaults.
type Options struct {
	Logger      *slog.Logger
	Heartbeat   time.Duration
	ThreatLevel int
	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler
}

// NewServer wires routes and returns an http.Handler. It also installs the
// board fragment as the service's broadcast renderer.
func NewServer(s *app.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 15 * time.Second
	}
	if opts.ThreatLevel <= 0 || opts.ThreatLevel > domain.Size {
		opts.ThreatLevel = domain.DefaultThreatLevel
	}
	h := &handlers{
		svc:         s,
		tpl:         loadTemplates(),
		log:         opts.Logger,
		heartbeat:   opts.Heartbeat,
		threatLevel: opts.ThreatLevel,
	}
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLog)

	r.Get("/", h.index)
	r.Get("/healthz", h.healthz)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/play", h.play)
		r.Post("/reset", h.reset)
		r.Get("/state", h.state)
		r.Get("/hints", h.hints)
		r.Get("/events", h.events)
	})
	return r
}

func (h *handlers) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
