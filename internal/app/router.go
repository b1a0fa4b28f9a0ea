package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/classpulse/classpulse/internal/answers"
	"github.com/classpulse/classpulse/internal/auth"
	"github.com/classpulse/classpulse/internal/comments"
	"github.com/classpulse/classpulse/internal/contents"
	"github.com/classpulse/classpulse/internal/motd"
	"github.com/classpulse/classpulse/internal/observability"
	"github.com/classpulse/classpulse/internal/rooms"
	"github.com/classpulse/classpulse/internal/shared"
	"github.com/classpulse/classpulse/internal/users"
	"github.com/classpulse/classpulse/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Users          UserSource

	AuthHandler     *auth.Handler
	RoomsHandler    *rooms.Handler
	ContentsHandler *contents.Handler
	AnswersHandler  *answers.Handler
	CommentsHandler *comments.Handler
	MotdHandler     *motd.Handler
	UsersHandler    *users.Handler
	JobsHandler     *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with platform defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Users:          params.Users,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.AuthHandler.MountRoutes(r)
	params.RoomsHandler.MountRoutes(r)
	params.ContentsHandler.MountRoutes(r)
	params.AnswersHandler.MountRoutes(r)
	params.CommentsHandler.MountRoutes(r)
	params.MotdHandler.MountRoutes(r)
	params.UsersHandler.MountRoutes(r)

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
