package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/askhub/askhub/internal/admin"
	"github.com/askhub/askhub/internal/auth"
	"github.com/askhub/askhub/internal/observability"
	"github.com/askhub/askhub/internal/qna"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	AuthHandler  *auth.Handler
	QnAHandler   *qna.Handler
	AdminHandler *admin.Handler
	Metrics      *observability.Metrics
}

// NewRouter constructs the chi.Router with AskHub defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Welcome to AskHub"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", func(ar chi.Router) {
		// Throttle credential endpoints against brute force.
		ar.Use(httprate.LimitByIP(30, time.Minute))
		params.AuthHandler.MountRoutes(ar)
	})

	r.Route("/questions", func(qr chi.Router) {
		params.QnAHandler.MountQuestionRoutes(qr)
	})
	r.Route("/answers", func(anr chi.Router) {
		params.QnAHandler.MountAnswerRoutes(anr)
	})

	if params.AdminHandler != nil {
		r.Route("/admin", func(adr chi.Router) {
			adr.Use(httprate.LimitByIP(60, time.Minute))
			params.AdminHandler.MountRoutes(adr)
		})
	}

	return r
}
