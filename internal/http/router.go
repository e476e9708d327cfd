package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/school-site/internal/edge"
	"github.com/pribylovaa/school-site/internal/http/handlers"
	"github.com/pribylovaa/school-site/internal/http/middleware"
	"github.com/pribylovaa/school-site/internal/metrics"
	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/service"
	"github.com/pribylovaa/school-site/internal/session"
)

// Options настройки роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	Metrics *metrics.Metrics
	// Gate защищает страницы админки; nil отключает.
	Gate *edge.Gate
	// WebDir сборка статики, раздаётся на "/", если задан.
	WebDir         string
	CookieSecure   bool
	MaxUploadBytes int64
}

// NewRouter собирает chi-роутер: общая цепочка middleware, публичный API,
// API с сессией и /api/admin.
func NewRouter(svc *service.Service, sessions *session.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	root.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Logging(opts.Logger),
		middleware.Metrics(opts.Metrics),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}
	if opts.Gate != nil {
		root.Use(opts.Gate.Middleware)
	}

	h := handlers.New(svc, sessions, handlers.Options{
		CookieSecure:   opts.CookieSecure,
		MaxUploadBytes: opts.MaxUploadBytes,
	})

	root.Route("/api", func(r chi.Router) {
		registerPublic(r, h)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(sessions))
			r.Get("/auth/me", h.Me)
			r.Post("/auth/password", h.ChangePassword)
			r.Post("/auth/username", h.ChangeUsername)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireSession(sessions))
			registerAdmin(r, h)
		})
	})

	if opts.WebDir != "" {
		root.Handle("/*", http.FileServer(http.Dir(opts.WebDir)))
	}

	return root
}

func registerPublic(r chi.Router, h *handlers.Handlers) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)

	r.Get("/announcements", h.ListAnnouncements)
	r.Get("/announcements/{id}", h.GetAnnouncement)

	r.Get("/staff", h.ListStaff)
	r.Get("/staff/org-chart", h.OrgChart)
	r.Get("/staff/{id}", h.GetStaff)

	r.Get("/gallery", h.ListImages)

	r.Post("/contact", h.SubmitContact)
	r.Post("/analytics/view", h.RecordView)
}

func registerAdmin(r chi.Router, h *handlers.Handlers) {
	r.Get("/announcements", h.ListAllAnnouncements)
	r.Post("/announcements", h.CreateAnnouncement)
	r.Get("/announcements/{id}", h.GetAnyAnnouncement)
	r.Put("/announcements/{id}", h.UpdateAnnouncement)
	r.Delete("/announcements/{id}", h.DeleteAnnouncement)

	r.Post("/staff", h.CreateStaff)
	r.Put("/staff/{id}", h.UpdateStaff)
	r.Delete("/staff/{id}", h.DeleteStaff)
	r.Post("/staff/{id}/photo", h.UploadStaffPhoto)

	r.Post("/gallery", h.UploadImage)
	r.Delete("/gallery/{id}", h.DeleteImage)

	r.Get("/messages", h.ListMessages)
	r.Post("/messages/{id}/read", h.MarkMessageRead)
	r.Delete("/messages/{id}", h.DeleteMessage)

	r.Get("/analytics", h.ViewStats)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleAdmin))
		r.Get("/users", h.ListUsers)
		r.Post("/users", h.CreateUser)
		r.Delete("/users/{id}", h.DeleteUser)
	})
}
