package handler

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/campus-connect/internal/auth"
	"github.com/Shivanand-hulikatti/campus-connect/internal/logger"
	"github.com/Shivanand-hulikatti/campus-connect/internal/metrics"
)

// RouterConfig carries what NewRouter mounts.
type RouterConfig struct {
	Events  *EventHandler
	Auth    *auth.JWT
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	// RegisterLimiter throttles POST /events/{id}/register; nil disables it.
	RegisterLimiter *RateLimiter
	// WebDir is served at the root when it exists.
	WebDir string
}

// NewRouter builds the chi router for the whole API.
func NewRouter(c RouterConfig) http.Handler {
	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}
	h := c.Events

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log, c.Metrics))  // structured access log
	r.Use(CORS)
	r.Use(c.Auth.Middleware) // optional bearer identity

	// Health and metrics
	r.Get("/health", HealthCheck)
	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics.Handler())
	}

	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{category}/events", h.ListCategoryEvents)
	r.Get("/announcements", h.ListAnnouncements)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Get("/{id}", h.GetEvent)
		r.Get("/{id}/eligibility", h.Eligibility)
		r.Group(func(r chi.Router) {
			if c.RegisterLimiter != nil {
				r.Use(c.RegisterLimiter.Middleware)
			}
			r.Post("/{id}/register", h.Register)
		})
	})

	r.Route("/me", func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Get("/registrations", h.MyRegistrations)
		r.Get("/notifications", h.Notifications)
		r.Delete("/notifications", h.ForgetNotifications)
		r.Get("/notifications/unread-count", h.UnreadCount)
		r.Post("/notifications/refresh", h.RefreshNotifications)
		r.Post("/notifications/read-all", h.MarkAllNotificationsRead)
		r.Post("/notifications/{id}/read", h.MarkNotificationRead)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(c.Auth.RequireAdmin)
		r.Post("/events", h.CreateEvent)
		r.Patch("/events/{id}", h.UpdateEvent)
		r.Delete("/events/{id}", h.DeleteEvent)
		r.Get("/events/{id}/registrations", h.ListRegistrations)
		r.Get("/dashboard", h.Dashboard)
		r.Post("/announcements", h.CreateAnnouncement)
	})

	// Static client, when present.
	if c.WebDir != "" {
		if info, err := os.Stat(c.WebDir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(c.WebDir)))
		}
	}

	return r
}
