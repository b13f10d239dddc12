package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/setlistr/setlistr/internal/api/handlers"
	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/metrics"
)

type Handlers struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Band          *handlers.BandHandler
	Song          *handlers.SongHandler
	Setlist       *handlers.SetlistHandler
	Template      *handlers.TemplateHandler
	Member        *handlers.MemberHandler
	MemberSession *handlers.MemberSessionHandler
	Billing       *handlers.BillingHandler
	Storage       *handlers.StorageHandler
}

// New builds the HTTP router. sessions resolves member tokens for the
// Authenticate middleware.
func New(cfg *config.Config, log *logger.Logger, sessions middleware.SessionResolver, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
		r.Handle("/metrics", metrics.Handler())

		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
	})

	// The API sees the resolved actor. Anonymous requests get through; the
	// services answer them with empty reads or 401.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Auth.JWTSecret, sessions))
		r.Use(middleware.ActorRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))

		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.Refresh)
		r.Post("/auth/logout", h.Auth.Logout)

		r.Post("/webhooks/stripe", h.Billing.Webhook)

		// Account
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOwner)
			r.Get("/auth/me", h.Auth.Me)
			r.Patch("/auth/me", h.Auth.UpdateProfile)
			r.Delete("/auth/me", h.Auth.DeleteAccount)

			r.Get("/subscription", h.Billing.Status)
			r.Post("/subscription/trial", h.Billing.StartTrial)
			r.Post("/subscription/checkout", h.Billing.Checkout)

			r.Post("/storage/upload-url", h.Storage.GenerateUploadURL)
			r.Post("/storage/urls", h.Storage.GetURLs)
			r.Get("/storage/{storageId}", h.Storage.GetURL)
		})

		// Bands and everything scoped to one
		r.Route("/bands", func(r chi.Router) {
			r.Get("/", h.Band.List)
			r.Post("/", h.Band.Create)
			r.Get("/by-slug/{slug}", h.Band.GetBySlug)

			r.Route("/{bandId}", func(r chi.Router) {
				r.Get("/", h.Band.Get)
				r.Patch("/", h.Band.Update)
				r.Delete("/", h.Band.Delete)

				r.Get("/songs", h.Song.List)
				r.Post("/songs", h.Song.Create)
				r.Get("/setlists", h.Setlist.List)
				r.Post("/setlists", h.Setlist.Create)
				r.Get("/templates", h.Template.List)
				r.Post("/templates", h.Template.Create)
				r.Get("/members", h.Member.List)
				r.Post("/members", h.Member.Create)
			})
		})

		r.Route("/songs/{id}", func(r chi.Router) {
			r.Get("/", h.Song.Get)
			r.Patch("/", h.Song.Update)
			r.Delete("/", h.Song.Delete)
		})

		r.Route("/setlists/{id}", func(r chi.Router) {
			r.Get("/", h.Setlist.Get)
			r.Patch("/", h.Setlist.Update)
			r.Delete("/", h.Setlist.Delete)
			r.Put("/items", h.Setlist.ReplaceItems)
			r.Post("/pin", h.Setlist.TogglePin)
			r.Get("/export.pdf", h.Setlist.ExportPDF)
			r.Post("/template", h.Template.CreateFromSetlist)
		})

		r.Route("/templates/{id}", func(r chi.Router) {
			r.Get("/", h.Template.Get)
			r.Patch("/", h.Template.Update)
			r.Delete("/", h.Template.Delete)
			r.Post("/setlists", h.Template.Instantiate)
		})

		r.Route("/members/{id}", func(r chi.Router) {
			r.Get("/", h.Member.Get)
			r.Patch("/", h.Member.Update)
			r.Delete("/", h.Member.Delete)
			r.Post("/token", h.Member.RegenerateToken)
		})

		// Member token sessions
		r.Post("/member/session", h.MemberSession.Start)
		r.Get("/member/session", h.MemberSession.Current)
		r.Delete("/member/session", h.MemberSession.End)
		r.Get("/member/band", h.MemberSession.Band)
	})

	return r
}
