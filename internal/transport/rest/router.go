package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ngo-platform/internal/auth"
	"github.com/frahmantamala/ngo-platform/internal/category"
	"github.com/frahmantamala/ngo-platform/internal/directory"
	"github.com/frahmantamala/ngo-platform/internal/donation"
	"github.com/frahmantamala/ngo-platform/internal/moderation"
	"github.com/frahmantamala/ngo-platform/internal/registration"
	"github.com/frahmantamala/ngo-platform/internal/transport/middleware"
	"github.com/frahmantamala/ngo-platform/internal/transport/swagger"
	"github.com/frahmantamala/ngo-platform/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"
)

// OpenAPIPath is where the API document is read from, relative to the working directory.
const OpenAPIPath = "./api/openapi.yml"

type Handlers struct {
	Auth         *auth.Handler
	Registration *registration.Handler
	Moderation   *moderation.Handler
	Donation     *donation.Handler
	Webhook      *donation.WebhookHandler
	Directory    *directory.Handler
	Category     *category.Handler
	User         *user.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, allowedOrigins []string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	if len(allowedOrigins) > 0 {
		router.Use(middleware.CORS(allowedOrigins))
	}
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve the OpenAPI document at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, OpenAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	// target of the emailed registration link
	if h.Registration != nil {
		router.Get(registration.FormPath, h.Registration.GetForm)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Post("/auth/login", h.Auth.Login)
		}

		if h.Registration != nil {
			r.Route("/registrations", func(rr chi.Router) {
				rr.Post("/link", h.Registration.RequestLink)
				rr.Get("/form", h.Registration.GetForm)
				rr.Post("/", h.Registration.SubmitApplication)
			})
		}

		if h.Directory != nil {
			r.Get("/organizations", h.Directory.List)
			r.Get("/organizations/search", h.Directory.Search)
			r.Get("/organizations/{id}", h.Directory.Get)
		}

		if h.Donation != nil {
			r.Post("/organizations/{id}/donations", h.Donation.CaptureIntent)
			r.Route("/donations", func(dr chi.Router) {
				dr.Post("/checkout", h.Donation.CreateCheckout)
				dr.Get("/success", h.Donation.Success)
				dr.Get("/cancel", h.Donation.Cancel)
				if h.Webhook != nil {
					dr.Post("/webhook", h.Webhook.HandleGatewayEvent)
				}
			})
		}

		if h.Category != nil {
			r.Get("/categories", h.Category.GetCategories)
		}

		if h.Auth != nil && h.Moderation != nil {
			r.Route("/admin", func(ar chi.Router) {
				ar.Use(h.Auth.AuthMiddleware)
				ar.Use(middleware.RequireAdmin(logger))

				if h.User != nil {
					ar.Get("/me", h.User.GetCurrentUser)
				}

				ar.Get("/applications/pending", h.Moderation.ListPending)
				ar.Get("/applications/rejected", h.Moderation.ListRejected)
				ar.Get("/organizations/verified", h.Moderation.ListVerified)
				ar.Post("/applications/{id}/approve", h.Moderation.Approve)
				ar.Post("/applications/{id}/reject", h.Moderation.Reject)
				ar.Post("/applications/rejected/{id}/restore", h.Moderation.Restore)
			})
		}
	})
}
