package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/matchsquad/docs"
	"github.com/Dosada05/matchsquad/handlers"
	"github.com/Dosada05/matchsquad/middleware"
)

// Handlers - все HTTP-обработчики приложения.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	AdminUser    *handlers.AdminUserHandler
	Organization *handlers.OrganizationHandler
	Membership   *handlers.MembershipHandler
	Invitation   *handlers.InvitationHandler
	Category     *handlers.CategoryHandler
	WebSocket    *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	// Публичные маршруты
	router.Post("/auth/otp/request", h.Auth.RequestCode)
	router.Post("/auth/otp/verify", h.Auth.VerifyCode)
	router.Get("/invitations/verify", h.Invitation.Verify)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", h.User.Me)
			r.Patch("/", h.User.UpdateMe)
			r.Post("/ensure-role", h.User.EnsureRole)
			r.Get("/organizations", h.Membership.MyOrganizations)
		})

		r.Get("/category-templates", h.Category.Templates)

		// WebSocket: браузер не умеет заголовки, токен передается в ?token=
		r.Get("/ws/organizations/{organizationID}", h.WebSocket.ServeWs)

		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", h.Organization.List)
			r.Post("/", h.Organization.Create)
			r.Get("/count", h.Organization.Count)
			r.Get("/slug-availability", h.Organization.SlugAvailability)
			r.Get("/by-slug/{slug}", h.Organization.GetBySlug)

			r.Route("/{organizationID}", func(r chi.Router) {
				r.Get("/", h.Organization.Get)
				r.Patch("/", h.Organization.Update)
				r.Delete("/", h.Organization.Delete)
				r.Post("/activate", h.Organization.Activate)
				r.Post("/deactivate", h.Organization.Deactivate)
				r.Put("/logo", h.Organization.UploadLogo)

				r.Get("/invitations", h.Invitation.List)
				r.Post("/invitations", h.Invitation.Create)

				r.Get("/members", h.Membership.ListMembers)
				r.Get("/members/stats", h.Membership.Stats)
				r.Delete("/members/{userID}", h.Membership.RemoveMember)

				r.Route("/categories", func(r chi.Router) {
					r.Get("/", h.Category.List)
					r.Post("/", h.Category.Create)
					r.Post("/from-template", h.Category.CreateFromTemplate)
					r.Get("/stats", h.Category.Stats)
					r.Get("/count", h.Category.CountActive)
					r.Get("/slug-availability", h.Category.SlugAvailability)
					r.Get("/by-slug/{slug}", h.Category.GetBySlug)
				})
			})
		})

		r.Route("/invitations", func(r chi.Router) {
			r.Post("/accept", h.Invitation.Accept)
			r.Get("/{invitationID}", h.Invitation.Get)
			r.Post("/{invitationID}/cancel", h.Invitation.Cancel)
			r.Post("/{invitationID}/resend", h.Invitation.Resend)
		})

		r.Route("/categories/{categoryID}", func(r chi.Router) {
			r.Get("/", h.Category.Get)
			r.Patch("/", h.Category.Update)
			r.Delete("/", h.Category.Delete)
			r.Post("/deactivate", h.Category.Deactivate)
			r.Get("/usage", h.Category.Usage)
		})

		// права суперадмина проверяет сервис
		r.Route("/admin/users", func(r chi.Router) {
			r.Get("/", h.AdminUser.ListUsers)
			r.Get("/stats", h.AdminUser.Stats)
			r.Put("/role-by-email", h.AdminUser.SetRoleByEmail)
			r.Put("/{userID}/role", h.AdminUser.SetRole)
		})
	})
}
