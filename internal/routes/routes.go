package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/ashford-college/admissions-api/internal/auth"
	"github.com/ashford-college/admissions-api/internal/handlers"
	"github.com/ashford-college/admissions-api/internal/middleware"
	"github.com/ashford-college/admissions-api/internal/models"
)

// RegisterRoutes registers all application routes under /api.
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	applicationHandler *handlers.ApplicationHandler,
	adminHandler *handlers.AdminHandler,
	tokenManager *auth.TokenManager,
	versions auth.VersionReader,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes. Per-IP limits here back up the per-email login
	// throttle inside the auth service.
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/register", authHandler.Register)

	// Protected routes: session token validated on every request.
	router.Group(func(r chi.Router) {
		r.Use(auth.SessionMiddleware(tokenManager, versions))

		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/me", authHandler.Me)

		// Applications: ownership enforced in the service layer, so
		// applicants and staff share these routes.
		r.Post("/applications", applicationHandler.Create)
		r.Get("/applications", applicationHandler.List)
		r.Get("/applications/{id}", applicationHandler.Get)
		r.Put("/applications/{id}", applicationHandler.Update)
		r.Delete("/applications/{id}", applicationHandler.Delete)

		// Staff-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin, models.RoleOfficer))
			r.Post("/auth/totp/enroll", authHandler.EnrollTOTP)
			r.Post("/applications/{id}/decision", applicationHandler.Decide)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))
			r.Get("/admin/users", adminHandler.ListUsers)
			r.Get("/admin/users/{id}", adminHandler.GetUser)
			r.Put("/admin/users/{id}/status", adminHandler.UpdateStatus)
			r.Put("/admin/users/{id}/role", adminHandler.UpdateRole)
			r.Post("/admin/users/{id}/invalidate-sessions", adminHandler.InvalidateSessions)
			r.Get("/admin/sessions/{id}", adminHandler.GetSessions)
		})
	})
}
