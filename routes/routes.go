package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/liguebillard/federation-admin/handlers"
	"github.com/liguebillard/federation-admin/middleware"
	"github.com/liguebillard/federation-admin/models"
)

// SetupRoutes mounts the whole admin API. Everything except login and the
// public announcement feed sits behind token authentication.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	rankingHandler *handlers.RankingHandler,
	announcementHandler *handlers.AnnouncementHandler,
	settingsHandler *handlers.SettingsHandler,
	playerHandler *handlers.PlayerHandler,
	campaignHandler *handlers.CampaignHandler,
	categoryHandler *handlers.CategoryHandler,
	corsAllowedOrigin string,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsAllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	adminOnly := middleware.RequireRole(string(models.RoleAdmin))

	router.Post("/auth/login", authHandler.Login)

	// The public site reads published announcements without a token.
	router.Get("/announcements", announcementHandler.List)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.List)
			r.Post("/validate", tournamentHandler.ValidateUpload)
			r.Post("/create-players", tournamentHandler.CreatePlayers)
			r.Get("/check-exists", tournamentHandler.CheckExists)
			r.Post("/import", tournamentHandler.Import)
			r.Post("/recalculate-rankings", tournamentHandler.Recalculate)
			r.Post("/recalculate-all-rankings", tournamentHandler.RecalculateAll)
			r.Delete("/{id}", tournamentHandler.Delete)
		})

		r.Route("/rankings", func(r chi.Router) {
			r.Get("/", rankingHandler.List)
			r.Get("/export", rankingHandler.Export)
		})

		r.Route("/announcements", func(r chi.Router) {
			r.Post("/", announcementHandler.Create)
			r.Get("/{id}", announcementHandler.Get)
			r.Put("/{id}", announcementHandler.Update)
			r.Delete("/{id}", announcementHandler.Delete)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.GetAll)
			r.Put("/", settingsHandler.Update)
			r.Post("/logo", settingsHandler.UploadLogo)
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/", playerHandler.List)
			r.Post("/", playerHandler.Create)
			r.Get("/{id}", playerHandler.Get)
			r.Put("/{id}", playerHandler.Update)
			r.Delete("/{id}", playerHandler.Delete)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/convocations", campaignHandler.SendConvocations)
			r.Post("/results", campaignHandler.SendResults)
			r.Post("/relance-finale", campaignHandler.SendRelanceFinale)
			r.Post("/invitations", campaignHandler.SendInvitations)
		})

		r.Get("/categories", categoryHandler.List)

		r.Put("/auth/password", authHandler.ChangePassword)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/auth/users", authHandler.ListUsers)
			r.Post("/auth/users", authHandler.CreateUser)
			r.Delete("/auth/users/{id}", authHandler.DeleteUser)
		})
	})
}
