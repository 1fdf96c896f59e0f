package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/clubarena/championship-system/handlers"
	"github.com/clubarena/championship-system/middleware"
	"github.com/clubarena/championship-system/models"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Championship *handlers.ChampionshipHandler
	Match        *handlers.MatchHandler
	Category     *handlers.CategoryHandler
	Report       *handlers.ReportHandler
	WebSocket    *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, auth *middleware.Auth) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/auth/me", h.Auth.Me)
		r.Post("/auth/me/avatar", h.Auth.UploadAvatar)
	})

	router.Route("/championships", func(r chi.Router) {
		// Public read surface.
		r.Get("/", h.Championship.List)
		r.Get("/{championshipID}", h.Championship.GetByID)
		r.Get("/{championshipID}/stages", h.Championship.ListStages)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/{championshipID}/entries", h.Championship.Enroll)
			r.Delete("/{championshipID}/entries", h.Championship.Withdraw)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleAdmin))

				r.Post("/", h.Championship.Create)
				r.Post("/{championshipID}/advance", h.Championship.Advance)
				r.Post("/{championshipID}/logo", h.Championship.UploadLogo)
			})
		})
	})

	router.Get("/stages/{stageID}/matches", h.Championship.ListStageMatches)
	router.Get("/stages/{stageID}/standings", h.Championship.GetStandings)

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/availability", h.Match.GetProposal)
		r.Get("/result", h.Match.GetPendingResult)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/availability", h.Match.ProposeAvailability)
			r.Post("/availability/{slotID}/accept", h.Match.AcceptProposal)
			r.Delete("/availability/acceptance", h.Match.CancelAcceptance)

			r.Post("/result", h.Match.ProposeResult)
			r.Post("/result/accept", h.Match.AcceptResult)
			r.Post("/result/dispute", h.Match.FileDispute)

			r.With(middleware.Authorize(models.RoleAdmin)).
				Post("/result/resolve", h.Match.ResolveDispute)
		})
	})

	router.Route("/categories", func(r chi.Router) {
		r.Get("/", h.Category.ListAll)
		r.Get("/resolve", h.Category.Resolve)
		r.Get("/{categoryID}", h.Category.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Post("/", h.Category.Create)
			r.Put("/{categoryID}", h.Category.Update)
			r.Delete("/{categoryID}", h.Category.Delete)
		})
	})

	router.Route("/reports", func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Post("/", h.Report.File)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Get("/", h.Report.ListOpen)
			r.Get("/{reportID}", h.Report.GetByID)
			r.Post("/{reportID}/close", h.Report.Close)
		})
	})

	router.Get("/ws/championships/{championshipID}", h.WebSocket.Subscribe)

	return router
}
