package routes

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mob-esports/esports-api/handlers"
	"github.com/mob-esports/esports-api/middleware"
	"github.com/mob-esports/esports-api/models"
)

type Config struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(
	router *chi.Mux,
	cfg Config,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	teamHandler *handlers.TeamHandler,
	tournamentHandler *handlers.TournamentHandler,
	postHandler *handlers.PostHandler,
	friendHandler *handlers.FriendHandler,
	notificationHandler *handlers.NotificationHandler,
	uploadHandler *handlers.UploadHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(cfg.JWTSecret))
	maybeAuthenticate := middleware.MaybeAuthenticate([]byte(cfg.JWTSecret))
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", authHandler.Me)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Use(authenticate)
		r.Put("/{userID}", userHandler.Update)
	})

	router.Route("/players", func(r chi.Router) {
		r.With(maybeAuthenticate).Get("/{userID}", userHandler.GetPlayer)
		r.With(authenticate).Put("/{userID}", userHandler.UpsertProfile)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)
		r.Get("/{teamID}", teamHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", teamHandler.Create)
			r.Put("/{teamID}", teamHandler.Update)
			r.Delete("/{teamID}", teamHandler.Delete)
			r.Post("/{teamID}/invite", teamHandler.Invite)
			r.Post("/{teamID}/accept", teamHandler.AcceptInvite)
			r.Delete("/{teamID}/leave", teamHandler.Leave)
			r.Delete("/{teamID}/members/{userID}", teamHandler.RemoveMember)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.With(maybeAuthenticate).Get("/", tournamentHandler.List)
		r.With(maybeAuthenticate).Get("/{tournamentID}", tournamentHandler.Get)
		r.Get("/{tournamentID}/participants", tournamentHandler.Participants)
		r.Get("/{tournamentID}/bracket", tournamentHandler.GetBracket)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", tournamentHandler.Create)
			r.Put("/{tournamentID}", tournamentHandler.Update)
			r.Post("/{tournamentID}/register", tournamentHandler.Register)
			r.Delete("/{tournamentID}/withdraw", tournamentHandler.Withdraw)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Delete("/{tournamentID}", tournamentHandler.Delete)
				r.Put("/{tournamentID}/approve", tournamentHandler.Approve)
				r.Post("/{tournamentID}/bracket", tournamentHandler.GenerateBracket)
				r.Put("/{tournamentID}/matches/{matchID}", tournamentHandler.UpdateMatch)
			})
		})
	})

	router.Route("/posts", func(r chi.Router) {
		r.With(maybeAuthenticate).Get("/", postHandler.List)
		r.With(maybeAuthenticate).Get("/{postID}", postHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", postHandler.Create)
			r.Put("/{postID}", postHandler.Update)
			r.Delete("/{postID}", postHandler.Delete)

			r.With(adminOnly).Put("/{postID}/approve", postHandler.Approve)
		})
	})

	router.Route("/friends", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", friendHandler.List)
		r.Post("/request", friendHandler.SendRequest)
		r.Put("/{requestID}/respond", friendHandler.Respond)
		r.Delete("/{friendID}", friendHandler.Remove)
	})

	router.Route("/notifications", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", notificationHandler.List)
		r.Put("/{notificationID}/read", notificationHandler.MarkRead)
		r.With(adminOnly).Post("/", notificationHandler.Send)
	})

	router.Route("/upload", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/avatar", uploadHandler.Avatar)
		r.Post("/team-logo/{teamID}", uploadHandler.TeamLogo)
		r.Post("/tournament-image/{tournamentID}", uploadHandler.TournamentImage)
		r.Post("/post-image/{postID}", uploadHandler.PostImage)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)
		r.Get("/users", userHandler.List)
		r.Put("/users/{userID}/ban", userHandler.Ban)
		r.Put("/users/{userID}/unban", userHandler.Unban)
		r.Put("/users/{userID}/verify-email", userHandler.VerifyEmail)
		r.Put("/organizers/{userID}/approve", userHandler.ApproveOrganizer)
	})

	router.Route("/ws", func(r chi.Router) {
		r.Get("/tournaments/{tournamentID}", webSocketHandler.TournamentRoom)
		r.Get("/notifications", webSocketHandler.NotificationRoom)
	})
}
