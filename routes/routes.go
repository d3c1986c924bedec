package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/tournament-client/docs"
	"github.com/Dosada05/tournament-client/handlers"
	"github.com/Dosada05/tournament-client/middleware"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	participantHandler *handlers.ParticipantHandler,
	matchHandler *handlers.MatchHandler,
	votingHandler *handlers.VotingHandler,
	applicationHandler *handlers.ApplicationHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	authenticate := middleware.Authenticate(opts.JWTSecret, opts.Logger)

	// WebSocket: токен можно передать в query (?token=...)
	router.With(authenticate).Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.ListTournaments)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetTournament)
				r.Get("/roster", tournamentHandler.GetRoster)

				// Действия зрителя
				r.Post("/sponsorships", participantHandler.Sponsor)
				r.Post("/applications", participantHandler.Apply)
				r.Post("/tickets", participantHandler.BuyTicket)

				// Рассмотрение заявок организатором
				r.Get("/applications", applicationHandler.ListApplications)
				r.Patch("/applications/{applicationID}", applicationHandler.ReviewApplication)

				// Сетка
				r.Get("/bracket", matchHandler.GetBracket)
				r.Patch("/matches/{matchID}", matchHandler.SaveMatch)
				r.Post("/matches/{matchID}/edit", matchHandler.BeginEdit)
				r.Delete("/matches/{matchID}/edit", matchHandler.CancelEdit)
				r.Post("/complete", matchHandler.CompleteTournament)
				r.Get("/summary", matchHandler.GetSummary)

				// Голосование
				r.Get("/voting", votingHandler.VotingPage)
				r.Post("/votes", votingHandler.Vote)
			})
		})
	})
}
