// handlers/tournament.go
package handlers

import (
	"tutti-frutti-service/middleware"
	"tutti-frutti-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService, gameService *services.GameService) {
	// 🔓 Public routes (still behind gateway auth)
	app.Get("/tournaments", tournamentService.GetOpenTournaments)
	app.Get("/tournaments/:id", tournamentService.GetTournamentByID)
	app.Get("/tournaments/:id/leaderboard", tournamentService.GetTournamentLeaderboard)
	app.Get("/tournaments/:id/games", gameService.GetTournamentGames)

	// 🔐 Authenticated routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/tournaments", tournamentService.CreateTournament)
	secured.Patch("/tournaments/:id/status", tournamentService.UpdateTournamentStatus)
	secured.Get("/users/me/tournaments", tournamentService.GetMyTournaments)

	// Game rounds
	secured.Post("/tournaments/:id/games", gameService.CreateGameRound)
	secured.Post("/games/:game_id/answers", gameService.SubmitAnswers)
}
