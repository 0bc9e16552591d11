// services/game_service.go
package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"tutti-frutti-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameService records round results. The round itself (timer, letter prompt)
// runs client-side; the server persists the rounds and the submitted
// answers, and keeps participant scores current.
type GameService struct {
	DB *gorm.DB
}

func NewGameService(db *gorm.DB) *GameService {
	return &GameService{DB: db}
}

// CreateGameRound is POST /tournaments/:id/games. Admin only.
func (s *GameService) CreateGameRound(c *fiber.Ctx) error {
	if !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
	}
	tournamentID := c.Params("id")

	var req struct {
		RoundNumber     int    `json:"round_number"`
		Letter          string `json:"letter"`
		DurationSeconds int    `json:"duration_seconds"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	req.Letter = strings.ToUpper(strings.TrimSpace(req.Letter))
	if req.RoundNumber <= 0 || len(req.Letter) != 1 {
		return c.Status(400).JSON(fiber.Map{"error": "round_number and a single letter are required"})
	}
	if req.DurationSeconds <= 0 {
		req.DurationSeconds = 60
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournament"})
	}

	now := time.Now().UTC()
	game := &models.Game{
		ID:              uuid.NewString(),
		TournamentID:    tournamentID,
		RoundNumber:     req.RoundNumber,
		Letter:          req.Letter,
		Status:          models.GameInProgress,
		DurationSeconds: req.DurationSeconds,
		StartTime:       &now,
	}
	if err := s.DB.Create(game).Error; err != nil {
		log.Printf("DB Error creating game round: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(201).JSON(game)
}

// SubmitAnswers is POST /games/:game_id/answers. Confirmed (paid)
// participants only; the summed points are added to the participant's
// running total.
func (s *GameService) SubmitAnswers(c *fiber.Ctx) error {
	gameID := c.Params("game_id")
	userID, _ := c.Locals("user_id").(string)

	var req struct {
		Answers []struct {
			Category string `json:"category"`
			Answer   string `json:"answer"`
			Points   int64  `json:"points"`
		} `json:"answers"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.Answers) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "answers are required"})
	}

	var game models.Game
	if err := s.DB.First(&game, "id = ?", gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch game"})
	}

	var participant models.TournamentParticipant
	err := s.DB.Where("tournament_id = ? AND user_id = ?", game.TournamentID, userID).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(403).JSON(fiber.Map{"error": "not a participant of this tournament"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch participant"})
	}
	if participant.Status != models.ParticipantConfirmed {
		return c.Status(403).JSON(fiber.Map{"error": "participation not confirmed (payment pending)"})
	}

	var total int64
	answers := make([]models.PlayerAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		if a.Category == "" {
			continue
		}
		answers = append(answers, models.PlayerAnswer{
			ID:       uuid.NewString(),
			GameID:   gameID,
			UserID:   userID,
			Category: a.Category,
			Answer:   a.Answer,
			Points:   a.Points,
		})
		total += a.Points
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&answers).Error; err != nil {
			return err
		}
		return tx.Model(&models.TournamentParticipant{}).
			Where("id = ?", participant.ID).
			Update("total_score", gorm.Expr("total_score + ?", total)).Error
	})
	if err != nil {
		log.Printf("DB Error recording answers (game=%s user=%s): %v", gameID, userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to record answers"})
	}

	return c.Status(201).JSON(fiber.Map{
		"game_id":      gameID,
		"points_added": total,
		"answers":      len(answers),
	})
}

// GetTournamentGames lists a tournament's rounds in order.
func (s *GameService) GetTournamentGames(c *fiber.Ctx) error {
	tournamentID := c.Params("id")

	var games []models.Game
	err := s.DB.Where("tournament_id = ?", tournamentID).
		Order("round_number ASC").Find(&games).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	return c.JSON(games)
}
