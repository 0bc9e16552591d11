// services/payment_service.go
package services

import (
	"errors"
	"log"

	"tutti-frutti-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentService handles the join flow: it reserves the participant slot,
// opens a pending payment row, and hands the payer a Mercado Pago checkout
// URL. The payment row is mutated afterwards only by the webhook flow.
type PaymentService struct {
	DB *gorm.DB
	MP *MercadoPagoClient
}

func NewPaymentService(db *gorm.DB, mp *MercadoPagoClient) *PaymentService {
	return &PaymentService{DB: db, MP: mp}
}

// JoinTournament is POST /tournaments/:id/join.
func (s *PaymentService) JoinTournament(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournament"})
	}

	if tournament.Status != models.TournamentOpen {
		return c.Status(409).JSON(fiber.Map{"error": "tournament is not open for inscriptions"})
	}

	if tournament.MaxParticipants > 0 {
		var count int64
		if err := s.DB.Model(&models.TournamentParticipant{}).
			Where("tournament_id = ?", tournamentID).Count(&count).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to check capacity"})
		}
		if count >= int64(tournament.MaxParticipants) {
			return c.Status(409).JSON(fiber.Map{"error": "tournament is full"})
		}
	}

	var existing models.TournamentParticipant
	err := s.DB.Where("tournament_id = ? AND user_id = ?", tournamentID, userID).First(&existing).Error
	if err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "already joined this tournament"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": "failed to check participation"})
	}

	var user models.TournamentUser
	if err := s.DB.Where("external_user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "user profile not synced yet"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch user profile"})
	}

	amount := tournament.EntryFeeBasic
	if tournament.RoomType == models.RoomTypeVIP {
		amount = tournament.EntryFeeVIP
	}

	participant := &models.TournamentParticipant{
		ID:            uuid.NewString(),
		TournamentID:  tournamentID,
		UserID:        userID,
		UserName:      user.Username,
		Status:        models.ParticipantRegistered,
		PaymentStatus: models.PaymentStatusPending,
	}
	payment := &models.Payment{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		UserID:       userID,
		Amount:       amount,
		Status:       models.PaymentPending,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(participant).Error; err != nil {
			return err
		}
		return tx.Create(payment).Error
	})
	if err != nil {
		log.Printf("DB Error creating join records (tournament=%s user=%s): %v", tournamentID, userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	pref, err := s.MP.CreatePreference(c.UserContext(), PreferenceRequest{
		TournamentID:   tournamentID,
		TournamentName: tournament.Name,
		RoomType:       tournament.RoomType,
		UserID:         userID,
		UserEmail:      user.Email,
		UserName:       user.Username,
		Amount:         amount,
	})
	if err != nil {
		log.Printf("ERROR creating payment preference (tournament=%s user=%s): %v", tournamentID, userID, err)
		return c.Status(502).JSON(fiber.Map{"error": "failed to create payment preference"})
	}

	if err := s.DB.Model(payment).Updates(map[string]interface{}{
		"preference_id": pref.ID,
		"payment_url":   pref.InitPoint,
	}).Error; err != nil {
		log.Printf("WARN: failed to record preference on payment %s: %v", payment.ID, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"payment_id":     payment.ID,
		"preference_id":  pref.ID,
		"payment_url":    pref.InitPoint,
		"amount":         amount,
		"participant_id": participant.ID,
	})
}

// GetMyPayments lists the calling user's payment rows, newest first.
func (s *PaymentService) GetMyPayments(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var payments []models.Payment
	if err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch payments"})
	}
	return c.JSON(payments)
}
