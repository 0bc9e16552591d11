// services/earnings_service.go
package services

import (
	"context"
	"errors"
	"log"
	"math"

	"tutti-frutti-service/models"
	"tutti-frutti-service/store"

	"github.com/gofiber/fiber/v2"
)

// The admin keeps a fixed 30% of collected entry fees; the rest is the prize pool.
const commissionPercentage = 30.0

type EarningsService struct {
	Store store.Store
}

func NewEarningsService(st store.Store) *EarningsService {
	return &EarningsService{Store: st}
}

// RecomputeTournamentStats rebuilds a tournament's financial fields from the
// current set of paid participants and upserts the admin_earnings row. This
// is always a full recomputation, never an increment, so it stays correct
// even if an earlier update was missed or applied out of order.
func (s *EarningsService) RecomputeTournamentStats(ctx context.Context, tournamentID string) error {
	t, err := s.Store.GetTournamentWithParticipants(ctx, tournamentID)
	if err != nil {
		return err
	}

	paid := 0
	for _, p := range t.Participants {
		if p.PaymentStatus == models.PaymentStatusPaid {
			paid++
		}
	}

	entryFee := t.EntryFeeBasic
	if t.RoomType == models.RoomTypeVIP {
		entryFee = t.EntryFeeVIP
	}

	totalCollected := entryFee * float64(paid)
	adminCommission := roundCents(totalCollected * commissionPercentage / 100)
	prizePoolActual := totalCollected - adminCommission

	totals := store.TournamentTotals{
		TotalCollected:  totalCollected,
		AdminCommission: adminCommission,
		PrizePoolActual: prizePoolActual,
	}
	if err := s.Store.UpdateTournamentTotals(ctx, tournamentID, totals); err != nil {
		return err
	}

	earnings := &models.AdminEarnings{
		TournamentID:         tournamentID,
		TotalInscriptions:    totalCollected,
		CommissionPercentage: commissionPercentage,
		CommissionAmount:     adminCommission,
	}
	if err := s.Store.UpsertEarnings(ctx, earnings); err != nil {
		return err
	}

	log.Printf("Tournament stats updated for %s: collected=%.2f commission=%.2f prize_pool=%.2f",
		tournamentID, totalCollected, adminCommission, prizePoolActual)
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// --- Admin Handlers ---

// ListEarnings returns every per-tournament earnings row plus grand totals.
func (s *EarningsService) ListEarnings(c *fiber.Ctx) error {
	rows, err := s.Store.ListEarnings(c.UserContext())
	if err != nil {
		log.Printf("ERROR fetching admin earnings: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch earnings"})
	}

	var totalCollected, totalCommission float64
	for _, r := range rows {
		totalCollected += r.TotalInscriptions
		totalCommission += r.CommissionAmount
	}

	return c.JSON(fiber.Map{
		"earnings":         rows,
		"total_collected":  roundCents(totalCollected),
		"total_commission": roundCents(totalCommission),
	})
}

// GetTournamentEarnings returns the earnings row for one tournament.
func (s *EarningsService) GetTournamentEarnings(c *fiber.Ctx) error {
	tournamentID := c.Params("tournament_id")

	e, err := s.Store.GetEarningsByTournament(c.UserContext(), tournamentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "earnings not found for tournament"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch earnings"})
	}
	return c.JSON(e)
}

// RecomputeTournament forces a recomputation for one tournament. The sweep
// and the webhook keep these fresh on their own; this endpoint exists for
// the admin dashboard's refresh button.
func (s *EarningsService) RecomputeTournament(c *fiber.Ctx) error {
	tournamentID := c.Params("id")

	if err := s.RecomputeTournamentStats(c.UserContext(), tournamentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		log.Printf("ERROR recomputing stats for tournament %s: %v", tournamentID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to recompute tournament stats"})
	}

	e, err := s.Store.GetEarningsByTournament(c.UserContext(), tournamentID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch earnings"})
	}
	return c.JSON(e)
}
