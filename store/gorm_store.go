package store

import (
	"context"
	"errors"
	"time"

	"tutti-frutti-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of gorm/postgres.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) GetTournamentWithParticipants(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	var t models.Tournament
	err := s.DB.WithContext(ctx).Preload("Participants").First(&t, "id = ?", tournamentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *GormStore) GetPaymentByExternalID(ctx context.Context, externalPaymentID string) (*models.Payment, error) {
	var p models.Payment
	err := s.DB.WithContext(ctx).Where("external_payment_id = ?", externalPaymentID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ApprovePayment is a single conditional UPDATE. The `status <> approved`
// guard closes the window between the idempotency pre-check and the write:
// whichever delivery lands first gets RowsAffected == 1, every later one
// gets 0.
func (s *GormStore) ApprovePayment(ctx context.Context, tournamentID, userID, externalPaymentID string, paidAt time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Payment{}).
		Where("tournament_id = ? AND user_id = ? AND status <> ?", tournamentID, userID, models.PaymentApproved).
		Updates(map[string]interface{}{
			"status":              models.PaymentApproved,
			"external_payment_id": externalPaymentID,
			"paid_at":             paidAt,
		})
	return res.RowsAffected, res.Error
}

func (s *GormStore) ConfirmParticipant(ctx context.Context, tournamentID, userID string) error {
	res := s.DB.WithContext(ctx).Model(&models.TournamentParticipant{}).
		Where("tournament_id = ? AND user_id = ?", tournamentID, userID).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"status":         models.ParticipantConfirmed,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) UpdateTournamentTotals(ctx context.Context, tournamentID string, totals TournamentTotals) error {
	res := s.DB.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ?", tournamentID).
		Updates(map[string]interface{}{
			"total_collected":   totals.TotalCollected,
			"admin_commission":  totals.AdminCommission,
			"prize_pool_actual": totals.PrizePoolActual,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) UpsertEarnings(ctx context.Context, earnings *models.AdminEarnings) error {
	if earnings.ID == "" {
		earnings.ID = uuid.NewString()
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tournament_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_inscriptions",
			"commission_percentage",
			"commission_amount",
			"updated_at",
		}),
	}).Create(earnings).Error
}

func (s *GormStore) ListEarnings(ctx context.Context) ([]models.AdminEarnings, error) {
	var rows []models.AdminEarnings
	if err := s.DB.WithContext(ctx).Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) GetEarningsByTournament(ctx context.Context, tournamentID string) (*models.AdminEarnings, error) {
	var e models.AdminEarnings
	err := s.DB.WithContext(ctx).Where("tournament_id = ?", tournamentID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *GormStore) ListActiveTournamentIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.Tournament{}).
		Where("status IN ?", []string{models.TournamentOpen, models.TournamentInProgress}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
