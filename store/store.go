package store

import (
	"context"
	"errors"
	"time"

	"tutti-frutti-service/models"
)

// ErrNotFound is returned when a lookup matches no row. Callers on the
// webhook path must treat it as an expected condition, not a failure.
var ErrNotFound = errors.New("record not found")

// TournamentTotals carries the three derived financial fields written back
// to a tournament after a full recomputation.
type TournamentTotals struct {
	TotalCollected  float64
	AdminCommission float64
	PrizePoolActual float64
}

// Store is the narrow persistence surface the reconciliation and earnings
// code depends on. The relational store is the single source of truth: every
// read is a fresh fetch and every write is one atomic call.
type Store interface {
	// GetTournamentWithParticipants fetches a tournament and all of its
	// participant rows in one go.
	GetTournamentWithParticipants(ctx context.Context, tournamentID string) (*models.Tournament, error)

	// GetPaymentByExternalID looks a payment up by the provider's payment id.
	// Returns ErrNotFound when no row carries that external id yet.
	GetPaymentByExternalID(ctx context.Context, externalPaymentID string) (*models.Payment, error)

	// ApprovePayment flips the payment for (tournamentID, userID) to
	// "approved", recording the provider id and paid timestamp. The update is
	// conditioned on the row not already being approved; the returned count
	// is the number of rows actually changed, so a concurrent duplicate
	// delivery observes zero and backs off.
	ApprovePayment(ctx context.Context, tournamentID, userID, externalPaymentID string, paidAt time.Time) (int64, error)

	// ConfirmParticipant marks the participant paid and confirmed.
	ConfirmParticipant(ctx context.Context, tournamentID, userID string) error

	// UpdateTournamentTotals overwrites the tournament's derived financial
	// fields with freshly computed values.
	UpdateTournamentTotals(ctx context.Context, tournamentID string, totals TournamentTotals) error

	// UpsertEarnings inserts or refreshes the per-tournament earnings row.
	UpsertEarnings(ctx context.Context, earnings *models.AdminEarnings) error

	// ListEarnings returns all earnings rows, newest first.
	ListEarnings(ctx context.Context) ([]models.AdminEarnings, error)

	// GetEarningsByTournament returns the earnings row for one tournament.
	GetEarningsByTournament(ctx context.Context, tournamentID string) (*models.AdminEarnings, error)

	// ListActiveTournamentIDs returns ids of tournaments whose financials
	// are still moving (open or in progress), for the periodic sweep.
	ListActiveTournamentIDs(ctx context.Context) ([]string, error)
}
