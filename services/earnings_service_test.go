package services

import (
	"context"
	"testing"

	"tutti-frutti-service/models"
	"tutti-frutti-service/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addPaidParticipants(st *fakeStore, tournamentID string, n int) {
	for i := 0; i < n; i++ {
		st.addParticipant(&models.TournamentParticipant{
			TournamentID:  tournamentID,
			UserID:        string(rune('A' + i)),
			Status:        models.ParticipantConfirmed,
			PaymentStatus: models.PaymentStatusPaid,
		})
	}
}

func TestRecomputeBasicTier(t *testing.T) {
	st := newFakeStore()
	st.tournaments["T1"] = &models.Tournament{
		ID:            "T1",
		RoomType:      models.RoomTypeBasic,
		EntryFeeBasic: 2000,
		EntryFeeVIP:   5000,
		Status:        models.TournamentOpen,
	}
	addPaidParticipants(st, "T1", 3)
	// a registered-but-unpaid participant must not count
	st.addParticipant(&models.TournamentParticipant{
		TournamentID:  "T1",
		UserID:        "pending-user",
		Status:        models.ParticipantRegistered,
		PaymentStatus: models.PaymentStatusPending,
	})

	svc := NewEarningsService(st)
	require.NoError(t, svc.RecomputeTournamentStats(context.Background(), "T1"))

	tournament := st.tournaments["T1"]
	assert.Equal(t, 6000.0, tournament.TotalCollected)
	assert.Equal(t, 1800.0, tournament.AdminCommission)
	assert.Equal(t, 4200.0, tournament.PrizePoolActual)
}

func TestRecomputeVIPTierUsesVIPFee(t *testing.T) {
	st := newFakeStore()
	st.tournaments["T2"] = &models.Tournament{
		ID:            "T2",
		RoomType:      models.RoomTypeVIP,
		EntryFeeBasic: 2000,
		EntryFeeVIP:   5000,
		Status:        models.TournamentOpen,
	}
	addPaidParticipants(st, "T2", 4)

	svc := NewEarningsService(st)
	require.NoError(t, svc.RecomputeTournamentStats(context.Background(), "T2"))

	tournament := st.tournaments["T2"]
	assert.Equal(t, 20000.0, tournament.TotalCollected)
	assert.Equal(t, 6000.0, tournament.AdminCommission)
	assert.Equal(t, 14000.0, tournament.PrizePoolActual)
}

func TestRecomputeOverwritesStaleTotals(t *testing.T) {
	// The aggregator is a full recomputation: whatever garbage the fields
	// held before must be replaced, not added to.
	st := newFakeStore()
	st.tournaments["T1"] = &models.Tournament{
		ID:              "T1",
		RoomType:        models.RoomTypeBasic,
		EntryFeeBasic:   2000,
		Status:          models.TournamentOpen,
		TotalCollected:  999999,
		AdminCommission: 123456,
		PrizePoolActual: -50,
	}
	addPaidParticipants(st, "T1", 2)

	svc := NewEarningsService(st)
	require.NoError(t, svc.RecomputeTournamentStats(context.Background(), "T1"))

	tournament := st.tournaments["T1"]
	assert.Equal(t, 4000.0, tournament.TotalCollected)
	assert.Equal(t, 1200.0, tournament.AdminCommission)
	assert.Equal(t, 2800.0, tournament.PrizePoolActual)
}

func TestRecomputeZeroPaidParticipants(t *testing.T) {
	st := newFakeStore()
	st.tournaments["T1"] = &models.Tournament{
		ID:              "T1",
		RoomType:        models.RoomTypeBasic,
		EntryFeeBasic:   2000,
		Status:          models.TournamentOpen,
		TotalCollected:  4000,
		AdminCommission: 1200,
		PrizePoolActual: 2800,
	}

	svc := NewEarningsService(st)
	require.NoError(t, svc.RecomputeTournamentStats(context.Background(), "T1"))

	tournament := st.tournaments["T1"]
	assert.Equal(t, 0.0, tournament.TotalCollected)
	assert.Equal(t, 0.0, tournament.AdminCommission)
	assert.Equal(t, 0.0, tournament.PrizePoolActual)
}

func TestRecomputeUpsertsEarningsRow(t *testing.T) {
	st := newFakeStore()
	st.tournaments["T1"] = &models.Tournament{
		ID:            "T1",
		RoomType:      models.RoomTypeBasic,
		EntryFeeBasic: 2000,
		Status:        models.TournamentOpen,
	}
	addPaidParticipants(st, "T1", 3)

	svc := NewEarningsService(st)
	require.NoError(t, svc.RecomputeTournamentStats(context.Background(), "T1"))

	earnings := st.earnings["T1"]
	require.NotNil(t, earnings)
	assert.Equal(t, 6000.0, earnings.TotalInscriptions)
	assert.Equal(t, 30.0, earnings.CommissionPercentage)
	assert.Equal(t, 1800.0, earnings.CommissionAmount)
	firstID := earnings.ID

	// a second recompute refreshes the same row instead of creating another
	addPaidParticipants(st, "T1", 4) // overwrites A,B,C and adds D
	require.NoError(t, svc.RecomputeTournamentStats(context.Background(), "T1"))

	require.Len(t, st.earnings, 1)
	earnings = st.earnings["T1"]
	assert.Equal(t, firstID, earnings.ID)
	assert.Equal(t, 8000.0, earnings.TotalInscriptions)
	assert.Equal(t, 2400.0, earnings.CommissionAmount)
	assert.Equal(t, 2, st.upsertEarningsCalls)
}

func TestRecomputeUnknownTournament(t *testing.T) {
	st := newFakeStore()
	svc := NewEarningsService(st)

	err := svc.RecomputeTournamentStats(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 0, st.totalsCalls)
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 300.3, roundCents(1001*0.30))
	assert.Equal(t, 1234.57, roundCents(1234.567))
	assert.Equal(t, 2400.0, roundCents(2400.0))
}
