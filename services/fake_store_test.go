package services

import (
	"context"
	"sync"
	"time"

	"tutti-frutti-service/models"
	"tutti-frutti-service/store"
)

// fakeStore is an in-memory store.Store with call counters, so tests can
// assert that redelivered notifications do not re-run the write steps.
type fakeStore struct {
	mu           sync.Mutex
	tournaments  map[string]*models.Tournament
	participants map[string]*models.TournamentParticipant // tournamentID/userID
	payments     map[string]*models.Payment               // tournamentID/userID
	earnings     map[string]*models.AdminEarnings         // tournamentID

	approveCalls        int
	confirmCalls        int
	totalsCalls         int
	upsertEarningsCalls int

	lookupErr   error // forced error on GetPaymentByExternalID
	approveErr  error
	approveZero bool // force the CAS update to report zero rows
	confirmErr  error
	totalsErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tournaments:  make(map[string]*models.Tournament),
		participants: make(map[string]*models.TournamentParticipant),
		payments:     make(map[string]*models.Payment),
		earnings:     make(map[string]*models.AdminEarnings),
	}
}

func key(tournamentID, userID string) string {
	return tournamentID + "/" + userID
}

func (f *fakeStore) addParticipant(p *models.TournamentParticipant) {
	f.participants[key(p.TournamentID, p.UserID)] = p
}

func (f *fakeStore) addPayment(p *models.Payment) {
	f.payments[key(p.TournamentID, p.UserID)] = p
}

func (f *fakeStore) GetTournamentWithParticipants(_ context.Context, tournamentID string) (*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[tournamentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	cp.Participants = nil
	for _, p := range f.participants {
		if p.TournamentID == tournamentID {
			cp.Participants = append(cp.Participants, *p)
		}
	}
	return &cp, nil
}

func (f *fakeStore) GetPaymentByExternalID(_ context.Context, externalPaymentID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, p := range f.payments {
		if p.ExternalPaymentID == externalPaymentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ApprovePayment(_ context.Context, tournamentID, userID, externalPaymentID string, paidAt time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approveCalls++
	if f.approveErr != nil {
		return 0, f.approveErr
	}
	if f.approveZero {
		return 0, nil
	}
	p, ok := f.payments[key(tournamentID, userID)]
	if !ok || p.Status == models.PaymentApproved {
		return 0, nil
	}
	p.Status = models.PaymentApproved
	p.ExternalPaymentID = externalPaymentID
	p.PaidAt = &paidAt
	return 1, nil
}

func (f *fakeStore) ConfirmParticipant(_ context.Context, tournamentID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmCalls++
	if f.confirmErr != nil {
		return f.confirmErr
	}
	p, ok := f.participants[key(tournamentID, userID)]
	if !ok {
		return store.ErrNotFound
	}
	p.PaymentStatus = models.PaymentStatusPaid
	p.Status = models.ParticipantConfirmed
	return nil
}

func (f *fakeStore) UpdateTournamentTotals(_ context.Context, tournamentID string, totals store.TournamentTotals) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalsCalls++
	if f.totalsErr != nil {
		return f.totalsErr
	}
	t, ok := f.tournaments[tournamentID]
	if !ok {
		return store.ErrNotFound
	}
	t.TotalCollected = totals.TotalCollected
	t.AdminCommission = totals.AdminCommission
	t.PrizePoolActual = totals.PrizePoolActual
	return nil
}

func (f *fakeStore) UpsertEarnings(_ context.Context, earnings *models.AdminEarnings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertEarningsCalls++
	cp := *earnings
	if prev, ok := f.earnings[earnings.TournamentID]; ok {
		cp.ID = prev.ID
	} else if cp.ID == "" {
		cp.ID = "earnings-" + earnings.TournamentID
	}
	f.earnings[earnings.TournamentID] = &cp
	return nil
}

func (f *fakeStore) ListEarnings(_ context.Context) ([]models.AdminEarnings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []models.AdminEarnings
	for _, e := range f.earnings {
		rows = append(rows, *e)
	}
	return rows, nil
}

func (f *fakeStore) GetEarningsByTournament(_ context.Context, tournamentID string) (*models.AdminEarnings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.earnings[tournamentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeStore) ListActiveTournamentIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, t := range f.tournaments {
		if t.Status == models.TournamentOpen || t.Status == models.TournamentInProgress {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// fakeFetcher is a canned PaymentInfoFetcher.
type fakeFetcher struct {
	info  *PaymentInfo
	err   error
	calls int
}

func (f *fakeFetcher) GetPaymentInfo(_ context.Context, _ string) (*PaymentInfo, error) {
	f.calls++
	return f.info, f.err
}
