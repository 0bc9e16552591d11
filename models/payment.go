package models

import (
	"time"
)

// Payment statuses mirror Mercado Pago's payment states.
const (
	PaymentPending   = "pending"
	PaymentApproved  = "approved"
	PaymentRejected  = "rejected"
	PaymentCancelled = "cancelled"
)

// Payment is one row per join attempt. ExternalPaymentID is the provider's
// identifier and the correlation/idempotency key for webhook notifications:
// for a given external id at most one transition into "approved" is ever
// acted upon. Rows are mutated only by the webhook flow.
type Payment struct {
	ID                string     `json:"id" gorm:"primaryKey"`
	TournamentID      string     `json:"tournament_id" gorm:"not null;index:idx_payment_tournament_user"`
	UserID            string     `json:"user_id" gorm:"not null;index:idx_payment_tournament_user"`
	Amount            float64    `json:"amount" gorm:"not null"`
	Status            string     `json:"status" gorm:"type:varchar(16);default:'pending'"`
	PaymentMethod     string     `json:"payment_method" gorm:"default:'mercadopago'"`
	ExternalPaymentID string     `json:"external_payment_id,omitempty" gorm:"index"`
	PreferenceID      string     `json:"preference_id,omitempty"`
	PaymentURL        string     `json:"payment_url,omitempty"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
}

// AdminEarnings caches the last-computed commission figures for one
// tournament. Entirely derived data — safe to recompute from Tournament +
// TournamentParticipant at any time, kept fresh via upsert.
type AdminEarnings struct {
	ID                   string    `json:"id" gorm:"primaryKey"`
	TournamentID         string    `json:"tournament_id" gorm:"not null;uniqueIndex"`
	TotalInscriptions    float64   `json:"total_inscriptions" gorm:"default:0"`
	CommissionPercentage float64   `json:"commission_percentage" gorm:"default:30"`
	CommissionAmount     float64   `json:"commission_amount" gorm:"default:0"`
	CreatedAt            time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (AdminEarnings) TableName() string {
	return "admin_earnings"
}
