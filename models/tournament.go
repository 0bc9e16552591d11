package models

import (
	"time"
)

// Tournament statuses
const (
	TournamentDraft      = "draft"
	TournamentOpen       = "open"
	TournamentInProgress = "in_progress"
	TournamentCompleted  = "completed"
	TournamentCancelled  = "cancelled"
)

// Room tiers — each carries its own entry fee
const (
	RoomTypeBasic = "basic"
	RoomTypeVIP   = "vip"
)

// Participant lifecycle statuses
const (
	ParticipantRegistered = "registered"
	ParticipantConfirmed  = "confirmed"
	ParticipantEliminated = "eliminated"
	ParticipantWinner     = "winner"
)

// Participant payment statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Tournament represents a paid Tutti Frutti tournament.
// TotalCollected, AdminCommission and PrizePoolActual are derived fields:
// they are always recomputed in full from the set of paid participants,
// never incremented in place.
type Tournament struct {
	ID              string  `json:"id" gorm:"primaryKey"`
	AdminID         string  `json:"admin_id" gorm:"not null;index"`
	Name            string  `json:"name" gorm:"not null"`
	Slug            string  `json:"slug" gorm:"index"`
	Description     string  `json:"description"`
	Rules           string  `json:"rules" gorm:"type:text"`
	RoomType        string  `json:"room_type" gorm:"type:varchar(8);default:'basic'"`
	EntryFeeBasic   float64 `json:"entry_fee_basic" gorm:"default:0"`
	EntryFeeVIP     float64 `json:"entry_fee_vip" gorm:"column:entry_fee_vip;default:0"`
	MaxParticipants int     `json:"max_participants" gorm:"default:0"`
	RoundsTotal     int     `json:"rounds_total" gorm:"default:5"`
	TimePerRound    int     `json:"time_per_round" gorm:"default:60"` // seconds
	Categories      string  `json:"categories"`                      // comma-separated category names
	MainPhotoURL    string  `json:"main_photo_url"`
	Status          string  `json:"status" gorm:"default:'draft'"`

	// Derived financials — written only by the earnings recomputation
	TotalCollected  float64 `json:"total_collected" gorm:"default:0"`
	AdminCommission float64 `json:"admin_commission" gorm:"default:0"`
	PrizePoolActual float64 `json:"prize_pool_actual" gorm:"default:0"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Participants []TournamentParticipant `json:"participants,omitempty" gorm:"foreignKey:TournamentID"`

	// Calculated fields (not stored in DB)
	ParticipantCount int64 `json:"participant_count,omitempty" gorm:"-"`
}

// TournamentParticipant links a user to a tournament. The row is created
// at join time, before the payment completes; PaymentStatus flips to "paid"
// and Status to "confirmed" only through the webhook reconciliation flow.
type TournamentParticipant struct {
	ID           string `json:"id" gorm:"primaryKey"`
	TournamentID string `json:"tournament_id" gorm:"not null;uniqueIndex:idx_participant_tournament_user"`
	UserID       string `json:"user_id" gorm:"not null;uniqueIndex:idx_participant_tournament_user"` // external user id

	UserName         string     `json:"user_name"` // denormalized from the profile mirror
	Status           string     `json:"status" gorm:"type:varchar(16);default:'registered'"`
	PaymentStatus    string     `json:"payment_status" gorm:"type:varchar(16);default:'pending'"`
	TotalScore       int64      `json:"total_score" gorm:"default:0"`
	Position         int        `json:"position" gorm:"default:0"` // 0 = not ranked
	RegistrationDate time.Time  `json:"registration_date" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}
