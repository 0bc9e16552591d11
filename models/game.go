package models

import (
	"time"
)

// Game round statuses
const (
	GameWaiting    = "waiting"
	GameInProgress = "in_progress"
	GameCompleted  = "completed"
)

// Game is one persisted round of a tournament: a letter, a timer, and the
// answers submitted for it. The in-browser round loop itself runs
// client-side; the server only records results.
type Game struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	TournamentID    string     `json:"tournament_id" gorm:"not null;index"`
	RoundNumber     int        `json:"round_number" gorm:"not null"`
	Letter          string     `json:"letter" gorm:"type:varchar(2);not null"`
	Status          string     `json:"status" gorm:"type:varchar(16);default:'waiting'"`
	DurationSeconds int        `json:"duration_seconds" gorm:"default:60"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// PlayerAnswer is a single category answer submitted for a game round.
type PlayerAnswer struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	GameID      string    `json:"game_id" gorm:"not null;index"`
	UserID      string    `json:"user_id" gorm:"not null;index"`
	Category    string    `json:"category" gorm:"not null"`
	Answer      string    `json:"answer"`
	IsValid     *bool     `json:"is_valid,omitempty"`
	Points      int64     `json:"points" gorm:"default:0"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`
}
