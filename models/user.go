package models

import (
	"time"

	"gorm.io/gorm"
)

// TournamentUser is a local snapshot of user data needed for tournaments.
// The Identity & Profile Store owns user records; this mirror is populated
// by the profile sync worker and is read-only for request handlers.
type TournamentUser struct {
	ID             string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string  `gorm:"uniqueIndex;not null" json:"external_user_id"` // the profile service's UUID
	Username       string  `gorm:"index;not null" json:"username"`
	Email          string  `json:"email,omitempty"`
	FullName       string  `json:"full_name,omitempty"`
	AvatarURL      *string `json:"avatar_url,omitempty"`
	IsAdmin        bool    `gorm:"default:false" json:"is_admin"`

	// Lifetime stats shown on the dashboard
	TotalScore     int64 `gorm:"default:0" json:"total_score"`
	GamesPlayed    int   `gorm:"default:0" json:"games_played"`
	TournamentsWon int   `gorm:"default:0" json:"tournaments_won"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
