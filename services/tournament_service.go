// services/tournament_service.go
package services

import (
	"errors"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tutti-frutti-service/models"
	"tutti-frutti-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type TournamentService struct {
	DB *gorm.DB
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db}
}

var validStatuses = map[string]bool{
	models.TournamentDraft:      true,
	models.TournamentOpen:       true,
	models.TournamentInProgress: true,
	models.TournamentCompleted:  true,
	models.TournamentCancelled:  true,
}

// CreateTournament creates a tournament in draft status. Admin only.
// Financial fields start at zero and are only ever touched by the earnings
// recomputation.
func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	if !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
	}
	adminID, _ := c.Locals("user_id").(string)

	name := c.FormValue("name")
	description := c.FormValue("description")
	rules := c.FormValue("rules")
	roomType := c.FormValue("room_type", models.RoomTypeBasic)
	categories := c.FormValue("categories")
	startDateStr := c.FormValue("start_date")

	if name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}
	if roomType != models.RoomTypeBasic && roomType != models.RoomTypeVIP {
		return c.Status(400).JSON(fiber.Map{"error": "room_type must be basic or vip"})
	}

	entryFeeBasic, err := parseFee(c.FormValue("entry_fee_basic"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "entry_fee_basic must be a non-negative number"})
	}
	entryFeeVIP, err := parseFee(c.FormValue("entry_fee_vip"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "entry_fee_vip must be a non-negative number"})
	}

	maxParticipants := 0
	if v := c.FormValue("max_participants"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			maxParticipants = n
		} else {
			return c.Status(400).JSON(fiber.Map{"error": "max_participants must be a non-negative integer"})
		}
	}

	roundsTotal := 5
	if v := c.FormValue("rounds_total"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			roundsTotal = n
		}
	}
	timePerRound := 60
	if v := c.FormValue("time_per_round"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timePerRound = n
		}
	}

	var startDate *time.Time
	if startDateStr != "" {
		t, err := time.Parse(time.RFC3339, startDateStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid start_date (use RFC3339)"})
		}
		startDate = &t
	}

	// Optional main photo → R2
	var mainPhotoURL string
	if mainPhoto, err := c.FormFile("main_photo"); err == nil && mainPhoto.Size > 0 {
		ext := filepath.Ext(mainPhoto.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "tournaments/main/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(mainPhoto, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload main photo"})
		}
		mainPhotoURL = url
	}

	tournament := &models.Tournament{
		ID:              uuid.NewString(),
		AdminID:         adminID,
		Name:            name,
		Slug:            slug.Make(name),
		Description:     description,
		Rules:           rules,
		RoomType:        roomType,
		EntryFeeBasic:   entryFeeBasic,
		EntryFeeVIP:     entryFeeVIP,
		MaxParticipants: maxParticipants,
		RoundsTotal:     roundsTotal,
		TimePerRound:    timePerRound,
		Categories:      categories,
		MainPhotoURL:    mainPhotoURL,
		StartDate:       startDate,
		Status:          models.TournamentDraft, // always starts as draft
	}

	if err := s.DB.Create(tournament).Error; err != nil {
		log.Printf("DB Error creating tournament: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}

	return c.Status(201).JSON(tournament)
}

func parseFee(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, errors.New("invalid fee")
	}
	return f, nil
}

// GetOpenTournaments lists tournaments users can join.
func (s *TournamentService) GetOpenTournaments(c *fiber.Ctx) error {
	var tournaments []models.Tournament
	err := s.DB.
		Where("status = ?", models.TournamentOpen).
		Order("created_at DESC").
		Find(&tournaments).Error
	if err != nil {
		log.Printf("ERROR fetching open tournaments: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournaments"})
	}

	for i := range tournaments {
		s.DB.Model(&models.TournamentParticipant{}).
			Where("tournament_id = ?", tournaments[i].ID).
			Count(&tournaments[i].ParticipantCount)
	}

	return c.JSON(tournaments)
}

// GetTournamentByID returns the full tournament with its participants.
func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	id := c.Params("id")

	var tournament models.Tournament
	err := s.DB.Preload("Participants").First(&tournament, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournament"})
	}
	tournament.ParticipantCount = int64(len(tournament.Participants))

	return c.JSON(tournament)
}

// UpdateTournamentStatus moves a tournament through its lifecycle
// (draft → open → in_progress → completed, or cancelled). Admin only.
func (s *TournamentService) UpdateTournamentStatus(c *fiber.Ctx) error {
	if !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
	}
	id := c.Params("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if !validStatuses[req.Status] {
		return c.Status(400).JSON(fiber.Map{"error": "invalid status"})
	}

	res := s.DB.Model(&models.Tournament{}).Where("id = ?", id).Update("status", req.Status)
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update status"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}

	return c.JSON(fiber.Map{"id": id, "status": req.Status})
}

// GetMyTournaments lists the tournaments the calling user participates in,
// for the dashboard.
func (s *TournamentService) GetMyTournaments(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var participants []models.TournamentParticipant
	if err := s.DB.Where("user_id = ?", userID).Find(&participants).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch participations"})
	}

	ids := make([]string, 0, len(participants))
	byTournament := make(map[string]models.TournamentParticipant, len(participants))
	for _, p := range participants {
		ids = append(ids, p.TournamentID)
		byTournament[p.TournamentID] = p
	}

	var tournaments []models.Tournament
	if len(ids) > 0 {
		if err := s.DB.Where("id IN ?", ids).Order("created_at DESC").Find(&tournaments).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournaments"})
		}
	}

	type Entry struct {
		Tournament    models.Tournament            `json:"tournament"`
		Participation models.TournamentParticipant `json:"participation"`
	}
	res := make([]Entry, len(tournaments))
	for i, t := range tournaments {
		res[i] = Entry{Tournament: t, Participation: byTournament[t.ID]}
	}

	return c.JSON(res)
}

// GetTournamentLeaderboard returns confirmed participants ordered by score.
func (s *TournamentService) GetTournamentLeaderboard(c *fiber.Ctx) error {
	id := c.Params("id")

	var participants []models.TournamentParticipant
	err := s.DB.
		Where("tournament_id = ? AND status IN ?", id,
			[]string{models.ParticipantConfirmed, models.ParticipantEliminated, models.ParticipantWinner}).
		Order("total_score DESC").
		Find(&participants).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch leaderboard"})
	}

	return c.JSON(participants)
}

func isAdmin(c *fiber.Ctx) bool {
	roles, _ := c.Locals("user_roles").([]string)
	for _, r := range roles {
		if strings.EqualFold(r, "admin") {
			return true
		}
	}
	return false
}
