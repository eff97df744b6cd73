// Package database stores finished and running games through gorm. It
// implements the kitchen's Ledger.
package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"cocan/internal/kitchen"
	"cocan/internal/models"
)

// ErrNotFound is returned when a session id is not stored.
var ErrNotFound = errors.New("session not found")

// Store is the serve log and session ledger.
type Store struct {
	db *gorm.DB
}

// Open connects to driver ("sqlite3" or "postgres") at dsn.
func Open(driver, dsn string) (*Store, error) {
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if driver == "sqlite3" {
		// Each connection to ":memory:" is its own database.
		db.DB().SetMaxOpenConns(1)
	}
	db.LogMode(false)
	return &Store{db: db}, nil
}

// Migrate creates or updates the tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.Session{}, &models.ServeLog{}).Error; err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	return nil
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) BeginSession(info kitchen.SessionInfo) error {
	row := models.Session{
		SessionID: info.ID,
		Scenario:  info.Scenario,
		Guests:    info.Guests,
		Chobins:   info.Chobins,
		Seed:      info.Seed,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("creating session %s: %w", info.ID, err)
	}
	return nil
}

func (s *Store) RecordServe(rec kitchen.ServeRecord) error {
	row := models.ServeLog{
		SessionID:     rec.Session,
		Chobin:        rec.Chobin,
		Guest:         rec.Guest,
		Variant:       rec.Variant,
		Ingredients:   models.StringSlice(rec.Ingredients),
		Actions:       models.StringSlice(rec.Actions),
		Steps:         rec.Steps,
		CookSeconds:   rec.CookTime.Seconds(),
		WaitSeconds:   rec.WaitTime.Seconds(),
		LikedPoints:   rec.Breakdown.Liked,
		HatedPoints:   rec.Breakdown.Hated,
		TimingPoints:  rec.Breakdown.Timing,
		EmotionPoints: rec.Breakdown.Emotion,
		StepPoints:    rec.Breakdown.Steps,
		Score:         rec.Breakdown.Score,
		Reaction:      rec.Reaction.String(),
		SimSeconds:    rec.At.Seconds(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("recording serve for guest %d: %w", rec.Guest, err)
	}
	return nil
}

func (s *Store) FinishSession(id string, board kitchen.Scoreboard) error {
	now := time.Now()
	res := s.db.Model(&models.Session{}).Where("session_id = ?", id).Updates(map[string]interface{}{
		"served":      board.Served,
		"total_score": board.TotalScore,
		"total_sum":   board.TotalSum,
		"finished":    true,
		"finished_at": &now,
	})
	if res.Error != nil {
		return fmt.Errorf("finishing session %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Session loads one game by id.
func (s *Store) Session(id string) (*models.Session, error) {
	var row models.Session
	if err := s.db.Where("session_id = ?", id).First(&row).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &row, nil
}

// Sessions returns the most recent games first, at most limit of them.
func (s *Store) Sessions(limit int) ([]models.Session, error) {
	var rows []models.Session
	q := s.db.Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Serves returns a session's serve log in serving order.
func (s *Store) Serves(session string) ([]models.ServeLog, error) {
	var rows []models.ServeLog
	if err := s.db.Where("session_id = ?", session).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

var _ kitchen.Ledger = (*Store)(nil)
