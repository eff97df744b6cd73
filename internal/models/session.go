package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// Session is one game from start to the final summary.
type Session struct {
	gorm.Model
	SessionID  string `gorm:"unique_index;not null"`
	Scenario   string
	Guests     int
	Chobins    int
	Seed       int64
	Served     int
	TotalScore int
	TotalSum   int
	Finished   bool
	FinishedAt *time.Time
}

// TableName sets the table name for Session
func (Session) TableName() string {
	return "sessions"
}

// ServeLog is one dish handed to a guest, with its score broken down.
type ServeLog struct {
	gorm.Model
	SessionID   string `gorm:"index"`
	Chobin      int
	Guest       int
	Variant     int
	Ingredients StringSlice `gorm:"type:text"`
	Actions     StringSlice `gorm:"type:text"`
	Steps       int
	CookSeconds float64
	WaitSeconds float64

	LikedPoints   int
	HatedPoints   int
	TimingPoints  int
	EmotionPoints int
	StepPoints    int
	Score         int
	Reaction      string
	SimSeconds    float64
}

// TableName sets the table name for ServeLog
func (ServeLog) TableName() string {
	return "serve_logs"
}
