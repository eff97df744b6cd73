package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocan/internal/dish"
	"cocan/internal/kitchen"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	s := openTest(t)

	require.NoError(t, s.BeginSession(kitchen.SessionInfo{ID: "g1", Scenario: "standard", Guests: 3, Chobins: 2, Seed: 7}))

	row, err := s.Session("g1")
	require.NoError(t, err)
	assert.Equal(t, "standard", row.Scenario)
	assert.Equal(t, 3, row.Guests)
	assert.False(t, row.Finished)
	assert.Nil(t, row.FinishedAt)

	require.NoError(t, s.FinishSession("g1", kitchen.Scoreboard{Served: 3, TotalScore: 90, TotalSum: 93}))

	row, err = s.Session("g1")
	require.NoError(t, err)
	assert.True(t, row.Finished)
	assert.Equal(t, 93, row.TotalSum)
	assert.NotNil(t, row.FinishedAt)
}

func TestSessionNotFound(t *testing.T) {
	s := openTest(t)

	_, err := s.Session("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.FinishSession("missing", kitchen.Scoreboard{}), ErrNotFound)
}

func TestDuplicateSession(t *testing.T) {
	s := openTest(t)
	require.NoError(t, s.BeginSession(kitchen.SessionInfo{ID: "g1"}))
	assert.Error(t, s.BeginSession(kitchen.SessionInfo{ID: "g1"}))
}

func TestServeLog(t *testing.T) {
	s := openTest(t)
	require.NoError(t, s.BeginSession(kitchen.SessionInfo{ID: "g1"}))

	rec := kitchen.ServeRecord{
		Session:     "g1",
		Chobin:      1,
		Guest:       0,
		Ingredients: []string{"tomato"},
		Actions:     []string{"chop", "boil", "chop"},
		Steps:       3,
		CookTime:    12 * time.Second,
		WaitTime:    3 * time.Second,
		Breakdown:   dish.Breakdown{Liked: 5, Timing: 10, Emotion: 5, Steps: 10, Raw: 30, Score: 30},
		Reaction:    dish.Amazing,
		At:          40 * time.Second,
	}
	require.NoError(t, s.RecordServe(rec))
	rec.Guest = 1
	rec.Ingredients = nil
	rec.Breakdown = dish.Breakdown{}
	rec.Reaction = dish.Worst
	require.NoError(t, s.RecordServe(rec))
	require.NoError(t, s.RecordServe(kitchen.ServeRecord{Session: "other"}))

	rows, err := s.Serves("g1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 0, rows[0].Guest)
	assert.Equal(t, []string{"tomato"}, []string(rows[0].Ingredients))
	assert.Equal(t, []string{"chop", "boil", "chop"}, []string(rows[0].Actions))
	assert.Equal(t, 30, rows[0].Score)
	assert.Equal(t, 10, rows[0].StepPoints)
	assert.Equal(t, "amazing", rows[0].Reaction)
	assert.Equal(t, 12.0, rows[0].CookSeconds)

	assert.Equal(t, 1, rows[1].Guest)
	assert.Empty(t, rows[1].Ingredients)
	assert.Equal(t, "worst", rows[1].Reaction)
}

func TestSessionsNewestFirst(t *testing.T) {
	s := openTest(t)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.BeginSession(kitchen.SessionInfo{ID: id}))
	}
	rows, err := s.Sessions(2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].SessionID)
	assert.Equal(t, "b", rows[1].SessionID)
}

func TestFileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cocan.db")
	s, err := Open("sqlite3", path)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	require.NoError(t, s.BeginSession(kitchen.SessionInfo{ID: "kept"}))
	require.NoError(t, s.Close())

	s, err = Open("sqlite3", path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Session("kept")
	assert.NoError(t, err)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("nosuchdriver", "x")
	assert.Error(t, err)
}
