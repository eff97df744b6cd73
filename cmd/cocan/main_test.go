package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocan/internal/stage"
)

func withFlags(t *testing.T, path, scen string) {
	t.Helper()
	oldPath, oldScen, oldLevel := configPath, scenarioFlag, logLevel
	configPath, scenarioFlag, logLevel = path, scen, "error"
	t.Cleanup(func() { configPath, scenarioFlag, logLevel = oldPath, oldScen, oldLevel })
}

func TestLoadConfigAppliesScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cocan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("guests:\n  total: 6\nsimulation:\n  seed: 3\n"), 0o644))
	withFlags(t, path, "busy_night")

	cfg, log, err := loadConfig()
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, "busy_night", cfg.Scenario)
	assert.Equal(t, 12, cfg.Guests.Total)
	assert.Equal(t, int64(3), cfg.Simulation.Seed)
}

func TestLoadConfigPicksSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cocan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenario: standard\n"), 0o644))
	withFlags(t, path, "")

	cfg, _, err := loadConfig()
	require.NoError(t, err)
	assert.NotZero(t, cfg.Simulation.Seed)
}

func TestLoadConfigRejectsUnknownScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cocan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenario: standard\n"), 0o644))
	withFlags(t, path, "brunch")

	_, _, err := loadConfig()
	assert.Error(t, err)
}

func TestTallyCountsServedDishes(t *testing.T) {
	tl := &tally{reactions: map[string]int{}}
	tl.Publish(stage.Event{Kind: stage.EventDishServed, Guest: stage.Ref(0), Score: stage.Ref(30), Text: "amazing"})
	tl.Publish(stage.Event{Kind: stage.EventDishServed, Guest: stage.Ref(1), Score: stage.Ref(4), Text: "worst"})
	tl.Publish(stage.Event{Kind: stage.EventDishServed, Guest: stage.Ref(2), Score: stage.Ref(28), Text: "amazing"})
	tl.Publish(stage.Event{Kind: stage.EventGuestSpawned, Guest: stage.Ref(3)})

	assert.Equal(t, map[string]int{"amazing": 2, "worst": 1}, tl.reactions)
}

func TestCommandsAreRegistered(t *testing.T) {
	for _, name := range []string{"serve", "simulate", "evaluate", "config", "scenarios"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
