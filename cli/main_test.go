package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestRowsHideEmptyBubble(t *testing.T) {
	rows := guestRows([]Guest{
		{ID: 0, Status: "waiting_for_dish", Bubble: Bubble{Kind: "order", Text: "ramen"}, CookSeconds: 12.34},
		{ID: 1, Status: "walking_to_order", Bubble: Bubble{Kind: "hidden", Text: "stale"}},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "ramen", rows[0][2])
	assert.Equal(t, "12.3s", rows[0][3])
	assert.Equal(t, "", rows[1][2])
}

func TestChobinRowsShowProgress(t *testing.T) {
	rows := chobinRows([]Chobin{{ID: 2, Status: "performing", Button: "performing", Step: 1, Progress: 0.5}})
	assert.Equal(t, " 50%", rows[0][4])
	assert.Equal(t, "1", rows[0][3])
}

func TestModelFlow(t *testing.T) {
	m := initialModel(&ApiClient{BaseURL: "http://example.invalid", httpClient: http.DefaultClient})
	assert.Equal(t, "connecting", m.currentView)

	next, _ := m.Update(healthMsg{})
	m = next.(Model)
	assert.Equal(t, "join", m.currentView)

	next, cmd := m.Update(sessionMsg{&Session{Session: "s1"}})
	m = next.(Model)
	assert.Equal(t, "kitchen", m.currentView)
	assert.NotNil(t, cmd)

	next, _ = m.Update(stateMsg{state: &State{
		Session: "s1",
		Chobins: []Chobin{{ID: 0, Status: "idle", Button: "waiting"}, {ID: 1, Status: "idle", Button: "hidden"}},
	}})
	m = next.(Model)
	id, ok := m.selectedChobin()
	require.True(t, ok)
	assert.Equal(t, 0, id)
	assert.Contains(t, m.View(), "Kitchen s1")

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Equal(t, "panel", m.currentView)
	assert.NotNil(t, cmd)

	next, _ = m.Update(panelMsg{panel: &Panel{Chobin: 0, Steps: []PanelStep{{Step: 0, Name: "egg", Verb: "fry"}, {Step: 1, Name: "rice", Verb: "boil"}}}})
	m = next.(Model)
	assert.Contains(t, m.View(), "egg")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.stepCursor)

	next, _ = m.Update(panelMsg{panel: &Panel{Chobin: 0, Button: "performing"}, done: true})
	m = next.(Model)
	assert.Equal(t, "kitchen", m.currentView)
	assert.Nil(t, m.panel)
}

func TestPollErrorIsClearedOnRecovery(t *testing.T) {
	m := initialModel(&ApiClient{BaseURL: "http://example.invalid", httpClient: http.DefaultClient})
	m.currentView = "kitchen"

	next, cmd := m.Update(stateMsg{err: errors.New("connection refused")})
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, "connection refused", m.error)

	next, _ = m.Update(stateMsg{state: &State{Session: "s1"}})
	m = next.(Model)
	assert.Empty(t, m.error)
}

func TestJoinCommandHitsServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"session":"s9","scenario":"busy_night","auth":false}`))
	}))
	defer srv.Close()

	client := &ApiClient{BaseURL: srv.URL, httpClient: srv.Client()}
	msg := join(client, "mika")()
	s, ok := msg.(sessionMsg)
	require.True(t, ok)
	assert.Equal(t, "busy_night", s.session.Scenario)
}
