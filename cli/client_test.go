package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *ApiClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewApiClient()
	c.BaseURL = srv.URL
	c.Token = ""
	return c
}

func TestJoinKeepsToken(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/session":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "mika", body["player"])
			w.Write([]byte(`{"session":"s1","scenario":"standard","auth":true,"token":"tok"}`))
		case "/api/chobins/2/submit":
			assert.Equal(t, http.MethodPost, r.Method)
			auth = r.Header.Get("Authorization")
			w.Write([]byte(`{"chobin":2,"status":"moving_to_station","button":"performing"}`))
		default:
			http.NotFound(w, r)
		}
	})

	s, err := c.Join("mika")
	require.NoError(t, err)
	assert.True(t, s.Auth)
	assert.Equal(t, "tok", c.Token)

	p, err := c.Submit(2)
	require.NoError(t, err)
	assert.Equal(t, "performing", p.Button)
	assert.Equal(t, "Bearer tok", auth)
}

func TestGetState(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"session": "s1", "tick": 40, "elapsed_seconds": 2,
			"counters": {"arrivals": 2, "orders": 1, "exits": 0, "total": 10},
			"scoreboard": {"served": 0, "total_score": 0, "total_sum": 0},
			"guests": [{"id": 0, "status": "waiting_for_dish", "bubble": {"kind": "order", "text": "sushi"}}],
			"chobins": [{"id": 0, "status": "idle", "button": "waiting"}]
		}`))
	})

	s, err := c.GetState()
	require.NoError(t, err)
	assert.Equal(t, uint64(40), s.Tick)
	assert.Equal(t, 10, s.Counters.Total)
	require.Len(t, s.Guests, 1)
	assert.Equal(t, "sushi", s.Guests[0].Bubble.Text)
	assert.Equal(t, "waiting", s.Chobins[0].Button)
}

func TestCyclePathAndErrors(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"chobin is busy: chobin 1 is cooking"}`))
	})

	_, err := c.Cycle(1, 2, "action", "previous")
	require.Error(t, err)
	assert.Equal(t, "/api/chobins/1/steps/2/action/previous", path)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, apiErr.Message, "chobin is busy")
}

func TestSuggestApplies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chobins/0/suggestion", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("apply"))
		w.Write([]byte(`{"guest":3,"source":"heuristic","expected":30}`))
	})

	plan, err := c.Suggest(0, true)
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Guest)
	assert.Equal(t, 30, plan.Expected)
}

func TestErrorWithoutJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream gone", http.StatusBadGateway)
	})
	err := c.CheckHealth()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream gone", apiErr.Message)
}
