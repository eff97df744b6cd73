package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

// ApiClient talks to a running cocan server.
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
}

// NewApiClient reads COCAN_API_URL and COCAN_TOKEN.
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("COCAN_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ApiClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
		Token:      os.Getenv("COCAN_TOKEN"),
	}
}

// APIError is a non-2xx reply.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Session is the reply of POST /api/session.
type Session struct {
	Session   string    `json:"session"`
	Scenario  string    `json:"scenario"`
	Auth      bool      `json:"auth"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

type Counters struct {
	Arrivals int `json:"arrivals"`
	Orders   int `json:"orders"`
	Exits    int `json:"exits"`
	Total    int `json:"total"`
}

type Scoreboard struct {
	Served     int `json:"served"`
	TotalScore int `json:"total_score"`
	TotalSum   int `json:"total_sum"`
}

type Bubble struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

type Guest struct {
	ID          int     `json:"id"`
	Variant     int     `json:"variant"`
	Status      string  `json:"status"`
	Ready       bool    `json:"ready"`
	Bubble      Bubble  `json:"bubble"`
	CookSeconds float64 `json:"cook_seconds"`
	WaitSeconds float64 `json:"wait_seconds"`
}

type Chobin struct {
	ID       int     `json:"id"`
	Status   string  `json:"status"`
	Button   string  `json:"button"`
	Step     int     `json:"step"`
	Progress float64 `json:"progress"`
}

// State is the kitchen snapshot served by GET /api/state.
type State struct {
	Session    string     `json:"session"`
	Tick       uint64     `json:"tick"`
	Elapsed    float64    `json:"elapsed_seconds"`
	Started    bool       `json:"started"`
	Finished   bool       `json:"finished"`
	Counters   Counters   `json:"counters"`
	InProgress int        `json:"in_progress"`
	NeedToCook bool       `json:"need_to_cook"`
	OpenPanel  int        `json:"open_panel"`
	Scoreboard Scoreboard `json:"scoreboard"`
	Discarded  int        `json:"discarded"`
	Guests     []Guest    `json:"guests"`
	Chobins    []Chobin   `json:"chobins"`
}

type PanelStep struct {
	Step     int    `json:"step"`
	Material int    `json:"material"`
	Action   int    `json:"action"`
	Name     string `json:"material_name"`
	Verb     string `json:"action_name"`
}

// Panel is the command UI of one chobin.
type Panel struct {
	Chobin int         `json:"chobin"`
	Status string      `json:"status"`
	Button string      `json:"button"`
	Steps  []PanelStep `json:"steps"`
}

// Plan is an advisor suggestion.
type Plan struct {
	Guest    int    `json:"guest"`
	Source   string `json:"source"`
	Expected int    `json:"expected"`
	Reason   string `json:"reason,omitempty"`
}

func (c *ApiClient) do(method, path string, body, out interface{}) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = string(bytes.TrimSpace(data))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() error {
	return c.do(http.MethodGet, "/health", nil, nil)
}

// Join registers the player and keeps the token when the server hands one
// out.
func (c *ApiClient) Join(player string) (*Session, error) {
	var s Session
	if err := c.do(http.MethodPost, "/api/session", map[string]string{"player": player}, &s); err != nil {
		return nil, err
	}
	if s.Token != "" {
		c.Token = s.Token
	}
	return &s, nil
}

// GetState retrieves the current kitchen state
func (c *ApiClient) GetState() (*State, error) {
	var s State
	if err := c.do(http.MethodGet, "/api/state", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *ApiClient) panel(method, path string) (*Panel, error) {
	var p Panel
	if err := c.do(method, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *ApiClient) GetPanel(id int) (*Panel, error) {
	return c.panel(http.MethodGet, fmt.Sprintf("/api/chobins/%d", id))
}

// OpenCommand asks a waiting chobin for its command panel.
func (c *ApiClient) OpenCommand(id int) (*Panel, error) {
	return c.panel(http.MethodPost, fmt.Sprintf("/api/chobins/%d/command", id))
}

func (c *ApiClient) Submit(id int) (*Panel, error) {
	return c.panel(http.MethodPost, fmt.Sprintf("/api/chobins/%d/submit", id))
}

func (c *ApiClient) Abort(id int) (*Panel, error) {
	return c.panel(http.MethodPost, fmt.Sprintf("/api/chobins/%d/abort", id))
}

// Cycle moves the material or action of one step; field is "material" or
// "action" and dir is "next" or "previous".
func (c *ApiClient) Cycle(id, step int, field, dir string) (*Panel, error) {
	return c.panel(http.MethodPost, fmt.Sprintf("/api/chobins/%d/steps/%d/%s/%s", id, step, field, dir))
}

// Suggest fetches an advisor plan for the chobin and applies it when apply
// is set.
func (c *ApiClient) Suggest(id int, apply bool) (*Plan, error) {
	path := fmt.Sprintf("/api/chobins/%d/suggestion", id)
	if apply {
		path += "?apply=true"
	}
	var p Plan
	if err := c.do(http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
