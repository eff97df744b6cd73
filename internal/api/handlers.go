package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cocan/internal/advisor"
	"cocan/internal/kitchen"
	"cocan/internal/scenario"
)

var (
	errBadRequest = errors.New("bad request")
	errNoStore    = errors.New("no database configured")
)

// MenuItem is a material or action as listed by /api/menu.
type MenuItem struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Asset string `json:"asset,omitempty"`
}

// Menu lists what a command can be built from.
type Menu struct {
	Materials    []MenuItem `json:"materials"`
	Actions      []MenuItem `json:"actions"`
	CommandCount int        `json:"command_count"`
}

// StepRequest sets one step of a command. Omitted fields are unchanged.
type StepRequest struct {
	Material *int `json:"material"`
	Action   *int `json:"action"`
}

// SessionRequest asks for a player token.
type SessionRequest struct {
	Player string `json:"player"`
}

func (s *Server) do(c *gin.Context, fn func(k *kitchen.Kitchen) error) error {
	return s.Loop.Do(c.Request.Context(), fn)
}

func intParam(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", errBadRequest, name, c.Param(name))
	}
	return v, nil
}

func (s *Server) handleSession(c *gin.Context) {
	var req SessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Player == "" {
		req.Player = "player"
	}
	resp := gin.H{"session": s.Session, "scenario": s.Scenario, "auth": s.Auth != nil}
	if s.Auth != nil {
		token, exp, err := s.Auth.Issue(req.Player)
		if err != nil {
			fail(c, err)
			return
		}
		resp["token"] = token
		resp["expires_at"] = exp
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleState(c *gin.Context) {
	var snap kitchen.Snapshot
	if err := s.do(c, func(k *kitchen.Kitchen) error {
		snap = k.Snapshot()
		return nil
	}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleScoreboard(c *gin.Context) {
	var board kitchen.Scoreboard
	var finished bool
	if err := s.do(c, func(k *kitchen.Kitchen) error {
		board, finished = k.Scoreboard(), k.Finished()
		return nil
	}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scoreboard": board, "finished": finished})
}

// handleListScenarios returns a list of available scenarios
func (s *Server) handleListScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, scenario.List())
}

func (s *Server) handleMenu(c *gin.Context) {
	var menu Menu
	if err := s.do(c, func(k *kitchen.Kitchen) error {
		for i, m := range k.Materials() {
			menu.Materials = append(menu.Materials, MenuItem{Index: i, Name: m.Name, Asset: m.Asset})
		}
		for i, a := range k.Actions() {
			menu.Actions = append(menu.Actions, MenuItem{Index: i, Name: a.Name, Asset: a.Asset})
		}
		menu.CommandCount = k.CommandCount()
		return nil
	}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

// handleMetrics returns the monitor's current figures
func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.Monitor.GetMetrics())
}

func (s *Server) handleServes(c *gin.Context) {
	if s.Store == nil {
		fail(c, errNoStore)
		return
	}
	session := c.DefaultQuery("session", s.Session)
	rows, err := s.Store.Serves(session)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleSessions(c *gin.Context) {
	if s.Store == nil {
		fail(c, errNoStore)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		fail(c, fmt.Errorf("%w: limit", errBadRequest))
		return
	}
	rows, err := s.Store.Sessions(limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// panelCommand runs op on the chobin named in the path and answers with its
// panel.
func (s *Server) panelCommand(c *gin.Context, op func(k *kitchen.Kitchen, id int) error) {
	id, err := intParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var panel kitchen.Panel
	if err := s.do(c, func(k *kitchen.Kitchen) error {
		if err := op(k, id); err != nil {
			return err
		}
		p, err := k.Panel(id)
		panel = p
		return err
	}); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, panel)
}

func (s *Server) handlePanel(c *gin.Context) {
	s.panelCommand(c, func(*kitchen.Kitchen, int) error { return nil })
}

func (s *Server) handleShowCommand(c *gin.Context) {
	s.panelCommand(c, func(k *kitchen.Kitchen, id int) error {
		_, err := k.ShowCommandUI(id)
		return err
	})
}

func (s *Server) handleSubmit(c *gin.Context) {
	s.panelCommand(c, (*kitchen.Kitchen).SubmitCommand)
}

func (s *Server) handleAbort(c *gin.Context) {
	s.panelCommand(c, (*kitchen.Kitchen).AbortCommand)
}

func (s *Server) handleCycleMaterial(c *gin.Context) {
	s.cycle(c, (*kitchen.Kitchen).NextMaterial, (*kitchen.Kitchen).PreviousMaterial)
}

func (s *Server) handleCycleAction(c *gin.Context) {
	s.cycle(c, (*kitchen.Kitchen).NextAction, (*kitchen.Kitchen).PreviousAction)
}

func (s *Server) cycle(c *gin.Context, next, previous func(k *kitchen.Kitchen, id, step int) error) {
	step, err := intParam(c, "step")
	if err != nil {
		fail(c, err)
		return
	}
	var fn func(k *kitchen.Kitchen, id, step int) error
	switch c.Param("dir") {
	case "next":
		fn = next
	case "previous":
		fn = previous
	default:
		fail(c, fmt.Errorf("%w: direction must be next or previous", errBadRequest))
		return
	}
	s.panelCommand(c, func(k *kitchen.Kitchen, id int) error { return fn(k, id, step) })
}

func (s *Server) handleSetStep(c *gin.Context) {
	step, err := intParam(c, "step")
	if err != nil {
		fail(c, err)
		return
	}
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	s.panelCommand(c, func(k *kitchen.Kitchen, id int) error {
		if req.Material != nil {
			if err := k.SetMaterial(id, step, *req.Material); err != nil {
				return err
			}
		}
		if req.Action != nil {
			return k.SetAction(id, step, *req.Action)
		}
		return nil
	})
}

// handleSuggestion plans a command for the next recipient. The plan is
// computed off the kitchen loop; with ?apply=true it is then written into the
// chobin's selections.
func (s *Server) handleSuggestion(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req advisor.Request
	if err := s.do(c, func(k *kitchen.Kitchen) error {
		if _, err := k.Chobin(id); err != nil {
			return err
		}
		req = advisor.RequestFor(k)
		return nil
	}); err != nil {
		fail(c, err)
		return
	}

	plan, err := s.Advisor.Suggest(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	if c.Query("apply") == "true" {
		if err := s.do(c, func(k *kitchen.Kitchen) error { return advisor.Apply(k, id, plan) }); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, plan)
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Log.Warnf("failed to upgrade connection: %v", err)
		return
	}
	var cl *client
	if err := s.do(c, func(k *kitchen.Kitchen) error {
		cl = s.Hub.attach(conn, k.Snapshot())
		return nil
	}); err != nil {
		s.Log.Warnf("websocket attach: %v", err)
		conn.Close()
		return
	}
	go cl.writePump()
	go cl.readPump()
}
