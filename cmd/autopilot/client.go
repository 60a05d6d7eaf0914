package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wricardo/mupol-patrol/game/engine"
	"github.com/wricardo/mupol-patrol/game/service"
)

// Client talks to the patrol server's REST API for one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client drives
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) do(method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, errResp.Error)
		}
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, string(data))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// CreateSession creates a session with the given preset ("" for the default)
// and makes it the client's session
func (c *Client) CreateSession(configID string) (*service.SessionInfo, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var info service.SessionInfo
	if err := c.do("POST", "/api/sessions", body, &info); err != nil {
		return nil, err
	}
	c.sessionID = info.ID
	return &info, nil
}

// Resume points the client at an existing session and fetches it
func (c *Client) Resume(sessionID string) (*service.SessionInfo, error) {
	c.sessionID = sessionID
	return c.GetSession()
}

func (c *Client) GetSession() (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do("GET", "/api/sessions/"+c.sessionID, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Start begins a new run
func (c *Client) Start() (*engine.RunState, error) {
	var resp struct {
		Message string           `json:"message"`
		State   *engine.RunState `json:"state"`
	}
	if err := c.do("POST", "/api/sessions/"+c.sessionID+"/start", nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

// BulkAdvance runs frames in one request, restarting first when asked
func (c *Client) BulkAdvance(frames []engine.FrameInput, restart bool) (*service.BulkAdvanceResult, error) {
	body := map[string]interface{}{
		"frames":  frames,
		"restart": restart,
	}

	var result service.BulkAdvanceResult
	if err := c.do("POST", "/api/sessions/"+c.sessionID+"/bulk-advance", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
