package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// apiClient wraps the server's REST endpoints
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *apiClient) do(method, path string, payload interface{}, result interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return &apiError{status: resp.StatusCode, message: errResp.Error}
		}
		return &apiError{status: resp.StatusCode, message: resp.Status}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to parse JSON: %v (body: %s)", err, string(data))
	}
	return nil
}

type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d: %s", e.status, e.message)
}

func (c *apiClient) listSessions() ([]SessionInfo, error) {
	var resp struct {
		Sessions []SessionInfo `json:"sessions"`
	}
	if err := c.do("GET", "/api/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (c *apiClient) listConfigs() ([]ConfigInfo, error) {
	var configs []ConfigInfo
	if err := c.do("GET", "/api/configs", nil, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

func (c *apiClient) createSession(configID string) (*SessionInfo, error) {
	payload := map[string]string{}
	if configID != "" {
		payload["config_id"] = configID
	}
	var info SessionInfo
	if err := c.do("POST", "/api/sessions", payload, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *apiClient) getSession(id string) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.do("GET", "/api/sessions/"+url.PathEscape(id), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// startLive starts the server's real-time loop for a session. A loop that
// is already running counts as started.
func (c *apiClient) startLive(id string) error {
	err := c.do("POST", "/api/sessions/"+url.PathEscape(id)+"/live", nil, nil)
	if ae, ok := err.(*apiError); ok && ae.status == http.StatusConflict {
		return nil
	}
	return err
}

// wsURL builds the JSON WebSocket URL for a session
func (c *apiClient) wsURL(id string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("session", id)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *apiClient) dial(id string) (*websocket.Conn, error) {
	target, err := c.wsURL(id)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	return conn, err
}

// parseFrame splits a text frame into messages. The server batches queued
// messages into one frame separated by newlines.
func parseFrame(data []byte) ([]WSMessage, error) {
	var messages []WSMessage
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var msg WSMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return messages, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// steerCommand is the JSON command that steers a live session
func steerCommand(direction string) []byte {
	data, _ := json.Marshal(map[string]string{"type": "steer", "direction": direction})
	return data
}
