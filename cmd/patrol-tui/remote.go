package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/wricardo/mupol-patrol/game/effects"
	"github.com/wricardo/mupol-patrol/game/engine"
	"github.com/wricardo/mupol-patrol/game/service"
	ws "github.com/wricardo/mupol-patrol/transport/websocket"
)

// remote drives a session hosted by the server: the live loop runs there,
// states stream in over the WebSocket and steering goes back the same way
type remote struct {
	baseURL   string
	sessionID string
	client    *http.Client
	conn      *websocket.Conn
	updates   chan *ws.Message
	params    *engine.Params
	state     *engine.RunState
}

// wsURL turns the server base URL into the session's WebSocket URL
func wsURL(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := url.Values{}
	q.Set("session", sessionID)
	q.Set("encoding", string(ws.EncodingMsgpack))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func dialRemote(baseURL, sessionID string) (*remote, error) {
	r := &remote{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		sessionID: sessionID,
		client:    &http.Client{Timeout: 10 * time.Second},
		updates:   make(chan *ws.Message, 64),
	}

	var info service.SessionInfo
	if err := r.call("GET", "", &info); err != nil {
		return nil, err
	}
	r.params, r.state = info.Params, info.State
	if r.params == nil {
		r.params = engine.DefaultParams()
	}

	target, err := wsURL(baseURL, sessionID)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	r.conn = conn

	go r.listen()
	return r, nil
}

// listen forwards decoded frames until the connection closes
func (r *remote) listen() {
	defer close(r.updates)
	for {
		messageType, data, err := r.conn.ReadMessage()
		if err != nil {
			return
		}
		messages, err := ws.DecodeMessages(messageType, data)
		if err != nil {
			continue
		}
		for _, msg := range messages {
			r.updates <- msg
		}
	}
}

func (r *remote) call(method, suffix string, result interface{}) error {
	req, err := http.NewRequest(method, r.baseURL+"/api/sessions/"+url.PathEscape(r.sessionID)+suffix, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &errResp) == nil && errResp["error"] != "" {
			return &remoteError{status: resp.StatusCode, message: errResp["error"]}
		}
		return &remoteError{status: resp.StatusCode, message: resp.Status}
	}
	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

type remoteError struct {
	status  int
	message string
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.status, e.message)
}

// startLive asks the server to run the session in real time. A loop that
// is already running is fine.
func (r *remote) startLive() error {
	err := r.call("POST", "/live", nil)
	if re, ok := err.(*remoteError); ok && re.status == http.StatusConflict {
		return nil
	}
	return err
}

func (r *remote) stopLive() error {
	err := r.call("DELETE", "/live", nil)
	if re, ok := err.(*remoteError); ok && re.status == http.StatusConflict {
		return nil
	}
	return err
}

func (r *remote) steer(direction engine.Steer) error {
	messageType, data, err := ws.EncodeCommand(ws.EncodingMsgpack, ws.Command{Type: "steer", Direction: string(direction)})
	if err != nil {
		return err
	}
	r.conn.SetWriteDeadline(time.Now().Add(time.Second))
	return r.conn.WriteMessage(messageType, data)
}

func (r *remote) Close() {
	r.stopLive()
	r.conn.Close()
}

// remoteGame renders a remote session. It plays the hit sound on the
// rising edge of the hit effect.
type remoteGame struct {
	remote  *remote
	screen  tcell.Screen
	sound   *hitSound
	fx      effects.State
	lastErr string
}

func (g *remoteGame) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		var err error
		switch keyAction(ev.Key(), ev.Rune()) {
		case actionLeft:
			err = g.remote.steer(engine.SteerLeft)
		case actionRight:
			err = g.remote.steer(engine.SteerRight)
		case actionStart:
			err = g.remote.startLive()
		case actionQuit:
			return false
		}
		if err != nil {
			g.lastErr = err.Error()
		}
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

// step applies every pending update and redraws. It stops when the
// connection is gone.
func (g *remoteGame) step(deltaMs float64) bool {
	for {
		select {
		case msg, ok := <-g.remote.updates:
			if !ok {
				return false
			}
			g.apply(msg)
		default:
			state := g.remote.state
			if state == nil {
				state = &engine.RunState{Phase: engine.PhaseStart}
			}
			if g.lastErr != "" {
				state = state.Clone()
				state.Message = g.lastErr
			}
			draw(g.screen, state, g.remote.params, g.fx)
			return true
		}
	}
}

func (g *remoteGame) apply(msg *ws.Message) {
	if msg.Event == "error" {
		g.lastErr = fmt.Sprint(msg.Data)
		return
	}
	if msg.State != nil {
		g.remote.state = msg.State
		g.lastErr = ""
	}
	if msg.Effects != nil {
		if msg.Effects.Hit && !g.fx.Hit {
			g.sound.Play()
		}
		g.fx = *msg.Effects
	}
}
