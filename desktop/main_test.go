package main

import (
	"encoding/json"
	"image/color"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func classicParams() *Params {
	return &Params{
		FieldWidth:          400,
		FieldHeight:         700,
		VehicleWidth:        12.5,
		VehicleHeight:       60,
		VehicleBottomMargin: 20,
		CarSaturation:       20,
		CarLightness:        60,
	}
}

func TestFieldView(t *testing.T) {
	view := newFieldView(classicParams())

	wantHeight := float64(screenHeight - headerHeight - footerHeight)
	if view.Height != wantHeight {
		t.Errorf("Expected height %f, got %f", wantHeight, view.Height)
	}
	if view.Top != headerHeight {
		t.Errorf("Expected road below the header, got top %f", view.Top)
	}
	if got := view.Left*2 + view.Width; math.Abs(got-screenWidth) > 1e-9 {
		t.Errorf("Expected road centred, got left %f width %f", view.Left, view.Width)
	}

	// A box centred on 50% spans the middle of the road
	x, y, w, h := view.box(50, 350, 10, 70)
	if x != view.Left+0.45*view.Width || w != 0.1*view.Width {
		t.Errorf("Unexpected horizontal box: x=%f w=%f", x, w)
	}
	if y != view.Top+350*view.Scale || h != 70*view.Scale {
		t.Errorf("Unexpected vertical box: y=%f h=%f", y, h)
	}
}

func TestObjectColor(t *testing.T) {
	p := classicParams()

	car := objectColor(SpawnedObject{Kind: kindCar, Hue: 0}, p)
	if car != (color.RGBA{173, 133, 133, 255}) {
		t.Errorf("Expected desaturated red car, got %v", car)
	}
	if objectColor(SpawnedObject{Kind: kindCone}, p) != coneColor {
		t.Error("Expected cone color")
	}
	if objectColor(SpawnedObject{Kind: kindShield}, p) != shieldColor {
		t.Error("Expected shield color")
	}
	if objectColor(SpawnedObject{Kind: "truck"}, p) != fallbackCar {
		t.Error("Expected fallback color for unknown kinds")
	}
}

func TestShakeAndEnergy(t *testing.T) {
	if shakeX(Effects{}, 3) != 0 {
		t.Error("Expected no offset without shake")
	}
	if shakeX(Effects{Shake: true}, 2) != shakeOffset || shakeX(Effects{Shake: true}, 3) != -shakeOffset {
		t.Error("Expected alternating offset while shaking")
	}

	tests := []struct {
		energy, max int
		want        float64
	}{
		{50, 100, 0.5},
		{120, 100, 1},
		{-5, 100, 0},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := energyRatio(&RunState{Energy: tt.energy, MaxEnergy: tt.max}); got != tt.want {
			t.Errorf("energyRatio(%d/%d): expected %f, got %f", tt.energy, tt.max, tt.want, got)
		}
	}
}

func TestKeyRepeats(t *testing.T) {
	if keyRepeats(0) {
		t.Error("Expected released key not to fire")
	}
	if !keyRepeats(1) {
		t.Error("Expected first tick to fire")
	}
	if keyRepeats(repeatDelay) {
		t.Error("Expected no repeat before the delay")
	}
	if !keyRepeats(repeatDelay + repeatEvery) {
		t.Error("Expected repeat after the delay")
	}
}

func TestParseFrame(t *testing.T) {
	frame := `{"session_id":"s1","event":"state_update","state":{"phase":"playing","energy":80,"max_energy":100},"effects":{"hit":true,"shake":true}}` +
		"\n" + `{"session_id":"s1","event":"error","data":"unknown steering direction"}`

	messages, err := parseFrame([]byte(frame))
	if err != nil {
		t.Fatalf("Failed to parse frame: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}

	session := &SessionData{sessionID: "s1"}
	applyMessage(session, messages[0])
	if session.state == nil || session.state.Energy != 80 || !session.fx.Hit {
		t.Errorf("Unexpected session after state update: %+v", session)
	}
	applyMessage(session, messages[1])
	if session.lastError != "unknown steering direction" {
		t.Errorf("Expected error to be kept, got %q", session.lastError)
	}
	if session.state.Energy != 80 {
		t.Error("Expected error message to leave the state alone")
	}
}

func TestSteerCommand(t *testing.T) {
	var cmd map[string]string
	if err := json.Unmarshal(steerCommand("left"), &cmd); err != nil {
		t.Fatalf("Failed to decode command: %v", err)
	}
	if cmd["type"] != "steer" || cmd["direction"] != "left" {
		t.Errorf("Unexpected command %v", cmd)
	}
}

func TestSessionAndStatsLines(t *testing.T) {
	info := SessionInfo{
		ID:         "abc",
		ConfigName: "rush",
		Live:       true,
		State:      &RunState{Phase: phaseGameOver, Energy: 0, Score: 42},
	}
	line := sessionLine(info, true, true)
	for _, want := range []string{"> [X] abc", "rush", "Score:42", "LIVE", "GAME OVER"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}

	stats := statsLine(&SessionData{sessionID: "abc", state: &RunState{Energy: 70, MaxEnergy: 100, Speed: 4.5, Score: 9}}, 0, true)
	if stats != ">>> [1] abc [POLL] EN:70/100 SP:4.5 SC:9" {
		t.Errorf("Unexpected stats line %q", stats)
	}
}

func TestAPIClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == "GET" && r.URL.Path == "/api/sessions":
			w.Write([]byte(`{"count":1,"sessions":[{"id":"s1","config_name":"classic"}]}`))
		case r.Method == "GET" && r.URL.Path == "/api/configs":
			w.Write([]byte(`[{"config_id":"classic","name":"Classic"}]`))
		case r.Method == "POST" && r.URL.Path == "/api/sessions":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"new","config_name":"` + body["config_id"] + `"}`))
		case r.URL.Path == "/api/sessions/s1/live":
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"live loop already running"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"session not found"}`))
		}
	}))
	defer server.Close()

	api := newAPIClient(server.URL + "/")

	sessions, err := api.listSessions()
	if err != nil || len(sessions) != 1 || sessions[0].ID != "s1" {
		t.Errorf("Unexpected sessions %v (err %v)", sessions, err)
	}

	configs, err := api.listConfigs()
	if err != nil || len(configs) != 1 || configs[0].ConfigID != "classic" {
		t.Errorf("Unexpected configs %v (err %v)", configs, err)
	}

	info, err := api.createSession("rush")
	if err != nil || info.ID != "new" || info.ConfigName != "rush" {
		t.Errorf("Unexpected created session %+v (err %v)", info, err)
	}

	if err := api.startLive("s1"); err != nil {
		t.Errorf("Expected running loop to be tolerated, got %v", err)
	}

	_, err = api.getSession("missing")
	if err == nil || !strings.Contains(err.Error(), "session not found") {
		t.Errorf("Expected not found error, got %v", err)
	}

	target, err := api.wsURL("s1")
	if err != nil {
		t.Fatalf("Failed to build WebSocket URL: %v", err)
	}
	if !strings.HasPrefix(target, "ws://") || !strings.HasSuffix(target, "/ws?session=s1") {
		t.Errorf("Unexpected WebSocket URL %s", target)
	}
}
