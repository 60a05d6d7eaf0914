package websocket

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mupol-patrol/game/effects"
	"github.com/wricardo/mupol-patrol/game/engine"
)

func TestDecodeMessages_JSONBatch(t *testing.T) {
	first, _ := encodeMessage(EncodingJSON, &Message{SessionID: "s1", Event: "state_update", State: &engine.RunState{Frame: 1}})
	second, _ := encodeMessage(EncodingJSON, &Message{SessionID: "s1", Event: "game_over", State: &engine.RunState{Frame: 2}})
	frame := append(append(first, '\n'), second...)

	messages, err := DecodeMessages(websocket.TextMessage, frame)
	if err != nil {
		t.Fatalf("Failed to decode batch: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[1].Event != "game_over" || messages[1].State.Frame != 2 {
		t.Errorf("Unexpected second message: %+v", messages[1])
	}
}

func TestDecodeMessages_Msgpack(t *testing.T) {
	data, err := encodeMessage(EncodingMsgpack, &Message{
		SessionID: "s1",
		Event:     "state_update",
		State:     &engine.RunState{Phase: engine.PhasePlaying, Energy: 70, Vehicle: engine.Vehicle{X: 47}},
		Effects:   &effects.State{Hit: true},
	})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	messages, err := DecodeMessages(websocket.BinaryMessage, data)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	msg := messages[0]
	if msg.State == nil || msg.State.Energy != 70 || msg.State.Vehicle.X != 47 {
		t.Errorf("Unexpected state: %+v", msg.State)
	}
	if msg.Effects == nil || !msg.Effects.Hit {
		t.Errorf("Expected hit effect, got %+v", msg.Effects)
	}
}

func TestDecodeMessages_InvalidJSON(t *testing.T) {
	if _, err := DecodeMessages(websocket.TextMessage, []byte("{not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestEncodeCommand(t *testing.T) {
	for _, encoding := range []Encoding{EncodingJSON, EncodingMsgpack} {
		messageType, data, err := EncodeCommand(encoding, Command{Type: "steer", Direction: "right"})
		if err != nil {
			t.Fatalf("%s: failed to encode: %v", encoding, err)
		}

		wantType := websocket.TextMessage
		if encoding == EncodingMsgpack {
			wantType = websocket.BinaryMessage
		}
		if messageType != wantType {
			t.Errorf("%s: expected message type %d, got %d", encoding, wantType, messageType)
		}

		cmd, err := decodeCommand(messageType, data)
		if err != nil {
			t.Fatalf("%s: failed to decode: %v", encoding, err)
		}
		if cmd.Type != "steer" || cmd.Direction != "right" {
			t.Errorf("%s: unexpected command %+v", encoding, cmd)
		}
	}
}
