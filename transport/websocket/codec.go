package websocket

import (
	"bytes"
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// msgpack payloads reuse the json tags so both encodings share field names

func encodeMessage(encoding Encoding, v interface{}) ([]byte, error) {
	if encoding != EncodingMsgpack {
		return json.Marshal(v)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeMsgpack(data []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func decodeCommand(messageType int, data []byte) (Command, error) {
	var cmd Command
	if messageType == websocket.BinaryMessage {
		err := decodeMsgpack(data, &cmd)
		return cmd, err
	}
	err := json.Unmarshal(data, &cmd)
	return cmd, err
}

// EncodeCommand encodes a client command for the given encoding. msgpack
// commands go in binary frames, JSON ones in text frames.
func EncodeCommand(encoding Encoding, cmd Command) (messageType int, data []byte, err error) {
	data, err = encodeMessage(encoding, cmd)
	if encoding == EncodingMsgpack {
		return websocket.BinaryMessage, data, err
	}
	return websocket.TextMessage, data, err
}

// DecodeMessages decodes one WebSocket frame sent by the hub. Binary
// frames carry a single msgpack message; text frames carry one or more JSON
// messages separated by newlines.
func DecodeMessages(messageType int, data []byte) ([]*Message, error) {
	if messageType == websocket.BinaryMessage {
		var msg Message
		if err := decodeMsgpack(data, &msg); err != nil {
			return nil, err
		}
		return []*Message{&msg}, nil
	}

	var messages []*Message
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}
