package server

import "encoding/json"

// ClientMessage is the single inbound envelope. Which fields are set
// depends on Type: register carries ID+DefaultValue, change carries
// ID+Value, event/startevent carry ID+Payload, resume carries LocalID,
// ping carries nothing.
type ClientMessage struct {
	Type         string          `json:"type"`
	ID           string          `json:"id,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Value        json.RawMessage `json:"value,omitempty"`
	DefaultValue json.RawMessage `json:"defaultValue,omitempty"`
	LocalID      string          `json:"localId,omitempty"`
}

// InitMessage is the server→client snapshot for a freshly subscribed
// channel.
type InitMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// ChangeMessage is the server→client notification for a channel whose
// value changed. It intentionally has no type field.
type ChangeMessage struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

type PingMessage struct {
	Type string `json:"type"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newInitMessage(id string, value any) InitMessage {
	return InitMessage{Type: "init", ID: id, Value: value}
}
