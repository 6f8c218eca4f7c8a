// Package websocket defines the envelope exchanged over /api/ws.
package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	MessageTypeRequest      MessageType = "request"
	MessageTypeResponse     MessageType = "response"
	MessageTypeNotification MessageType = "notification"
	MessageTypeError        MessageType = "error"
)

// Server-to-client notification actions.
const (
	ActionLocaleChanged      = "locale.changed"
	ActionDashboardSaved     = "dashboard.saved"
	ActionDashboardDeleted   = "dashboard.deleted"
	ActionPreferencesUpdated = "preferences.updated"
)

// Client request actions.
const (
	ActionPing = "ping"
)

const (
	ErrorCodeBadRequest    = "bad_request"
	ErrorCodeUnknownAction = "unknown_action"
)

// Message is the envelope for every frame in either direction.
type Message struct {
	ID        string          `json:"id,omitempty"`
	Type      MessageType     `json:"type"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newMessage(id string, typ MessageType, action string, payload interface{}) (*Message, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return &Message{ID: id, Type: typ, Action: action, Payload: data, Timestamp: time.Now().UTC()}, nil
}

func NewRequest(id, action string, payload interface{}) (*Message, error) {
	return newMessage(id, MessageTypeRequest, action, payload)
}

func NewResponse(id, action string, payload interface{}) (*Message, error) {
	return newMessage(id, MessageTypeResponse, action, payload)
}

func NewNotification(action string, payload interface{}) (*Message, error) {
	return newMessage("", MessageTypeNotification, action, payload)
}

func NewError(id, action, code, message string) (*Message, error) {
	return newMessage(id, MessageTypeError, action, ErrorPayload{Code: code, Message: message})
}

// ParsePayload decodes the payload into v.
func (m *Message) ParsePayload(v interface{}) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
