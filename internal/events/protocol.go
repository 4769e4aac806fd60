package events

import "encoding/json"

const (
	TypeUserCreated  = "user.created"
	TypeUserUpdated  = "user.updated"
	TypeGroupCreated = "group.created"
	TypePing         = "ping"
	TypePong         = "pong"
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// envelope is what travels through the hub and the relay. An empty Target
// reaches every connected client. A set client restricts delivery to that
// one connection and never leaves the instance.
type envelope struct {
	Target  string          `json:"target,omitempty"`
	Message json.RawMessage `json:"message"`

	client *Client
}

func NewMessage(msgType string, payload interface{}) ([]byte, error) {
	var p json.RawMessage
	if payload != nil {
		var err error
		p, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Message{Type: msgType, Payload: p})
}
