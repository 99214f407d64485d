// Package messaging implements request-reply over Redis Pub/Sub.
//
// A request is published on the channel named after its pattern
// (e.g. "users.find.id.summary"). It carries a correlation id and the
// private reply channel of the requesting client; the responder publishes
// the reply there with the same id.
package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoResponders is returned when nobody is subscribed to a pattern.
	ErrNoResponders = errors.New("messaging: no responders")
	ErrClientClosed = errors.New("messaging: client closed")
)

// Message is the envelope for both requests and replies.
type Message struct {
	ID      string          `json:"id"`
	Pattern string          `json:"pattern"`
	ReplyTo string          `json:"reply_to,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ReplyError     `json:"error,omitempty"`
}

// ReplyError is a failure reported by the responder.
type ReplyError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Status, e.Message)
}
