package network

import (
	"encoding/json"
	"errors"

	"github.com/lixenwraith/antfarm/engine"
)

// MessageType identifies the semantic meaning of a message
type MessageType string

const (
	MsgHello    MessageType = "hello"    // First frame, carries the peer ID and latest snapshot
	MsgSnapshot MessageType = "snapshot" // World snapshot broadcast
)

// ErrMalformed is returned by Decode for frames without a type
var ErrMalformed = errors.New("malformed message")

// Message is the JSON frame sent to stream clients
// Seq increases per broadcast and is shared by all peers receiving the same frame
type Message struct {
	Type     MessageType      `json:"type"`
	Seq      uint64           `json:"seq"`
	PeerID   string           `json:"peer_id,omitempty"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
}

// Encode serializes the message once so it can be queued to many peers
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a frame produced by Encode
func Decode(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Type == "" {
		return nil, ErrMalformed
	}
	return &m, nil
}
