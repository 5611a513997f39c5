// ABOUTME: Remote-control message definitions
// ABOUTME: JSON envelope and payloads exchanged over HTTP and the websocket
package remote

import (
	"encoding/json"

	"github.com/Resonate-Protocol/volumekit/pkg/volume"
)

// Message types
const (
	TypeVolumeSet  = "volume/set"
	TypeVolumeStep = "volume/step"
	TypePlay       = "play"
	TypePause      = "pause"
	TypeMute       = "mute"
	TypeState      = "state"
	TypeError      = "error"
	TypeHello      = "hello"
)

// Message is the top-level wrapper for all websocket messages
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// VolumeSet requests an absolute volume in percent
type VolumeSet struct {
	Volume *float64 `json:"volume"`
}

// VolumeStep requests a relative volume change in percent
type VolumeStep struct {
	Delta int `json:"delta"`
}

// MuteSet requests a mute state
type MuteSet struct {
	Muted bool `json:"muted"`
}

// Hello is sent to each websocket session on connect
type Hello struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Version   string `json:"version"`
}

// State reports the controller state
type State struct {
	Volume      int    `json:"volume"`
	Muted       bool   `json:"muted"`
	Phase       string `json:"phase"`
	GraphBuilt  bool   `json:"graph_built"`
	Initialized bool   `json:"initialized"`
	Destroyed   bool   `json:"destroyed"`
}

// ErrorPayload carries a failed command's error
type ErrorPayload struct {
	Request string `json:"request,omitempty"`
	Message string `json:"message"`
}

// StatusResponse is the body of GET /status
type StatusResponse struct {
	Name          string               `json:"name"`
	Version       string               `json:"version"`
	State         State                `json:"state"`
	Compatibility volume.Compatibility `json:"compatibility"`
}

func stateFrom(s volume.Status) State {
	return State{
		Volume:      s.Volume,
		Muted:       s.Muted,
		Phase:       s.Phase.String(),
		GraphBuilt:  s.GraphBuilt,
		Initialized: s.Initialized,
		Destroyed:   s.Destroyed,
	}
}

func encode(msgType string, payload any) ([]byte, error) {
	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = raw
	}
	return json.Marshal(msg)
}
