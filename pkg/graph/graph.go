// ABOUTME: Processing graph interfaces
// ABOUTME: Context lifecycle states, nodes, and gain control
package graph

import (
	"context"
	"errors"

	"github.com/Resonate-Protocol/volumekit/pkg/media"
)

var (
	// ErrSourceInUse is returned when an element already feeds a graph
	ErrSourceInUse = errors.New("graph: media element already connected to a source node")

	// ErrClosed is returned by operations on a closed context
	ErrClosed = errors.New("graph: context closed")

	// ErrForeignNode is returned when nodes from different contexts are connected
	ErrForeignNode = errors.New("graph: node belongs to another context")
)

// State is the lifecycle state of a processing context
type State string

const (
	StateSuspended State = "suspended"
	StateRunning   State = "running"
	StateClosed    State = "closed"
)

// Node is a vertex of the processing graph
type Node interface {
	// Connect routes this node's output into dst
	Connect(dst Node) error
}

// GainNode scales the amplitude of its input. Its gain is always writable.
type GainNode interface {
	Node

	SetGain(value float64)
	Gain() float64
}

// Context owns the nodes of one processing graph
type Context interface {
	// State returns the current lifecycle state
	State() State

	// Resume moves a suspended context to running
	Resume(ctx context.Context) error

	// Close releases platform audio resources
	Close() error

	// CreateGain creates a gain node seeded with value
	CreateGain(value float64) (GainNode, error)

	// CreateMediaElementSource wraps el as a source node
	CreateMediaElementSource(el media.Element) (Node, error)

	// Destination is the context's output node
	Destination() Node
}
