// ABOUTME: Software processing graph
// ABOUTME: Context, source, gain, and destination nodes for native elements
package native

import (
	"context"
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/volumekit/pkg/graph"
	"github.com/Resonate-Protocol/volumekit/pkg/media"
)

type graphContext struct {
	mu    sync.Mutex
	state graph.State
	dest  *destinationNode
}

func newGraphContext(suspended bool) *graphContext {
	c := &graphContext{state: graph.StateRunning}
	if suspended {
		c.state = graph.StateSuspended
	}
	c.dest = &destinationNode{ctx: c}
	return c
}

func (c *graphContext) State() graph.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *graphContext) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == graph.StateClosed {
		return graph.ErrClosed
	}
	c.state = graph.StateRunning
	return nil
}

func (c *graphContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == graph.StateClosed {
		return graph.ErrClosed
	}
	c.state = graph.StateClosed
	return nil
}

func (c *graphContext) running() bool {
	return c.State() == graph.StateRunning
}

func (c *graphContext) CreateGain(v float64) (graph.GainNode, error) {
	if c.State() == graph.StateClosed {
		return nil, graph.ErrClosed
	}
	return &gainNode{ctx: c, value: v}, nil
}

func (c *graphContext) CreateMediaElementSource(el media.Element) (graph.Node, error) {
	if c.State() == graph.StateClosed {
		return nil, graph.ErrClosed
	}

	ne, ok := el.(*Element)
	if !ok {
		return nil, fmt.Errorf("unsupported media element type %T", el)
	}

	s := &sourceNode{ctx: c}
	if err := ne.capture(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *graphContext) Destination() graph.Node {
	return c.dest
}

// owner returns the context a node belongs to
func owner(n graph.Node) *graphContext {
	switch n := n.(type) {
	case *sourceNode:
		return n.ctx
	case *gainNode:
		return n.ctx
	case *destinationNode:
		return n.ctx
	default:
		return nil
	}
}

type sourceNode struct {
	ctx *graphContext

	mu  sync.Mutex
	out graph.Node
}

func (s *sourceNode) Connect(dst graph.Node) error {
	if owner(dst) != s.ctx {
		return graph.ErrForeignNode
	}
	s.mu.Lock()
	s.out = dst
	s.mu.Unlock()
	return nil
}

// effectiveGain is the scale applied to the element's samples. Audio that
// does not reach the destination of a running context is silent.
func (s *sourceNode) effectiveGain() float64 {
	if !s.ctx.running() {
		return 0
	}

	s.mu.Lock()
	out := s.out
	s.mu.Unlock()

	switch out := out.(type) {
	case *destinationNode:
		return 1
	case *gainNode:
		if !out.reachesDestination() {
			return 0
		}
		return out.Gain()
	default:
		return 0
	}
}

type gainNode struct {
	ctx *graphContext

	mu    sync.Mutex
	value float64
	out   graph.Node
}

func (g *gainNode) Connect(dst graph.Node) error {
	if owner(dst) != g.ctx {
		return graph.ErrForeignNode
	}
	if _, ok := dst.(*sourceNode); ok {
		return fmt.Errorf("cannot connect gain into a source node")
	}
	g.mu.Lock()
	g.out = dst
	g.mu.Unlock()
	return nil
}

func (g *gainNode) SetGain(v float64) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

func (g *gainNode) Gain() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

func (g *gainNode) reachesDestination() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.out.(*destinationNode)
	return ok
}

type destinationNode struct {
	ctx *graphContext
}

func (d *destinationNode) Connect(graph.Node) error {
	return fmt.Errorf("destination node has no outputs")
}
