//go:build js && wasm

// ABOUTME: Web Audio graph bindings
// ABOUTME: AudioContext, GainNode, and MediaElementAudioSourceNode wrappers
package browser

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/Resonate-Protocol/volumekit/pkg/graph"
	"github.com/Resonate-Protocol/volumekit/pkg/media"
)

type graphContext struct {
	v    js.Value
	dest *node
}

func (c *graphContext) State() graph.State {
	return graph.State(c.v.Get("state").String())
}

func (c *graphContext) Resume(ctx context.Context) error {
	promise, err := call(c.v, "resume")
	if err != nil {
		return err
	}
	_, err = await(ctx, promise)
	return err
}

func (c *graphContext) Close() error {
	promise, err := call(c.v, "close")
	if err != nil {
		return err
	}
	_, err = await(context.Background(), promise)
	return err
}

func (c *graphContext) CreateGain(value float64) (graph.GainNode, error) {
	v, err := call(c.v, "createGain")
	if err != nil {
		return nil, err
	}
	g := &gainNode{node: node{ctx: c, v: v}}
	g.SetGain(value)
	return g, nil
}

func (c *graphContext) CreateMediaElementSource(el media.Element) (graph.Node, error) {
	be, ok := el.(*Element)
	if !ok {
		return nil, fmt.Errorf("unsupported media element type %T", el)
	}
	if !be.capture() {
		return nil, graph.ErrSourceInUse
	}

	v, err := call(c.v, "createMediaElementSource", be.v)
	if err != nil {
		// InvalidStateError: the element was wired elsewhere
		return nil, fmt.Errorf("%w: %v", graph.ErrSourceInUse, err)
	}
	return &node{ctx: c, v: v}, nil
}

func (c *graphContext) Destination() graph.Node {
	return c.dest
}

type node struct {
	ctx *graphContext
	v   js.Value
}

func (n *node) value() js.Value { return n.v }

func (n *node) Connect(dst graph.Node) error {
	var target js.Value
	switch d := dst.(type) {
	case *node:
		if d.ctx != n.ctx {
			return graph.ErrForeignNode
		}
		target = d.value()
	case *gainNode:
		if d.ctx != n.ctx {
			return graph.ErrForeignNode
		}
		target = d.value()
	default:
		return graph.ErrForeignNode
	}

	_, err := call(n.v, "connect", target)
	return err
}

type gainNode struct {
	node
}

func (g *gainNode) SetGain(value float64) {
	g.v.Get("gain").Set("value", value)
}

func (g *gainNode) Gain() float64 {
	return g.v.Get("gain").Get("value").Float()
}
