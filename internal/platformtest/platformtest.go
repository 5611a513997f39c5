// ABOUTME: In-memory platform fakes for tests
// ABOUTME: Scriptable provider, processing context, gain node, and media element
package platformtest

import (
	"context"
	"errors"
	"sync"

	"github.com/Resonate-Protocol/volumekit/pkg/graph"
	"github.com/Resonate-Protocol/volumekit/pkg/media"
)

// Element is a scriptable media element.
// Set the exported fields before handing the element to the code under test.
type Element struct {
	media.Observers

	// ReadOnly makes SetVolume fail with media.ErrVolumeReadOnly
	ReadOnly bool

	// PlayErr and PauseErr are returned by Play and Pause
	PlayErr  error
	PauseErr error

	// PlayGate, when set, blocks Play until it is closed
	PlayGate chan struct{}

	// PlayStarted, when set, receives once Play is entered
	PlayStarted chan struct{}

	mu           sync.Mutex
	volume       float64
	volumeWrites []float64
	calls        []string
	active       int
	maxActive    int
	captured     bool
}

// NewElement returns an element with volume 1
func NewElement() *Element {
	return &Element{volume: 1}
}

func (e *Element) enter(call string) {
	e.mu.Lock()
	e.calls = append(e.calls, call)
	e.active++
	if e.active > e.maxActive {
		e.maxActive = e.active
	}
	e.mu.Unlock()
}

func (e *Element) leave() {
	e.mu.Lock()
	e.active--
	e.mu.Unlock()
}

// Play records the request and optionally blocks on PlayGate
func (e *Element) Play(ctx context.Context) error {
	e.enter("play")
	defer e.leave()

	if e.PlayStarted != nil {
		e.PlayStarted <- struct{}{}
	}

	if e.PlayGate != nil {
		select {
		case <-e.PlayGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if e.PlayErr != nil {
		return e.PlayErr
	}
	e.Emit(media.EventPlay)
	return nil
}

// Pause records the request
func (e *Element) Pause() error {
	e.enter("pause")
	defer e.leave()

	if e.PauseErr != nil {
		return e.PauseErr
	}
	e.Emit(media.EventPause)
	return nil
}

// SetVolume records the assignment, failing when ReadOnly
func (e *Element) SetVolume(v float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.volumeWrites = append(e.volumeWrites, v)
	if e.ReadOnly {
		return media.ErrVolumeReadOnly
	}
	e.volume = v
	return nil
}

// Volume returns the property value
func (e *Element) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Calls returns the recorded play/pause requests in order
func (e *Element) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// VolumeWrites returns every attempted property assignment
func (e *Element) VolumeWrites() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]float64(nil), e.volumeWrites...)
}

// MaxConcurrent returns the largest number of overlapping requests seen
func (e *Element) MaxConcurrent() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxActive
}

// Provider is a scriptable capability provider
type Provider struct {
	Graph    bool
	IOS      bool
	Writable bool

	// ContextErr is returned by NewGraphContext
	ContextErr error

	// StartSuspended creates contexts in the suspended state
	StartSuspended bool

	// ResumeErr is returned by Resume on created contexts
	ResumeErr error

	// PrefixedOnly reports the graph API as available only under a vendor prefix
	PrefixedOnly bool

	// ContextGate, when set, blocks NewGraphContext until it is closed
	ContextGate chan struct{}

	// ContextStarted, when set, receives once NewGraphContext is entered
	ContextStarted chan struct{}

	mu       sync.Mutex
	contexts []*Context
}

func (p *Provider) SupportsGraphAPI() bool       { return p.Graph }
func (p *Provider) IsIOSLike() bool              { return p.IOS }
func (p *Provider) ProbeVolumeWritability() bool { return p.Writable }

func (p *Provider) SupportsStandardGraphAPI() bool { return p.Graph && !p.PrefixedOnly }

// NewGraphContext creates a fake context
func (p *Provider) NewGraphContext() (graph.Context, error) {
	if p.ContextStarted != nil {
		p.ContextStarted <- struct{}{}
	}
	if p.ContextGate != nil {
		<-p.ContextGate
	}

	if p.ContextErr != nil {
		return nil, p.ContextErr
	}

	state := graph.StateRunning
	if p.StartSuspended {
		state = graph.StateSuspended
	}

	c := &Context{state: state, resumeErr: p.ResumeErr}
	c.dest = &destination{ctx: c}

	p.mu.Lock()
	p.contexts = append(p.contexts, c)
	p.mu.Unlock()

	return c, nil
}

// Contexts returns every context created so far
func (p *Provider) Contexts() []*Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Context(nil), p.contexts...)
}

// Context is a fake processing context
type Context struct {
	mu        sync.Mutex
	state     graph.State
	resumeErr error
	resumes   int
	closes    int
	gains     []*Gain
	sources   []*Source
	dest      *destination
}

func (c *Context) State() graph.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Context) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resumes++
	if c.resumeErr != nil {
		return c.resumeErr
	}
	if c.state == graph.StateClosed {
		return graph.ErrClosed
	}
	c.state = graph.StateRunning
	return nil
}

func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closes++
	c.state = graph.StateClosed
	return nil
}

func (c *Context) CreateGain(v float64) (graph.GainNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == graph.StateClosed {
		return nil, graph.ErrClosed
	}
	g := &Gain{ctx: c, value: v}
	c.gains = append(c.gains, g)
	return g, nil
}

func (c *Context) CreateMediaElementSource(el media.Element) (graph.Node, error) {
	fe, ok := el.(*Element)
	if !ok {
		return nil, errors.New("platformtest: unsupported element type")
	}

	fe.mu.Lock()
	defer fe.mu.Unlock()
	if fe.captured {
		return nil, graph.ErrSourceInUse
	}
	fe.captured = true

	s := &Source{ctx: c, el: fe}
	c.mu.Lock()
	c.sources = append(c.sources, s)
	c.mu.Unlock()
	return s, nil
}

func (c *Context) Destination() graph.Node { return c.dest }

// Resumes returns the number of Resume calls
func (c *Context) Resumes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resumes
}

// Closes returns the number of Close calls
func (c *Context) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// Gains returns the created gain nodes
func (c *Context) Gains() []*Gain {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Gain(nil), c.gains...)
}

// Sources returns the created source nodes
func (c *Context) Sources() []*Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Source(nil), c.sources...)
}

// Source is a fake element source node
type Source struct {
	ctx *Context
	el  *Element
	out graph.Node
}

func (s *Source) Connect(dst graph.Node) error {
	s.out = dst
	return nil
}

// Output returns the node this source feeds
func (s *Source) Output() graph.Node { return s.out }

// Gain is a fake gain node
type Gain struct {
	ctx    *Context
	mu     sync.Mutex
	value  float64
	writes []float64
	out    graph.Node
}

func (g *Gain) Connect(dst graph.Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.out = dst
	return nil
}

func (g *Gain) SetGain(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = v
	g.writes = append(g.writes, v)
}

func (g *Gain) Gain() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Writes returns every SetGain value
func (g *Gain) Writes() []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]float64(nil), g.writes...)
}

// ConnectedToDestination reports whether the gain feeds its context output
func (g *Gain) ConnectedToDestination() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.out == graph.Node(g.ctx.dest)
}

type destination struct {
	ctx *Context
}

func (d *destination) Connect(graph.Node) error {
	return errors.New("platformtest: destination has no outputs")
}
