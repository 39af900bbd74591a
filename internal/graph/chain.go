package graph

import "github.com/wvengen/mididings-go/internal/event"

// Connection selects how a FilterChain's children combine.
type Connection int

const (
	// ChainMode applies children left-to-right over one shared stream.
	ChainMode Connection = iota
	// ForkMode applies each child to its own clone of the input and
	// concatenates the results.
	ForkMode
)

// FilterChain is the one composite node kind: an ordered list of children
// combined by Chain or Fork. Its own Run/RunInverse implement the De Morgan
// swap (Chain-inverse == Fork of inverses, and vice versa) so Not(chain)
// never needs to know it is looking at a composite.
type FilterChain struct {
	children   []Node
	connection Connection
}

// Chain builds a FilterChain that runs children in sequence against one
// shared, mutating stream.
func Chain(children ...Node) Node {
	return FilterChain{children: children, connection: ChainMode}
}

// Fork builds a FilterChain that runs each child against its own copy of the
// input stream and concatenates the results in declaration order.
func Fork(children ...Node) Node {
	return FilterChain{children: children, connection: ForkMode}
}

func (c FilterChain) Run(s *event.Stream) {
	switch c.connection {
	case ChainMode:
		c.runChain(s, Node.Run)
	case ForkMode:
		c.runFork(s, Node.Run)
	}
}

func (c FilterChain) RunInverse(s *event.Stream) {
	switch c.connection {
	case ChainMode:
		c.runFork(s, Node.RunInverse)
	case ForkMode:
		c.runChain(s, Node.RunInverse)
	}
}

// RunInit and RunExit always traverse children in declaration order
// regardless of connection mode; only Scoped (Init/Exit) children act on them.
func (c FilterChain) RunInit(s *event.Stream) {
	for _, child := range c.children {
		child.RunInit(s)
	}
}

func (c FilterChain) RunExit(s *event.Stream) {
	for _, child := range c.children {
		child.RunExit(s)
	}
}

func (c FilterChain) runChain(s *event.Stream, method func(Node, *event.Stream)) {
	for _, child := range c.children {
		method(child, s)
	}
	s.Dedup()
}

func (c FilterChain) runFork(s *event.Stream, method func(Node, *event.Stream)) {
	var out []event.Event
	for _, child := range c.children {
		clone := s.Clone()
		method(child, &clone)
		out = append(out, clone.Events...)
	}
	s.Events = out
	s.Dedup()
}
