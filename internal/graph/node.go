// Package graph implements the patch engine: a composable graph of filters,
// modifiers, generators and composites that transforms an event.Stream.
package graph

import "github.com/wvengen/mididings-go/internal/event"

// Node is the capability set every graph element implements: run, its
// inverse, and the init/exit hooks used by Scoped wrappers and scenes.
//
// Filters remove non-matching events on Run and matching ones on RunInverse.
// Modifiers and generators are identity on RunInverse. Composites traverse
// children for every method; only Scoped (Init/Exit) nodes act on RunInit/
// RunExit.
type Node interface {
	Run(s *event.Stream)
	RunInverse(s *event.Stream)
	RunInit(s *event.Stream)
	RunExit(s *event.Stream)
}

// base supplies the common default: no-op init/exit hooks. Embedded by every
// leaf node so only the methods that matter need overriding.
type base struct{}

func (base) RunInit(*event.Stream) {}
func (base) RunExit(*event.Stream) {}

// filterNode drops events that fail pred; RunInverse drops the ones that pass.
type filterNode struct {
	base
	pred func(*event.Event) bool
}

// Filter builds a Node from a predicate; the Port/Channel/Key/Ctrl-family
// filters are all built on it.
func Filter(pred func(*event.Event) bool) Node { return filterNode{pred: pred} }

func (f filterNode) Run(s *event.Stream) { s.Retain(f.pred) }
func (f filterNode) RunInverse(s *event.Stream) { s.Retain(func(e *event.Event) bool { return !f.pred(e) }) }

// modifierNode mutates every event in place; inverse is identity.
type modifierNode struct {
	base
	mutate func(*event.Event)
}

func Modifier(mutate func(*event.Event)) Node { return modifierNode{mutate: mutate} }

func (m modifierNode) Run(s *event.Stream) { s.ForEach(m.mutate) }
func (m modifierNode) RunInverse(s *event.Stream) {}

// generatorNode appends one synthesized event per invocation; inverse is identity.
type generatorNode struct {
	base
	gen func() event.Event
}

func Generator(gen func() event.Event) Node { return generatorNode{gen: gen} }

func (g generatorNode) Run(s *event.Stream) { s.Append(g.gen()) }
func (g generatorNode) RunInverse(s *event.Stream) {}

// funcNode lets a handful of irregular nodes (Pass, Discard, Print, Panic,
// the control-event generators) supply arbitrary Run/RunInverse/RunInit/
// RunExit bodies without a bespoke type each.
type funcNode struct {
	run        func(s *event.Stream)
	runInverse func(s *event.Stream)
	runInit    func(s *event.Stream)
	runExit    func(s *event.Stream)
}

func (f funcNode) Run(s *event.Stream) { f.run(s) }
func (f funcNode) RunInverse(s *event.Stream) {
	if f.runInverse != nil {
		f.runInverse(s)
	} else {
		f.run(s)
	}
}
func (f funcNode) RunInit(s *event.Stream) {
	if f.runInit != nil {
		f.runInit(s)
	}
}
func (f funcNode) RunExit(s *event.Stream) {
	if f.runExit != nil {
		f.runExit(s)
	}
}

// Pass is a no-op: the stream is left exactly as it is.
func Pass() Node {
	return funcNode{
		run:        func(*event.Stream) {},
		runInverse: func(s *event.Stream) { s.Clear() },
	}
}

// Discard drops every event.
func Discard() Node {
	return funcNode{
		run:        func(s *event.Stream) { s.Clear() },
		runInverse: func(*event.Stream) {},
	}
}

// notNode negates a node: Run calls the inner RunInverse and vice versa. Init
// and exit hooks are not forwarded (only Init/Exit wrappers act on them), so
// Not(x) never runs x's init/exit.
type notNode struct {
	inner Node
}

// Not wraps inner so Run/RunInverse swap. The composite's own Chain/Fork
// inverse swap (see FilterChain) means Not(Chain(a,b)) == Fork(Not(a),Not(b))
// without Not needing to know about composites at all.
func Not(inner Node) Node { return notNode{inner: inner} }

func (n notNode) Run(s *event.Stream) { n.inner.RunInverse(s) }
func (n notNode) RunInverse(s *event.Stream) { n.inner.Run(s) }
func (n notNode) RunInit(*event.Stream) {}
func (n notNode) RunExit(*event.Stream) {}

// initNode defers its inner graph to RunInit and is opaque during Run.
type initNode struct{ inner Node }

// Init wraps inner so it only runs as part of a scene's init hook.
func Init(inner Node) Node { return initNode{inner: inner} }

func (n initNode) Run(*event.Stream) {}
func (n initNode) RunInverse(*event.Stream) {}
func (n initNode) RunInit(s *event.Stream) { n.inner.Run(s) }
func (n initNode) RunExit(*event.Stream) {}

// exitNode defers its inner graph to RunExit and is opaque during Run.
type exitNode struct{ inner Node }

// Exit wraps inner so it only runs as part of a scene's exit hook.
func Exit(inner Node) Node { return exitNode{inner: inner} }

func (n exitNode) Run(*event.Stream) {}
func (n exitNode) RunInverse(*event.Stream) {}
func (n exitNode) RunInit(*event.Stream) {}
func (n exitNode) RunExit(s *event.Stream) { n.inner.Run(s) }
