package graph

import (
	"strings"

	"github.com/wvengen/mididings-go/internal/event"
)

// OscAddrFilter keeps only Osc events with an exact address match; other
// variants pass through (the filter has no opinion on them).
func OscAddrFilter(addr string) Node {
	return Filter(func(e *event.Event) bool {
		if e.Kind != event.KindOsc {
			return true
		}
		return e.Addr == addr
	})
}

// oscStripPrefixNode keeps only Osc events whose address starts with prefix,
// then strips the prefix. It is filter+modifier combined, so it cannot be
// built from the Filter/Modifier helpers alone.
type oscStripPrefixNode struct {
	base
	prefix string
}

// OscStripPrefix keeps only Osc whose address starts with prefix, then strips
// the prefix from the remaining address.
func OscStripPrefix(prefix string) Node { return oscStripPrefixNode{prefix: prefix} }

func (o oscStripPrefixNode) Run(s *event.Stream) {
	s.Retain(func(e *event.Event) bool {
		if e.Kind != event.KindOsc {
			return true
		}
		return strings.HasPrefix(e.Addr, o.prefix)
	})
	s.ForEach(func(e *event.Event) {
		if e.Kind == event.KindOsc {
			e.Addr = strings.TrimPrefix(e.Addr, o.prefix)
		}
	})
}

func (o oscStripPrefixNode) RunInverse(s *event.Stream) { o.Run(s) }

// OscAddPrefixModifier prepends prefix to every Osc event's address.
func OscAddPrefixModifier(prefix string) Node {
	return Modifier(func(e *event.Event) {
		if e.Kind == event.KindOsc {
			e.Addr = prefix + e.Addr
		}
	})
}

// oscProcessorNode adapts a declared OSC argument-type pattern and a user
// function into a graph: matching Osc events are consumed and replaced with
// the output of running the function's returned graph.
type oscProcessorNode struct {
	pattern []event.OscArgKind
	fn      func(args []event.OscArg) Node
}

// ProcessOsc scans the stream for Osc events whose argument list matches
// pattern exactly (same length, same kinds in order). For each match it
// invokes fn with the typed arguments and splices the output of the returned
// graph in place of the original event; the consumed event leaves a None
// placeholder behind, which the returned graph runs on (so generators fire).
// Non-matching events (wrong variant, wrong shape) pass through untouched.
// The stream is deduped once after splicing.
func ProcessOsc(pattern []event.OscArgKind, fn func(args []event.OscArg) Node) Node {
	return oscProcessorNode{pattern: pattern, fn: fn}
}

func matchesOscPattern(args []event.OscArg, pattern []event.OscArgKind) bool {
	if len(args) != len(pattern) {
		return false
	}
	for i, k := range pattern {
		if args[i].Kind != k {
			return false
		}
	}
	return true
}

func (p oscProcessorNode) Run(s *event.Stream) {
	out := make([]event.Event, 0, len(s.Events))
	for _, ev := range s.Events {
		if ev.Kind == event.KindOsc && matchesOscPattern(ev.Args, p.pattern) {
			inner := event.None()
			p.fn(ev.Args).Run(&inner)
			out = append(out, inner.Events...)
		} else {
			out = append(out, ev)
		}
	}
	s.Events = out
	s.Dedup()
}

// RunInverse has no well-defined meaning for a dynamic process step, so it
// behaves the same as Run.
func (p oscProcessorNode) RunInverse(s *event.Stream) { p.Run(s) }
func (p oscProcessorNode) RunInit(*event.Stream) {}
func (p oscProcessorNode) RunExit(*event.Stream) {}
