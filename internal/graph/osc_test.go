package graph

import (
	"math"
	"testing"

	"github.com/wvengen/mididings-go/internal/event"
)

func TestProcessOscSplicesMatchingEvents(t *testing.T) {
	p := ProcessOsc([]event.OscArgKind{event.OscInt}, func(args []event.OscArg) Node {
		return NoteOnGenerator(uint8(args[0].I), 30)
	})

	s := event.FromEvent(event.OscEvent(0, "/foo", []event.OscArg{event.IntArg(60)}))
	p.Run(&s)
	// The matched event is consumed, leaving a None placeholder followed by
	// the generated note.
	if !containsNoteOn(s, 60, 30) {
		t.Fatalf("expected NoteOn(60, 30) in output, got %v", s.Events)
	}
	for _, ev := range s.Events {
		if ev.Kind == event.KindOsc {
			t.Fatalf("matched osc event was not consumed: %v", s.Events)
		}
	}
}

func TestProcessOscIgnoresNonMatchingShapes(t *testing.T) {
	p := ProcessOsc([]event.OscArgKind{event.OscInt, event.OscFloat}, func([]event.OscArg) Node {
		return Discard()
	})
	cases := []event.Event{
		event.OscEvent(0, "/foo", []event.OscArg{event.IntArg(1)}),                      // too few args
		event.OscEvent(0, "/foo", []event.OscArg{event.FloatArg(1), event.IntArg(2)}),   // wrong order
		event.OscEvent(0, "/foo", []event.OscArg{event.StringArg("x"), event.IntArg(2)}), // wrong kind
		event.NoteOnEvent(0, 0, 60, 64),                                                 // wrong variant
	}
	for _, ev := range cases {
		s := event.FromEvent(ev)
		p.Run(&s)
		if s.Len() != 1 || !s.Events[0].Equal(ev) {
			t.Errorf("non-matching event was touched: %s -> %v", ev, s.Events)
		}
	}
}

// OSC-to-MIDI bridge: a host callback is translated into a Ctrl event on a
// chosen port.
func TestOscToMidiBridgeScenario(t *testing.T) {
	pattern := []event.OscArgKind{
		event.OscInt, event.OscInt, event.OscInt, event.OscInt, event.OscInt,
		event.OscFloat, event.OscString,
	}
	bridge := Chain(
		OscAddrFilter("/cb"),
		ProcessOsc(pattern, func(args []event.OscArg) Node {
			action, plugin, idx := args[0].I, args[1].I, args[2].I
			fval := args[5].F
			if action == 5 && plugin == 0 && idx == 0 {
				return Chain(
					CtrlGenerator(1, int32(math.Trunc(float64(fval)*127))),
					PortModifier(1),
				)
			}
			return Discard()
		}),
	)

	s := event.FromEvent(event.OscEvent(0, "/cb", []event.OscArg{
		event.IntArg(5), event.IntArg(0), event.IntArg(0), event.IntArg(0), event.IntArg(0),
		event.FloatArg(0.5), event.StringArg("x"),
	}))
	bridge.Run(&s)

	var ctrls []event.Event
	for _, ev := range s.Events {
		switch ev.Kind {
		case event.KindCtrl:
			ctrls = append(ctrls, ev)
		case event.KindNone:
			// placeholder left by the consumed osc event
		default:
			t.Fatalf("unexpected event in output: %s", ev)
		}
	}
	if len(ctrls) != 1 {
		t.Fatalf("expected exactly one ctrl event, got %v", s.Events)
	}
	got := ctrls[0]
	if got.Port != 1 || got.Ctrl != 1 || got.Value != 63 || got.Channel != 0 {
		t.Fatalf("got %s, want Ctrl(port=1 ctrl=1 value=63)", got)
	}

	// Non-matching action is discarded entirely.
	s = event.FromEvent(event.OscEvent(0, "/cb", []event.OscArg{
		event.IntArg(1), event.IntArg(0), event.IntArg(0), event.IntArg(0), event.IntArg(0),
		event.FloatArg(0.5), event.StringArg("x"),
	}))
	bridge.Run(&s)
	if s.Any() {
		t.Fatalf("expected discard, got %v", s.Events)
	}
}

func TestOscPrefixRoundTrip(t *testing.T) {
	roundTrip := Chain(OscAddPrefixModifier("/mix"), OscStripPrefix("/mix"))
	orig := event.OscEvent(0, "/volume", []event.OscArg{event.FloatArg(0.8)})
	s := event.FromEvent(orig)
	roundTrip.Run(&s)
	if s.Len() != 1 || !s.Events[0].Equal(orig) {
		t.Fatalf("round trip changed event: %v", s.Events)
	}
}

func TestOscStripPrefixDropsNonMatching(t *testing.T) {
	strip := OscStripPrefix("/mix")
	s := event.Empty()
	s.Append(event.OscEvent(0, "/mix/volume", nil))
	s.Append(event.OscEvent(0, "/other/volume", nil))
	s.Append(event.NoteOnEvent(0, 0, 60, 64))
	strip.Run(&s)
	if s.Len() != 2 {
		t.Fatalf("expected 2 events, got %v", s.Events)
	}
	if s.Events[0].Addr != "/volume" {
		t.Fatalf("prefix not stripped: %s", s.Events[0].Addr)
	}
	if s.Events[1].Kind != event.KindNoteOn {
		t.Fatalf("non-osc event dropped")
	}
}

func TestOscAddrFilterExactMatch(t *testing.T) {
	f := OscAddrFilter("/cb")
	s := event.Empty()
	s.Append(event.OscEvent(0, "/cb", nil))
	s.Append(event.OscEvent(0, "/cb/sub", nil))
	f.Run(&s)
	if s.Len() != 1 || s.Events[0].Addr != "/cb" {
		t.Fatalf("expected exact match only, got %v", s.Events)
	}
}

func containsNoteOn(s event.Stream, note, velocity uint8) bool {
	for _, ev := range s.Events {
		if ev.Kind == event.KindNoteOn && ev.Note == note && ev.Velocity == velocity {
			return true
		}
	}
	return false
}
