package graph

import "github.com/wvengen/mididings-go/internal/event"

// containsInt and its siblings report whether v is present in xs; used by the *s (plural)
// filter variants below.
func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsU8(xs []uint8, v uint8) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsU32(xs []uint32, v uint32) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsI32(xs []int32, v int32) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Filters whose key is variant-specific (e.g. a ChannelFilter looking at an
// Osc event) pass events of variants they don't address: a filter declines to
// have an opinion on unrelated event kinds, which keeps filters orthogonal.
func hasChannel(k event.Kind) bool {
	return k == event.KindNoteOn || k == event.KindNoteOff || k == event.KindCtrl
}

func hasPort(k event.Kind) bool {
	return k == event.KindNoteOn || k == event.KindNoteOff || k == event.KindCtrl || k == event.KindSysEx || k == event.KindOsc
}

func hasNote(k event.Kind) bool { return k == event.KindNoteOn || k == event.KindNoteOff }

func hasCtrl(k event.Kind) bool { return k == event.KindCtrl }

// PortFilter keeps only events on the given port; events of variants without
// a port pass through untouched.
func PortFilter(port int) Node {
	return Filter(func(e *event.Event) bool {
		if !hasPort(e.Kind) {
			return true
		}
		return e.Port == port
	})
}

func PortsFilter(ports []int) Node {
	return Filter(func(e *event.Event) bool {
		if !hasPort(e.Kind) {
			return true
		}
		return containsInt(ports, e.Port)
	})
}

func ChannelFilter(channel uint8) Node {
	return Filter(func(e *event.Event) bool {
		if !hasChannel(e.Kind) {
			return true
		}
		return e.Channel == channel
	})
}

func ChannelsFilter(channels []uint8) Node {
	return Filter(func(e *event.Event) bool {
		if !hasChannel(e.Kind) {
			return true
		}
		return containsU8(channels, e.Channel)
	})
}

func KeyFilter(note uint8) Node {
	return Filter(func(e *event.Event) bool {
		if !hasNote(e.Kind) {
			return true
		}
		return e.Note == note
	})
}

func KeysFilter(notes []uint8) Node {
	return Filter(func(e *event.Event) bool {
		if !hasNote(e.Kind) {
			return true
		}
		return containsU8(notes, e.Note)
	})
}

func KeyRangeFilter(lo, hi uint8) Node {
	return Filter(func(e *event.Event) bool {
		if !hasNote(e.Kind) {
			return true
		}
		return e.Note >= lo && e.Note <= hi
	})
}

func CtrlFilter(ctrl uint32) Node {
	return Filter(func(e *event.Event) bool {
		if !hasCtrl(e.Kind) {
			return true
		}
		return e.Ctrl == ctrl
	})
}

func CtrlsFilter(ctrls []uint32) Node {
	return Filter(func(e *event.Event) bool {
		if !hasCtrl(e.Kind) {
			return true
		}
		return containsU32(ctrls, e.Ctrl)
	})
}

func CtrlValueFilter(value int32) Node {
	return Filter(func(e *event.Event) bool {
		if !hasCtrl(e.Kind) {
			return true
		}
		return e.Value == value
	})
}

func CtrlValuesFilter(values []int32) Node {
	return Filter(func(e *event.Event) bool {
		if !hasCtrl(e.Kind) {
			return true
		}
		return containsI32(values, e.Value)
	})
}

func CtrlValueRangeFilter(lo, hi int32) Node {
	return Filter(func(e *event.Event) bool {
		if !hasCtrl(e.Kind) {
			return true
		}
		return e.Value >= lo && e.Value <= hi
	})
}

// Type filters, keyed by variant family.

func TypeFilter(k event.Kind) Node {
	return Filter(func(e *event.Event) bool { return e.Kind == k })
}

// MidiFilter passes NoteOn, NoteOff, Ctrl and SysEx events (the "real" MIDI
// variants, as opposed to control/OSC events).
func MidiFilter() Node {
	return Filter(func(e *event.Event) bool {
		switch e.Kind {
		case event.KindNoteOn, event.KindNoteOff, event.KindCtrl, event.KindSysEx:
			return true
		default:
			return false
		}
	})
}

// NoteFilter passes NoteOn and NoteOff.
func NoteFilter() Node {
	return Filter(func(e *event.Event) bool {
		return e.Kind == event.KindNoteOn || e.Kind == event.KindNoteOff
	})
}
