package graph

import (
	"log"

	"github.com/wvengen/mididings-go/internal/event"
)

func NoteOnGenerator(note, velocity uint8) Node {
	return Generator(func() event.Event { return event.NoteOnEvent(0, 0, note, velocity) })
}

func NoteOffGenerator(note uint8) Node {
	return Generator(func() event.Event { return event.NoteOffEvent(0, 0, note) })
}

func CtrlGenerator(ctrl uint32, value int32) Node {
	return Generator(func() event.Event { return event.CtrlEvent(0, 0, ctrl, value) })
}

func SysExGenerator(data []byte) Node {
	return Generator(func() event.Event { return event.SysExEvent(0, data) })
}

func OscGenerator(addr string, args []event.OscArg) Node {
	return Generator(func() event.Event { return event.OscEvent(0, addr, args) })
}

// controlGenerator appends a control event only when the stream is non-empty,
// so that a preceding filter dropping everything suppresses the control event
// too. Init/exit hooks are seeded with a singleton None stream precisely so
// these still fire there.
func controlGenerator(gen func() event.Event) Node {
	return funcNode{
		run: func(s *event.Stream) {
			if s.Any() {
				s.Append(gen())
			}
		},
		runInverse: func(*event.Stream) {},
	}
}

func SceneSwitchGenerator(n int) Node {
	return controlGenerator(func() event.Event { return event.SceneSwitchEvent(n) })
}

func SceneSwitchOffsetGenerator(delta int) Node {
	return controlGenerator(func() event.Event { return event.SceneSwitchOffsetEvent(delta) })
}

func SubSceneSwitchGenerator(n int) Node {
	return controlGenerator(func() event.Event { return event.SubSceneSwitchEvent(n) })
}

func SubSceneSwitchOffsetGenerator(delta int) Node {
	return controlGenerator(func() event.Event { return event.SubSceneSwitchOffsetEvent(delta) })
}

func QuitGenerator() Node {
	return controlGenerator(func() event.Event { return event.QuitEvent() })
}

// PanicGenerator emits "All Notes Off" (CC 123) and "Sustain Off" (CC 64) on
// all 16 channels: exactly 32 events.
func PanicGenerator() Node {
	return funcNode{
		run: func(s *event.Stream) {
			for ch := uint8(0); ch < 16; ch++ {
				s.Append(event.CtrlEvent(0, ch, 123, 0))
				s.Append(event.CtrlEvent(0, ch, 64, 0))
			}
		},
		runInverse: func(*event.Stream) {},
	}
}

// PrintGenerator logs the current stream as a side effect; the stream itself
// is left unchanged.
func PrintGenerator() Node {
	return funcNode{
		run: func(s *event.Stream) {
			if !s.Any() {
				return
			}
			for _, ev := range s.Events {
				log.Printf("%s", ev)
			}
		},
		runInverse: func(*event.Stream) {},
	}
}
