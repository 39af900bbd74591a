package graph

import "github.com/wvengen/mididings-go/internal/event"

func saturateU8Add(v uint8, delta int) uint8 {
	sum := int(v) + delta
	if sum < 0 {
		return 0
	}
	if sum > 127 {
		return 127
	}
	return uint8(sum)
}

// PortModifier sets the port on every event that carries one.
func PortModifier(port int) Node {
	return Modifier(func(e *event.Event) {
		if hasPort(e.Kind) {
			e.Port = port
		}
	})
}

// ChannelModifier sets the channel on every event that carries one.
func ChannelModifier(channel uint8) Node {
	return Modifier(func(e *event.Event) {
		if hasChannel(e.Kind) {
			e.Channel = channel
		}
	})
}

// TransposeModifier adds signed semitones to Note events, saturating at 0..127.
func TransposeModifier(semitones int) Node {
	return Modifier(func(e *event.Event) {
		if hasNote(e.Kind) {
			e.Note = saturateU8Add(e.Note, semitones)
		}
	})
}

// TransposeOctaveModifier adds signed octaves (×12 semitones).
func TransposeOctaveModifier(octaves int) Node {
	return Modifier(func(e *event.Event) {
		if hasNote(e.Kind) {
			e.Note = saturateU8Add(e.Note, octaves*12)
		}
	})
}

// KeyModifier sets the note on Note events.
func KeyModifier(note uint8) Node {
	return Modifier(func(e *event.Event) {
		if hasNote(e.Kind) {
			e.Note = note
		}
	})
}

// VelocityModifier adds a signed delta to NoteOn velocity, saturating.
func VelocityModifier(delta int) Node {
	return Modifier(func(e *event.Event) {
		if e.Kind == event.KindNoteOn {
			e.Velocity = saturateU8Add(e.Velocity, delta)
		}
	})
}

// VelocityMultiplyModifier multiplies NoteOn velocity by factor, truncating.
func VelocityMultiplyModifier(factor float64) Node {
	return Modifier(func(e *event.Event) {
		if e.Kind == event.KindNoteOn {
			v := int(float64(e.Velocity) * factor)
			if v < 0 {
				v = 0
			}
			if v > 127 {
				v = 127
			}
			e.Velocity = uint8(v)
		}
	})
}

// VelocityFixedModifier sets NoteOn velocity to a fixed value.
func VelocityFixedModifier(velocity uint8) Node {
	return Modifier(func(e *event.Event) {
		if e.Kind == event.KindNoteOn {
			e.Velocity = velocity
		}
	})
}

// CtrlMapModifier rewrites controller id from to to.
func CtrlMapModifier(from, to uint32) Node {
	return Modifier(func(e *event.Event) {
		if e.Kind == event.KindCtrl && e.Ctrl == from {
			e.Ctrl = to
		}
	})
}
