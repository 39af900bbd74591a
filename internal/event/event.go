// Package event defines the tagged Event variant and the EventStream that
// flows through the patch graph.
package event

import "fmt"

// Kind tags which variant an Event carries.
type Kind int

const (
	KindNone Kind = iota
	KindNoteOn
	KindNoteOff
	KindCtrl
	KindSysEx
	KindSceneSwitch
	KindSubSceneSwitch
	KindQuit
	KindOsc
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindNoteOn:
		return "NoteOn"
	case KindNoteOff:
		return "NoteOff"
	case KindCtrl:
		return "Ctrl"
	case KindSysEx:
		return "SysEx"
	case KindSceneSwitch:
		return "SceneSwitch"
	case KindSubSceneSwitch:
		return "SubSceneSwitch"
	case KindQuit:
		return "Quit"
	case KindOsc:
		return "Osc"
	default:
		return "Unknown"
	}
}

// SceneTarget carries the payload of a SceneSwitch/SubSceneSwitch event: it is
// either a fixed scene/sub-scene number or a signed offset from the current one.
type SceneTarget struct {
	IsOffset bool
	Fixed    int
	Offset   int
}

// OscArgKind tags the type of a single OSC argument.
type OscArgKind int

const (
	OscInt OscArgKind = iota
	OscFloat
	OscString
	OscBool
	OscBlob
)

// OscArg is one typed value in an OSC message's argument list.
type OscArg struct {
	Kind OscArgKind
	I    int32
	F    float32
	S    string
	Bl   bool
	Blob []byte
}

func IntArg(v int32) OscArg { return OscArg{Kind: OscInt, I: v} }
func FloatArg(v float32) OscArg { return OscArg{Kind: OscFloat, F: v} }
func StringArg(v string) OscArg { return OscArg{Kind: OscString, S: v} }
func BoolArg(v bool) OscArg { return OscArg{Kind: OscBool, Bl: v} }
func BlobArg(v []byte) OscArg { return OscArg{Kind: OscBlob, Blob: append([]byte(nil), v...)} }

// Event is a value-typed, cheaply cloneable tagged variant. Only the fields
// relevant to Kind are meaningful; the rest are left at their zero value.
type Event struct {
	Kind Kind

	Port    int
	Channel uint8

	Note     uint8
	Velocity uint8

	Ctrl  uint32
	Value int32

	SysEx []byte

	Target SceneTarget

	Addr string
	Args []OscArg
}

func NoteOnEvent(port int, channel, note, velocity uint8) Event {
	return Event{Kind: KindNoteOn, Port: port, Channel: channel, Note: note, Velocity: velocity}
}

func NoteOffEvent(port int, channel, note uint8) Event {
	return Event{Kind: KindNoteOff, Port: port, Channel: channel, Note: note}
}

func CtrlEvent(port int, channel uint8, ctrl uint32, value int32) Event {
	return Event{Kind: KindCtrl, Port: port, Channel: channel, Ctrl: ctrl, Value: value}
}

func SysExEvent(port int, data []byte) Event {
	return Event{Kind: KindSysEx, Port: port, SysEx: append([]byte(nil), data...)}
}

func OscEvent(port int, addr string, args []OscArg) Event {
	return Event{Kind: KindOsc, Port: port, Addr: addr, Args: append([]OscArg(nil), args...)}
}

func SceneSwitchEvent(n int) Event {
	return Event{Kind: KindSceneSwitch, Target: SceneTarget{Fixed: n}}
}

func SceneSwitchOffsetEvent(delta int) Event {
	return Event{Kind: KindSceneSwitch, Target: SceneTarget{IsOffset: true, Offset: delta}}
}

func SubSceneSwitchEvent(n int) Event {
	return Event{Kind: KindSubSceneSwitch, Target: SceneTarget{Fixed: n}}
}

func SubSceneSwitchOffsetEvent(delta int) Event {
	return Event{Kind: KindSubSceneSwitch, Target: SceneTarget{IsOffset: true, Offset: delta}}
}

func QuitEvent() Event { return Event{Kind: KindQuit} }

func NoneEvent() Event { return Event{Kind: KindNone} }

func (e Event) String() string {
	switch e.Kind {
	case KindNoteOn:
		return fmt.Sprintf("NoteOn(port=%d channel=%d note=%d velocity=%d)", e.Port, e.Channel, e.Note, e.Velocity)
	case KindNoteOff:
		return fmt.Sprintf("NoteOff(port=%d channel=%d note=%d)", e.Port, e.Channel, e.Note)
	case KindCtrl:
		return fmt.Sprintf("Ctrl(port=%d channel=%d ctrl=%d value=%d)", e.Port, e.Channel, e.Ctrl, e.Value)
	case KindSysEx:
		return fmt.Sprintf("SysEx(port=%d len=%d)", e.Port, len(e.SysEx))
	case KindOsc:
		return fmt.Sprintf("Osc(port=%d addr=%s args=%d)", e.Port, e.Addr, len(e.Args))
	case KindSceneSwitch:
		if e.Target.IsOffset {
			return fmt.Sprintf("SceneSwitch(offset=%+d)", e.Target.Offset)
		}
		return fmt.Sprintf("SceneSwitch(%d)", e.Target.Fixed)
	case KindSubSceneSwitch:
		if e.Target.IsOffset {
			return fmt.Sprintf("SubSceneSwitch(offset=%+d)", e.Target.Offset)
		}
		return fmt.Sprintf("SubSceneSwitch(%d)", e.Target.Fixed)
	case KindQuit:
		return "Quit"
	default:
		return "None"
	}
}

// quantizedArgKey renders an OSC arg into a canonical, hashable string.
// Floats are quantized to 1e-6 before being folded in, so near-identical
// argument lists still dedup reliably.
func (a OscArg) quantizedArgKey() string {
	switch a.Kind {
	case OscInt:
		return fmt.Sprintf("i%d", a.I)
	case OscFloat:
		return fmt.Sprintf("f%d", int64(a.F*1e6))
	case OscString:
		return fmt.Sprintf("s%s", a.S)
	case OscBool:
		return fmt.Sprintf("b%v", a.Bl)
	case OscBlob:
		return fmt.Sprintf("x%x", a.Blob)
	default:
		return "?"
	}
}

// Key renders the event into a canonical string used for structural equality
// and dedup. It deliberately avoids reflect.DeepEqual: OSC floats compare
// after quantization so near-identical argument lists still dedup reliably.
func (e Event) Key() string {
	switch e.Kind {
	case KindNoteOn:
		return fmt.Sprintf("NoteOn:%d:%d:%d:%d", e.Port, e.Channel, e.Note, e.Velocity)
	case KindNoteOff:
		return fmt.Sprintf("NoteOff:%d:%d:%d", e.Port, e.Channel, e.Note)
	case KindCtrl:
		return fmt.Sprintf("Ctrl:%d:%d:%d:%d", e.Port, e.Channel, e.Ctrl, e.Value)
	case KindSysEx:
		return fmt.Sprintf("SysEx:%d:%x", e.Port, e.SysEx)
	case KindOsc:
		s := fmt.Sprintf("Osc:%d:%s", e.Port, e.Addr)
		for _, a := range e.Args {
			s += ":" + a.quantizedArgKey()
		}
		return s
	case KindSceneSwitch:
		return fmt.Sprintf("SceneSwitch:%v:%d:%d", e.Target.IsOffset, e.Target.Fixed, e.Target.Offset)
	case KindSubSceneSwitch:
		return fmt.Sprintf("SubSceneSwitch:%v:%d:%d", e.Target.IsOffset, e.Target.Fixed, e.Target.Offset)
	case KindQuit:
		return "Quit"
	default:
		return "None"
	}
}

// Equal reports structural equality, consistent with Key.
func (e Event) Equal(other Event) bool {
	return e.Key() == other.Key()
}

// Clone returns a deep copy so SysEx/Args slices are never aliased across
// streams (the patch engine must not retain backend-owned buffers).
func (e Event) Clone() Event {
	c := e
	if e.SysEx != nil {
		c.SysEx = append([]byte(nil), e.SysEx...)
	}
	if e.Args != nil {
		c.Args = append([]OscArg(nil), e.Args...)
		for i, a := range c.Args {
			if a.Blob != nil {
				c.Args[i].Blob = append([]byte(nil), a.Blob...)
			}
		}
	}
	return c
}
