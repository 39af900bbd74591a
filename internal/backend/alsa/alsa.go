// Package alsa implements the ALSA sequencer transport via
// gitlab.com/gomidi/midi/v2 and its rtmididrv driver (which sits on the ALSA
// sequencer on Linux), translating between midi.Message and the router's own
// event.Event.
package alsa

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/wvengen/mididings-go/internal/backend"
	"github.com/wvengen/mididings-go/internal/event"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Backend claims bare port specs (no recognized scheme, e.g. "alsa:Midi
// Through" or just a port name), ALSA being the transport for anything no
// other scheme matches.
type Backend struct {
	drv *rtmididrv.Driver

	mu      sync.Mutex
	queue   []event.Event
	inPorts map[int]drivers.In
	outPort map[int]drivers.Out

	clientName string
}

func New() (*Backend, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("alsa: open sequencer: %w", err)
	}
	return &Backend{
		drv:     drv,
		inPorts: map[int]drivers.In{},
		outPort: map[int]drivers.Out{},
	}, nil
}

func (b *Backend) SetClientName(name string) error {
	b.clientName = name
	return nil
}

// parseSpec strips an optional "alsa:" scheme prefix; anything else is the
// ALSA port name to match by substring, mirroring the original's behaviour
// of treating ALSA as the fallback, unprefixed backend.
func parseSpec(spec string) (name string, handled bool) {
	if rest, ok := strings.CutPrefix(spec, "alsa:"); ok {
		return rest, true
	}
	if strings.Contains(spec, ":") {
		// Another scheme (osc:, osc.udp:, null:, ...) claims this spec.
		return "", false
	}
	return spec, true
}

func findPort[T interface{ String() string }](ports []T, want string) (T, bool) {
	var zero T
	if want == "" && len(ports) == 1 {
		return ports[0], true
	}
	for _, p := range ports {
		if strings.Contains(p.String(), want) {
			return p, true
		}
	}
	return zero, false
}

func (b *Backend) CreateInPort(portIndex int, spec string) (bool, error) {
	name, handled := parseSpec(spec)
	if !handled {
		return false, nil
	}
	ins, err := b.drv.Ins()
	if err != nil {
		return false, fmt.Errorf("alsa: list in ports: %w", err)
	}
	in, ok := findPort(ins, name)
	if !ok {
		return false, fmt.Errorf("alsa: no input port matching %q", name)
	}
	if err := in.Open(); err != nil {
		return false, fmt.Errorf("alsa: open in port %q: %w", name, err)
	}
	_, err = in.Listen(func(msg []byte, _ int32) {
		b.onMessage(portIndex, msg)
	}, drivers.ListenConfig{})
	if err != nil {
		return false, fmt.Errorf("alsa: listen on %q: %w", name, err)
	}
	b.mu.Lock()
	b.inPorts[portIndex] = in
	b.mu.Unlock()
	return true, nil
}

func (b *Backend) CreateOutPort(portIndex int, spec string) (bool, error) {
	name, handled := parseSpec(spec)
	if !handled {
		return false, nil
	}
	outs, err := b.drv.Outs()
	if err != nil {
		return false, fmt.Errorf("alsa: list out ports: %w", err)
	}
	out, ok := findPort(outs, name)
	if !ok {
		return false, fmt.Errorf("alsa: no output port matching %q", name)
	}
	if err := out.Open(); err != nil {
		return false, fmt.Errorf("alsa: open out port %q: %w", name, err)
	}
	b.mu.Lock()
	b.outPort[portIndex] = out
	b.mu.Unlock()
	return true, nil
}

func (b *Backend) ConnectInPort(int, string) (bool, error) { return false, nil }
func (b *Backend) ConnectOutPort(int, string) (bool, error) { return false, nil }

// PollFDs is empty: the rtmididrv Listen callback delivers messages on its own
// goroutine rather than through a pollable fd, so incoming events surface
// through the Runner's bounded poll timeout instead of a wakeup fd.
func (b *Backend) PollFDs() []backend.PollFD { return nil }

func (b *Backend) onMessage(portIndex int, raw []byte) {
	ev, ok := decodeMessage(portIndex, midi.Message(raw))
	if !ok {
		return
	}
	b.mu.Lock()
	b.queue = append(b.queue, ev)
	b.mu.Unlock()
}

func (b *Backend) Run() ([]event.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil, nil
	}
	out := b.queue
	b.queue = nil
	return out, nil
}

func decodeMessage(portIndex int, msg midi.Message) (event.Event, bool) {
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		return event.NoteOnEvent(portIndex, ch, key, vel), true
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		return event.NoteOffEvent(portIndex, ch, key), true
	}
	var cc, val uint8
	if msg.GetControlChange(&ch, &cc, &val) {
		return event.CtrlEvent(portIndex, ch, uint32(cc), int32(val)), true
	}
	if msg.Type() == midi.SysExMsg {
		var data []byte
		if msg.GetSysEx(&data) {
			return event.SysExEvent(portIndex, data), true
		}
	}
	return event.Event{}, false
}

func (b *Backend) OutputEvent(ev event.Event) (int, error) {
	b.mu.Lock()
	out, ok := b.outPort[ev.Port]
	if !ok && len(b.outPort) == 1 {
		for _, o := range b.outPort {
			out = o
			ok = true
		}
	}
	b.mu.Unlock()
	if !ok {
		return 0, nil
	}

	var msg midi.Message
	switch ev.Kind {
	case event.KindNoteOn:
		msg = midi.NoteOn(ev.Channel, ev.Note, ev.Velocity)
	case event.KindNoteOff:
		msg = midi.NoteOff(ev.Channel, ev.Note)
	case event.KindCtrl:
		msg = midi.ControlChange(ev.Channel, uint8(ev.Ctrl), clampU8(ev.Value))
	case event.KindSysEx:
		msg = midi.SysEx(ev.SysEx)
	default:
		return 0, nil
	}

	if err := out.Send(msg); err != nil {
		if strings.Contains(err.Error(), "ENOSPC") || strings.Contains(err.Error(), "no space") {
			log.Printf("alsa: output buffer overrun on port %d, event dropped", ev.Port)
			return 0, nil
		}
		return 0, fmt.Errorf("alsa: send: %w", err)
	}
	return len(msg), nil
}

func clampU8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
