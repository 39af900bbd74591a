package backend

import (
	"strings"

	"github.com/wvengen/mididings-go/internal/event"
)

// Null is a transport that receives no input and generates no output. It
// claims "null:" port specs outright, and (when configured as the fallback
// backend) claims anything nothing else wanted. Useful mostly for testing a
// patch without real MIDI hardware.
type Null struct {
	Fallback bool
}

func NewNull(fallback bool) *Null { return &Null{Fallback: fallback} }

func (n *Null) claims(spec string) bool {
	if scheme, _, ok := strings.Cut(spec, ":"); ok {
		if scheme == "null" {
			return true
		}
	}
	return n.Fallback
}

func (n *Null) SetClientName(string) error { return nil }

func (n *Null) CreateInPort(_ int, spec string) (bool, error) { return n.claims(spec), nil }
func (n *Null) CreateOutPort(_ int, spec string) (bool, error) { return n.claims(spec), nil }

func (n *Null) ConnectInPort(_ int, _ string) (bool, error) { return false, nil }
func (n *Null) ConnectOutPort(_ int, _ string) (bool, error) { return false, nil }

func (n *Null) PollFDs() []PollFD { return nil }

func (n *Null) Run() ([]event.Event, error) { return nil, nil }

func (n *Null) OutputEvent(event.Event) (int, error) { return 0, nil }
