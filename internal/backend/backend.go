// Package backend declares the transport contract the core consumes and the
// port-spec grammar backends are offered during configuration.
package backend

import "github.com/wvengen/mididings-go/internal/event"

// PollFD is one OS poll descriptor a backend wants the Runner's single
// suspension point to watch, expressed as a raw fd and an events bitmask
// (unix.POLLIN and friends).
type PollFD struct {
	FD     int
	Events int16
}

// Backend is the contract every transport (ALSA sequencer, OSC over UDP/TCP,
// the Ctrl-C self-pipe, Null) implements. Port-creation methods return
// handled=true to claim a port spec; the Router offers each port to every
// backend in declaration order and stops at the first claim.
type Backend interface {
	SetClientName(name string) error

	CreateInPort(portIndex int, spec string) (handled bool, err error)
	CreateOutPort(portIndex int, spec string) (handled bool, err error)

	ConnectInPort(portIndex int, peerSpec string) (handled bool, err error)
	ConnectOutPort(portIndex int, peerSpec string) (handled bool, err error)

	PollFDs() []PollFD

	// Run is non-blocking: it returns only events that are ready now.
	Run() ([]event.Event, error)

	// OutputEvent returns the number of bytes emitted; 0 means the backend
	// declined the event (wrong port, wrong variant).
	OutputEvent(ev event.Event) (bytesEmitted int, err error)
}
