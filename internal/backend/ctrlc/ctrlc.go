// Package ctrlc implements the signal-driven quit transport: it synthesizes
// a Quit event when the process receives SIGINT, which stops the Runner's
// main loop at the end of the current tick. The Runner runs no scene exit
// hooks when it stops on Quit.
package ctrlc

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/wvengen/mididings-go/internal/backend"
	"github.com/wvengen/mididings-go/internal/event"
	"golang.org/x/sys/unix"
)

// Backend owns a self-pipe whose read end is placed in the Runner's poll
// set. The signal handler (installed via signal.Notify, Go's async-signal-
// safe equivalent of a raw sigaction handler) only ever writes one byte to
// the pipe and returns, keeping the handler itself trivial.
type Backend struct {
	readFD  int
	writeFD int
	sigCh   chan os.Signal
	done    chan struct{}
}

func New() (*Backend, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, err
	}
	b := &Backend{
		readFD:  fds[0],
		writeFD: fds[1],
		sigCh:   make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	signal.Notify(b.sigCh, syscall.SIGINT)
	go b.forward()
	return b, nil
}

// forward relays each received SIGINT into the self-pipe. Go delivers
// signals to sigCh from its own runtime signal thread, not from a restricted
// handler context, so this goroutine may do ordinary blocking work; only the
// one-byte write onto the pipe is actually meaningful to the poll loop.
func (b *Backend) forward() {
	for {
		select {
		case <-b.sigCh:
			unix.Write(b.writeFD, []byte{0})
		case <-b.done:
			return
		}
	}
}

func (b *Backend) Close() {
	close(b.done)
	signal.Stop(b.sigCh)
	unix.Close(b.readFD)
	unix.Close(b.writeFD)
}

func (b *Backend) SetClientName(string) error { return nil }

func (b *Backend) CreateInPort(int, string) (bool, error) { return false, nil }
func (b *Backend) CreateOutPort(int, string) (bool, error) { return false, nil }

func (b *Backend) ConnectInPort(int, string) (bool, error) { return false, nil }
func (b *Backend) ConnectOutPort(int, string) (bool, error) { return false, nil }

func (b *Backend) PollFDs() []backend.PollFD {
	return []backend.PollFD{{FD: b.readFD, Events: unix.POLLIN}}
}

// Run reads up to 64 pending bytes from the pipe and returns one Quit event
// if any were read. The Runner calls it on every loop iteration, so an empty
// pipe (EAGAIN) yields no events.
func (b *Backend) Run() ([]event.Event, error) {
	var buf [64]byte
	n, err := unix.Read(b.readFD, buf[:])
	if err != nil && err != unix.EAGAIN {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	return []event.Event{event.QuitEvent()}, nil
}

func (b *Backend) OutputEvent(event.Event) (int, error) { return 0, nil }
