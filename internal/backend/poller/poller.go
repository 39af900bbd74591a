// Package poller wraps unix.Poll to implement the single bounded-timeout
// suspension point of the Runner's main loop.
package poller

import (
	"github.com/wvengen/mididings-go/internal/backend"
	"golang.org/x/sys/unix"
)

// Wait blocks on fds for at most timeoutMillis, so that signal-delivered
// events arriving between polls are never starved for more than one period.
// An EINTR (e.g. a delivered SIGINT) is treated as "something to check",
// not an error.
func Wait(fds []backend.PollFD, timeoutMillis int) error {
	raw := make([]unix.PollFd, len(fds))
	for i, fd := range fds {
		raw[i] = unix.PollFd{Fd: int32(fd.FD), Events: fd.Events}
	}
	_, err := unix.Poll(raw, timeoutMillis)
	if err == unix.EINTR {
		return nil
	}
	return err
}
