package ctrlc

import (
	"syscall"
	"testing"
	"time"

	"github.com/wvengen/mididings-go/internal/backend/poller"
	"github.com/wvengen/mididings-go/internal/event"
)

func TestSigintYieldsQuitWithinOnePollPeriod(t *testing.T) {
	b, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer b.Close()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("kill: %v", err)
	}

	fds := b.PollFDs()
	if len(fds) != 1 {
		t.Fatalf("expected one poll fd, got %d", len(fds))
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := poller.Wait(fds, 100); err != nil {
			t.Fatalf("poll: %v", err)
		}
		evs, err := b.Run()
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if len(evs) == 1 && evs[0].Kind == event.KindQuit {
			return
		}
	}
	t.Fatalf("no quit event arrived after SIGINT")
}
