package scene

import (
	"testing"

	"github.com/wvengen/mididings-go/internal/event"
	"github.com/wvengen/mididings-go/internal/graph"
)

func TestNewDefaultsHooksToDiscard(t *testing.T) {
	sc := New("empty", nil)
	s := event.FromEvent(event.NoteOnEvent(0, 0, 60, 64))
	sc.Patch.Run(&s)
	if s.Any() {
		t.Fatalf("nil patch should default to discard, got %v", s.Events)
	}
	s = event.None()
	sc.Init.Run(&s)
	if s.Any() {
		t.Fatalf("default init should discard the seed, got %v", s.Events)
	}
	s = event.None()
	sc.Exit.Run(&s)
	if s.Any() {
		t.Fatalf("default exit should discard the seed, got %v", s.Events)
	}
}

func TestSubSceneBounds(t *testing.T) {
	sc := New("parent", graph.Pass()).WithSubScenes(
		New("a", graph.Pass()),
		New("b", graph.Pass()),
	)
	if _, ok := sc.SubScene(-1); ok {
		t.Fatalf("negative index should be out of range")
	}
	if _, ok := sc.SubScene(2); ok {
		t.Fatalf("index past the end should be out of range")
	}
	sub, ok := sc.SubScene(1)
	if !ok || sub.Name != "b" {
		t.Fatalf("expected sub-scene b, got %v %v", sub.Name, ok)
	}
}
