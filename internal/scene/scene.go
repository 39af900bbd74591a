// Package scene defines the Scene record the runner orchestrates: a named
// graph plus init/exit hooks and an ordered list of (non-nested) sub-scenes.
package scene

import "github.com/wvengen/mididings-go/internal/graph"

// Scene is a named variant of the processing graph. Sub-scenes share the
// same shape but are never nested further than one level deep: a Scene's own
// SubScenes entries must have an empty SubScenes themselves.
type Scene struct {
	Name      string
	Patch     graph.Node
	Init      graph.Node
	Exit      graph.Node
	SubScenes []Scene
}

// New builds a Scene defaulting the patch and every unset hook to Discard.
func New(name string, patch graph.Node) Scene {
	return Scene{Name: name, Patch: orDiscard(patch), Init: graph.Discard(), Exit: graph.Discard()}
}

// WithInit returns a copy of s with Init set.
func (s Scene) WithInit(init graph.Node) Scene {
	s.Init = orDiscard(init)
	return s
}

// WithExit returns a copy of s with Exit set.
func (s Scene) WithExit(exit graph.Node) Scene {
	s.Exit = orDiscard(exit)
	return s
}

// WithSubScenes returns a copy of s with its sub-scene list set.
func (s Scene) WithSubScenes(subs ...Scene) Scene {
	s.SubScenes = subs
	return s
}

func orDiscard(n graph.Node) graph.Node {
	if n == nil {
		return graph.Discard()
	}
	return n
}

// SubScene returns the sub-scene at idx, or the zero Scene and false if idx
// is out of range.
func (s Scene) SubScene(idx int) (Scene, bool) {
	if idx < 0 || idx >= len(s.SubScenes) {
		return Scene{}, false
	}
	return s.SubScenes[idx], true
}
