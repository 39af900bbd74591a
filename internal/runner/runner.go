// Package runner implements the main loop and the scene orchestrator: it
// polls transports, normalises events by the configured offsets, drives the
// patch graphs, sequences init/exit hooks around scene transitions and
// dispatches the resulting events back to the transports.
package runner

import (
	"fmt"
	"log"

	"github.com/wvengen/mididings-go/internal/backend"
	"github.com/wvengen/mididings-go/internal/backend/poller"
	"github.com/wvengen/mididings-go/internal/event"
	"github.com/wvengen/mididings-go/internal/graph"
	"github.com/wvengen/mididings-go/internal/scene"
	"golang.org/x/sync/errgroup"
)

// none marks an absent scene or sub-scene number.
const none = -1

// SceneChange reports a completed scene or sub-scene transition. SubScene is
// -1 and SubSceneName empty when the entered scene has no sub-scenes. The
// numbers are user-biased (scene_offset already applied).
type SceneChange struct {
	Scene        int
	SubScene     int
	SceneName    string
	SubSceneName string
}

// Options carries everything a Runner needs for one run. Graph fields left
// nil default to Pass: the stream carries forward through control, patch,
// scene and sub-scene in sequence, so an unset stage must be transparent.
type Options struct {
	Backends []backend.Backend

	DataOffset  int
	SceneOffset int

	Patch   graph.Node
	Scenes  []scene.Scene
	Control graph.Node
	Pre     graph.Node
	Post    graph.Node

	InitialScene int

	// PollTimeoutMillis bounds the single poll suspension point so that
	// events arriving between polls (e.g. from the signal self-pipe or the
	// sequencer callback) are never starved. Zero means one second.
	PollTimeoutMillis int

	// OnSceneChange, when set, is invoked after every completed transition.
	OnSceneChange func(SceneChange)
}

// Runner owns the main loop state. Only the Runner mutates this state; graph
// nodes are immutable once constructed.
type Runner struct {
	backends    []backend.Backend
	dataOffset  int
	sceneOffset int

	patch   graph.Node
	scenes  []scene.Scene
	control graph.Node
	pre     graph.Node
	post    graph.Node

	initialScene    int
	currentScene    int
	currentSubScene int
	storedSubScenes []int
	running         bool

	pollTimeoutMillis int
	onSceneChange     func(SceneChange)
}

func New(opts Options) *Runner {
	stored := make([]int, len(opts.Scenes))
	for i, sc := range opts.Scenes {
		if len(sc.SubScenes) > 0 {
			stored[i] = 0
		} else {
			stored[i] = none
		}
	}
	timeout := opts.PollTimeoutMillis
	if timeout <= 0 {
		timeout = 1000
	}
	return &Runner{
		backends:          opts.Backends,
		dataOffset:        opts.DataOffset,
		sceneOffset:       opts.SceneOffset,
		patch:             orPass(opts.Patch),
		scenes:            opts.Scenes,
		control:           orPass(opts.Control),
		pre:               orPass(opts.Pre),
		post:              orPass(opts.Post),
		initialScene:      opts.InitialScene,
		currentScene:      none,
		currentSubScene:   none,
		storedSubScenes:   stored,
		pollTimeoutMillis: timeout,
		onSceneChange:     opts.OnSceneChange,
	}
}

func orPass(n graph.Node) graph.Node {
	if n == nil {
		return graph.Pass()
	}
	return n
}

// Run executes the main loop until a Quit event flips running to false or a
// backend fails fatally.
func (r *Runner) Run() error {
	var fds []backend.PollFD
	for _, b := range r.backends {
		fds = append(fds, b.PollFDs()...)
	}

	if len(r.scenes) > 0 {
		if r.initialScene < 0 || r.initialScene >= len(r.scenes) {
			return fmt.Errorf("runner: initial scene %d out of range", r.initialScene)
		}
		r.currentScene = r.initialScene
		r.currentSubScene = r.storedSubScenes[r.currentScene]
		r.printCurrentScene()
	}

	r.running = true

	if err := r.runCurrentSceneInit(); err != nil {
		return err
	}
	if err := r.runCurrentSubSceneInit(); err != nil {
		return err
	}

	for r.running {
		events, err := r.gather()
		if err != nil {
			return err
		}
		for _, ev := range events {
			r.backendEventToUser(&ev)
			if err := r.tick(ev); err != nil {
				return err
			}
			if !r.running {
				break
			}
		}
		if !r.running {
			break
		}
		if err := poller.Wait(fds, r.pollTimeoutMillis); err != nil {
			return fmt.Errorf("runner: poll: %w", err)
		}
	}

	return nil
}

// gather collects one batch per backend. Each Run call is non-blocking and
// backends own their state exclusively, so the calls fan out concurrently;
// the batches are then reassembled in declaration order to preserve the
// per-backend ordering guarantee.
func (r *Runner) gather() ([]event.Event, error) {
	batches := make([][]event.Event, len(r.backends))
	var g errgroup.Group
	for i, b := range r.backends {
		i, b := i, b
		g.Go(func() error {
			evs, err := b.Run()
			batches[i] = evs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("runner: backend input: %w", err)
	}
	var out []event.Event
	for _, batch := range batches {
		out = append(out, batch...)
	}
	return out, nil
}

// tick pushes one ingress event through control, the global patch, the
// current scene's patch and the current sub-scene's patch, in that strict
// order. The control graph runs on its own copy of the ingress event so a
// lossy control graph cannot swallow the event itself; its ordinary output
// merges into the patch stream (making events emitted by control visible to
// the patch within the same tick), while control events (Quit, SceneSwitch,
// SubSceneSwitch) are pulled out after every stage so that a discarding
// scene cannot swallow a switch. Ordinary events are dispatched first, then
// the collected control events are acted on.
func (r *Runner) tick(ev event.Event) error {
	var pending []event.Event

	ctrl := event.FromEvent(ev)
	r.control.Run(&ctrl)
	pending = append(pending, extractControlEvents(&ctrl)...)

	s := event.FromEvent(ev)
	s.Extend(ctrl.Events)
	s.Dedup()

	r.patch.Run(&s)
	pending = append(pending, extractControlEvents(&s)...)
	if sc, ok := r.getScene(r.currentScene); ok {
		sc.Patch.Run(&s)
		pending = append(pending, extractControlEvents(&s)...)
		if sub, ok := sc.SubScene(r.currentSubScene); ok {
			sub.Patch.Run(&s)
			pending = append(pending, extractControlEvents(&s)...)
		}
	}

	for _, out := range s.Events {
		if err := r.dispatch(out); err != nil {
			return err
		}
	}
	return r.actOnControlEvents(pending)
}

// extractControlEvents removes Quit, SceneSwitch and SubSceneSwitch events
// from the stream and returns them in order.
func extractControlEvents(s *event.Stream) []event.Event {
	var out []event.Event
	s.Retain(func(e *event.Event) bool {
		switch e.Kind {
		case event.KindQuit, event.KindSceneSwitch, event.KindSubSceneSwitch:
			out = append(out, e.Clone())
			return false
		default:
			return true
		}
	})
	return out
}

// actOnControlEvents honours the first event of each control kind: the first
// SceneSwitch, the first SubSceneSwitch, then Quit.
func (r *Runner) actOnControlEvents(evs []event.Event) error {
	var sceneSwitch, subSceneSwitch *event.Event
	quit := false
	for i := range evs {
		switch evs[i].Kind {
		case event.KindQuit:
			quit = true
		case event.KindSceneSwitch:
			if sceneSwitch == nil {
				sceneSwitch = &evs[i]
			}
		case event.KindSubSceneSwitch:
			if subSceneSwitch == nil {
				subSceneSwitch = &evs[i]
			}
		}
	}

	if sceneSwitch != nil {
		if err := r.handleSceneSwitch(sceneSwitch.Target); err != nil {
			return err
		}
	}
	if subSceneSwitch != nil {
		if err := r.handleSubSceneSwitch(subSceneSwitch.Target); err != nil {
			return err
		}
	}
	if quit {
		r.running = false
	}
	return nil
}

// handleStream dispatches a hook stream's ordinary events and acts on its
// control events, which may nest further transitions.
func (r *Runner) handleStream(s *event.Stream) error {
	pending := extractControlEvents(s)
	for _, ev := range s.Events {
		if err := r.dispatch(ev); err != nil {
			return err
		}
	}
	return r.actOnControlEvents(pending)
}

// dispatch denormalises a copy of ev and offers it to every backend in
// declaration order, stopping at the first that emits bytes.
func (r *Runner) dispatch(ev event.Event) error {
	out := ev.Clone()
	r.userEventToBackend(&out)
	for _, b := range r.backends {
		n, err := b.OutputEvent(out)
		if err != nil {
			return fmt.Errorf("runner: output: %w", err)
		}
		if n > 0 {
			return nil
		}
	}
	return nil
}

func (r *Runner) handleSceneSwitch(target event.SceneTarget) error {
	if target.IsOffset {
		if r.currentScene == none {
			return nil
		}
		return r.switchScene(saturateAdd(r.currentScene, target.Offset))
	}
	return r.switchScene(saturateSub(target.Fixed, r.sceneOffset))
}

func (r *Runner) handleSubSceneSwitch(target event.SceneTarget) error {
	if target.IsOffset {
		if r.currentSubScene == none {
			return nil
		}
		return r.switchSubScene(saturateAdd(r.currentSubScene, target.Offset))
	}
	return r.switchSubScene(saturateSub(target.Fixed, r.sceneOffset))
}

// switchScene performs a full scene transition: sub-scene exit, scene exit,
// state update, scene init, sub-scene init. Switching to the scene that is
// already current is a no-op; an out-of-range target skips the transition.
func (r *Runner) switchScene(target int) error {
	if target == r.currentScene {
		return nil
	}
	if target < 0 || target >= len(r.scenes) {
		return nil
	}

	if err := r.runCurrentSubSceneExit(); err != nil {
		return err
	}
	if err := r.runCurrentSceneExit(); err != nil {
		return err
	}

	r.currentScene = target
	r.currentSubScene = r.storedSubScenes[target]
	r.printCurrentScene()

	if err := r.runCurrentSceneInit(); err != nil {
		return err
	}
	return r.runCurrentSubSceneInit()
}

// switchSubScene transitions within the current scene only: sub-scene exit,
// state update with write-through to the stored sub-scene, sub-scene init.
func (r *Runner) switchSubScene(target int) error {
	sc, ok := r.getScene(r.currentScene)
	if !ok {
		return nil
	}
	if target == r.currentSubScene {
		return nil
	}
	if target < 0 || target >= len(sc.SubScenes) {
		return nil
	}

	if err := r.runCurrentSubSceneExit(); err != nil {
		return err
	}

	r.currentSubScene = target
	r.storedSubScenes[r.currentScene] = target
	r.printCurrentScene()

	return r.runCurrentSubSceneInit()
}

func (r *Runner) runCurrentSceneInit() error {
	if err := r.runPatch(r.pre, graph.Node.Run); err != nil {
		return err
	}
	if err := r.runPatch(r.patch, graph.Node.RunInit); err != nil {
		return err
	}
	if sc, ok := r.getScene(r.currentScene); ok {
		if err := r.runPatch(sc.Init, graph.Node.Run); err != nil {
			return err
		}
		if err := r.runPatch(sc.Patch, graph.Node.RunInit); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runCurrentSubSceneInit() error {
	if sc, ok := r.getScene(r.currentScene); ok {
		if sub, ok := sc.SubScene(r.currentSubScene); ok {
			if err := r.runPatch(sub.Init, graph.Node.Run); err != nil {
				return err
			}
			if err := r.runPatch(sub.Patch, graph.Node.RunInit); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) runCurrentSceneExit() error {
	if sc, ok := r.getScene(r.currentScene); ok {
		if err := r.runPatch(sc.Patch, graph.Node.RunExit); err != nil {
			return err
		}
		if err := r.runPatch(sc.Exit, graph.Node.Run); err != nil {
			return err
		}
	}
	if err := r.runPatch(r.patch, graph.Node.RunExit); err != nil {
		return err
	}
	return r.runPatch(r.post, graph.Node.Run)
}

func (r *Runner) runCurrentSubSceneExit() error {
	if sc, ok := r.getScene(r.currentScene); ok {
		if sub, ok := sc.SubScene(r.currentSubScene); ok {
			if err := r.runPatch(sub.Patch, graph.Node.RunExit); err != nil {
				return err
			}
			if err := r.runPatch(sub.Exit, graph.Node.Run); err != nil {
				return err
			}
		}
	}
	return nil
}

// runPatch seeds a singleton-None stream (so generators inside Init/Exit
// wrappers fire), invokes one of Run/RunInit/RunExit on it and hands the
// result to handleStream, where further control events may nest transitions.
func (r *Runner) runPatch(n graph.Node, method func(graph.Node, *event.Stream)) error {
	s := event.None()
	method(n, &s)
	return r.handleStream(&s)
}

func (r *Runner) getScene(num int) (scene.Scene, bool) {
	if num == none || num >= len(r.scenes) {
		return scene.Scene{}, false
	}
	return r.scenes[num], true
}

func (r *Runner) printCurrentScene() {
	sc, ok := r.getScene(r.currentScene)
	if !ok {
		return
	}
	change := SceneChange{
		Scene:     r.currentScene + r.sceneOffset,
		SubScene:  none,
		SceneName: sc.Name,
	}
	if sub, ok := sc.SubScene(r.currentSubScene); ok {
		change.SubScene = r.currentSubScene + r.sceneOffset
		change.SubSceneName = sub.Name
		log.Printf("scene %d.%d: %s - %s", change.Scene, change.SubScene, sc.Name, sub.Name)
	} else {
		log.Printf("scene %d: %s", change.Scene, sc.Name)
	}
	if r.onSceneChange != nil {
		r.onSceneChange(change)
	}
}

// backendEventToUser applies data_offset on ingress so graph nodes see
// user-biased port and channel numbers.
func (r *Runner) backendEventToUser(ev *event.Event) {
	switch ev.Kind {
	case event.KindNoteOn, event.KindNoteOff, event.KindCtrl:
		ev.Port = saturateAdd(ev.Port, r.dataOffset)
		ev.Channel = saturateAddU8(ev.Channel, r.dataOffset)
	case event.KindSysEx, event.KindOsc:
		ev.Port = saturateAdd(ev.Port, r.dataOffset)
	}
}

// userEventToBackend removes data_offset again on egress.
func (r *Runner) userEventToBackend(ev *event.Event) {
	switch ev.Kind {
	case event.KindNoteOn, event.KindNoteOff, event.KindCtrl:
		ev.Port = saturateSub(ev.Port, r.dataOffset)
		ev.Channel = saturateSubU8(ev.Channel, r.dataOffset)
	case event.KindSysEx, event.KindOsc:
		ev.Port = saturateSub(ev.Port, r.dataOffset)
	}
}

func saturateAdd(v, delta int) int {
	sum := v + delta
	if sum < 0 {
		return 0
	}
	return sum
}

func saturateSub(v, delta int) int {
	diff := v - delta
	if diff < 0 {
		return 0
	}
	return diff
}

func saturateAddU8(v uint8, delta int) uint8 {
	sum := int(v) + delta
	if sum < 0 {
		return 0
	}
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}

func saturateSubU8(v uint8, delta int) uint8 {
	return saturateAddU8(v, -delta)
}
