package mididings

import (
	"sync"
	"time"

	intbackend "github.com/wvengen/mididings-go/internal/backend"
	intalsa "github.com/wvengen/mididings-go/internal/backend/alsa"
	intctrlc "github.com/wvengen/mididings-go/internal/backend/ctrlc"
	intosc "github.com/wvengen/mididings-go/internal/backend/osc"
	intrunner "github.com/wvengen/mididings-go/internal/runner"
)

// RouterEvent carries lifecycle events from Watch().
type RouterEvent struct {
	Kind         int // EventSceneChanged
	Scene        int
	SubScene     int // -1 when the scene has no sub-scenes
	SceneName    string
	SubSceneName string
}

const (
	EventSceneChanged int = iota
)

// MIDIBackend selects the transport used for MIDI port specs.
type MIDIBackend string

const (
	BackendALSA MIDIBackend = "alsa"
	BackendNull MIDIBackend = "null"
)

type RouterOption func(*routerConfig)

type routerConfig struct {
	clientName   string
	inPorts      [][2]string
	outPorts     [][2]string
	dataOffset   int
	sceneOffset  int
	initialScene int
	startDelay   time.Duration
	backend      MIDIBackend
	pollTimeout  time.Duration
}

func defaultRouterConfig() routerConfig {
	return routerConfig{
		clientName:  "mididings",
		dataOffset:  1,
		sceneOffset: 1,
		backend:     BackendALSA,
		pollTimeout: time.Second,
	}
}

func WithClientName(name string) RouterOption {
	return func(cfg *routerConfig) {
		cfg.clientName = name
	}
}

// WithInPorts declares the input ports, in order; each entry is a
// [spec, connect-peer] pair and its index becomes the port number. The peer
// may be empty to skip connecting.
func WithInPorts(ports ...[2]string) RouterOption {
	return func(cfg *routerConfig) {
		cfg.inPorts = ports
	}
}

// WithOutPorts declares the output ports, same shape as WithInPorts.
func WithOutPorts(ports ...[2]string) RouterOption {
	return func(cfg *routerConfig) {
		cfg.outPorts = ports
	}
}

// WithDataOffset sets the constant added to port and channel numbers on
// ingress and subtracted on egress, so users see 1-based indices. Default 1.
func WithDataOffset(offset int) RouterOption {
	return func(cfg *routerConfig) {
		cfg.dataOffset = offset
	}
}

// WithSceneOffset is the analogous bias for scene and sub-scene numbers.
// Default 1.
func WithSceneOffset(offset int) RouterOption {
	return func(cfg *routerConfig) {
		cfg.sceneOffset = offset
	}
}

// WithInitialScene sets the scene active at startup, in internal 0-based
// space.
func WithInitialScene(scene int) RouterOption {
	return func(cfg *routerConfig) {
		cfg.initialScene = scene
	}
}

// WithStartDelay sleeps after configuring ports so peers can discover them.
func WithStartDelay(d time.Duration) RouterOption {
	return func(cfg *routerConfig) {
		cfg.startDelay = d
	}
}

// WithMIDIBackend selects ALSA or Null for the MIDI transport.
func WithMIDIBackend(b MIDIBackend) RouterOption {
	return func(cfg *routerConfig) {
		cfg.backend = b
	}
}

// RunOptions carries the graphs one Run executes. Nil fields default to
// Pass, so an unset stage is transparent to the stream.
type RunOptions struct {
	Patch   Node
	Scenes  []Scene
	Control Node
	Pre     Node
	Post    Node
}

// Router owns the configured transports and drives the runner. Configure it
// once with NewRouter, then call Run.
type Router struct {
	cfg      routerConfig
	backends []intbackend.Backend
	ctrlc    *intctrlc.Backend

	eventCh   chan RouterEvent
	eventChMu sync.Mutex
}

// NewRouter builds the transports, claims and connects the configured ports
// and applies the start delay. Configuration mistakes return a *ConfigError,
// transport failures a *TransportError.
func NewRouter(opts ...RouterOption) (*Router, error) {
	cfg := defaultRouterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.dataOffset < 0 || cfg.sceneOffset < 0 {
		return nil, &ConfigError{Msg: "offsets must be non-negative"}
	}

	cc, err := intctrlc.New()
	if err != nil {
		return nil, &TransportError{Op: "ctrl-c self-pipe", Err: err}
	}

	backends := []intbackend.Backend{cc, intosc.New()}
	switch cfg.backend {
	case BackendALSA:
		seq, err := intalsa.New()
		if err != nil {
			cc.Close()
			return nil, &TransportError{Op: "alsa sequencer", Err: err}
		}
		backends = append(backends, seq, intbackend.NewNull(false))
	case BackendNull:
		backends = append(backends, intbackend.NewNull(true))
	default:
		cc.Close()
		return nil, &ConfigError{Msg: "unknown backend " + string(cfg.backend)}
	}

	r := &Router{cfg: cfg, backends: backends, ctrlc: cc}

	for _, b := range backends {
		if err := b.SetClientName(cfg.clientName); err != nil {
			cc.Close()
			return nil, &TransportError{Op: "set client name", Err: err}
		}
	}

	if err := r.setupPorts(); err != nil {
		cc.Close()
		return nil, err
	}

	if cfg.startDelay > 0 {
		time.Sleep(cfg.startDelay)
	}

	return r, nil
}

// setupPorts offers each configured port spec to every backend in order,
// stopping at the first claim. A spec nobody claims is a configuration
// error; an unclaimed connect peer is not (some transports connect lazily
// or automatically).
func (r *Router) setupPorts() error {
	for i, port := range r.cfg.inPorts {
		spec, peer := port[0], port[1]
		handled := false
		for _, b := range r.backends {
			h, err := b.CreateInPort(i, spec)
			if err != nil {
				return &TransportError{Op: "create in port " + spec, Err: err}
			}
			if h {
				handled = true
				break
			}
		}
		if !handled {
			return &ConfigError{Msg: "no backend claims in port spec " + spec}
		}
		if peer != "" {
			for _, b := range r.backends {
				h, err := b.ConnectInPort(i, peer)
				if err != nil {
					return &TransportError{Op: "connect in port " + peer, Err: err}
				}
				if h {
					break
				}
			}
		}
	}

	for i, port := range r.cfg.outPorts {
		spec, peer := port[0], port[1]
		handled := false
		for _, b := range r.backends {
			h, err := b.CreateOutPort(i, spec)
			if err != nil {
				return &TransportError{Op: "create out port " + spec, Err: err}
			}
			if h {
				handled = true
				break
			}
		}
		if !handled {
			return &ConfigError{Msg: "no backend claims out port spec " + spec}
		}
		if peer != "" {
			for _, b := range r.backends {
				h, err := b.ConnectOutPort(i, peer)
				if err != nil {
					return &TransportError{Op: "connect out port " + peer, Err: err}
				}
				if h {
					break
				}
			}
		}
	}

	return nil
}

// Run executes the main loop until a Quit event (for example from Ctrl-C)
// stops it, or a backend fails fatally.
func (r *Router) Run(args RunOptions) error {
	rn := intrunner.New(intrunner.Options{
		Backends:          r.backends,
		DataOffset:        r.cfg.dataOffset,
		SceneOffset:       r.cfg.sceneOffset,
		Patch:             args.Patch,
		Scenes:            args.Scenes,
		Control:           args.Control,
		Pre:               args.Pre,
		Post:              args.Post,
		InitialScene:      r.cfg.initialScene,
		PollTimeoutMillis: int(r.cfg.pollTimeout / time.Millisecond),
		OnSceneChange:     r.onSceneChange,
	})
	defer r.ctrlc.Close()
	return rn.Run()
}

func (r *Router) onSceneChange(change intrunner.SceneChange) {
	r.sendEvent(RouterEvent{
		Kind:         EventSceneChanged,
		Scene:        change.Scene,
		SubScene:     change.SubScene,
		SceneName:    change.SceneName,
		SubSceneName: change.SubSceneName,
	})
}

func (r *Router) sendEvent(ev RouterEvent) {
	r.eventChMu.Lock()
	ch := r.eventCh
	r.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

// Watch returns a channel that receives a RouterEvent on every scene or
// sub-scene transition. The channel is buffered (cap 8); receive in a
// goroutine to avoid blocking the runner. Only the most recent Watch()
// channel receives events; call Watch before Run.
func (r *Router) Watch() <-chan RouterEvent {
	ch := make(chan RouterEvent, 8)
	r.eventChMu.Lock()
	r.eventCh = ch
	r.eventChMu.Unlock()
	return ch
}
