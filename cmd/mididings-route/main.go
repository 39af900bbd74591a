package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/wvengen/mididings-go"
)

// portList collects repeatable -in/-out flags of the form "spec" or
// "spec=connect-peer".
type portList [][2]string

func (p *portList) String() string {
	parts := make([]string, len(*p))
	for i, port := range *p {
		parts[i] = port[0]
	}
	return strings.Join(parts, ",")
}

func (p *portList) Set(value string) error {
	spec, peer, _ := strings.Cut(value, "=")
	if strings.TrimSpace(spec) == "" {
		return fmt.Errorf("empty port spec")
	}
	*p = append(*p, [2]string{spec, peer})
	return nil
}

func main() {
	var inPorts, outPorts portList
	var (
		clientName   = flag.String("client-name", "mididings", "name announced to ALSA/OSC peers")
		backendName  = flag.String("backend", "alsa", "MIDI transport: alsa|null")
		initialScene = flag.Int("initial-scene", 0, "scene index at startup (0-based)")
		dataOffset   = flag.Int("data-offset", 1, "bias added to port/channel numbers")
		sceneOffset  = flag.Int("scene-offset", 1, "bias added to scene numbers")
		startDelay   = flag.Float64("start-delay", 0, "seconds to sleep after configuring ports")
		splitNote    = flag.Int("split", 60, "demo key split point")
	)
	flag.Var(&inPorts, "in", "input port, \"spec\" or \"spec=connect-peer\" (repeatable)")
	flag.Var(&outPorts, "out", "output port, same form as -in (repeatable)")
	flag.Parse()

	backend, err := parseBackend(*backendName)
	if err != nil {
		log.Fatal(err)
	}
	if len(inPorts) == 0 {
		inPorts = portList{{"mididings in", ""}}
	}
	if len(outPorts) == 0 {
		outPorts = portList{{"mididings out", ""}}
	}

	router, err := mididings.NewRouter(
		mididings.WithClientName(*clientName),
		mididings.WithMIDIBackend(backend),
		mididings.WithInPorts(inPorts...),
		mididings.WithOutPorts(outPorts...),
		mididings.WithInitialScene(*initialScene),
		mididings.WithDataOffset(*dataOffset),
		mididings.WithSceneOffset(*sceneOffset),
		mididings.WithStartDelay(time.Duration(*startDelay*float64(time.Second))),
	)
	if err != nil {
		log.Fatal(err)
	}

	ch := router.Watch()
	go func() {
		for ev := range ch {
			if ev.SubScene >= 0 {
				fmt.Printf("now in scene %d.%d: %s - %s\n", ev.Scene, ev.SubScene, ev.SceneName, ev.SubSceneName)
			} else {
				fmt.Printf("now in scene %d: %s\n", ev.Scene, ev.SceneName)
			}
		}
	}()

	// Demo setup: a key split routed to channels 1 and 2, with two scenes
	// toggled from the keyboard (C6 pauses routing, C5 resumes it).
	split := uint8(*splitNote)
	patch := mididings.Fork(
		mididings.Chain(mididings.KeyRangeFilter(0, split-1), mididings.Channel(1)),
		mididings.Chain(mididings.KeyRangeFilter(split, 127), mididings.Channel(2)),
	)
	scenes := []mididings.Scene{
		mididings.NewScene("Run", patch),
		mididings.NewScene("Pause", mididings.Discard()),
	}
	control := mididings.Fork(
		mididings.Chain(mididings.NoteFilter(), mididings.KeyFilter(72), mididings.SceneSwitch(2)),
		mididings.Chain(mididings.NoteFilter(), mididings.KeyFilter(60), mididings.SceneSwitch(1)),
		mididings.TypeFilter(mididings.KindQuit),
	)

	if err := router.Run(mididings.RunOptions{
		Scenes:  scenes,
		Control: control,
	}); err != nil {
		log.Fatal(err)
	}
}

func parseBackend(name string) (mididings.MIDIBackend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "alsa":
		return mididings.BackendALSA, nil
	case "null":
		return mididings.BackendNull, nil
	default:
		return "", fmt.Errorf("invalid -backend %q (expected alsa|null)", name)
	}
}
