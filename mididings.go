// Package mididings is a real-time MIDI router and processor modelled on the
// mididings design: events arrive from input transports (ALSA sequencer, OSC
// over UDP/TCP, Ctrl-C), pass through a user-declared graph of filters,
// modifiers and generators, and leave through output transports. Named scenes
// multiplex several such graphs, with init/exit hooks sequenced around every
// transition.
//
// This file re-exports the graph constructors and event types the public API
// is built from; the engine itself lives in the internal packages.
package mididings

import (
	"github.com/wvengen/mididings-go/internal/event"
	"github.com/wvengen/mididings-go/internal/graph"
	"github.com/wvengen/mididings-go/internal/scene"
)

// Node is one element of the processing graph.
type Node = graph.Node

// Scene is a named variant of the processing graph with init/exit hooks and
// an ordered list of sub-scenes.
type Scene = scene.Scene

// Event is the tagged variant flowing through the graph.
type Event = event.Event

// Kind tags which variant an Event carries.
type Kind = event.Kind

const (
	KindNone           = event.KindNone
	KindNoteOn         = event.KindNoteOn
	KindNoteOff        = event.KindNoteOff
	KindCtrl           = event.KindCtrl
	KindSysEx          = event.KindSysEx
	KindSceneSwitch    = event.KindSceneSwitch
	KindSubSceneSwitch = event.KindSubSceneSwitch
	KindQuit           = event.KindQuit
	KindOsc            = event.KindOsc
)

// OscArg is one typed value in an OSC message's argument list.
type OscArg = event.OscArg

// OscArgKind tags the type of a single OSC argument.
type OscArgKind = event.OscArgKind

const (
	OscInt    = event.OscInt
	OscFloat  = event.OscFloat
	OscString = event.OscString
	OscBool   = event.OscBool
	OscBlob   = event.OscBlob
)

// NewScene builds a Scene whose unset hooks default to Discard.
func NewScene(name string, patch Node) Scene { return scene.New(name, patch) }

// Composites and wrappers.

func Chain(children ...Node) Node { return graph.Chain(children...) }
func Fork(children ...Node) Node { return graph.Fork(children...) }
func Not(inner Node) Node { return graph.Not(inner) }
func Init(inner Node) Node { return graph.Init(inner) }
func Exit(inner Node) Node { return graph.Exit(inner) }
func Pass() Node { return graph.Pass() }
func Discard() Node { return graph.Discard() }

// Filters.

func PortFilter(port int) Node { return graph.PortFilter(port) }
func PortsFilter(ports []int) Node { return graph.PortsFilter(ports) }
func ChannelFilter(channel uint8) Node { return graph.ChannelFilter(channel) }
func ChannelsFilter(channels []uint8) Node { return graph.ChannelsFilter(channels) }
func KeyFilter(note uint8) Node { return graph.KeyFilter(note) }
func KeysFilter(notes []uint8) Node { return graph.KeysFilter(notes) }
func KeyRangeFilter(lo, hi uint8) Node { return graph.KeyRangeFilter(lo, hi) }
func CtrlFilter(ctrl uint32) Node { return graph.CtrlFilter(ctrl) }
func CtrlsFilter(ctrls []uint32) Node { return graph.CtrlsFilter(ctrls) }
func CtrlValueFilter(value int32) Node { return graph.CtrlValueFilter(value) }
func CtrlValuesFilter(values []int32) Node { return graph.CtrlValuesFilter(values) }
func CtrlValueRangeFilter(lo, hi int32) Node { return graph.CtrlValueRangeFilter(lo, hi) }
func TypeFilter(k Kind) Node { return graph.TypeFilter(k) }
func MidiFilter() Node { return graph.MidiFilter() }
func NoteFilter() Node { return graph.NoteFilter() }
func OscAddrFilter(addr string) Node { return graph.OscAddrFilter(addr) }
func OscStripPrefix(prefix string) Node { return graph.OscStripPrefix(prefix) }

// Modifiers.

func Port(port int) Node { return graph.PortModifier(port) }
func Channel(channel uint8) Node { return graph.ChannelModifier(channel) }
func Transpose(semitones int) Node { return graph.TransposeModifier(semitones) }
func TransposeOctave(octaves int) Node { return graph.TransposeOctaveModifier(octaves) }
func Key(note uint8) Node { return graph.KeyModifier(note) }
func Velocity(delta int) Node { return graph.VelocityModifier(delta) }
func VelocityMultiply(factor float64) Node { return graph.VelocityMultiplyModifier(factor) }
func VelocityFixed(velocity uint8) Node { return graph.VelocityFixedModifier(velocity) }
func CtrlMap(from, to uint32) Node { return graph.CtrlMapModifier(from, to) }
func OscAddPrefix(prefix string) Node { return graph.OscAddPrefixModifier(prefix) }

// Generators.

func NoteOn(note, velocity uint8) Node { return graph.NoteOnGenerator(note, velocity) }
func NoteOff(note uint8) Node { return graph.NoteOffGenerator(note) }
func Ctrl(ctrl uint32, value int32) Node { return graph.CtrlGenerator(ctrl, value) }
func SysEx(data []byte) Node { return graph.SysExGenerator(data) }
func Osc(addr string, args ...OscArg) Node { return graph.OscGenerator(addr, args) }
func SceneSwitch(n int) Node { return graph.SceneSwitchGenerator(n) }
func SceneSwitchOffset(delta int) Node { return graph.SceneSwitchOffsetGenerator(delta) }
func SubSceneSwitch(n int) Node { return graph.SubSceneSwitchGenerator(n) }
func SubSceneSwitchOffset(delta int) Node { return graph.SubSceneSwitchOffsetGenerator(delta) }
func Quit() Node { return graph.QuitGenerator() }
func Panic() Node { return graph.PanicGenerator() }
func Print() Node { return graph.PrintGenerator() }

// ProcessOsc substitutes each Osc event whose arguments match pattern with
// the output of fn's returned graph, run against a singleton None placeholder
// that takes the consumed event's place.
func ProcessOsc(pattern []OscArgKind, fn func(args []OscArg) Node) Node {
	return graph.ProcessOsc(pattern, fn)
}

// OSC argument constructors, for Osc generators and tests.

func IntArg(v int32) OscArg { return event.IntArg(v) }
func FloatArg(v float32) OscArg { return event.FloatArg(v) }
func StringArg(v string) OscArg { return event.StringArg(v) }
func BoolArg(v bool) OscArg { return event.BoolArg(v) }
func BlobArg(v []byte) OscArg { return event.BlobArg(v) }
