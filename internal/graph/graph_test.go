package graph

import (
	"testing"

	"github.com/wvengen/mididings-go/internal/event"
)

func sampleStream() event.Stream {
	s := event.Empty()
	s.Append(event.NoteOnEvent(1, 0, 48, 40))
	s.Append(event.NoteOnEvent(1, 0, 72, 80))
	s.Append(event.NoteOffEvent(1, 0, 48))
	s.Append(event.CtrlEvent(1, 3, 7, 100))
	s.Append(event.SysExEvent(2, []byte{0xf0, 0x7e}))
	s.Append(event.OscEvent(3, "/x", []event.OscArg{event.IntArg(1)}))
	s.Append(event.QuitEvent())
	return s
}

// isSubsequence reports whether sub appears within full in order.
func isSubsequence(sub, full []event.Event) bool {
	j := 0
	for _, ev := range full {
		if j < len(sub) && sub[j].Equal(ev) {
			j++
		}
	}
	return j == len(sub)
}

func TestFiltersProduceSubsequences(t *testing.T) {
	filters := map[string]Node{
		"port":          PortFilter(1),
		"channel":       ChannelFilter(0),
		"key":           KeyFilter(48),
		"key range":     KeyRangeFilter(40, 60),
		"ctrl":          CtrlFilter(7),
		"ctrl value":    CtrlValueRangeFilter(0, 64),
		"type note on":  TypeFilter(event.KindNoteOn),
		"midi":          MidiFilter(),
		"note":          NoteFilter(),
		"osc addr":      OscAddrFilter("/x"),
		"channels":      ChannelsFilter([]uint8{0, 1}),
		"keys":          KeysFilter([]uint8{48, 72}),
		"ports":         PortsFilter([]int{1, 2}),
		"ctrl values":   CtrlValuesFilter([]int32{100}),
	}
	for name, f := range filters {
		in := sampleStream()
		out := in.Clone()
		f.Run(&out)
		if !isSubsequence(out.Events, in.Events) {
			t.Errorf("%s: output is not a subsequence of input: %v", name, out.Events)
		}
	}
}

func TestFilterInverseIsComplement(t *testing.T) {
	filters := []Node{
		PortFilter(1),
		ChannelFilter(0),
		KeyFilter(48),
		KeyRangeFilter(40, 60),
		CtrlFilter(7),
		TypeFilter(event.KindNoteOn),
		MidiFilter(),
		NoteFilter(),
		OscAddrFilter("/x"),
	}
	for fi, f := range filters {
		for _, ev := range sampleStream().Events {
			pass := event.FromEvent(ev)
			f.Run(&pass)
			inv := event.FromEvent(ev)
			f.RunInverse(&inv)
			if pass.Len()+inv.Len() != 1 {
				t.Errorf("filter %d on %s: run kept %d, inverse kept %d; want exactly one survivor total",
					fi, ev, pass.Len(), inv.Len())
			}
		}
	}
}

func TestDoubleNegationIsIdentity(t *testing.T) {
	graphs := []Node{
		KeyRangeFilter(40, 60),
		Chain(PortFilter(1), ChannelFilter(0)),
		Fork(KeyFilter(48), CtrlFilter(7)),
		Chain(MidiFilter(), Fork(NoteFilter(), TypeFilter(event.KindCtrl))),
	}
	for gi, g := range graphs {
		plain := sampleStream()
		g.Run(&plain)
		doubled := sampleStream()
		Not(Not(g)).Run(&doubled)
		if plain.Len() != doubled.Len() {
			t.Fatalf("graph %d: Not(Not(g)) kept %d events, g kept %d", gi, doubled.Len(), plain.Len())
		}
		for i := range plain.Events {
			if !plain.Events[i].Equal(doubled.Events[i]) {
				t.Fatalf("graph %d: event %d differs: %s vs %s", gi, i, plain.Events[i], doubled.Events[i])
			}
		}
	}
}

func TestDeMorganChainForkSwap(t *testing.T) {
	a := KeyRangeFilter(40, 60)
	b := ChannelFilter(0)

	for _, ev := range sampleStream().Events {
		viaInverse := event.FromEvent(ev)
		Chain(a, b).RunInverse(&viaInverse)

		viaFork := event.FromEvent(ev)
		Fork(Not(a), Not(b)).Run(&viaFork)

		if viaInverse.Len() != viaFork.Len() {
			t.Fatalf("%s: Chain inverse kept %d, Fork of Nots kept %d", ev, viaInverse.Len(), viaFork.Len())
		}

		// And symmetrically for Fork.
		viaInverse = event.FromEvent(ev)
		Fork(a, b).RunInverse(&viaInverse)
		viaChain := event.FromEvent(ev)
		Chain(Not(a), Not(b)).Run(&viaChain)
		if viaInverse.Len() != viaChain.Len() {
			t.Fatalf("%s: Fork inverse kept %d, Chain of Nots kept %d", ev, viaInverse.Len(), viaChain.Len())
		}
	}
}

func TestChainAppliesInSequence(t *testing.T) {
	s := event.FromEvent(event.NoteOnEvent(0, 0, 50, 64))
	Chain(TransposeModifier(2), TransposeModifier(3)).Run(&s)
	if s.Len() != 1 || s.Events[0].Note != 55 {
		t.Fatalf("expected note 55, got %v", s.Events)
	}
}

func TestForkConcatenatesInDeclarationOrder(t *testing.T) {
	s := event.FromEvent(event.NoteOnEvent(0, 0, 50, 64))
	Fork(
		Chain(ChannelModifier(2)),
		Chain(ChannelModifier(5)),
	).Run(&s)
	if s.Len() != 2 {
		t.Fatalf("expected 2 events, got %d", s.Len())
	}
	if s.Events[0].Channel != 2 || s.Events[1].Channel != 5 {
		t.Fatalf("fork output out of declaration order: %v", s.Events)
	}
}

func TestForkDedupsIdenticalBranches(t *testing.T) {
	s := event.FromEvent(event.NoteOnEvent(0, 0, 50, 64))
	Fork(Pass(), Pass()).Run(&s)
	if s.Len() != 1 {
		t.Fatalf("expected identical branch outputs to dedup, got %d events", s.Len())
	}
}

// Key split: notes below 60 to channel 1, the rest to channel 2.
func TestKeySplitScenario(t *testing.T) {
	split := Fork(
		Chain(KeyRangeFilter(0, 59), ChannelModifier(1)),
		Chain(KeyRangeFilter(60, 127), ChannelModifier(2)),
	)

	cases := []struct {
		in          event.Event
		wantChannel uint8
	}{
		{event.NoteOnEvent(0, 0, 48, 40), 1},
		{event.NoteOnEvent(0, 0, 72, 40), 2},
	}
	for _, c := range cases {
		s := event.FromEvent(c.in)
		split.Run(&s)
		if s.Len() != 1 {
			t.Fatalf("note %d: expected 1 event, got %d", c.in.Note, s.Len())
		}
		got := s.Events[0]
		if got.Channel != c.wantChannel || got.Note != c.in.Note || got.Velocity != c.in.Velocity {
			t.Fatalf("note %d: got %s", c.in.Note, got)
		}
	}
}

func TestPanicEmitsAllNotesOffOnAllChannels(t *testing.T) {
	s := event.Empty()
	PanicGenerator().Run(&s)
	if s.Len() != 32 {
		t.Fatalf("expected 32 events, got %d", s.Len())
	}
	type key struct {
		ch   uint8
		ctrl uint32
	}
	seen := map[key]bool{}
	for _, ev := range s.Events {
		if ev.Kind != event.KindCtrl || ev.Value != 0 || ev.Port != 0 {
			t.Fatalf("unexpected panic event %s", ev)
		}
		seen[key{ev.Channel, ev.Ctrl}] = true
	}
	for ch := uint8(0); ch < 16; ch++ {
		if !seen[key{ch, 123}] {
			t.Fatalf("missing all-notes-off on channel %d", ch)
		}
		if !seen[key{ch, 64}] {
			t.Fatalf("missing sustain-off on channel %d", ch)
		}
	}
}

func TestControlGeneratorsNeedANonEmptyStream(t *testing.T) {
	empty := event.Empty()
	SceneSwitchGenerator(2).Run(&empty)
	if empty.Any() {
		t.Fatalf("scene switch fired on an empty stream")
	}

	// A filter that drops everything also suppresses the switch.
	s := event.FromEvent(event.NoteOnEvent(0, 0, 70, 64))
	Chain(KeyFilter(62), SceneSwitchGenerator(2)).Run(&s)
	if s.Any() {
		t.Fatalf("scene switch fired after the stream was emptied: %v", s.Events)
	}

	// The singleton None seed counts as non-empty, so init hooks still fire.
	seeded := event.None()
	SceneSwitchGenerator(2).Run(&seeded)
	if seeded.Len() != 2 {
		t.Fatalf("scene switch did not fire on the seeded stream: %v", seeded.Events)
	}
}

func TestModifierSaturation(t *testing.T) {
	cases := []struct {
		name string
		node Node
		in   event.Event
		want uint8
		get  func(event.Event) uint8
	}{
		{"transpose clamps high", TransposeModifier(20), event.NoteOnEvent(0, 0, 120, 64), 127, func(e event.Event) uint8 { return e.Note }},
		{"transpose clamps low", TransposeModifier(-20), event.NoteOnEvent(0, 0, 10, 64), 0, func(e event.Event) uint8 { return e.Note }},
		{"octave up", TransposeOctaveModifier(1), event.NoteOnEvent(0, 0, 60, 64), 72, func(e event.Event) uint8 { return e.Note }},
		{"velocity add clamps", VelocityModifier(100), event.NoteOnEvent(0, 0, 60, 64), 127, func(e event.Event) uint8 { return e.Velocity }},
		{"velocity multiply truncates", VelocityMultiplyModifier(0.5), event.NoteOnEvent(0, 0, 60, 65), 32, func(e event.Event) uint8 { return e.Velocity }},
		{"velocity fixed", VelocityFixedModifier(99), event.NoteOnEvent(0, 0, 60, 64), 99, func(e event.Event) uint8 { return e.Velocity }},
		{"key set", KeyModifier(64), event.NoteOnEvent(0, 0, 60, 64), 64, func(e event.Event) uint8 { return e.Note }},
	}
	for _, c := range cases {
		s := event.FromEvent(c.in)
		c.node.Run(&s)
		if got := c.get(s.Events[0]); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestCtrlMapRewritesOnlyMatchingController(t *testing.T) {
	s := event.Empty()
	s.Append(event.CtrlEvent(0, 0, 1, 50))
	s.Append(event.CtrlEvent(0, 0, 7, 60))
	CtrlMapModifier(1, 11).Run(&s)
	if s.Events[0].Ctrl != 11 || s.Events[1].Ctrl != 7 {
		t.Fatalf("ctrl map rewrote wrong controllers: %v", s.Events)
	}
}

func TestFiltersPassUnrelatedVariants(t *testing.T) {
	// A channel filter has no opinion on Osc or Quit events.
	cases := []event.Event{
		event.OscEvent(0, "/x", nil),
		event.QuitEvent(),
		event.SysExEvent(0, []byte{1}),
	}
	f := ChannelFilter(9)
	for _, ev := range cases {
		s := event.FromEvent(ev)
		f.Run(&s)
		if s.Len() != 1 {
			t.Errorf("channel filter dropped unrelated event %s", ev)
		}
	}
	// But it does drop a non-matching note.
	s := event.FromEvent(event.NoteOnEvent(0, 0, 60, 64))
	f.Run(&s)
	if s.Any() {
		t.Fatalf("channel filter kept non-matching note")
	}
}

func TestInitExitWrappersAreOpaqueDuringRun(t *testing.T) {
	g := Chain(Init(CtrlGenerator(20, 1)), Exit(CtrlGenerator(21, 1)))

	s := event.FromEvent(event.NoteOnEvent(0, 0, 60, 64))
	g.Run(&s)
	if s.Len() != 1 {
		t.Fatalf("scoped nodes changed the stream during run: %v", s.Events)
	}

	initStream := event.None()
	g.RunInit(&initStream)
	if !containsCtrl(initStream, 20) {
		t.Fatalf("init hook did not fire: %v", initStream.Events)
	}
	if containsCtrl(initStream, 21) {
		t.Fatalf("exit hook fired during init: %v", initStream.Events)
	}

	exitStream := event.None()
	g.RunExit(&exitStream)
	if !containsCtrl(exitStream, 21) {
		t.Fatalf("exit hook did not fire: %v", exitStream.Events)
	}
	if containsCtrl(exitStream, 20) {
		t.Fatalf("init hook fired during exit: %v", exitStream.Events)
	}
}

func containsCtrl(s event.Stream, ctrl uint32) bool {
	for _, ev := range s.Events {
		if ev.Kind == event.KindCtrl && ev.Ctrl == ctrl {
			return true
		}
	}
	return false
}
