package oscwire

import (
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/wvengen/mididings-go/internal/event"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	args := []event.OscArg{
		event.IntArg(42),
		event.FloatArg(0.5),
		event.StringArg("hello"),
		event.BoolArg(true),
		event.BlobArg([]byte{1, 2, 3}),
	}
	data, err := Encode("/test/addr", args)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	msgs, err := Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	got := msgs[0]
	if got.Addr != "/test/addr" {
		t.Fatalf("address mismatch: %s", got.Addr)
	}
	if len(got.Args) != len(args) {
		t.Fatalf("expected %d args, got %d", len(args), len(got.Args))
	}
	want := event.OscEvent(0, "/test/addr", args)
	if !event.OscEvent(0, got.Addr, got.Args).Equal(want) {
		t.Fatalf("args mismatch: %v", got.Args)
	}
}

func TestDecodeFlattensBundles(t *testing.T) {
	inner := osc.NewMessage("/a")
	inner.Append(int32(1))
	other := osc.NewMessage("/b")
	other.Append("x")

	bundle := osc.NewBundle(time.Time{})
	if err := bundle.Append(inner); err != nil {
		t.Fatalf("bundle append: %v", err)
	}
	nested := osc.NewBundle(time.Time{})
	if err := nested.Append(other); err != nil {
		t.Fatalf("nested append: %v", err)
	}
	if err := bundle.Append(nested); err != nil {
		t.Fatalf("bundle append nested: %v", err)
	}

	data, err := bundle.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}
	msgs, err := Decode(data)
	if err != nil {
		t.Fatalf("decode bundle: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 flattened messages, got %d", len(msgs))
	}
	if msgs[0].Addr != "/a" || msgs[1].Addr != "/b" {
		t.Fatalf("unexpected addresses: %s, %s", msgs[0].Addr, msgs[1].Addr)
	}
}

func TestDecodeMalformedReturnsError(t *testing.T) {
	if _, err := Decode([]byte("#bundle")); err == nil {
		t.Fatalf("expected error for truncated bundle")
	}
	if _, err := Decode(nil); err == nil {
		t.Fatalf("expected error for empty packet")
	}
}

func TestFrameRoundTrip(t *testing.T) {
	packet := []byte{1, 2, 3, 4, 5}
	framed := Frame(packet)
	if len(framed) != 9 {
		t.Fatalf("expected 4-byte prefix plus payload, got %d bytes", len(framed))
	}

	var r FrameReader
	r.Feed(framed)
	got, ok := r.Next()
	if !ok {
		t.Fatalf("expected a complete frame")
	}
	if string(got) != string(packet) {
		t.Fatalf("frame payload mismatch: %v", got)
	}
	if _, ok := r.Next(); ok {
		t.Fatalf("expected no further frames")
	}
}

func TestFrameReaderHandlesPartialAndCoalescedReads(t *testing.T) {
	a := Frame([]byte("first"))
	b := Frame([]byte("second"))

	var r FrameReader
	// Feed the first frame in two pieces, then the second in the same read
	// as the first's tail.
	r.Feed(a[:3])
	if _, ok := r.Next(); ok {
		t.Fatalf("incomplete frame should not be returned")
	}
	r.Feed(a[3:])
	r.Feed(b)

	got1, ok := r.Next()
	if !ok || string(got1) != "first" {
		t.Fatalf("first frame: %q, %v", got1, ok)
	}
	got2, ok := r.Next()
	if !ok || string(got2) != "second" {
		t.Fatalf("second frame: %q, %v", got2, ok)
	}
}
