// Package oscwire adapts github.com/hypebeast/go-osc's packet codec to the
// router's own event.OscArg argument algebra, adding the 4-byte length-prefix
// framing the TCP wire format needs (go-osc only covers packet bytes).
package oscwire

import (
	"errors"
	"fmt"

	"github.com/hypebeast/go-osc/osc"
	"github.com/wvengen/mididings-go/internal/event"
)

// ErrMalformed is returned (and, by backends, logged and dropped per the
// transport error policy) when bytes cannot be decoded as an OSC message or
// bundle.
var ErrMalformed = errors.New("oscwire: malformed packet")

// Message is one decoded OSC message: an address plus its typed arguments.
type Message struct {
	Addr string
	Args []event.OscArg
}

// Encode renders addr/args as a single OSC message packet.
func Encode(addr string, args []event.OscArg) ([]byte, error) {
	msg := osc.NewMessage(addr)
	for _, a := range args {
		switch a.Kind {
		case event.OscInt:
			msg.Append(a.I)
		case event.OscFloat:
			msg.Append(a.F)
		case event.OscString:
			msg.Append(a.S)
		case event.OscBool:
			msg.Append(a.Bl)
		case event.OscBlob:
			msg.Append(a.Blob)
		default:
			return nil, fmt.Errorf("oscwire: unknown arg kind %d", a.Kind)
		}
	}
	data, err := msg.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("oscwire: encode %s: %w", addr, err)
	}
	return data, nil
}

// Decode parses a single datagram's worth of bytes into zero or more
// messages, flattening bundles recursively (the core does no future
// scheduling, so bundle timetags are ignored). Malformed input yields
// ErrMalformed so callers can drop it.
func Decode(data []byte) ([]Message, error) {
	pkt, err := osc.ParsePacket(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return flatten(pkt)
}

func flatten(pkt osc.Packet) ([]Message, error) {
	switch p := pkt.(type) {
	case *osc.Message:
		msg, err := fromOscMessage(p)
		if err != nil {
			return nil, err
		}
		return []Message{msg}, nil
	case *osc.Bundle:
		var out []Message
		for _, m := range p.Messages {
			msg, err := fromOscMessage(m)
			if err != nil {
				return nil, err
			}
			out = append(out, msg)
		}
		for _, b := range p.Bundles {
			msgs, err := flatten(b)
			if err != nil {
				return nil, err
			}
			out = append(out, msgs...)
		}
		return out, nil
	default:
		return nil, ErrMalformed
	}
}

func fromOscMessage(m *osc.Message) (Message, error) {
	args := make([]event.OscArg, 0, len(m.Arguments))
	for _, raw := range m.Arguments {
		switch v := raw.(type) {
		case int32:
			args = append(args, event.IntArg(v))
		case int64:
			args = append(args, event.IntArg(int32(v)))
		case float32:
			args = append(args, event.FloatArg(v))
		case float64:
			args = append(args, event.FloatArg(float32(v)))
		case string:
			args = append(args, event.StringArg(v))
		case bool:
			args = append(args, event.BoolArg(v))
		case []byte:
			args = append(args, event.BlobArg(v))
		case nil:
			// OSC nil has no payload and no event representation; skip it.
		default:
			return Message{}, fmt.Errorf("%w: unsupported argument %T", ErrMalformed, raw)
		}
	}
	return Message{Addr: m.Address, Args: args}, nil
}
