// Package osc implements the OSC transport: UDP and TCP in/out ports over
// the osc:/osc.udp:/osc.tcp: port-spec grammar, using internal/oscwire for
// the wire codec.
package osc

import (
	"fmt"
	"log"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/wvengen/mididings-go/internal/backend"
	"github.com/wvengen/mididings-go/internal/event"
	"github.com/wvengen/mididings-go/internal/oscwire"
	"golang.org/x/sys/unix"
)

type inPort struct {
	udpConn     *net.UDPConn
	tcpListener *net.TCPListener
	tcpConns    []*net.TCPConn
	tcpFrames   map[*net.TCPConn]*oscwire.FrameReader
}

type outPort struct {
	udp     bool
	tcp     bool
	addr    string
	tcpConn *net.TCPConn
}

// Backend is the OSC transport. It claims the "osc:", "osc.udp:" and
// "osc.tcp:" port-spec schemes.
type Backend struct {
	inPorts   map[int]*inPort
	outPorts  map[int]*outPort
	udpSender *net.UDPConn
}

func New() *Backend {
	return &Backend{inPorts: map[int]*inPort{}, outPorts: map[int]*outPort{}}
}

func (b *Backend) SetClientName(string) error { return nil }

// parseSpec splits a port spec of the form "osc:host:port" (also accepting
// the "osc://host:port" spelling) into a dial/listen address and which
// transports it covers.
func parseSpec(spec string) (addr string, udp, tcp, handled bool) {
	scheme, rest, ok := strings.Cut(spec, ":")
	if !ok {
		return "", false, false, false
	}
	rest = strings.TrimPrefix(rest, "//")
	switch scheme {
	case "osc":
		return rest, true, true, true
	case "osc.udp":
		return rest, true, false, true
	case "osc.tcp":
		return rest, false, true, true
	default:
		return "", false, false, false
	}
}

func (b *Backend) CreateInPort(portIndex int, spec string) (bool, error) {
	addr, udp, tcp, handled := parseSpec(spec)
	if !handled {
		return false, nil
	}
	p := &inPort{tcpFrames: map[*net.TCPConn]*oscwire.FrameReader{}}
	if udp {
		udpAddr, err := net.ResolveUDPAddr("udp", addr)
		if err != nil {
			return false, fmt.Errorf("osc: resolve udp %q: %w", addr, err)
		}
		conn, err := net.ListenUDP("udp", udpAddr)
		if err != nil {
			return false, fmt.Errorf("osc: listen udp %q: %w", addr, err)
		}
		p.udpConn = conn
	}
	if tcp {
		tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
		if err != nil {
			return false, fmt.Errorf("osc: resolve tcp %q: %w", addr, err)
		}
		ln, err := net.ListenTCP("tcp", tcpAddr)
		if err != nil {
			return false, fmt.Errorf("osc: listen tcp %q: %w", addr, err)
		}
		p.tcpListener = ln
	}
	b.inPorts[portIndex] = p
	return true, nil
}

// CreateOutPort claims the spec and remembers its host:port as the send
// target; ConnectOutPort may override it with a peer address later.
func (b *Backend) CreateOutPort(portIndex int, spec string) (bool, error) {
	addr, udp, tcp, handled := parseSpec(spec)
	if !handled {
		return false, nil
	}
	if udp && b.udpSender == nil {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{})
		if err != nil {
			return false, fmt.Errorf("osc: udp sender: %w", err)
		}
		b.udpSender = conn
	}
	b.outPorts[portIndex] = &outPort{udp: udp, tcp: tcp, addr: addr}
	return true, nil
}

func (b *Backend) ConnectInPort(int, string) (bool, error) { return false, nil }

func (b *Backend) ConnectOutPort(portIndex int, spec string) (bool, error) {
	port, ok := b.outPorts[portIndex]
	if !ok {
		return false, nil
	}
	port.addr = spec
	// UDP needs no connection setup; we just send to it on each output.
	if port.tcp {
		if addr, err := net.ResolveTCPAddr("tcp", spec); err == nil {
			if conn, err := net.DialTCP("tcp", nil, addr); err == nil {
				port.tcpConn = conn
				log.Printf("osc: connection to %s succeeded", spec)
			} else {
				log.Printf("osc: connection to %s failed, will retry on next outbound event", spec)
			}
		}
	}
	return true, nil
}

func rawFD(sc syscall.Conn) (int, error) {
	rc, err := sc.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd int
	cerr := rc.Control(func(f uintptr) { fd = int(f) })
	if cerr != nil {
		return 0, cerr
	}
	return fd, nil
}

func (b *Backend) PollFDs() []backend.PollFD {
	var fds []backend.PollFD
	for _, p := range b.inPorts {
		if p.udpConn != nil {
			if fd, err := rawFD(p.udpConn); err == nil {
				fds = append(fds, backend.PollFD{FD: fd, Events: unix.POLLIN})
			}
		}
		if p.tcpListener != nil {
			if fd, err := rawFD(p.tcpListener); err == nil {
				fds = append(fds, backend.PollFD{FD: fd, Events: unix.POLLIN})
			}
		}
		for _, c := range p.tcpConns {
			if fd, err := rawFD(c); err == nil {
				fds = append(fds, backend.PollFD{FD: fd, Events: unix.POLLIN})
			}
		}
	}
	return fds
}

// Run is non-blocking: every socket read uses a deadline in the past so a
// spurious or already-drained poll wakeup never stalls the single-threaded
// core, whose only blocking point is the Runner's own poll.
func (b *Backend) Run() ([]event.Event, error) {
	var out []event.Event
	buf := make([]byte, 65536)

	for _, p := range b.inPorts {
		if p.udpConn != nil {
			p.udpConn.SetReadDeadline(time.Now())
			for {
				n, _, err := p.udpConn.ReadFromUDP(buf)
				if err != nil {
					break
				}
				out = append(out, decodeInto(buf[:n])...)
			}
		}

		if p.tcpListener != nil {
			p.tcpListener.SetDeadline(time.Now())
			for {
				conn, err := p.tcpListener.AcceptTCP()
				if err != nil {
					break
				}
				p.tcpConns = append(p.tcpConns, conn)
				p.tcpFrames[conn] = &oscwire.FrameReader{}
			}
		}

		for _, c := range p.tcpConns {
			c.SetReadDeadline(time.Now())
			for {
				n, err := c.Read(buf)
				if n > 0 {
					p.tcpFrames[c].Feed(buf[:n])
				}
				if err != nil {
					break
				}
			}
			fr := p.tcpFrames[c]
			for {
				frame, ok := fr.Next()
				if !ok {
					break
				}
				out = append(out, decodeInto(frame)...)
			}
		}
	}

	return out, nil
}

func decodeInto(data []byte) []event.Event {
	msgs, err := oscwire.Decode(data)
	if err != nil {
		log.Printf("osc: dropped malformed packet: %v", err)
		return nil
	}
	var out []event.Event
	for _, m := range msgs {
		out = append(out, event.OscEvent(0, m.Addr, m.Args))
	}
	return out
}

func (b *Backend) OutputEvent(ev event.Event) (int, error) {
	if ev.Kind != event.KindOsc {
		return 0, nil
	}

	// Use the indicated port, but if there's only one OSC out port, use that
	// for ease of use (a single-port setup shouldn't require addressing it).
	portIndex := ev.Port
	if len(b.outPorts) == 1 {
		for k := range b.outPorts {
			portIndex = k
		}
	}
	port, ok := b.outPorts[portIndex]
	if !ok {
		return 0, nil
	}

	packet, err := oscwire.Encode(ev.Addr, ev.Args)
	if err != nil {
		return 0, err
	}

	total := 0
	if port.udp && port.addr != "" && b.udpSender != nil {
		if addr, err := net.ResolveUDPAddr("udp", port.addr); err == nil {
			n, _ := b.udpSender.WriteToUDP(packet, addr)
			total += n
		}
	}
	if port.tcp {
		if port.tcpConn == nil && port.addr != "" {
			if addr, err := net.ResolveTCPAddr("tcp", port.addr); err == nil {
				if conn, derr := net.DialTCP("tcp", nil, addr); derr == nil {
					port.tcpConn = conn
					log.Printf("osc: connection to %s succeeded", port.addr)
				} else {
					log.Printf("osc: connection to %s failed, will retry on next outbound event", port.addr)
				}
			}
		}
		if port.tcpConn != nil {
			n, werr := port.tcpConn.Write(oscwire.Frame(packet))
			if werr != nil {
				log.Printf("osc: tcp write failed, will reconnect lazily: %v", werr)
				port.tcpConn.Close()
				port.tcpConn = nil
			} else {
				total += n
			}
		}
	}
	return total, nil
}
