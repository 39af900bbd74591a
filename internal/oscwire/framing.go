package oscwire

import "encoding/binary"

// Frame prepends the 4-byte big-endian length prefix the TCP wire format
// requires before each packet's bytes.
func Frame(packet []byte) []byte {
	out := make([]byte, 4+len(packet))
	binary.BigEndian.PutUint32(out, uint32(len(packet)))
	copy(out[4:], packet)
	return out
}

// FrameReader incrementally extracts length-prefixed packets out of a TCP
// byte stream that may deliver partial or multiple frames per read.
type FrameReader struct {
	buf []byte
}

func (r *FrameReader) Feed(data []byte) {
	r.buf = append(r.buf, data...)
}

// Next returns the next complete frame, if one has fully arrived.
func (r *FrameReader) Next() ([]byte, bool) {
	if len(r.buf) < 4 {
		return nil, false
	}
	size := int(binary.BigEndian.Uint32(r.buf[:4]))
	if size < 0 || len(r.buf) < 4+size {
		return nil, false
	}
	packet := append([]byte(nil), r.buf[4:4+size]...)
	r.buf = r.buf[4+size:]
	return packet, true
}
