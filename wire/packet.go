// Package wire provides the default on-wire codec for the packet shapes of
// SPEC_FULL.md §3/§6. Serialization is explicitly out of the core's scope
// (spec §1); this package is the simplest possible bijection satisfying the
// "structural fields" contract spec §6 describes, so the module is runnable
// end to end without requiring an embedder to supply their own codec.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/prioerr"
)

// ServerID tags which of the two non-colluding servers a packet is destined
// for, per spec §3.
type ServerID uint8

const (
	ServerA ServerID = 0
	ServerB ServerID = 1
)

func (id ServerID) String() string {
	if id == ServerA {
		return "A"
	}
	return "B"
}

// BeaverTriple is (a, b, c) with c = a*b mod p, shared between the two
// servers to enable multiplication on secret shares (spec §3, GLOSSARY).
type BeaverTriple struct {
	A, B, C field.Element
}

// PacketA is the long-form packet server A receives: every share is an
// explicit field element (spec §3, ClientPacket "For server A").
type PacketA struct {
	Triple           BeaverTriple
	F0Share, G0Share field.Element
	H0Share          field.Element
	DataShares       []field.Element
	HPoints          []field.Element
}

// PacketB is the packet server B receives: a single PRG seed from which B
// regenerates everything PacketA carries explicitly (spec §3, §4.4.3).
type PacketB struct {
	Seed [16]byte
}

// Packet is the union of PacketA/PacketB tagged by ServerID, the wire form
// of spec §3's ClientPacket.
type Packet struct {
	ServerID ServerID
	A        *PacketA
	B        *PacketB
}

// MarshalPacket encodes p as a flat, length-prefixed binary record.
func MarshalPacket(p *Packet) ([]byte, error) {
	switch p.ServerID {
	case ServerA:
		if p.A == nil {
			return nil, prioerr.New(prioerr.Internal, "wire: server A packet missing its payload")
		}
		return marshalPacketA(p.A), nil
	case ServerB:
		if p.B == nil {
			return nil, prioerr.New(prioerr.Internal, "wire: server B packet missing its payload")
		}
		return marshalPacketB(p.B), nil
	default:
		return nil, prioerr.Newf(prioerr.Internal, "wire: unknown server id %d", p.ServerID)
	}
}

// UnmarshalPacket decodes a record produced by MarshalPacket, failing
// cleanly on truncated or malformed input rather than returning a partially
// populated Packet.
func UnmarshalPacket(data []byte) (*Packet, error) {
	if len(data) < 1 {
		return nil, prioerr.New(prioerr.BadInput, "wire: empty packet")
	}
	id := ServerID(data[0])
	body := data[1:]

	switch id {
	case ServerA:
		a, err := unmarshalPacketA(body)
		if err != nil {
			return nil, err
		}
		return &Packet{ServerID: ServerA, A: a}, nil
	case ServerB:
		b, err := unmarshalPacketB(body)
		if err != nil {
			return nil, err
		}
		return &Packet{ServerID: ServerB, B: b}, nil
	default:
		return nil, prioerr.Newf(prioerr.BadInput, "wire: unknown server id %d", id)
	}
}

func putElement(buf []byte, e field.Element) {
	binary.BigEndian.PutUint64(buf, uint64(e))
}

func getElement(buf []byte) field.Element {
	return field.Element(binary.BigEndian.Uint64(buf))
}

func marshalElements(out []byte, els []field.Element) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(els)))
	out = append(out, lenBuf[:]...)
	for _, e := range els {
		var b [8]byte
		putElement(b[:], e)
		out = append(out, b[:]...)
	}
	return out
}

func unmarshalElements(data []byte) ([]field.Element, []byte, error) {
	if len(data) < 4 {
		return nil, nil, prioerr.New(prioerr.BadInput, "wire: truncated element-vector length")
	}
	n := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	need := int(n) * 8
	if len(data) < need {
		return nil, nil, fmt.Errorf("wire: truncated element vector: need %d bytes, have %d", need, len(data))
	}
	out := make([]field.Element, n)
	for i := range out {
		out[i] = getElement(data[i*8 : i*8+8])
	}
	return out, data[need:], nil
}

func marshalPacketA(a *PacketA) []byte {
	out := make([]byte, 0, 1+8*6)
	out = append(out, byte(ServerA))

	var b [8]byte
	putElement(b[:], a.Triple.A)
	out = append(out, b[:]...)
	putElement(b[:], a.Triple.B)
	out = append(out, b[:]...)
	putElement(b[:], a.Triple.C)
	out = append(out, b[:]...)
	putElement(b[:], a.F0Share)
	out = append(out, b[:]...)
	putElement(b[:], a.G0Share)
	out = append(out, b[:]...)
	putElement(b[:], a.H0Share)
	out = append(out, b[:]...)

	out = marshalElements(out, a.DataShares)
	out = marshalElements(out, a.HPoints)
	return out
}

func unmarshalPacketA(data []byte) (*PacketA, error) {
	const fixed = 8 * 6
	if len(data) < fixed {
		return nil, prioerr.New(prioerr.BadInput, "wire: truncated server-A packet header")
	}

	a := &PacketA{}
	a.Triple.A = getElement(data[0:8])
	a.Triple.B = getElement(data[8:16])
	a.Triple.C = getElement(data[16:24])
	a.F0Share = getElement(data[24:32])
	a.G0Share = getElement(data[32:40])
	a.H0Share = getElement(data[40:48])
	rest := data[fixed:]

	dataShares, rest, err := unmarshalElements(rest)
	if err != nil {
		return nil, err
	}
	a.DataShares = dataShares

	hPoints, rest, err := unmarshalElements(rest)
	if err != nil {
		return nil, err
	}
	a.HPoints = hPoints

	if len(rest) != 0 {
		return nil, prioerr.New(prioerr.BadInput, "wire: trailing bytes after server-A packet")
	}
	return a, nil
}

func marshalPacketB(b *PacketB) []byte {
	out := make([]byte, 0, 1+len(b.Seed))
	out = append(out, byte(ServerB))
	out = append(out, b.Seed[:]...)
	return out
}

func unmarshalPacketB(data []byte) (*PacketB, error) {
	if len(data) != 16 {
		return nil, prioerr.Newf(prioerr.BadInput, "wire: server-B packet must carry a 16-byte seed, got %d bytes", len(data))
	}
	b := &PacketB{}
	copy(b.Seed[:], data)
	return b, nil
}
