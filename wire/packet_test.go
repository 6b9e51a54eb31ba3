package wire_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/wire"
)

func TestPacketARoundTrip(t *testing.T) {
	p := &wire.Packet{
		ServerID: wire.ServerA,
		A: &wire.PacketA{
			Triple:     wire.BeaverTriple{A: 1, B: 2, C: 2},
			F0Share:    field.Element(7),
			G0Share:    field.Element(8),
			H0Share:    field.Element(9),
			DataShares: []field.Element{1, 0, 1, field.Element(field.Modulus - 1)},
			HPoints:    []field.Element{10, 20, 30},
		},
	}

	data, err := wire.MarshalPacket(p)
	require.NoError(t, err)

	got, err := wire.UnmarshalPacket(data)
	require.NoError(t, err)
	if !cmp.Equal(p, got) {
		t.Errorf("round trip mismatch:\n%s", cmp.Diff(p, got))
	}
}

func TestPacketBRoundTrip(t *testing.T) {
	p := &wire.Packet{ServerID: wire.ServerB, B: &wire.PacketB{}}
	copy(p.B.Seed[:], []byte("0123456789abcdef"))

	data, err := wire.MarshalPacket(p)
	require.NoError(t, err)

	got, err := wire.UnmarshalPacket(data)
	require.NoError(t, err)
	if !cmp.Equal(p, got) {
		t.Errorf("round trip mismatch:\n%s", cmp.Diff(p, got))
	}
}

func TestUnmarshalRejectsEmptyAndUnknownServerID(t *testing.T) {
	_, err := wire.UnmarshalPacket(nil)
	require.Error(t, err)

	_, err = wire.UnmarshalPacket([]byte{0xFF})
	require.Error(t, err)
}

func TestUnmarshalRejectsTruncatedPacketA(t *testing.T) {
	p := &wire.Packet{
		ServerID: wire.ServerA,
		A: &wire.PacketA{
			DataShares: []field.Element{1, 2, 3},
			HPoints:    []field.Element{4, 5},
		},
	}
	data, err := wire.MarshalPacket(p)
	require.NoError(t, err)

	_, err = wire.UnmarshalPacket(data[:len(data)-1])
	require.Error(t, err)
}
