package gpkg

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

func TestDecodeGeometryNoEnvelope(t *testing.T) {
	pt := orb.Point{26.10, 44.43}
	body, err := wkb.Marshal(pt)
	if err != nil {
		t.Fatalf("marshal wkb: %v", err)
	}

	var buf bytes.Buffer
	buf.WriteString("GP")
	buf.WriteByte(0) // version
	buf.WriteByte(0x01) // flags: little-endian, no envelope
	binary.Write(&buf, binary.LittleEndian, int32(3844))
	buf.Write(body)

	geom, err := decodeGeometry(buf.Bytes())
	if err != nil {
		t.Fatalf("decodeGeometry: %v", err)
	}
	got, ok := geom.(orb.Point)
	if !ok {
		t.Fatalf("expected orb.Point, got %T", geom)
	}
	if got != pt {
		t.Errorf("expected %v, got %v", pt, got)
	}
}

func TestDecodeGeometryWithEnvelope(t *testing.T) {
	pt := orb.Point{26.10, 44.43}
	body, err := wkb.Marshal(pt)
	if err != nil {
		t.Fatalf("marshal wkb: %v", err)
	}

	var buf bytes.Buffer
	buf.WriteString("GP")
	buf.WriteByte(0)
	buf.WriteByte(0x01 | (1 << 1)) // envelope indicator 1 -> 32 bytes
	binary.Write(&buf, binary.LittleEndian, int32(3844))
	env := make([]byte, 32)
	buf.Write(env)
	buf.Write(body)

	geom, err := decodeGeometry(buf.Bytes())
	if err != nil {
		t.Fatalf("decodeGeometry: %v", err)
	}
	if _, ok := geom.(orb.Point); !ok {
		t.Fatalf("expected orb.Point, got %T", geom)
	}
}

func TestDecodeGeometryRejectsBadMagic(t *testing.T) {
	_, err := decodeGeometry([]byte{'X', 'Y', 0, 0, 0, 0, 0, 0})
	if err == nil {
		t.Fatal("expected error for bad magic bytes")
	}
}

func TestDecodeGeometryRejectsEmptyFlag(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("GP")
	buf.WriteByte(0)
	buf.WriteByte(0x01 | (1 << 4)) // empty geometry flag set
	binary.Write(&buf, binary.LittleEndian, int32(3844))

	_, err := decodeGeometry(buf.Bytes())
	if err == nil {
		t.Fatal("expected error for empty geometry flag")
	}
}
