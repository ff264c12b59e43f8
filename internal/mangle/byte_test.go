package mangle

import (
	"testing"

	"github.com/onerom/onerom/internal/hardware"
)

func straightDataPinMap() *hardware.PinMap {
	pm := &hardware.PinMap{Revision: "data-straight"}
	for j := 0; j < 8; j++ {
		pm.DataPins[j] = hardware.Pin{Index: uint8(j), Port: 0}
	}
	for j := 8; j < 16; j++ {
		pm.DataPins[j] = hardware.Pin{Index: hardware.UnusedPin}
	}
	return pm
}

func highDataPinMap() *hardware.PinMap {
	pm := &hardware.PinMap{Revision: "data-high"}
	for j := 0; j < 8; j++ {
		pm.DataPins[j] = hardware.Pin{Index: uint8(16 + j), Port: 0}
	}
	for j := 8; j < 16; j++ {
		pm.DataPins[j] = hardware.Pin{Index: hardware.UnusedPin}
	}
	return pm
}

func TestMangleByteIdentityOnStraightPins(t *testing.T) {
	pm := straightDataPinMap()
	for b := 0; b < 256; b++ {
		got := MangleByte(pm, 8, uint16(b))
		if got != byte(b) {
			t.Fatalf("MangleByte(%d) = %d, want %d on identity pin map", b, got, b)
		}
	}
}

func TestMangleDemangleRoundTripHighPins(t *testing.T) {
	pm := highDataPinMap()
	for b := 0; b < 256; b++ {
		mangled := MangleByte(pm, 8, uint16(b))
		got := DemangleByte(pm, 8, mangled)
		if got != uint16(b) {
			t.Fatalf("round trip failed for byte %d: got %d", b, got)
		}
	}
}

func TestMangleByteModEightProjection(t *testing.T) {
	pm := highDataPinMap()
	// data bit 0 lives at GPIO 16; 16 % 8 == 0, so it still lands on
	// output bit 0 despite not being one of the output byte's own pins.
	got := MangleByte(pm, 8, 0x01)
	if got != 0x01 {
		t.Errorf("MangleByte(0x01) = 0x%02X, want 0x01", got)
	}
}

func TestMangleByteIgnoresUnusedPins(t *testing.T) {
	pm := straightDataPinMap()
	// Only 8 data bits are wired; setting bits beyond dataBits must not
	// affect the result.
	got := MangleByte(pm, 8, 0x1FF)
	if got != 0xFF {
		t.Errorf("MangleByte(0x1FF) = 0x%02X, want 0xFF", got)
	}
}

func TestFillByteValue(t *testing.T) {
	if FillByte != 0xAA {
		t.Errorf("FillByte = 0x%02X, want 0xAA", FillByte)
	}
}
