package firmware

import (
	"encoding/binary"
	"fmt"

	"github.com/onerom/onerom/errs"
)

// Present-bitmap bits.
const (
	PresentIceFreq       = 1 << 0
	PresentIceOverclock  = 1 << 1
	PresentFireFreq      = 1 << 2
	PresentFireOverclock = 1 << 3
	PresentFireVreg      = 1 << 4
	PresentLED           = 1 << 5
	PresentSWD           = 1 << 6
	PresentFireServeMode = 1 << 7
)

// Value-bitmap bits.
const (
	ValueIceOverclock  = 1 << 0
	ValueFireOverclock = 1 << 1
	ValueLEDEnabled    = 1 << 2
	ValueSWDEnabled    = 1 << 3
	ValueFireServePIO  = 1 << 4
)

// Frequency sentinels, shared by ICE and FIRE.
const (
	FreqNone  uint16 = 0
	FreqStock uint16 = 0xFFFF
)

// Valid frequency ranges in MHz.
const (
	IceFreqMinMHz = 1
	IceFreqMaxMHz = 450

	FireFreqMinMHz = 16
	FireFreqMaxMHz = 800
)

// fireVregTable is the closed 32-code FIRE voltage regulator table, plus
// the 0xFF "Stock" sentinel handled separately.
var fireVregTable = [32]string{
	"0.55V", "0.60V", "0.65V", "0.70V", "0.75V", "0.80V", "0.85V", "0.90V",
	"0.95V", "1.00V", "1.05V", "1.10V", "1.15V", "1.20V", "1.25V", "1.30V",
	"1.35V", "1.40V", "1.50V", "1.60V", "1.65V", "1.70V", "1.80V", "1.90V",
	"2.00V", "2.20V", "2.40V", "2.50V", "2.60V", "2.70V", "3.00V", "3.30V",
}

// FireVregStock is the "leave at stock voltage" sentinel code.
const FireVregStock = 0xFF

// ParseFireVreg resolves a voltage string ("1.20V", ..., or "Stock") to
// its wire code.
func ParseFireVreg(s string) (byte, error) {
	if s == "Stock" {
		return FireVregStock, nil
	}
	for i, v := range fireVregTable {
		if v == s {
			return byte(i), nil
		}
	}
	return 0, &errs.SchemaViolationError{Path: "firmware_overrides.fire.vreg", Reason: fmt.Sprintf("unrecognized voltage %q", s)}
}

// FireVregString is the inverse of ParseFireVreg.
func FireVregString(code byte) string {
	if code == FireVregStock {
		return "Stock"
	}
	if int(code) < len(fireVregTable) {
		return fireVregTable[code]
	}
	return "unknown"
}

// ParseIceFreq resolves a config cpu_freq value: "Stock" maps to
// FreqStock; otherwise mhz must fall within [IceFreqMinMHz,
// IceFreqMaxMHz] unless overclock permits exceeding the maximum.
func ParseIceFreq(mhz int, stock, overclock bool) (uint16, error) {
	if stock {
		return FreqStock, nil
	}
	if mhz < IceFreqMinMHz || (mhz > IceFreqMaxMHz && !overclock) {
		return 0, &errs.SchemaViolationError{Path: "firmware_overrides.ice.cpu_freq", Reason: fmt.Sprintf("%d MHz out of range", mhz)}
	}
	return uint16(mhz), nil
}

// ParseFireFreq is ParseIceFreq's FIRE counterpart, with FIRE's bounds.
func ParseFireFreq(mhz int, stock, overclock bool) (uint16, error) {
	if stock {
		return FreqStock, nil
	}
	if mhz < FireFreqMinMHz || (mhz > FireFreqMaxMHz && !overclock) {
		return 0, &errs.SchemaViolationError{Path: "firmware_overrides.fire.cpu_freq", Reason: fmt.Sprintf("%d MHz out of range", mhz)}
	}
	return uint16(mhz), nil
}

// RecordSize is the fixed wire size of an Overrides record.
const RecordSize = 16

// Overrides is the per-ROM-set firmware overrides record.
type Overrides struct {
	Present  uint8
	Value    uint8
	IceFreq  uint16
	FireFreq uint16
	FireVreg byte
}

// Encode serializes o to its fixed 16-byte little-endian wire form.
func (o Overrides) Encode() [RecordSize]byte {
	var b [RecordSize]byte
	b[0] = o.Present
	b[1] = o.Value
	binary.LittleEndian.PutUint16(b[2:4], o.IceFreq)
	binary.LittleEndian.PutUint16(b[4:6], o.FireFreq)
	b[6] = o.FireVreg
	return b
}

// Decode parses a 16-byte Overrides record.
func Decode(b []byte) (Overrides, error) {
	if len(b) < RecordSize {
		return Overrides{}, &errs.IntegrityError{Reason: "firmware overrides record truncated"}
	}
	return Overrides{
		Present:  b[0],
		Value:    b[1],
		IceFreq:  binary.LittleEndian.Uint16(b[2:4]),
		FireFreq: binary.LittleEndian.Uint16(b[4:6]),
		FireVreg: b[6],
	}, nil
}
