package mangle

import (
	"github.com/onerom/onerom/internal/chip"
	"github.com/onerom/onerom/internal/hardware"
)

// Tuple is one (address, chip-select combination, bank/extension pin
// combination) point in the address-mangling domain.
type Tuple struct {
	Addr uint32
	CS   [3]bool
	X1   bool
	X2   bool
}

// addressPins returns the chip's address-bit → GPIO pin assignment, with
// the 2732 A11/A12 swap applied: on a 24-pin socket shared with wider
// chip types, pin 21 carries A11 for a 2732 but A12 for those wider
// types, so A11 is read from the pin the generic scheme reserves for
// A12 instead of from its own.
func addressPins(pm *hardware.PinMap, t chip.Type, bits int) []hardware.Pin {
	pins := make([]hardware.Pin, bits)
	for i := 0; i < bits; i++ {
		pins[i] = pm.AddressPin(i)
	}
	if t == chip.Type2732 && bits >= 12 {
		pins[11] = pm.AddressPin(12)
	}
	return pins
}

// sharesLowByte reports whether address and data pins live on the same
// GPIO port with data occupying that port's low byte — the condition
// under which every address/CS/X pin position is shifted down by 8.
func sharesLowByte(pm *hardware.PinMap, addrPins []hardware.Pin) bool {
	for j := 0; j < 8; j++ {
		d := pm.DataPin(j)
		if !d.Used() || d.Index != uint8(j) {
			return false
		}
	}
	for _, p := range addrPins {
		if p.Used() && p.Port != pm.DataPin(0).Port {
			return false
		}
	}
	return true
}

// csOmitted reports whether the chip's pin count excludes CS lines from
// the GPIO index (true for 28-pin parts; the runtime decodes CS
// separately for those).
func csOmitted(d chip.Descriptor) bool { return d.PinCount == 28 }

// minAddressPinIndex returns the lowest used address pin index, used to
// densely pack 28-pin address tables from bit 0.
func minAddressPinIndex(pins []hardware.Pin) uint8 {
	min := uint8(hardware.UnusedPin)
	for _, p := range pins {
		if p.Used() && p.Index < min {
			min = p.Index
		}
	}
	if min == hardware.UnusedPin {
		return 0
	}
	return min
}

// bitPositions returns every GPIO bit position that the table index for d
// can ever set, after any shift/pack normalization, along with the shift
// and (for 28-pin chips) the minimum address pin index used for packing.
func bitPositions(pm *hardware.PinMap, d chip.Descriptor, includeX bool) (positions []uint8, shift uint8, minAddr uint8) {
	addrPins := addressPins(pm, d.Type, d.AddressBits)
	omitted := csOmitted(d)

	if omitted {
		minAddr = minAddressPinIndex(addrPins)
	} else if sharesLowByte(pm, addrPins) {
		shift = 8
	}

	seen := map[uint8]bool{}
	add := func(p hardware.Pin) {
		if !p.Used() {
			return
		}
		pos := p.Index
		if omitted {
			pos -= minAddr
		} else {
			pos -= shift
		}
		if !seen[pos] {
			seen[pos] = true
			positions = append(positions, pos)
		}
	}

	for _, p := range addrPins {
		add(p)
	}
	if !omitted {
		for slot := 0; slot < d.NumControl; slot++ {
			add(pm.CSPin(d.Type, slot))
		}
		if includeX {
			add(pm.X1)
			add(pm.X2)
		}
	}
	return positions, shift, minAddr
}

// fixedTableSize returns the ground-truth image size for one chip/pin-map
// pair: RP2350 boards address the full 64 KiB space for every set type;
// STM32F4 boards use a 16 KiB image only for a single 24-pin chip, 64 KiB
// for everything else (28-pin single chips, and any multi-CS or
// bank-switched set regardless of pin count).
func fixedTableSize(pm *hardware.PinMap, d chip.Descriptor, includeX bool) uint32 {
	if pm.Family == hardware.FamilyRP2350 {
		return 65536
	}
	if !includeX && d.PinCount == 24 {
		return 16384
	}
	return 65536
}

// TableSize returns the mangled-table size in bytes for chip type d served
// under this pin map, honoring whether X1/X2 participate (multi-CS or
// bank-switched sets). It is the larger of the board/family's fixed image
// size and the size the chip's actual wired bit positions require, since
// the fixed formula was sized for chips within the board's normal
// addressing budget and some catalog entries (the four wide EPROM types
// modeled onto a 28-pin descriptor) need more room than that formula
// alone provides.
func TableSize(pm *hardware.PinMap, d chip.Descriptor, includeX bool) uint32 {
	positions, _, _ := bitPositions(pm, d, includeX)
	var required uint32 = 1
	if len(positions) > 0 {
		var max uint8
		for _, p := range positions {
			if p > max {
				max = p
			}
		}
		required = uint32(1) << (max + 1)
	}

	fixed := fixedTableSize(pm, d, includeX)
	if fixed > required {
		return fixed
	}
	return required
}

// AddressIndex computes the GPIO-port table index for one tuple, per the
// chip's pin assignment. includeX must be true for multi-CS and
// bank-switched sets, false for single-ROM sets (whose X pins, if any,
// never participate in the index).
func AddressIndex(pm *hardware.PinMap, d chip.Descriptor, includeX bool, t Tuple) uint32 {
	addrPins := addressPins(pm, d.Type, d.AddressBits)
	omitted := csOmitted(d)

	var shift, minAddr uint8
	if omitted {
		minAddr = minAddressPinIndex(addrPins)
	} else if sharesLowByte(pm, addrPins) {
		shift = 8
	}

	set := func(idx *uint32, p hardware.Pin) {
		if !p.Used() {
			return
		}
		pos := p.Index
		if omitted {
			pos -= minAddr
		} else {
			pos -= shift
		}
		*idx |= 1 << uint(pos)
	}

	var idx uint32
	for i := 0; i < d.AddressBits; i++ {
		if t.Addr&(1<<uint(i)) == 0 {
			continue
		}
		set(&idx, addrPins[i])
	}
	if !omitted {
		for slot := 0; slot < d.NumControl; slot++ {
			if !t.CS[slot] {
				continue
			}
			set(&idx, pm.CSPin(d.Type, slot))
		}
		if includeX {
			if t.X1 {
				set(&idx, pm.X1)
			}
			if t.X2 {
				set(&idx, pm.X2)
			}
		}
	}
	return idx
}

// Activates reports whether tuple t causes the chip's control lines to
// select it, given each control line's configured active polarity. A
// NotUsed/unused control line never blocks activation.
func Activates(d chip.Descriptor, polarity [3]chip.Polarity, t Tuple) bool {
	for slot := 0; slot < d.NumControl; slot++ {
		switch polarity[slot] {
		case chip.ActiveLow:
			if t.CS[slot] {
				return false
			}
		case chip.ActiveHigh:
			if !t.CS[slot] {
				return false
			}
		case chip.NotUsed:
			// contributes nothing
		}
	}
	return true
}
