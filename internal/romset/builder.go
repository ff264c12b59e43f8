package romset

import (
	"github.com/onerom/onerom/errs"
	"github.com/onerom/onerom/internal/chip"
	"github.com/onerom/onerom/internal/firmware"
	"github.com/onerom/onerom/internal/hardware"
	"github.com/onerom/onerom/internal/mangle"
	"github.com/onerom/onerom/internal/romconfig"
)

// ServeMode is the serve-mode discriminator persisted in a ROM-set
// record.
type ServeMode uint8

const (
	ServeSingle ServeMode = iota
	ServeMultiAnyCS
	ServeBankSwitched
)

func (m ServeMode) String() string {
	switch m {
	case ServeSingle:
		return "single"
	case ServeMultiAnyCS:
		return "multi"
	case ServeBankSwitched:
		return "banked"
	default:
		return "unknown"
	}
}

func serveModeFor(configType string) (ServeMode, error) {
	switch configType {
	case "single":
		return ServeSingle, nil
	case "multi":
		return ServeMultiAnyCS, nil
	case "banked":
		return ServeBankSwitched, nil
	default:
		return 0, &errs.SchemaViolationError{Path: "rom_sets[].type", Reason: "must be single, multi, or banked"}
	}
}

// RomRecord is one built ROM descriptor, ready for the composer.
type RomRecord struct {
	ChipType chip.Type
	CS       [3]chip.Polarity
	Filename string
}

// Built is one fully assembled ROM set, ready for the composer.
type Built struct {
	ServeMode      ServeMode
	Table          []byte
	Roms           []RomRecord
	Overrides      *firmware.Overrides
	ServeAlgParams []byte
}

// bankIndex maps the raw (x1, x2) GPIO tuple to a bank number, applying
// the board's X-jumper-pull polarity before combining the bits: bank =
// (x2_logical<<1)|x1_logical, where x1_logical/x2_logical are the raw
// GPIO reads after jumper-pull inversion. Every 24-pin revision in this
// catalog pulls so that closed reads logical-1 (XJumperPull = 0b11; the
// 28-pin fire-28-a leaves it 0, since 28-pin indices never include X1/X2), which is why
// bankIndex has historically matched a direct, uninverted reading; a
// pull-inverted revision only needs to set its own XJumperPull bits.
func bankIndex(pm *hardware.PinMap, x1, x2 bool) int {
	n := 0
	if pm.XJumperBit(0, x1) {
		n |= 1
	}
	if pm.XJumperBit(1, x2) {
		n |= 2
	}
	return n
}

// Build assembles the mangled table and ROM-descriptor records for one
// loaded ROM set.
//
// Example:
//
//	built, err := romset.Build(pm, loadedSet)
func Build(pm *hardware.PinMap, set romconfig.LoadedRomSet) (*Built, error) {
	if len(set.Roms) == 0 {
		return nil, &errs.SchemaViolationError{Path: "rom_sets[].roms", Reason: "must contain at least one ROM"}
	}

	mode, err := serveModeFor(set.Mode)
	if err != nil {
		return nil, err
	}

	desc, err := chip.Lookup(set.Roms[0].ChipType)
	if err != nil {
		return nil, err
	}
	if desc.Unsupported {
		return nil, &errs.UnsupportedError{Reason: "chip type " + desc.Type.String() + " table generation is not supported"}
	}
	for _, r := range set.Roms[1:] {
		if r.ChipType != desc.Type {
			return nil, &errs.SchemaViolationError{Path: "rom_sets[].roms[].type", Reason: "all ROMs in one set must share one chip type"}
		}
	}

	includeX := mode != ServeSingle
	table := buildTable(pm, desc, mode, includeX, set.Roms)

	roms := make([]RomRecord, len(set.Roms))
	for i, r := range set.Roms {
		roms[i] = RomRecord{ChipType: r.ChipType, CS: r.CS, Filename: r.Filename}
	}

	return &Built{
		ServeMode:      mode,
		Table:          table,
		Roms:           roms,
		Overrides:      set.Overrides,
		ServeAlgParams: set.ServeAlgParams,
	}, nil
}

func buildTable(pm *hardware.PinMap, desc chip.Descriptor, mode ServeMode, includeX bool, roms []romconfig.LoadedRom) []byte {
	size := mangle.TableSize(pm, desc, includeX)
	table := make([]byte, size)
	for i := range table {
		table[i] = mangle.FillByte
	}

	csCombos := 1 << desc.NumControl
	xCombos := 1
	if includeX {
		xCombos = 4
	}

	for addr := 0; addr < (1 << desc.AddressBits); addr++ {
		for csBits := 0; csBits < csCombos; csBits++ {
			for xBits := 0; xBits < xCombos; xBits++ {
				tuple := mangle.Tuple{Addr: uint32(addr)}
				for slot := 0; slot < desc.NumControl; slot++ {
					tuple.CS[slot] = csBits&(1<<slot) != 0
				}
				tuple.X1 = xBits&1 != 0
				tuple.X2 = xBits&2 != 0

				b, active := resolveByte(pm, desc, mode, tuple, roms)
				idx := mangle.AddressIndex(pm, desc, includeX, tuple)
				if int(idx) >= len(table) {
					continue
				}
				if active {
					table[idx] = mangle.MangleByte(pm, desc.DataBits, uint16(b))
				}
			}
		}
	}
	return table
}

// lineActive reports whether a selection line reads as active under
// polarity pol. X1/X2 are read the same way as CS1 since they carry no
// polarity of their own in a multi-CS set.
func lineActive(pol chip.Polarity, bit bool) bool {
	switch pol {
	case chip.ActiveHigh:
		return bit
	default: // ActiveLow; a selection line is never NotUsed
		return !bit
	}
}

func resolveByte(pm *hardware.PinMap, desc chip.Descriptor, mode ServeMode, tuple mangle.Tuple, roms []romconfig.LoadedRom) (byte, bool) {
	romIdx, active := ActivatingRom(pm, desc, mode, tuple, roms)
	if !active {
		return 0, false
	}
	return roms[romIdx].Source[tuple.Addr], true
}

// ActivatingRom returns the index into roms of the ROM that claims tuple
// under mode, and whether any ROM does. Exported so internal/validate can
// re-derive the same activation decision the table-building pass made,
// without duplicating the per-mode dispatch.
func ActivatingRom(pm *hardware.PinMap, desc chip.Descriptor, mode ServeMode, tuple mangle.Tuple, roms []romconfig.LoadedRom) (int, bool) {
	switch mode {
	case ServeSingle:
		if !mangle.Activates(desc, roms[0].CS, tuple) {
			return 0, false
		}
		return 0, true

	case ServeMultiAnyCS:
		// CS1, X1, and X2 each dedicate one line to a distinct ROM's
		// selection (index 0, 1, 2 respectively), all read under CS1's
		// polarity since X1/X2 carry no polarity of their own. Exactly one
		// of the three must be active; that ROM's own CS2/CS3 declarations
		// (if any) still gate it, checked by delegating to mangle.Activates
		// with the selection slot masked out.
		pol := roms[0].CS[0]
		selActive := [3]bool{
			lineActive(pol, tuple.CS[0]),
			lineActive(pol, tuple.X1),
			lineActive(pol, tuple.X2),
		}
		active := 0
		for _, a := range selActive {
			if a {
				active++
			}
		}
		if active != 1 {
			return 0, false
		}
		for i := range roms {
			if i > 2 || !selActive[i] {
				continue
			}
			remaining := roms[i].CS
			remaining[0] = chip.NotUsed
			if !mangle.Activates(desc, remaining, tuple) {
				return 0, false
			}
			return i, true
		}
		return 0, false

	case ServeBankSwitched:
		if !mangle.Activates(desc, roms[0].CS, tuple) {
			return 0, false
		}
		bank := bankIndex(pm, tuple.X1, tuple.X2)
		return bank % len(roms), true

	default:
		return 0, false
	}
}
