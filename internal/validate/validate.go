package validate

import (
	"github.com/onerom/onerom/errs"
	"github.com/onerom/onerom/internal/chip"
	"github.com/onerom/onerom/internal/hardware"
	"github.com/onerom/onerom/internal/image"
	"github.com/onerom/onerom/internal/mangle"
	"github.com/onerom/onerom/internal/romconfig"
	"github.com/onerom/onerom/internal/romset"
	"github.com/onerom/onerom/log"
)

// maxMismatchesReported caps how many mismatches a report records per
// ROM (or per ROM set, for the inactive-tuple bucket); the total
// mismatch count is still accurate once the cap is hit.
const maxMismatchesReported = 5

// Mismatch is one tuple whose demangled byte failed to round-trip.
type Mismatch struct {
	Addr     int
	CS       [3]bool
	X1, X2   bool
	Expected byte
	Got      byte
}

// RomReport is the round-trip result for the tuples that activated one
// ROM within a ROM set.
type RomReport struct {
	RomIndex      int
	ChipType      chip.Type
	Filename      string
	BytesChecked  int
	MismatchCount int
	Mismatches    []Mismatch // first maxMismatchesReported only
}

// OK reports whether this ROM's activating tuples round-tripped with no
// mismatches.
func (r RomReport) OK() bool { return r.MismatchCount == 0 }

// Report is the round-trip result for one ROM set, covering every
// (address, cs1, cs2, cs3, x1, x2) tuple the table addresses: tuples that
// activate a ROM are checked against that ROM's source byte (RomReport),
// and tuples that activate no ROM are checked against the fill byte
// (InactiveMismatches).
type Report struct {
	RomSetIndex        int
	Roms               []RomReport
	InactiveChecked    int
	InactiveMismatches int
	InactiveSamples    []Mismatch // first maxMismatchesReported only
}

// OK reports whether every tuple in this ROM set round-tripped cleanly,
// active or not.
func (r Report) OK() bool {
	if r.InactiveMismatches != 0 {
		return false
	}
	for _, rr := range r.Roms {
		if !rr.OK() {
			return false
		}
	}
	return true
}

// Validate walks every (address, cs1, cs2, cs3, x1, x2) tuple each ROM
// set's table can be addressed by, the same tuple space romset.Build
// enumerates when it writes the table, and compares img's demangled
// byte at that tuple against what building the set from loaded would
// have written: the claiming ROM's source byte if some ROM activates,
// mangle.FillByte otherwise.
//
// loaded must be in the same order used to build img (the order passed
// to romset.Build for each set); Validate does not re-fetch or
// re-transform any source.
//
// Example:
//
//	reports, err := validate.Validate(pm, img, doc.RomSets, log.Nop{})
func Validate(pm *hardware.PinMap, img *image.Image, loaded []romconfig.LoadedRomSet, logger log.Logger) ([]Report, error) {
	reports := make([]Report, len(img.RomSets))

	for si, set := range img.RomSets {
		rep := Report{RomSetIndex: si}
		if len(set.Roms) == 0 {
			reports[si] = rep
			continue
		}

		var ls romconfig.LoadedRomSet
		if si < len(loaded) {
			ls = loaded[si]
		}

		desc, err := chip.Lookup(set.Roms[0].ChipType)
		if err != nil {
			return nil, err
		}

		rep.Roms = make([]RomReport, len(set.Roms))
		for i, rd := range set.Roms {
			rep.Roms[i] = RomReport{RomIndex: i, ChipType: rd.ChipType, Filename: rd.Filename}
		}

		includeX := set.ServeMode != romset.ServeSingle
		table := img.Table(si)

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

					idx := mangle.AddressIndex(pm, desc, includeX, tuple)
					if int(idx) >= len(table) {
						return nil, &errs.IntegrityError{Reason: "computed index exceeds mangled table bounds"}
					}
					got := byte(mangle.DemangleByte(pm, desc.DataBits, table[idx]))

					var romIdx int
					var active bool
					if len(ls.Roms) > 0 {
						romIdx, active = romset.ActivatingRom(pm, desc, set.ServeMode, tuple, ls.Roms)
					}
					if !active {
						rep.InactiveChecked++
						if got != mangle.FillByte {
							rep.InactiveMismatches++
							if len(rep.InactiveSamples) < maxMismatchesReported {
								rep.InactiveSamples = append(rep.InactiveSamples, Mismatch{
									Addr: addr, CS: tuple.CS, X1: tuple.X1, X2: tuple.X2,
									Expected: mangle.FillByte, Got: got,
								})
							}
						}
						continue
					}

					if romIdx >= len(rep.Roms) {
						continue
					}
					rr := &rep.Roms[romIdx]
					rr.BytesChecked++
					var want byte
					if romIdx < len(ls.Roms) && addr < len(ls.Roms[romIdx].Source) {
						want = ls.Roms[romIdx].Source[addr]
					}
					if want != got {
						rr.MismatchCount++
						if len(rr.Mismatches) < maxMismatchesReported {
							rr.Mismatches = append(rr.Mismatches, Mismatch{
								Addr: addr, CS: tuple.CS, X1: tuple.X1, X2: tuple.X2,
								Expected: want, Got: got,
							})
						}
					}
				}
			}
		}

		logger.Debug("rom set validated", "rom_set", si, "inactive_checked", rep.InactiveChecked,
			"inactive_mismatches", rep.InactiveMismatches)
		reports[si] = rep
	}
	return reports, nil
}

// TotalMismatches sums mismatch counts across every ROM and every
// inactive-tuple bucket in every report.
func TotalMismatches(reports []Report) int {
	n := 0
	for _, r := range reports {
		n += r.InactiveMismatches
		for _, rr := range r.Roms {
			n += rr.MismatchCount
		}
	}
	return n
}
