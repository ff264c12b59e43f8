package validate

import (
	"testing"

	"github.com/onerom/onerom/internal/chip"
	"github.com/onerom/onerom/internal/hardware"
	"github.com/onerom/onerom/internal/image"
	"github.com/onerom/onerom/internal/mangle"
	"github.com/onerom/onerom/internal/romconfig"
	"github.com/onerom/onerom/internal/romset"
	"github.com/onerom/onerom/log"
)

func filledRom(t *testing.T, ct chip.Type, fill byte) romconfig.LoadedRom {
	t.Helper()
	d, err := chip.Lookup(ct)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	src := make([]byte, d.CapacityB)
	for i := range src {
		src[i] = fill
	}
	return romconfig.LoadedRom{
		ChipType: ct,
		Source:   src,
		CS:       [3]chip.Polarity{chip.ActiveLow, chip.NotUsed, chip.NotUsed},
	}
}

func TestValidateCleanRoundTrip(t *testing.T) {
	pm, err := hardware.Lookup("fire-24-d")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	rom := filledRom(t, chip.Type2364, 0x7A)
	set := romconfig.LoadedRomSet{Mode: "single", Roms: []romconfig.LoadedRom{rom}}
	built, err := romset.Build(pm, set)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	data, err := image.Compose([]byte{}, []romset.Built{*built})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	img, err := image.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	reports, err := Validate(pm, img, []romconfig.LoadedRomSet{set}, log.Nop{})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}
	if !reports[0].OK() {
		t.Errorf("Report.OK() = false, want true: %+v", reports[0].Roms)
	}
	if got := TotalMismatches(reports); got != 0 {
		t.Errorf("TotalMismatches() = %d, want 0", got)
	}
	if reports[0].Roms[0].BytesChecked != len(rom.Source) {
		t.Errorf("BytesChecked = %d, want %d", reports[0].Roms[0].BytesChecked, len(rom.Source))
	}
}

func TestValidateCatchesCorruptedTableByte(t *testing.T) {
	pm, err := hardware.Lookup("fire-24-d")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	rom := filledRom(t, chip.Type2364, 0x55)
	set := romconfig.LoadedRomSet{Mode: "single", Roms: []romconfig.LoadedRom{rom}}
	built, err := romset.Build(pm, set)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	data, err := image.Compose([]byte{}, []romset.Built{*built})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	clean, err := image.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	table := clean.Table(0)
	tableStart := len(data) - len(table) // table is always the image's final region
	for i := range table {
		if data[len(data)-len(table)+i] != table[i] {
			t.Fatal("table slice does not alias the tail of data as expected")
		}
	}

	corrupted := append([]byte{}, data...)
	corrupted[tableStart] ^= 0xFF

	img, err := image.Parse(corrupted)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	reports, err := Validate(pm, img, []romconfig.LoadedRomSet{set}, log.Nop{})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if reports[0].OK() {
		t.Fatal("Report.OK() = true, want false after corrupting a table byte")
	}
	if got := TotalMismatches(reports); got == 0 {
		t.Error("TotalMismatches() = 0, want at least 1")
	}
	if len(reports[0].Roms[0].Mismatches) == 0 {
		t.Error("Mismatches is empty, want at least one recorded mismatch")
	}
}

func TestValidateCapsMismatchesReportedButCountsAll(t *testing.T) {
	pm, err := hardware.Lookup("fire-24-d")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	rom := filledRom(t, chip.Type2364, 0x00)
	set := romconfig.LoadedRomSet{Mode: "single", Roms: []romconfig.LoadedRom{rom}}
	built, err := romset.Build(pm, set)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	data, err := image.Compose([]byte{}, []romset.Built{*built})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	clean, err := image.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	table := clean.Table(0)
	tableStart := len(data) - len(table)

	corrupted := append([]byte{}, data...)
	for i := 0; i < 20 && i < len(table); i++ {
		corrupted[tableStart+i] ^= 0xFF
	}

	img, err := image.Parse(corrupted)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	reports, err := Validate(pm, img, []romconfig.LoadedRomSet{set}, log.Nop{})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	rr := reports[0].Roms[0]
	if rr.MismatchCount < 1 {
		t.Fatalf("MismatchCount = %d, want at least 1", rr.MismatchCount)
	}
	if len(rr.Mismatches) > maxMismatchesReported {
		t.Errorf("len(Mismatches) = %d, want at most %d", len(rr.Mismatches), maxMismatchesReported)
	}
}

// TestValidateCatchesCorruptedInactiveTuple covers P4: a byte at an index
// that no activating tuple ever reaches (here, CS held high against a
// chip whose CS1 is wired active_low) must still demangle to the fill
// byte. A corruption confined to that region is invisible to
// img.Demangle, which only walks the activating slice, so this must be
// caught by Validate's InactiveMismatches accounting, not by any
// RomReport.
func TestValidateCatchesCorruptedInactiveTuple(t *testing.T) {
	pm, err := hardware.Lookup("fire-24-d")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	desc, err := chip.Lookup(chip.Type2364)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	rom := filledRom(t, chip.Type2364, 0x33)
	set := romconfig.LoadedRomSet{Mode: "single", Roms: []romconfig.LoadedRom{rom}}
	built, err := romset.Build(pm, set)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	data, err := image.Compose([]byte{}, []romset.Built{*built})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	clean, err := image.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	table := clean.Table(0)
	tableStart := len(data) - len(table)

	inactiveTuple := mangle.Tuple{Addr: 5}
	inactiveTuple.CS[0] = true // active_low: CS high means this slot never activates
	idx := mangle.AddressIndex(pm, desc, false, inactiveTuple)
	if int(idx) >= len(table) {
		t.Fatalf("computed inactive index %d exceeds table size %d", idx, len(table))
	}

	corrupted := append([]byte{}, data...)
	corrupted[tableStart+int(idx)] ^= 0xFF

	img, err := image.Parse(corrupted)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	reports, err := Validate(pm, img, []romconfig.LoadedRomSet{set}, log.Nop{})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if reports[0].OK() {
		t.Fatal("Report.OK() = true, want false after corrupting an inactive-tuple byte")
	}
	if reports[0].InactiveMismatches == 0 {
		t.Error("InactiveMismatches = 0, want at least 1")
	}
	if reports[0].Roms[0].MismatchCount != 0 {
		t.Errorf("Roms[0].MismatchCount = %d, want 0 (this byte belongs to no activating tuple)", reports[0].Roms[0].MismatchCount)
	}
}
