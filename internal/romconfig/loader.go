package romconfig

import (
	"context"
	"strings"

	"github.com/onerom/onerom/errs"
	"github.com/onerom/onerom/internal/chip"
	"github.com/onerom/onerom/internal/firmware"
)

// baseName returns the final path segment of a local path or URL,
// stripping any directory or scheme prefix, for use as the optional
// boot-logging filename.
func baseName(ref string) string {
	if i := strings.LastIndexAny(ref, "/\\"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// LoadedRom is one ROM descriptor with its source bytes resolved and
// transformed to exactly the chip type's declared capacity.
type LoadedRom struct {
	ChipType    chip.Type
	Source      []byte
	CS          [3]chip.Polarity
	Description string
	Filename    string
}

// LoadedRomSet is one ROM set with every ROM's bytes resolved.
type LoadedRomSet struct {
	Mode           string // single | multi | banked
	Roms           []LoadedRom
	Overrides      *firmware.Overrides
	ServeAlgParams []byte
	Licenses       []string
}

// LoadedDocument is a fully resolved config document, ready for the
// ROM-set builder.
type LoadedDocument struct {
	Version     int
	Description string
	RomSets     []LoadedRomSet
}

// Load parses raw into a Document, resolves every ROM's source bytes via
// fetcher, applies the transform pipeline, and validates the resulting
// length against the chip's declared capacity.
//
// Example:
//
//	doc, err := romconfig.Load(ctx, raw, romconfig.NewHTTPFetcher())
func Load(ctx context.Context, raw []byte, fetcher SourceFetcher) (*LoadedDocument, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	out := &LoadedDocument{Version: doc.Version, Description: doc.Description}
	for _, rs := range doc.RomSets {
		loadedSet, err := loadRomSet(ctx, rs, fetcher)
		if err != nil {
			return nil, err
		}
		out.RomSets = append(out.RomSets, *loadedSet)
	}
	return out, nil
}

func loadRomSet(ctx context.Context, rs RomSetConfig, fetcher SourceFetcher) (*LoadedRomSet, error) {
	loaded := &LoadedRomSet{Mode: rs.Type, Licenses: rs.Licenses}

	for _, r := range rs.Roms {
		lr, err := loadRom(ctx, r, fetcher)
		if err != nil {
			return nil, err
		}
		loaded.Roms = append(loaded.Roms, *lr)
	}

	if err := checkPolarityConsistency(loaded.Roms); err != nil {
		return nil, err
	}

	if rs.FirmwareOverrides != nil {
		ov, err := resolveOverrides(rs.FirmwareOverrides)
		if err != nil {
			return nil, err
		}
		loaded.Overrides = ov
	}
	if rs.ServeAlgParams != nil {
		loaded.ServeAlgParams = rs.ServeAlgParams.Params
	}
	return loaded, nil
}

func loadRom(ctx context.Context, r RomConfig, fetcher SourceFetcher) (*LoadedRom, error) {
	ct, err := chip.ParseType(r.Type)
	if err != nil {
		return nil, err
	}
	desc, err := chip.Lookup(ct)
	if err != nil {
		return nil, err
	}
	if desc.Unsupported {
		return nil, &errs.UnsupportedError{Reason: "chip type " + ct.String() + " table generation is not supported"}
	}

	raw, err := resolve(ctx, r, fetcher)
	if err != nil {
		return nil, err
	}
	transformed, err := applyTransforms(raw, r)
	if err != nil {
		return nil, err
	}
	if len(transformed) != desc.CapacityB {
		return nil, &errs.SizeMismatchError{Expected: desc.CapacityB, Got: len(transformed)}
	}

	cs, err := resolvePolarities(r, desc)
	if err != nil {
		return nil, err
	}

	return &LoadedRom{ChipType: ct, Source: transformed, CS: cs, Description: r.Description, Filename: baseName(r.File)}, nil
}

func resolvePolarities(r RomConfig, desc chip.Descriptor) ([3]chip.Polarity, error) {
	var cs [3]chip.Polarity
	raw := [3]string{r.CS1, r.CS2, r.CS3}
	for slot := 0; slot < 3; slot++ {
		if slot >= desc.NumControl {
			cs[slot] = chip.NotUsed
			continue
		}
		if raw[slot] == "" {
			cs[slot] = desc.Control[slot].Polarity
			continue
		}
		p, err := chip.ParsePolarity(raw[slot])
		if err != nil {
			return cs, err
		}
		cs[slot] = p
	}
	return cs, nil
}

// checkPolarityConsistency rejects a multi-set in which two ROMs that both
// specify the same CS line disagree on its active polarity. A line neither
// ROM specifies, or that only one of them specifies, is not a conflict: the
// original's check_chip_cs_requirements only compares a line when a chip
// actually declares it, and CS1 is the only line every chip type always
// declares (it doubles as the set's selection line; CS2/CS3 vary legitimately
// between ROMs of a multi set).
func checkPolarityConsistency(roms []LoadedRom) error {
	if len(roms) < 2 {
		return nil
	}
	names := [3]string{"cs1", "cs2", "cs3"}
	for slot := 0; slot < 3; slot++ {
		want := chip.NotUsed
		found := false
		for _, r := range roms {
			if r.CS[slot] == chip.NotUsed {
				continue
			}
			if !found {
				want, found = r.CS[slot], true
				continue
			}
			if r.CS[slot] != want {
				return &errs.PolarityConflictError{Line: names[slot]}
			}
		}
	}
	return nil
}

func resolveOverrides(cfg *FirmwareOverridesConfig) (*firmware.Overrides, error) {
	var ov firmware.Overrides

	if cfg.Ice != nil {
		if cfg.Ice.CpuFreq != nil {
			freq, err := firmware.ParseIceFreq(cfg.Ice.CpuFreq.MHz, cfg.Ice.CpuFreq.Stock, cfg.Ice.Overclock)
			if err != nil {
				return nil, err
			}
			ov.Present |= firmware.PresentIceFreq
			ov.IceFreq = freq
		}
		ov.Present |= firmware.PresentIceOverclock
		if cfg.Ice.Overclock {
			ov.Value |= firmware.ValueIceOverclock
		}
	}

	if cfg.Fire != nil {
		if cfg.Fire.CpuFreq != nil {
			freq, err := firmware.ParseFireFreq(cfg.Fire.CpuFreq.MHz, cfg.Fire.CpuFreq.Stock, cfg.Fire.Overclock)
			if err != nil {
				return nil, err
			}
			ov.Present |= firmware.PresentFireFreq
			ov.FireFreq = freq
		}
		ov.Present |= firmware.PresentFireOverclock
		if cfg.Fire.Overclock {
			ov.Value |= firmware.ValueFireOverclock
		}
		if cfg.Fire.Vreg != "" {
			code, err := firmware.ParseFireVreg(cfg.Fire.Vreg)
			if err != nil {
				return nil, err
			}
			ov.Present |= firmware.PresentFireVreg
			ov.FireVreg = code
		}
		if cfg.Fire.ServeMode != "" {
			ov.Present |= firmware.PresentFireServeMode
			switch cfg.Fire.ServeMode {
			case "Pio":
				ov.Value |= firmware.ValueFireServePIO
			case "Cpu":
			default:
				return nil, &errs.SchemaViolationError{Path: "firmware_overrides.fire.serve_mode", Reason: "must be Cpu or Pio"}
			}
		}
	}

	if cfg.LED != nil {
		ov.Present |= firmware.PresentLED
		if cfg.LED.Enabled {
			ov.Value |= firmware.ValueLEDEnabled
		}
	}
	if cfg.SWD != nil {
		ov.Present |= firmware.PresentSWD
		if cfg.SWD.SWDEnabled {
			ov.Value |= firmware.ValueSWDEnabled
		}
	}

	return &ov, nil
}
