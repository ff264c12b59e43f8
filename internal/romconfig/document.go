package romconfig

import (
	"encoding/json"
	"fmt"

	"github.com/onerom/onerom/errs"
)

// Document is the top-level declarative config document.
type Document struct {
	Version     int            `json:"version"`
	Description string         `json:"description"`
	RomSets     []RomSetConfig `json:"rom_sets"`
}

// RomSetConfig is one entry in Document.RomSets.
type RomSetConfig struct {
	Type              string                   `json:"type"`
	Roms              []RomConfig              `json:"roms"`
	FirmwareOverrides *FirmwareOverridesConfig `json:"firmware_overrides,omitempty"`
	ServeAlgParams    *ServeAlgParamsConfig    `json:"serve_alg_params,omitempty"`
	Licenses          []string                 `json:"licenses,omitempty"`
}

// RomConfig is one ROM entry within a ROM set.
type RomConfig struct {
	File        string `json:"file"`
	ZipMember   string `json:"zip_member,omitempty"`
	Type        string `json:"type"`
	CS1         string `json:"cs1,omitempty"`
	CS2         string `json:"cs2,omitempty"`
	CS3         string `json:"cs3,omitempty"`
	Offset      *int   `json:"offset,omitempty"`
	Length      *int   `json:"length,omitempty"`
	PadTo       *int   `json:"pad_to,omitempty"`
	DuplicateTo *int   `json:"duplicate_to,omitempty"`
	TruncateTo  *int   `json:"truncate_to,omitempty"`
	Description string `json:"description,omitempty"`
}

// FreqField accepts either an integer MHz value or the string "Stock" in
// firmware_overrides.{ice,fire}.cpu_freq.
type FreqField struct {
	Stock bool
	MHz   int
}

func (f *FreqField) UnmarshalJSON(b []byte) error {
	var asString string
	if err := json.Unmarshal(b, &asString); err == nil {
		if asString != "Stock" {
			return fmt.Errorf("cpu_freq string must be %q, got %q", "Stock", asString)
		}
		f.Stock = true
		return nil
	}
	var asInt int
	if err := json.Unmarshal(b, &asInt); err != nil {
		return fmt.Errorf("cpu_freq must be an integer MHz value or \"Stock\": %w", err)
	}
	f.MHz = asInt
	return nil
}

// IceOverridesConfig is firmware_overrides.ice.
type IceOverridesConfig struct {
	CpuFreq   *FreqField `json:"cpu_freq,omitempty"`
	Overclock bool       `json:"overclock,omitempty"`
}

// FireOverridesConfig is firmware_overrides.fire.
type FireOverridesConfig struct {
	CpuFreq   *FreqField `json:"cpu_freq,omitempty"`
	Overclock bool       `json:"overclock,omitempty"`
	Vreg      string     `json:"vreg,omitempty"`
	ServeMode string     `json:"serve_mode,omitempty"`
}

// LEDOverridesConfig is firmware_overrides.led.
type LEDOverridesConfig struct {
	Enabled bool `json:"enabled"`
}

// SWDOverridesConfig is firmware_overrides.swd.
type SWDOverridesConfig struct {
	SWDEnabled bool `json:"swd_enabled"`
}

// FirmwareOverridesConfig is the optional firmware_overrides object.
type FirmwareOverridesConfig struct {
	Ice  *IceOverridesConfig  `json:"ice,omitempty"`
	Fire *FireOverridesConfig `json:"fire,omitempty"`
	LED  *LEDOverridesConfig  `json:"led,omitempty"`
	SWD  *SWDOverridesConfig  `json:"swd,omitempty"`
}

// ServeAlgParamsConfig is the optional opaque serve_alg_params object.
type ServeAlgParamsConfig struct {
	Params ByteVector `json:"params"`
}

// ByteVector unmarshals a plain JSON array of 0..255 integers into raw
// bytes. serve_alg_params.params is authored as such an array in config
// documents, not as encoding/json's default base64 string for []byte.
type ByteVector []byte

func (b *ByteVector) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("must be an array of byte values: %w", err)
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("value at index %d (%d) is out of byte range", i, v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// Parse decodes raw JSON bytes into a Document without resolving sources.
//
// Example:
//
//	doc, err := romconfig.Parse(raw)
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &errs.SchemaViolationError{Path: "$", Reason: err.Error()}
	}
	if doc.Version != 1 {
		return nil, &errs.SchemaViolationError{Path: "$.version", Reason: fmt.Sprintf("unsupported version %d", doc.Version)}
	}
	for i, rs := range doc.RomSets {
		if err := validateRomSetConfig(i, rs); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

func validateRomSetConfig(i int, rs RomSetConfig) error {
	path := fmt.Sprintf("$.rom_sets[%d]", i)
	switch rs.Type {
	case "single", "multi", "banked":
	default:
		return &errs.SchemaViolationError{Path: path + ".type", Reason: "must be single, multi, or banked"}
	}
	if len(rs.Roms) == 0 {
		return &errs.SchemaViolationError{Path: path + ".roms", Reason: "must contain at least one ROM"}
	}
	for j, r := range rs.Roms {
		rpath := fmt.Sprintf("%s.roms[%d]", path, j)
		if r.File == "" {
			return &errs.SchemaViolationError{Path: rpath + ".file", Reason: "must not be empty"}
		}
		if r.Type == "" {
			return &errs.SchemaViolationError{Path: rpath + ".type", Reason: "must not be empty"}
		}
		for _, pol := range []struct{ name, val string }{{"cs1", r.CS1}, {"cs2", r.CS2}, {"cs3", r.CS3}} {
			if pol.val == "" {
				continue
			}
			switch pol.val {
			case "active_low", "active_high", "not_used":
			default:
				return &errs.SchemaViolationError{Path: rpath + "." + pol.name, Reason: "must be active_low, active_high, or not_used"}
			}
		}
	}
	if sap := rs.ServeAlgParams; sap != nil {
		if len(sap.Params) != 8 {
			return &errs.SchemaViolationError{Path: path + ".serve_alg_params.params", Reason: "must be exactly 8 bytes"}
		}
		if sap.Params[0] != 0xFE || sap.Params[6] != 0xFE || sap.Params[7] != 0xFF {
			return &errs.SchemaViolationError{Path: path + ".serve_alg_params.params", Reason: "framing bytes must be 0xFE,...,0xFE,0xFF at positions 0,6,7"}
		}
	}
	return nil
}
