package chip

import "github.com/onerom/onerom/errs"

// Type is a closed enumeration of the 21 supported chip types. The integer
// values match the ordering used by the reference firmware's C enum so
// that a chip_type byte written by the composer means the same thing to
// any consumer that also follows that ordering.
type Type uint8

const (
	Type2316 Type = iota
	Type2332
	Type2364
	Type23128
	Type23256
	Type23512
	Type2704
	Type2708
	Type2716
	Type2732
	Type2764
	Type27128
	Type27256
	Type27512
	Type231024
	Type27C010
	Type27C020
	Type27C040
	Type27C080
	Type27C400
	Type6116

	typeCount
)

var typeNames = map[Type]string{
	Type2316:   "2316",
	Type2332:   "2332",
	Type2364:   "2364",
	Type23128:  "23128",
	Type23256:  "23256",
	Type23512:  "23512",
	Type2704:   "2704",
	Type2708:   "2708",
	Type2716:   "2716",
	Type2732:   "2732",
	Type2764:   "2764",
	Type27128:  "27128",
	Type27256:  "27256",
	Type27512:  "27512",
	Type231024: "231024",
	Type27C010: "27c010",
	Type27C020: "27c020",
	Type27C040: "27c040",
	Type27C080: "27c080",
	Type27C400: "27c400",
	Type6116:   "6116",
}

// String returns the canonical chip type name used in config documents.
func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "unknown"
}

// ParseType resolves a config-document chip type name to a Type.
//
// Example:
//
//	t, err := chip.ParseType("2364")
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, &errs.UnknownChipTypeError{Name: name}
}

// Polarity is the active-state semantics of a control line.
type Polarity uint8

const (
	ActiveLow Polarity = iota
	ActiveHigh
	NotUsed
)

func (p Polarity) String() string {
	switch p {
	case ActiveLow:
		return "active_low"
	case ActiveHigh:
		return "active_high"
	default:
		return "not_used"
	}
}

// ParsePolarity resolves a config-document polarity string.
func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "active_low":
		return ActiveLow, nil
	case "active_high":
		return ActiveHigh, nil
	case "not_used":
		return NotUsed, nil
	default:
		return 0, &errs.SchemaViolationError{Path: "cs_polarity", Reason: "must be active_low, active_high, or not_used, got " + s}
	}
}

// Role distinguishes a plain chip-select line from the CE/OE roles used by
// 27-series EPROMs.
type Role uint8

const (
	RoleCS Role = iota
	RoleCE
	RoleOE
	RoleUnused
)

// ControlLine describes one of a chip's up-to-three control lines.
type ControlLine struct {
	Role     Role
	Polarity Polarity
}

// Function distinguishes mask-ROM/EPROM chips from SRAM.
type Function uint8

const (
	FunctionROM Function = iota
	FunctionRAM
)

// Descriptor is the immutable catalog entry for one chip type.
type Descriptor struct {
	Type         Type
	PinCount     int
	CapacityB    int
	AddressBits  int
	DataBits     int
	Function     Function
	Control      [3]ControlLine
	NumControl   int
	Is27Series   bool // CE/OE control-line semantics rather than CS1..CS3
	Unsupported  bool // table generation refused; data model present only
}

var catalog = buildCatalog()

func buildCatalog() map[Type]Descriptor {
	rom := func(t Type, pins, capacity, addrBits int, control [3]ControlLine, n int, is27 bool) Descriptor {
		return Descriptor{
			Type: t, PinCount: pins, CapacityB: capacity, AddressBits: addrBits,
			DataBits: 8, Function: FunctionROM, Control: control, NumControl: n, Is27Series: is27,
		}
	}
	cl := func(role Role, pol Polarity) ControlLine { return ControlLine{Role: role, Polarity: pol} }
	unused := cl(RoleUnused, NotUsed)

	m := map[Type]Descriptor{
		Type2316: rom(Type2316, 24, 2048, 11, [3]ControlLine{cl(RoleCS, ActiveLow), cl(RoleCS, ActiveLow), cl(RoleCS, ActiveHigh)}, 3, false),
		Type2332: rom(Type2332, 24, 4096, 12, [3]ControlLine{cl(RoleCS, ActiveLow), cl(RoleCS, ActiveLow), unused}, 2, false),
		Type2364: rom(Type2364, 24, 8192, 13, [3]ControlLine{cl(RoleCS, ActiveLow), unused, unused}, 1, false),
		Type2704: rom(Type2704, 24, 512, 9, [3]ControlLine{cl(RoleCS, ActiveLow), unused, unused}, 1, false),
		Type2708: rom(Type2708, 24, 1024, 10, [3]ControlLine{cl(RoleCS, ActiveLow), cl(RoleCS, ActiveHigh), unused}, 2, false),
		Type2716: rom(Type2716, 24, 2048, 11, [3]ControlLine{cl(RoleCS, ActiveLow), unused, unused}, 1, false),
		Type2732: rom(Type2732, 24, 4096, 12, [3]ControlLine{cl(RoleCS, ActiveLow), unused, unused}, 1, false),
		Type6116: {Type: Type6116, PinCount: 24, CapacityB: 2048, AddressBits: 11, DataBits: 8, Function: FunctionRAM,
			Control: [3]ControlLine{cl(RoleCS, ActiveLow), cl(RoleCS, ActiveHigh), unused}, NumControl: 2},

		Type23128:  rom(Type23128, 28, 16384, 14, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),
		Type23256:  rom(Type23256, 28, 32768, 15, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),
		Type23512:  rom(Type23512, 28, 65536, 16, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),
		Type231024: rom(Type231024, 28, 131072, 17, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),

		Type2764:   rom(Type2764, 28, 8192, 13, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),
		Type27128:  rom(Type27128, 28, 16384, 14, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),
		Type27256:  rom(Type27256, 28, 32768, 15, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),
		Type27512:  rom(Type27512, 28, 65536, 16, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),
		Type27C010: rom(Type27C010, 28, 131072, 17, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),
		Type27C020: rom(Type27C020, 28, 262144, 18, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),
		Type27C040: rom(Type27C040, 28, 524288, 19, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),
		Type27C080: rom(Type27C080, 28, 1048576, 20, [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused}, 2, true),
	}
	c400 := Descriptor{
		Type: Type27C400, PinCount: 40, CapacityB: 1048576, AddressBits: 20, DataBits: 16,
		Function: FunctionROM, Control: [3]ControlLine{cl(RoleCE, ActiveLow), cl(RoleOE, ActiveLow), unused},
		NumControl: 2, Is27Series: true, Unsupported: true,
	}
	m[Type27C400] = c400
	return m
}

// Lookup returns the catalog entry for t.
//
// Example:
//
//	d, err := chip.Lookup(chip.Type2364)
func Lookup(t Type) (Descriptor, error) {
	d, ok := catalog[t]
	if !ok {
		return Descriptor{}, &errs.UnknownChipTypeError{Name: t.String()}
	}
	return d, nil
}

// CapacityBytes returns the chip's source-image size in bytes.
func CapacityBytes(t Type) (int, error) {
	d, err := Lookup(t)
	if err != nil {
		return 0, err
	}
	return d.CapacityB, nil
}

// NumControlLines returns the number of control lines the chip type uses (1..3).
func NumControlLines(t Type) (int, error) {
	d, err := Lookup(t)
	if err != nil {
		return 0, err
	}
	return d.NumControl, nil
}
