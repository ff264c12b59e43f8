package hardware

import (
	"github.com/onerom/onerom/errs"
	"github.com/onerom/onerom/internal/chip"
)

// UnusedPin is the sentinel pin index meaning "no physical pin assigned;
// treated as tied low on the board".
const UnusedPin = 0xFF

// Pin is one GPIO assignment: a pin index (0..63, or UnusedPin) and the
// GPIO port/bank that owns it.
type Pin struct {
	Index uint8
	Port  uint8
}

// Used reports whether the pin is assigned to a physical GPIO.
func (p Pin) Used() bool { return p.Index != UnusedPin }

// csKey identifies one of a chip type's three control-line slots.
type csKey struct {
	chip Type
	slot int
}

// Type is a local alias kept distinct from chip.Type so hardware's pin-map
// keys are explicit about crossing the package boundary.
type Type = chip.Type

// Family is the MCU family a PCB revision is built around; the table-size
// formula (mangle.TableSize) branches on it, mirroring the original's
// per-family image_size rule.
type Family uint8

const (
	FamilyRP2350 Family = iota
	FamilySTM32F4
)

// PinMap is the immutable pin assignment for one PCB revision.
type PinMap struct {
	Revision string
	Family   Family

	// AddressPins[i] is the GPIO carrying logical address bit i, for the
	// widest address bus this PCB supports (up to 20 bits for 27C-series
	// boards); narrower chips simply don't consult the high entries.
	AddressPins [20]Pin

	// DataPins[j] is the GPIO carrying logical data bit j (0..15).
	DataPins [16]Pin

	// cs holds the per-(chip type, control-line slot) GPIO, since the same
	// logical CS1 line may live on a different physical pin depending on
	// which chip type occupies the socket.
	cs map[csKey]Pin

	X1, X2 Pin

	SelPins [7]Pin

	StatusLED  Pin
	VBUSDetect Pin
	SWDPins    [2]Pin

	// SelJumperPull bit i: 1 if SEL pin i reads logical-1 when its jumper
	// is closed; 0 if the reading is inverted.
	SelJumperPull uint8

	// XJumperPull bit 0 (X1) / bit 1 (X2): 1 if the pin reads logical-1
	// when its bank-select jumper is closed; 0 if the reading is inverted.
	XJumperPull uint8
}

// AddressPin returns the GPIO for logical address bit i.
func (m *PinMap) AddressPin(i int) Pin {
	if i < 0 || i >= len(m.AddressPins) {
		return Pin{Index: UnusedPin}
	}
	return m.AddressPins[i]
}

// DataPin returns the GPIO for logical data bit j.
func (m *PinMap) DataPin(j int) Pin {
	if j < 0 || j >= len(m.DataPins) {
		return Pin{Index: UnusedPin}
	}
	return m.DataPins[j]
}

// CSPin returns the GPIO for control-line slot (0, 1, or 2) of the given
// chip type. Slot 0 is CS1/CE, slot 1 is CS2/OE, slot 2 is CS3.
func (m *PinMap) CSPin(t chip.Type, slot int) Pin {
	p, ok := m.cs[csKey{chip: t, slot: slot}]
	if !ok {
		return Pin{Index: UnusedPin}
	}
	return p
}

// SetCSPin assigns the GPIO for control-line slot of chip type t. Used by
// table construction; PinMap is treated as frozen once Lookup returns it.
func (m *PinMap) SetCSPin(t chip.Type, slot int, p Pin) {
	if m.cs == nil {
		m.cs = make(map[csKey]Pin)
	}
	m.cs[csKey{chip: t, slot: slot}] = p
}

// SelJumperBit reports the logical value SEL pin i reads when its jumper
// is closed, given the board's jumper-pull polarity.
func (m *PinMap) SelJumperBit(i int, closed bool) bool {
	inverted := m.SelJumperPull&(1<<uint(i)) == 0
	if inverted {
		return !closed
	}
	return closed
}

// XJumperBit reports the logical value bank-select pin i (0 for X1, 1 for
// X2) reads given its raw GPIO state, applying the board's jumper-pull
// polarity.
func (m *PinMap) XJumperBit(i int, raw bool) bool {
	inverted := m.XJumperPull&(1<<uint(i)) == 0
	if inverted {
		return !raw
	}
	return raw
}

var revisions = buildRevisions()

// buildRevisions constructs the handful of reference PCB pin maps. Real
// deployments carry many revisions; these are the ones exercised by the
// composer's test fixtures and the concrete scenarios in its test suite.
func buildRevisions() map[string]*PinMap {
	m := map[string]*PinMap{}

	// fire-24-d: RP2350 board, address on GPIO 8..20, data on GPIO 0..7,
	// CS1 on GPIO 21 for a 24-pin socket.
	fire := &PinMap{Revision: "fire-24-d", Family: FamilyRP2350}
	for i := 0; i < 17; i++ {
		fire.AddressPins[i] = Pin{Index: uint8(8 + i), Port: 0}
	}
	for j := 0; j < 8; j++ {
		fire.DataPins[j] = Pin{Index: uint8(j), Port: 0}
	}
	for _, t := range []chip.Type{chip.Type2316, chip.Type2332, chip.Type2364, chip.Type2704, chip.Type2708, chip.Type2716, chip.Type2732, chip.Type2764, chip.Type6116} {
		fire.SetCSPin(t, 0, Pin{Index: 21, Port: 0})
		fire.SetCSPin(t, 1, Pin{Index: 22, Port: 0})
		fire.SetCSPin(t, 2, Pin{Index: 23, Port: 0})
	}
	fire.X1 = Pin{Index: 24, Port: 0}
	fire.X2 = Pin{Index: 25, Port: 0}
	for i := range fire.SelPins {
		fire.SelPins[i] = Pin{Index: uint8(26 + i), Port: 0}
	}
	fire.StatusLED = Pin{Index: 2, Port: 1}
	fire.VBUSDetect = Pin{Index: 3, Port: 1}
	fire.SWDPins = [2]Pin{{Index: 0, Port: 2}, {Index: 1, Port: 2}}
	fire.SelJumperPull = 0 // jumpers pull up, MCU pulls down: closed reads 0
	fire.XJumperPull = 0b11
	m[fire.Revision] = fire

	// ice-24-j: STM32F4 board, address from GPIO 0 and data on a separate
	// port. Control-line slots 0/1/2 sit on GPIO 13/12/11, just above the
	// highest address pin each 24-pin chip type uses, and X1/X2 on GPIO
	// 14/15, so every 24-pin index fits the 16-bit port.
	ice := &PinMap{Revision: "ice-24-j", Family: FamilySTM32F4}
	for i := 0; i < 17; i++ {
		ice.AddressPins[i] = Pin{Index: uint8(i), Port: 0}
	}
	for j := 0; j < 8; j++ {
		ice.DataPins[j] = Pin{Index: uint8(j), Port: 1}
	}
	for _, t := range []chip.Type{chip.Type2316, chip.Type2332, chip.Type2364, chip.Type2704, chip.Type2708, chip.Type2716, chip.Type2732, chip.Type2764, chip.Type6116} {
		ice.SetCSPin(t, 0, Pin{Index: 13, Port: 0})
		ice.SetCSPin(t, 1, Pin{Index: 12, Port: 0})
		ice.SetCSPin(t, 2, Pin{Index: 11, Port: 0})
	}
	ice.X1 = Pin{Index: 14, Port: 0}
	ice.X2 = Pin{Index: 15, Port: 0}
	for i := range ice.SelPins {
		ice.SelPins[i] = Pin{Index: uint8(22 + i), Port: 0}
	}
	ice.SelJumperPull = 0x7F
	ice.XJumperPull = 0b11
	m[ice.Revision] = ice

	// fire-28-a: 28-pin socket board; CS lines never participate in the
	// GPIO index (handled separately by the runtime), so no CS pins are
	// registered for 28-pin chip types.
	fire28 := &PinMap{Revision: "fire-28-a", Family: FamilyRP2350}
	for i := 0; i < 20; i++ {
		fire28.AddressPins[i] = Pin{Index: uint8(8 + i), Port: 0}
	}
	for j := 0; j < 8; j++ {
		fire28.DataPins[j] = Pin{Index: uint8(j), Port: 0}
	}
	fire28.SelJumperPull = 0
	m[fire28.Revision] = fire28

	return m
}

// Lookup returns the pin map for a named PCB revision.
//
// Example:
//
//	pm, err := hardware.Lookup("fire-24-d")
func Lookup(revision string) (*PinMap, error) {
	pm, ok := revisions[revision]
	if !ok {
		return nil, &errs.UnknownRevisionError{Revision: revision}
	}
	return pm, nil
}
