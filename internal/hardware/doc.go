// Package hardware holds the pure per-PCB-revision pin map: which GPIO
// carries each logical address/data/chip-select/bank/select line, and the
// jumper-pull polarity for image-select pins.
//
// # Pin maps
//
// A PinMap never changes after construction; all lookups are read-only.
// Some chip-select pins vary by chip type even on the same PCB revision
// (a 2364 and a 2316 may use different physical pins for CS1), so CS pin
// assignment is keyed by (line, chip type) rather than flattened to a
// single assignment.
//
// Example:
//
//	pm, err := hardware.Lookup("fire-24-d")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pin := pm.AddressPin(0) // GPIO index carrying A0
package hardware
