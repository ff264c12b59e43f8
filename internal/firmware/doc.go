// Package firmware models the per-ROM-set firmware overrides record: the
// optional ICE/FIRE CPU frequency, overclock, FIRE voltage, LED, and SWD
// settings that a config document may attach to a ROM set, and their
// fixed 16-byte wire encoding.
package firmware
