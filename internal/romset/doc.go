// Package romset implements the ROM-Set Builder (C6): given a pin map and
// a loaded (single, multi-CS, or bank-switched) ROM set, it drives the
// address mangler and byte mangler across every legal (address, CS, X)
// tuple and assembles the mangled table the composer will serialize.
package romset
