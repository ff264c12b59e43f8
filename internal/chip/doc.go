// Package chip holds the pure chip catalog: for each of the 21 supported
// chip types, its pin count, capacity, address width, and control-line
// semantics (which of CS1/CS2/CS3 exist, and whether each is active-low,
// active-high, or carries a CE/OE role instead of a chip-select role).
//
// The catalog is a closed, immutable table. Chip type is modeled as a
// small integer enum with typed constants rather than a string, matching
// the closed-sum style used throughout this repository for anything with
// a fixed vocabulary.
package chip
