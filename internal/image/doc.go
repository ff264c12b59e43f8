// Package image implements the Composer (C7) and Parser (C8): the fixed,
// versioned, little-endian binary layout that places a firmware code
// region, a metadata header, per-ROM-set records and descriptors,
// optional firmware overrides and serve_alg_params, and the mangled ROM
// tables into one flashable image — and its inverse.
//
// # Layout
//
// All multi-byte integers are little-endian. Record, descriptor, and
// overrides/params offsets are relative to the metadata header's start.
// Mangled-table offsets are absolute image offsets instead, because the
// runtime uses a table's base address directly as the high bits of a
// pointer; a table's offset is therefore never stored as a field — both
// Compose and Parse derive it deterministically by walking the ROM sets
// in declaration order and aligning each table to its own size, starting
// right after the last fixed-metadata byte.
package image
