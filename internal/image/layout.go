package image

import "github.com/onerom/onerom/errs"

// Magic is the 16-byte, null-terminated ASCII magic identifying a metadata
// header.
const Magic = "ONEROM_METADATA\x00"

// CurrentVersion is the schema version this package writes.
const CurrentVersion = 1

// AbsentOffset is the sentinel stored in place of an offset field when the
// referenced optional record is not present.
const AbsentOffset uint32 = 0xFFFFFFFF

// ScanWindow bounds how far into the image the parser will scan looking
// for Magic when no offset hint is supplied.
const ScanWindow = 4 * 1024 * 1024

const (
	headerFixedLen     = 16 + 1 + 1 + 2 // magic + version + rom_set_count + padding
	headerAlign        = 16
	romSetRecordFixed  = 1 + 1 + 1 + 1 + 4 + 4 + 4 // rom_count,serve_mode,extra_info,padding,size,offset_fw,offset_sap
	romDescriptorFixed = 1 + 1 + 1 + 1              // chip_type, cs1, cs2, cs3
)

// extraInfo flag values.
const (
	extraInfoAbsent  = 0
	extraInfoPresent = 1
)

// flagBootLoggingFilenames is set in header byte 18 when every ROM
// descriptor in this image carries a variable-length filename after its
// fixed fields.
const flagBootLoggingFilenames = 1 << 0

// alignUp rounds v up to the next multiple of align (align must be a
// power of two).
func alignUp(v, align uint32) uint32 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// isPowerOfTwo reports whether v is a power of two.
func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

// placeTables assigns each table an absolute image offset, aligned to its
// own size, starting at base and proceeding in declaration order. Both
// Compose and Parse call this with the same (base, sizes) to agree on
// table placement without storing per-table offsets on the wire.
func placeTables(base uint32, sizes []uint32) ([]uint32, uint32, error) {
	offsets := make([]uint32, len(sizes))
	cur := base
	for i, size := range sizes {
		if size == 0 {
			offsets[i] = cur
			continue
		}
		if !isPowerOfTwo(size) {
			return nil, 0, &errs.LayoutError{Reason: "mangled table size must be a power of two"}
		}
		cur = alignUp(cur, size)
		offsets[i] = cur
		cur += size
	}
	return offsets, cur, nil
}
