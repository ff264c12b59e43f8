package image

import (
	"bytes"
	"encoding/binary"

	"github.com/onerom/onerom/errs"
	"github.com/onerom/onerom/internal/chip"
	"github.com/onerom/onerom/internal/firmware"
	"github.com/onerom/onerom/internal/hardware"
	"github.com/onerom/onerom/internal/mangle"
	"github.com/onerom/onerom/internal/romset"
)

// RomDescriptor is one parsed ROM entry within a ROM set.
type RomDescriptor struct {
	ChipType chip.Type
	CS       [3]chip.Polarity
	Filename string
}

// RomSet is one parsed ROM-set record.
type RomSet struct {
	ServeMode      romset.ServeMode
	Roms           []RomDescriptor
	TableOffset    uint32
	TableSize      uint32
	Overrides      *firmware.Overrides
	ServeAlgParams []byte
}

// Image is a parsed metadata header and the ROM sets it describes.
type Image struct {
	raw          []byte
	HeaderOffset uint32
	Version      uint8
	RomSets      []RomSet
}

// Table returns the raw mangled table bytes for ROM set i.
func (img *Image) Table(i int) []byte {
	s := img.RomSets[i]
	return img.raw[s.TableOffset : s.TableOffset+s.TableSize]
}

// Parse locates the metadata header (scanning the first ScanWindow bytes
// for Magic, or honoring offsetHint if given), validates its version, and
// enumerates every ROM set.
//
// Example:
//
//	img, err := image.Parse(data)
func Parse(data []byte, offsetHint ...uint32) (*Image, error) {
	headerStart, err := findHeader(data, offsetHint...)
	if err != nil {
		return nil, err
	}

	if headerStart+uint32(headerFixedLen) > uint32(len(data)) {
		return nil, &errs.IntegrityError{Reason: "image truncated before header fields"}
	}
	h := data[headerStart:]
	version := h[16]
	if version != CurrentVersion {
		return nil, &errs.UnsupportedError{Reason: "unsupported metadata version"}
	}
	romSetCount := int(h[17])
	bootLogging := h[18]&flagBootLoggingFilenames != 0

	offsetTableEnd := headerFixedLen + 4*romSetCount
	if int(headerStart)+offsetTableEnd > len(data) {
		return nil, &errs.IntegrityError{Reason: "image truncated within offset table"}
	}

	recordOffsets := make([]uint32, romSetCount)
	for i := 0; i < romSetCount; i++ {
		off := headerFixedLen + 4*i
		recordOffsets[i] = binary.LittleEndian.Uint32(h[off : off+4])
	}

	img := &Image{raw: data, HeaderOffset: headerStart, Version: version}

	sizes := make([]uint32, romSetCount)
	pendings := make([]pendingRecord, romSetCount)

	for i, recOff := range recordOffsets {
		if int(headerStart+recOff)+romSetRecordFixed > len(data) {
			return nil, &errs.IntegrityError{Reason: "image truncated within a ROM-set record"}
		}
		r := data[headerStart+recOff:]
		p := pendingRecord{}
		p.romCount = int(r[0])
		p.serveMode = r[1]
		p.extra = r[2]
		p.size = binary.LittleEndian.Uint32(r[4:8])
		p.overridesOff = binary.LittleEndian.Uint32(r[8:12])
		p.sapOff = binary.LittleEndian.Uint32(r[12:16])
		for j := 0; j < p.romCount; j++ {
			pos := romSetRecordFixed + 4*j
			if pos+4 > len(r) {
				return nil, &errs.IntegrityError{Reason: "image truncated within ROM-descriptor offset table"}
			}
			p.descOffsets = append(p.descOffsets, binary.LittleEndian.Uint32(r[pos:pos+4]))
		}
		pendings[i] = p
		sizes[i] = p.size
	}

	afterMetadata := headerStart + tablesBaseFromRecords(data, headerStart, recordOffsets, pendings, bootLogging)
	tableOffsets, _, err := placeTables(afterMetadata, sizes)
	if err != nil {
		return nil, err
	}

	for i, p := range pendings {
		rs := RomSet{
			ServeMode:   romset.ServeMode(p.serveMode),
			TableOffset: tableOffsets[i],
			TableSize:   p.size,
		}
		for _, doff := range p.descOffsets {
			rd, err := parseRomDescriptor(data, headerStart+doff, bootLogging)
			if err != nil {
				return nil, err
			}
			rs.Roms = append(rs.Roms, rd)
		}
		if p.overridesOff != AbsentOffset {
			ov, err := firmware.Decode(data[headerStart+p.overridesOff:])
			if err != nil {
				return nil, err
			}
			rs.Overrides = &ov
		}
		if p.sapOff != AbsentOffset {
			if int(headerStart+p.sapOff)+8 > len(data) {
				return nil, &errs.IntegrityError{Reason: "image truncated within serve_alg_params"}
			}
			rs.ServeAlgParams = append([]byte{}, data[headerStart+p.sapOff:headerStart+p.sapOff+8]...)
		}
		img.RomSets = append(img.RomSets, rs)
	}

	return img, nil
}

// pendingRecord holds one ROM-set record's fields while Parse is still
// discovering where the mangled-table region begins.
type pendingRecord struct {
	serveMode    byte
	extra        byte
	size         uint32
	overridesOff uint32
	sapOff       uint32
	descOffsets  []uint32
	romCount     int
}

// tablesBaseFromRecords computes the header-relative offset immediately
// after the last fixed-metadata byte across every record, descriptor,
// overrides record, and serve_alg_params vector — the point at which the
// mangled-table region begins, before per-table alignment.
func tablesBaseFromRecords(data []byte, headerStart uint32, recordOffsets []uint32, pendings []pendingRecord, bootLogging bool) uint32 {
	var max uint32
	for i, recOff := range recordOffsets {
		p := pendings[i]
		end := recOff + uint32(romSetRecordFixed) + uint32(4*p.romCount)
		if end > max {
			max = end
		}
		for _, doff := range p.descOffsets {
			end := doff + uint32(descriptorLen(data, headerStart, doff, bootLogging))
			if end > max {
				max = end
			}
		}
		if p.overridesOff != AbsentOffset {
			end := p.overridesOff + firmware.RecordSize
			if end > max {
				max = end
			}
		}
		if p.sapOff != AbsentOffset {
			end := p.sapOff + 8
			if end > max {
				max = end
			}
		}
	}
	return max
}

// descriptorLen returns the on-wire length of the descriptor at offset,
// scanning for a null terminator when boot-logging filenames are enabled.
func descriptorLen(data []byte, headerStart, offset uint32, bootLogging bool) int {
	if !bootLogging {
		return romDescriptorFixed
	}
	abs := headerStart + offset + uint32(romDescriptorFixed)
	nul := bytes.IndexByte(data[abs:], 0)
	if nul < 0 {
		return romDescriptorFixed
	}
	return romDescriptorFixed + nul + 1
}

func parseRomDescriptor(data []byte, offset uint32, bootLogging bool) (RomDescriptor, error) {
	if int(offset)+romDescriptorFixed > len(data) {
		return RomDescriptor{}, &errs.IntegrityError{Reason: "image truncated within a ROM descriptor"}
	}
	b := data[offset:]
	rd := RomDescriptor{
		ChipType: chip.Type(b[0]),
		CS:       [3]chip.Polarity{chip.Polarity(b[1]), chip.Polarity(b[2]), chip.Polarity(b[3])},
	}
	if bootLogging {
		rest := b[romDescriptorFixed:]
		if nul := bytes.IndexByte(rest, 0); nul >= 0 {
			rd.Filename = string(rest[:nul])
		}
	}
	return rd, nil
}

func findHeader(data []byte, offsetHint ...uint32) (uint32, error) {
	if len(offsetHint) > 0 {
		h := offsetHint[0]
		if int(h)+16 <= len(data) && bytes.Equal(data[h:h+16], []byte(Magic)) {
			return h, nil
		}
		return 0, &errs.IntegrityError{Reason: "magic not found at supplied offset hint"}
	}
	window := len(data)
	if window > ScanWindow {
		window = ScanWindow
	}
	idx := bytes.Index(data[:window], []byte(Magic))
	if idx < 0 {
		return 0, &errs.IntegrityError{Reason: "magic not found within scan window"}
	}
	return uint32(idx), nil
}

// Demangle recovers ROM romIdx's original bytes from ROM-set setIdx's
// mangled table, using pm to compute the same address index the runtime
// uses and the chip catalog to know the chip's address width and data
// width.
//
// Example:
//
//	src, err := img.Demangle(pm, 0, 0)
func (img *Image) Demangle(pm *hardware.PinMap, setIdx, romIdx int) ([]byte, error) {
	set := img.RomSets[setIdx]
	if romIdx < 0 || romIdx >= len(set.Roms) {
		return nil, &errs.IntegrityError{Reason: "ROM index out of range for this ROM set"}
	}
	rd := set.Roms[romIdx]
	desc, err := chip.Lookup(rd.ChipType)
	if err != nil {
		return nil, err
	}

	includeX := set.ServeMode != romset.ServeSingle
	table := img.Table(setIdx)
	out := make([]byte, desc.CapacityB)

	var x1, x2 bool
	multiHigh := false
	switch set.ServeMode {
	case romset.ServeBankSwitched:
		x1 = romIdx&1 != 0
		x2 = romIdx&2 != 0
	case romset.ServeMultiAnyCS:
		// CS1, X1 and X2 select ROM 0, 1 and 2 under ROM 0's CS1 polarity;
		// the two lines not selecting romIdx are held inactive.
		multiHigh = set.Roms[0].CS[0] == chip.ActiveHigh
		x1 = (romIdx == 1) == multiHigh
		x2 = (romIdx == 2) == multiHigh
	}

	for addr := 0; addr < desc.CapacityB; addr++ {
		tuple := mangle.Tuple{Addr: uint32(addr), X1: x1, X2: x2}
		for slot := 0; slot < desc.NumControl; slot++ {
			tuple.CS[slot] = rd.CS[slot] == chip.ActiveHigh
		}
		if set.ServeMode == romset.ServeMultiAnyCS && romIdx != 0 {
			tuple.CS[0] = !multiHigh
		}
		idx := mangle.AddressIndex(pm, desc, includeX, tuple)
		if int(idx) >= len(table) {
			return nil, &errs.IntegrityError{Reason: "computed index exceeds mangled table bounds"}
		}
		out[addr] = byte(mangle.DemangleByte(pm, desc.DataBits, table[idx]))
	}
	return out, nil
}
