package image

import (
	"bytes"
	"encoding/binary"

	"github.com/onerom/onerom/errs"
	"github.com/onerom/onerom/internal/chip"
	"github.com/onerom/onerom/internal/romset"
	"github.com/onerom/onerom/log"
)

// Config holds the composer's options.
type Config struct {
	Logger log.Logger

	// BootLoggingFilenames, when true, writes each ROM descriptor's
	// source filename so the runtime can log which image it is serving.
	BootLoggingFilenames bool
}

func defaultConfig() Config {
	return Config{Logger: log.Nop{}}
}

// Option is a functional option for Compose.
type Option func(*Config)

// WithLogger sets the logger used to report composition progress.
func WithLogger(l log.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithBootLoggingFilenames enables writing each ROM's source filename
// into its descriptor record.
func WithBootLoggingFilenames(enabled bool) Option {
	return func(c *Config) { c.BootLoggingFilenames = enabled }
}

// builtRecord carries one ROM set's work-in-progress layout while Compose
// walks the fixed-metadata region before the mangled tables.
type builtRecord struct {
	set             romset.Built
	recordOffset    uint32
	descOffsets     []uint32
	descBytes       [][]byte
	overridesOffset uint32
	overridesBytes  []byte
	sapOffset       uint32
	sapBytes        []byte
}

// Compose assembles a firmware binary and a set of built ROM sets into a
// single flashable image, per the fixed layout documented in this
// package. Compose never writes to disk; callers are expected to write
// the returned bytes to a temp path and rename on success.
//
// Example:
//
//	data, err := image.Compose(fwImage, builtSets, image.WithLogger(myLogger))
func Compose(fwImage []byte, sets []romset.Built, opts ...Option) ([]byte, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	cfg.Logger.Debug("compose starting", "rom_sets", len(sets), "fw_bytes", len(fwImage))

	if len(sets) > 255 {
		return nil, &errs.LayoutError{Reason: "more than 255 ROM sets does not fit the 1-byte rom_set_count field"}
	}

	headerStart := alignUp(uint32(len(fwImage)), headerAlign)
	offsetTableLen := uint32(4 * len(sets))
	headerLen := uint32(headerFixedLen) + offsetTableLen

	records := make([]builtRecord, len(sets))
	cursor := headerLen

	for i, s := range sets {
		br := builtRecord{set: s}

		for _, r := range s.Roms {
			br.descBytes = append(br.descBytes, encodeRomDescriptor(r, cfg.BootLoggingFilenames))
		}

		br.recordOffset = cursor
		cursor += uint32(romSetRecordFixed) + uint32(4*len(s.Roms))

		for _, b := range br.descBytes {
			br.descOffsets = append(br.descOffsets, cursor)
			cursor += uint32(len(b))
		}

		if s.Overrides != nil {
			enc := s.Overrides.Encode()
			br.overridesBytes = enc[:]
			br.overridesOffset = cursor
			cursor += uint32(len(br.overridesBytes))
		} else {
			br.overridesOffset = AbsentOffset
		}

		if s.ServeAlgParams != nil {
			br.sapBytes = s.ServeAlgParams
			br.sapOffset = cursor
			cursor += uint32(len(br.sapBytes))
		} else {
			br.sapOffset = AbsentOffset
		}

		records[i] = br
	}

	afterMetadata := headerStart + cursor
	sizes := make([]uint32, len(sets))
	for i, s := range sets {
		sizes[i] = uint32(len(s.Table))
	}
	tableOffsets, totalLen, err := placeTables(afterMetadata, sizes)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, totalLen)
	copy(buf, fwImage)

	writeHeader(buf, headerStart, len(sets), records, cfg.BootLoggingFilenames)

	for i, br := range records {
		writeRomSetRecord(buf, headerStart, br)
		for j, b := range br.descBytes {
			copy(buf[headerStart+br.descOffsets[j]:], b)
		}
		if br.overridesBytes != nil {
			copy(buf[headerStart+br.overridesOffset:], br.overridesBytes)
		}
		if br.sapBytes != nil {
			copy(buf[headerStart+br.sapOffset:], br.sapBytes)
		}
		copy(buf[tableOffsets[i]:], br.set.Table)
	}

	cfg.Logger.Debug("compose complete", "image_bytes", len(buf))
	return buf, nil
}

func writeHeader(buf []byte, headerStart uint32, romSetCount int, records []builtRecord, bootLogging bool) {
	h := buf[headerStart:]
	copy(h[0:16], Magic)
	h[16] = CurrentVersion
	h[17] = byte(romSetCount)
	if bootLogging {
		h[18] = flagBootLoggingFilenames
	}
	// h[19] padding left zero
	for i, r := range records {
		off := 20 + 4*i
		binary.LittleEndian.PutUint32(h[off:off+4], r.recordOffset)
	}
}

func writeRomSetRecord(buf []byte, headerStart uint32, br builtRecord) {
	s := br.set
	r := buf[headerStart+br.recordOffset:]
	r[0] = byte(len(s.Roms))
	r[1] = byte(s.ServeMode)
	extra := byte(extraInfoAbsent)
	if s.Overrides != nil || s.ServeAlgParams != nil {
		extra = extraInfoPresent
	}
	r[2] = extra
	// r[3] padding left zero
	binary.LittleEndian.PutUint32(r[4:8], uint32(len(s.Table)))
	binary.LittleEndian.PutUint32(r[8:12], br.overridesOffset)
	binary.LittleEndian.PutUint32(r[12:16], br.sapOffset)
	for i, off := range br.descOffsets {
		pos := romSetRecordFixed + 4*i
		binary.LittleEndian.PutUint32(r[pos:pos+4], off)
	}
}

func encodeRomDescriptor(r romset.RomRecord, withFilename bool) []byte {
	fixed := []byte{byte(r.ChipType), csStateByte(r.CS[0]), csStateByte(r.CS[1]), csStateByte(r.CS[2])}
	if !withFilename {
		return fixed
	}
	var buf bytes.Buffer
	buf.Write(fixed)
	buf.WriteString(r.Filename)
	buf.WriteByte(0)
	return buf.Bytes()
}

func csStateByte(p chip.Polarity) byte { return byte(p) }
