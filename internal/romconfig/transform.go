package romconfig

import "github.com/onerom/onerom/errs"

// applyTransforms runs the slice → duplicate → pad/truncate pipeline
// against src per the ROM's configured transform fields, in that fixed
// order, returning the resulting bytes.
func applyTransforms(src []byte, r RomConfig) ([]byte, error) {
	out := src

	if r.Offset != nil || r.Length != nil {
		offset := 0
		if r.Offset != nil {
			offset = *r.Offset
		}
		length := len(out) - offset
		if r.Length != nil {
			length = *r.Length
		}
		if offset < 0 || offset > len(out) || length < 0 || offset+length > len(out) {
			return nil, &errs.SchemaViolationError{Path: "offset/length", Reason: "slice out of range of source bytes"}
		}
		out = out[offset : offset+length]
	}

	if r.DuplicateTo != nil {
		target := *r.DuplicateTo
		if target < len(out) {
			return nil, &errs.SchemaViolationError{Path: "duplicate_to", Reason: "must not be smaller than the source length"}
		}
		if len(out) == 0 {
			return nil, &errs.SchemaViolationError{Path: "duplicate_to", Reason: "cannot duplicate zero-length source"}
		}
		dup := make([]byte, target)
		for i := 0; i < target; i += len(out) {
			copy(dup[i:], out)
		}
		out = dup
	}

	if r.PadTo != nil {
		target := *r.PadTo
		if target < len(out) {
			return nil, &errs.SchemaViolationError{Path: "pad_to", Reason: "must not be smaller than the current length"}
		}
		padded := make([]byte, target)
		copy(padded, out)
		for i := len(out); i < target; i++ {
			padded[i] = 0xFF
		}
		out = padded
	}

	if r.TruncateTo != nil {
		target := *r.TruncateTo
		if target > len(out) {
			return nil, &errs.SchemaViolationError{Path: "truncate_to", Reason: "must not exceed the current length"}
		}
		out = out[:target]
	}

	return out, nil
}
