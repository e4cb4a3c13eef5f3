package ranger

// Range is an inclusive [From..To] interval of column values.
type Range struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Len returns the number of distinct integer values in the range.
func (r Range) Len() uint64 {
	return uint64(r.To) - uint64(r.From) + 1
}

// Split divides [min..max] into at most parts contiguous ranges of
// (max-min)/parts+1 values each. The last range is clamped to max.
func Split(min, max int64, parts int) []Range {
	if max < min {
		return nil
	}

	if parts < 1 {
		parts = 1
	}

	// Offsets from min are unsigned so a span over the whole int64 domain
	// does not overflow.
	span := uint64(max) - uint64(min)
	step := span/uint64(parts) + 1
	last := step - 1

	out := make([]Range, 0, parts)

	for off := uint64(0); ; off += step {
		end := span
		if span-off > last {
			end = off + last
		}

		out = append(out, Range{
			From: int64(uint64(min) + off),
			To:   int64(uint64(min) + end),
		})

		if end == span {
			break
		}
	}

	return out
}
