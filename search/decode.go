package search

import (
	"strconv"
	"strings"
)

// Words is the raw content of the output buffer after readback.
type Words [SlotCount]uint32

// Result is the decoded view over Words.
type Result struct {
	// Count is slot 0 exactly as the kernel wrote it.
	Count uint32
	// Values holds at most MaxMatches values, in kernel write order.
	Values []uint32
	// Overflow reports that Count exceeded the slot capacity and values were dropped.
	Overflow bool
}

// Decode reads the match count and the stored values, clamping to the
// slots that exist.
func Decode(w Words) Result {
	count := w[0]
	n := count
	if n > MaxMatches {
		n = MaxMatches
	}
	values := make([]uint32, n)
	copy(values, w[1:1+n])
	return Result{
		Count:    count,
		Values:   values,
		Overflow: count > MaxMatches,
	}
}

// Dropped is the number of matches the kernel reported but could not store.
func (r Result) Dropped() uint32 {
	if !r.Overflow {
		return 0
	}
	return r.Count - uint32(len(r.Values))
}

// String renders the values as comma-joined decimals. No matches yields "".
func (r Result) String() string {
	if len(r.Values) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, v := range r.Values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	return sb.String()
}
