// Package loc holds the byte-offset and line/column primitives shared by
// the tokenizer, the analyzer, and the emitter. Offsets are always
// zero-based; Positions are one-based lines with zero-based columns, per
// the external wire contract.
package loc

// Span is a half-open range of byte offsets into a source buffer. The
// start is inclusive, the end is exclusive.
type Span struct {
	Start, End int
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Position is a one-based line, zero-based column pair, the shape
// diagnostics are emitted in.
type Position struct {
	Line      int `js:"line" json:"line"`
	Character int `js:"character" json:"character"`
}

// Range is a pair of Positions bracketing a diagnostic or a declaration
// head.
type Range struct {
	Start Position `js:"start" json:"start"`
	End   Position `js:"end" json:"end"`
}

// LineTable maps byte offsets to one-based line/zero-based column pairs.
// It is built once per source file and consulted on emission only;
// everything upstream of the emitter carries Spans, never Positions.
type LineTable struct {
	// offsets[i] is the byte offset where line i+2 begins (line 1 always
	// begins at offset 0, so it is never stored).
	offsets []int
}

// NewLineTable scans source once for line breaks. It treats "\n" as the
// line terminator; a lone "\r" is folded into the preceding line like the
// teacher's own line-offset tables do for CRLF sources.
func NewLineTable(source string) *LineTable {
	t := &LineTable{}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			t.offsets = append(t.offsets, i+1)
		}
	}
	return t
}

// Position converts a byte offset into a one-based line / zero-based
// column pair. Offsets past the end of the source clamp to the last known
// line.
func (t *LineTable) Position(offset int) Position {
	// binary search for the last line start <= offset
	lo, hi := 0, len(t.offsets)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.offsets[mid] <= offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	line := lo + 1
	lineStart := 0
	if lo > 0 {
		lineStart = t.offsets[lo-1]
	}
	return Position{Line: line, Character: offset - lineStart}
}

// Range converts a Span into a Range using the receiver's line table.
func (t *LineTable) Range(span Span) Range {
	return Range{Start: t.Position(span.Start), End: t.Position(span.End)}
}
