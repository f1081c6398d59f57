// Package handler collects the fatal-failure path spec.md §7 describes:
// a source the tokenizer/parser cannot turn into an AST is reported as a
// single fatal error, never as partial diagnostics. It is the Go analogue
// of the teacher's own *Handler, trimmed to the one severity the core
// actually needs to surface past itself.
package handler

import (
	"github.com/does-it-throw/analyzer/internal/loc"
)

// Handler accumulates the fatal parse error for one Analyze call, if any.
// It is not safe for concurrent use; each call to Analyze constructs its
// own Handler, matching spec.md §5's "no global mutable state."
type Handler struct {
	filename string
	err      error
}

func New(filename string) *Handler {
	return &Handler{filename: filename}
}

// Fail records the fatal error. Only the first call sticks, mirroring
// spec.md §7's "no partial diagnostics" — once parsing has failed there is
// nothing further worth recording.
func (h *Handler) Fail(err error) {
	if h.err == nil {
		h.err = err
	}
}

func (h *Handler) Failed() bool {
	return h.err != nil
}

func (h *Handler) Err() error {
	return h.err
}

// Message renders the fatal error in the one-line shape spec.md §7 asks
// the caller to receive.
func (h *Handler) Message() loc.Message {
	text := ""
	if h.err != nil {
		text = h.err.Error()
	}
	return loc.Message{Text: text, Filename: h.filename}
}
