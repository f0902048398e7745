package logging

import (
	"fmt"
	"io"
)

// Diagnostics collects the non-fatal warnings a pipeline run emits, like
// unit rescalings and selection counts. Messages are recorded in order
// and, if a writer is attached, mirrored to it as they arrive. All methods
// are safe on a nil collector, which simply drops everything, so library
// code can report unconditionally.
type Diagnostics struct {
	w    io.Writer
	msgs []string
}

// NewDiagnostics creates a collector mirroring messages to w. A nil writer
// records without mirroring.
func NewDiagnostics(w io.Writer) *Diagnostics {
	return &Diagnostics{w: w}
}

// Warnf records a formatted warning.
func (d *Diagnostics) Warnf(format string, args ...interface{}) {
	if d == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	d.msgs = append(d.msgs, msg)
	if d.w != nil {
		fmt.Fprintf(d.w, "Warning: %s\n", msg)
	}
}

// Messages returns the recorded warnings in emission order.
func (d *Diagnostics) Messages() []string {
	if d == nil {
		return nil
	}
	return d.msgs
}
