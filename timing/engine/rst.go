// Package engine implements the reservation-station scheduler, the
// register status table, the common data bus, and the timeline/statistics
// bookkeeping that together form the core of the Tomasulo simulator.
package engine

import "github.com/archsim/tomasulo16/insts"

// Tag names the reservation station that will produce a register's next
// value: its functional-unit class plus its index within that class's
// pool.
type Tag struct {
	Class insts.FUClass
	Index int
}

// RST is the register status table: for each of R0..R7, either the
// READY sentinel (represented as a nil producer) or a producer Tag.
type RST struct {
	producer [8]*Tag
}

// NewRST creates a register status table with every register READY.
func NewRST() *RST {
	return &RST{}
}

// IsReady reports whether reg has no outstanding producer. R0 is always
// ready.
func (r *RST) IsReady(reg int) bool {
	if reg == 0 {
		return true
	}
	return r.producer[reg] == nil
}

// Status returns the producer tag for reg, or nil if READY.
func (r *RST) Status(reg int) *Tag {
	return r.producer[reg]
}

// SetBusy records that tag will produce reg's next value. Writing R0 is a
// documented no-op: the spec's invariant error ("attempting to mark R0 as
// a producer") is caught here and silently ignored rather than
// propagated. A later issue targeting the same register simply overwrites
// the previous tag, matching "later issue owns the register".
func (r *RST) SetBusy(reg int, tag Tag) {
	if reg <= 0 || reg > 7 {
		return
	}
	t := tag
	r.producer[reg] = &t
}

// SetReady marks reg READY. Idempotent, and a no-op for R0 or any
// out-of-range register id.
func (r *RST) SetReady(reg int) {
	if reg <= 0 || reg > 7 {
		return
	}
	r.producer[reg] = nil
}
