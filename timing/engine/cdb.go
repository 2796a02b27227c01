package engine

// broadcast is one cycle's worth of common-data-bus traffic: the single
// result the bus is allowed to carry, captured at CDB arbitration time and
// drained in the following tick, just before that tick's arbitration.
type broadcast struct {
	pending bool
	dest    int
	source  Tag
}

// cdb is the single-slot common data bus. Only one reservation station may
// seize it per cycle; everyone else waiting on the same register stalls
// another cycle, matching spec.md §4.2's "at most one writeback per
// cycle" rule.
type cdb struct {
	current broadcast
}

func (c *cdb) seize(dest int, source Tag) {
	c.current = broadcast{pending: true, dest: dest, source: source}
}

// drain returns the previous cycle's broadcast (if any) and clears it.
func (c *cdb) drain() (broadcast, bool) {
	b := c.current
	c.current = broadcast{}
	return b, b.pending
}
