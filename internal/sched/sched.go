// Package sched implements the cycle-driven event scheduler described in
// spec §4.3: an ordered list of (fire_at_cycle, callback) pairs that the
// CPU drains as it announces consumed cycles. The list is kept sorted by
// absolute fire time as a small singly linked list, the same shape as the
// delta-time event list used by the corpus's mainframe-simulator scheduler,
// adapted here to store absolute cycle counts instead of relative deltas
// (the GBA scheduler is driven by a single free-running cycle counter, so
// absolute comparisons avoid re-biasing every entry on each Advance call).
package sched

// Callback is invoked when its scheduled cycle is reached. It may enqueue
// further entries (including rescheduling itself).
type Callback func(late int)

type event struct {
	at   uint64
	cb   Callback
	next *event
}

// Scheduler owns the free-running cycle counter and the ordered callback
// list described in spec §4.3.
type Scheduler struct {
	now  uint64
	head *event
}

// New returns a Scheduler with its cycle counter at zero.
func New() *Scheduler {
	return &Scheduler{}
}

// Now returns the current cycle counter.
func (s *Scheduler) Now() uint64 { return s.now }

// Schedule enqueues cb to fire when the cycle counter reaches at least
// `in` cycles from now. Entries are kept in ascending fire-time order.
func (s *Scheduler) Schedule(in uint64, cb Callback) {
	at := s.now + in
	ev := &event{at: at, cb: cb}

	if s.head == nil || at < s.head.at {
		ev.next = s.head
		s.head = ev
		return
	}
	p := s.head
	for p.next != nil && p.next.at <= at {
		p = p.next
	}
	ev.next = p.next
	p.next = ev
}

// Advance moves the cycle counter forward by n and fires, in order, every
// callback whose fire_at_cycle has been reached (spec §4.3 advance(n)).
// Callbacks run synchronously and may themselves call Schedule.
func (s *Scheduler) Advance(n int) {
	if n <= 0 {
		return
	}
	target := s.now + uint64(n)
	for s.head != nil && s.head.at <= target {
		ev := s.head
		s.head = ev.next
		// Step the counter to this entry's own fire time, so anything the
		// callback schedules is relative to that time and can still fall
		// within this Advance.
		s.now = ev.at
		late := int(s.now - ev.at)
		ev.cb(late)
	}
	s.now = target
}

// Pending reports whether any callback is still queued (used by tests).
func (s *Scheduler) Pending() bool { return s.head != nil }
