package sched

import "testing"

func TestAdvanceFiresInOrder(t *testing.T) {
	s := New()
	var order []string
	s.Schedule(10, func(int) { order = append(order, "a") })
	s.Schedule(5, func(int) { order = append(order, "b") })
	s.Advance(4)
	if len(order) != 0 {
		t.Fatalf("nothing should have fired yet, got %v", order)
	}
	s.Advance(1) // now at 5
	if len(order) != 1 || order[0] != "b" {
		t.Fatalf("expected b to fire first, got %v", order)
	}
	s.Advance(10) // now at 15, a (at 10) should fire
	if len(order) != 2 || order[1] != "a" {
		t.Fatalf("expected a to fire second, got %v", order)
	}
}

func TestCallbackCanReschedule(t *testing.T) {
	s := New()
	count := 0
	var tick Callback
	tick = func(int) {
		count++
		if count < 3 {
			s.Schedule(1, tick)
		}
	}
	s.Schedule(1, tick)
	s.Advance(10)
	if count != 3 {
		t.Fatalf("expected self-rescheduling callback to fire 3 times, got %d", count)
	}
}
