// This file is part of WashingtonDC.
//
// WashingtonDC is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// WashingtonDC is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with WashingtonDC.  If not, see <https://www.gnu.org/licenses/>.

// Package dcsched is the event scheduler that keeps every time-dependent
// device in the Dreamcast in lockstep.
//
// Time is a monotonic count of SH4 clock cycles. Devices schedule an Event
// for a future cycle stamp; the root loop executes the SH4 up to (but not
// past) the earliest stamp and then fires the event's handler. Handlers may
// reschedule their own event, raise interrupts, or re-enter the memory map.
//
// Events are owned by their creators and referenced by identity. The list is
// kept sorted by cycle stamp, ties in FIFO order. The population is small,
// roughly one event per hardware module, so linear-scan insertion is used
// rather than a heap.
package dcsched

import (
	"fmt"
	"strings"

	"github.com/washingtondc-emu/washingtondc/curated"
)

// CycleStamp measures time in cycles of the SH4 core clock.
type CycleStamp uint64

// EventHandler is the payload of a scheduled event. the event itself is
// passed to the handler so that one handler can service several events.
type EventHandler func(*Event)

// Event is a timed callback. users allocate Events themselves and hand them
// to the Scheduler; the Scheduler never owns them. the linked-list fields
// are touched only by the Scheduler.
type Event struct {
	When    CycleStamp
	Handler EventHandler

	// opaque context for the handler
	Arg interface{}

	// intrusive list plumbing. scheduled is the presence flag that makes
	// Cancel() safe to call on an event that has already fired
	next      *Event
	prev      *Event
	scheduled bool
}

// Scheduled returns true if the event is currently in a scheduler's list.
func (ev *Event) Scheduled() bool {
	return ev.scheduled
}

// Scheduler is a sorted list of pending events and the emulator's monotonic
// cycle counter.
type Scheduler struct {
	// cycle stamp of the emulator "now". advanced only by the root loop
	cycles CycleStamp

	first *Event
	last  *Event
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the current cycle stamp.
func (sch *Scheduler) Now() CycleStamp {
	return sch.cycles
}

// AdvanceTo moves the cycle counter forward. the counter never moves
// backwards: an argument behind "now" leaves the counter where it is, which
// is what allows events scheduled in the past to fire in list order.
func (sch *Scheduler) AdvanceTo(stamp CycleStamp) {
	if stamp > sch.cycles {
		sch.cycles = stamp
	}
}

// Schedule inserts the event into the list, keeping the list sorted by
// cycle stamp with ties in FIFO order. scheduling an event that is already
// scheduled is an integrity error.
func (sch *Scheduler) Schedule(ev *Event, when CycleStamp) error {
	if ev.scheduled {
		return curated.Raise(curated.Integrity, "event scheduled twice",
			curated.Attr("when", uint32(when)))
	}

	ev.When = when
	ev.scheduled = true

	// find the last event with a cycle stamp no later than the new event.
	// scanning from the front keeps equal stamps in FIFO order
	var curs *Event
	for e := sch.first; e != nil && e.When <= when; e = e.next {
		curs = e
	}

	if curs == nil {
		// new first event
		ev.prev = nil
		ev.next = sch.first
		if sch.first != nil {
			sch.first.prev = ev
		} else {
			sch.last = ev
		}
		sch.first = ev
		return nil
	}

	ev.prev = curs
	ev.next = curs.next
	if curs.next != nil {
		curs.next.prev = ev
	} else {
		sch.last = ev
	}
	curs.next = ev

	return nil
}

// Cancel removes the event from the list. cancelling an event that is not
// scheduled is a no-op.
func (sch *Scheduler) Cancel(ev *Event) {
	if !ev.scheduled {
		return
	}

	if ev.prev != nil {
		ev.prev.next = ev.next
	} else {
		sch.first = ev.next
	}
	if ev.next != nil {
		ev.next.prev = ev.prev
	} else {
		sch.last = ev.prev
	}

	ev.next = nil
	ev.prev = nil
	ev.scheduled = false
}

// Peek returns the earliest event without removing it. nil if the list is
// empty.
func (sch *Scheduler) Peek() *Event {
	return sch.first
}

// Pop removes and returns the earliest event. nil if the list is empty.
func (sch *Scheduler) Pop() *Event {
	ev := sch.first
	if ev == nil {
		return nil
	}

	sch.first = ev.next
	if sch.first != nil {
		sch.first.prev = nil
	} else {
		sch.last = nil
	}

	ev.next = nil
	ev.prev = nil
	ev.scheduled = false

	return ev
}

// String returns the pending events in fire order. for debugging purposes.
func (sch *Scheduler) String() string {
	s := strings.Builder{}
	for e := sch.first; e != nil; e = e.next {
		s.WriteString(fmt.Sprintf("%d", e.When))
		if e.next != nil {
			s.WriteString(" ")
		}
	}
	return s.String()
}
