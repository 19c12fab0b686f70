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

package dcsched_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/hardware/dcsched"
	"github.com/washingtondc-emu/washingtondc/test"
)

func TestOrdering(t *testing.T) {
	sch := dcsched.NewScheduler()

	// the two events at cycle 50 must pop in insertion order. the Arg field
	// identifies each event
	ev := make([]dcsched.Event, 5)
	for i, when := range []dcsched.CycleStamp{100, 50, 200, 50, 75} {
		ev[i].Arg = i
		test.ExpectSuccess(t, sch.Schedule(&ev[i], when))
	}

	var popped []dcsched.CycleStamp
	var order []int
	for e := sch.Pop(); e != nil; e = sch.Pop() {
		popped = append(popped, e.When)
		order = append(order, e.Arg.(int))
	}

	test.ExpectEquality(t, len(popped), 5)
	for i, want := range []dcsched.CycleStamp{50, 50, 75, 100, 200} {
		test.ExpectEquality(t, popped[i], want)
	}

	// the tie at 50 broke FIFO: event 1 before event 3
	test.ExpectEquality(t, order[0], 1)
	test.ExpectEquality(t, order[1], 3)

	// for all consecutive pairs, when is non-decreasing
	for i := 1; i < len(popped); i++ {
		test.ExpectSuccess(t, popped[i-1] <= popped[i])
	}
}

func TestDoubleSchedule(t *testing.T) {
	sch := dcsched.NewScheduler()

	ev := &dcsched.Event{}
	test.ExpectSuccess(t, sch.Schedule(ev, 10))
	test.ExpectFailure(t, sch.Schedule(ev, 20))
}

func TestCancel(t *testing.T) {
	sch := dcsched.NewScheduler()

	a := &dcsched.Event{}
	b := &dcsched.Event{}
	c := &dcsched.Event{}

	test.ExpectSuccess(t, sch.Schedule(a, 10))
	test.ExpectSuccess(t, sch.Schedule(b, 20))
	test.ExpectSuccess(t, sch.Schedule(c, 30))

	initial := sch.String()
	test.ExpectEquality(t, initial, "10 20 30")

	// cancel; schedule; cancel leaves the queue unchanged
	d := &dcsched.Event{}
	sch.Cancel(d)
	test.ExpectSuccess(t, sch.Schedule(d, 15))
	sch.Cancel(d)
	test.ExpectEquality(t, sch.String(), initial)

	// cancelling an unscheduled event is idempotent
	sch.Cancel(d)
	sch.Cancel(d)
	test.ExpectEquality(t, sch.String(), initial)

	// cancel from the middle and the ends
	sch.Cancel(b)
	test.ExpectEquality(t, sch.String(), "10 30")
	sch.Cancel(a)
	test.ExpectEquality(t, sch.String(), "30")
	sch.Cancel(c)
	test.ExpectEquality(t, sch.String(), "")
	test.ExpectEquality(t, sch.Peek() == nil, true)
}

func TestRescheduleFromHandler(t *testing.T) {
	sch := dcsched.NewScheduler()

	// an event rescheduling itself from its own handler is legal
	count := 0
	ev := &dcsched.Event{}
	ev.Handler = func(e *dcsched.Event) {
		count++
		if count < 3 {
			_ = sch.Schedule(e, e.When+100)
		}
	}

	test.ExpectSuccess(t, sch.Schedule(ev, 100))

	for e := sch.Pop(); e != nil; e = sch.Pop() {
		sch.AdvanceTo(e.When)
		e.Handler(e)
	}

	test.ExpectEquality(t, count, 3)
	test.ExpectEquality(t, sch.Now(), dcsched.CycleStamp(300))
}

func TestAdvanceTo(t *testing.T) {
	sch := dcsched.NewScheduler()

	sch.AdvanceTo(100)
	test.ExpectEquality(t, sch.Now(), dcsched.CycleStamp(100))

	// the clock never runs backwards; an event scheduled in the past fires
	// at max(now, when)
	sch.AdvanceTo(50)
	test.ExpectEquality(t, sch.Now(), dcsched.CycleStamp(100))
}
