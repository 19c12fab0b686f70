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

// Package debugger is the core-side half of the interactive debugger. The
// front-end runs on its own goroutine and communicates with the emulation
// through atomic request flags that the core polls at every instruction
// boundary; a mutex and condition variable pair guards the hand-off when
// the emulation enters a break state.
//
// All memory accesses made on behalf of the front-end go through the memory
// map's probing forms, so inspecting an unmapped address can never bring
// the emulation down or raise a guest exception.
package debugger

import (
	"sync"
	"sync/atomic"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/debugger/govern"
	"github.com/washingtondc-emu/washingtondc/hardware"
	"github.com/washingtondc-emu/washingtondc/hardware/sh4"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// Debugger is the core-side debugger state.
type Debugger struct {
	dc *hardware.Dreamcast

	// requests latched by the front-end, polled by the emulation thread
	requestBreak      atomic.Bool
	requestContinue   atomic.Bool
	requestDetach     atomic.Bool
	requestSingleStep atomic.Bool

	// the hand-off. the emulation thread waits on the condition variable
	// while in the break state; the front-end signals after processing
	// commands
	crit  sync.Mutex
	cond  *sync.Cond
	state govern.State

	breakpoints map[uint32]bool

	watchpoints map[uint32]bool

	// called when the emulation stops at a break, with the PC it stopped
	// at. runs on the emulation goroutine
	OnBreak func(pc uint32)

	// the error that tripped the fatal handler, if any
	fatalErr error
}

// NewDebugger is the preferred method of initialisation for the Debugger
// type. the debugger installs itself into the console's CPU and into the
// fatal-error path.
func NewDebugger(dc *hardware.Dreamcast) *Debugger {
	dbg := &Debugger{
		dc:          dc,
		breakpoints: make(map[uint32]bool),
		watchpoints: make(map[uint32]bool),
		state:       govern.StateRunning,
	}
	dbg.cond = sync.NewCond(&dbg.crit)

	dc.SH4.SetInstHook(dbg.instHook)

	// a fatal error hands control back to the front-end instead of
	// aborting the process
	curated.SetFatalHandler(dbg.onFatal)

	return dbg
}

// State returns the emulation's current condition.
func (dbg *Debugger) State() govern.State {
	dbg.crit.Lock()
	defer dbg.crit.Unlock()
	return dbg.state
}

// Post latches a request from the front-end.
func (dbg *Debugger) Post(req govern.Request) {
	switch req {
	case govern.RequestBreak:
		dbg.requestBreak.Store(true)
	case govern.RequestContinue:
		dbg.requestContinue.Store(true)
	case govern.RequestSingleStep:
		dbg.requestSingleStep.Store(true)
	case govern.RequestDetach:
		dbg.requestDetach.Store(true)
	}

	// wake the emulation thread if it is sitting in a break
	dbg.cond.Broadcast()
}

// SetBreakpoint arms a breakpoint at the address.
func (dbg *Debugger) SetBreakpoint(addr uint32) {
	dbg.crit.Lock()
	defer dbg.crit.Unlock()
	dbg.breakpoints[addr&^1] = true
}

// ClearBreakpoint disarms the breakpoint at the address.
func (dbg *Debugger) ClearBreakpoint(addr uint32) {
	dbg.crit.Lock()
	defer dbg.crit.Unlock()
	delete(dbg.breakpoints, addr&^1)
}

// Breakpoints lists the armed breakpoints.
func (dbg *Debugger) Breakpoints() []uint32 {
	dbg.crit.Lock()
	defer dbg.crit.Unlock()
	var l []uint32
	for a := range dbg.breakpoints {
		l = append(l, a)
	}
	return l
}

// instHook is polled by the CPU at every instruction boundary.
func (dbg *Debugger) instHook(pc uint32) error {
	if dbg.requestDetach.Load() {
		dbg.detach()
		return nil
	}

	stop := dbg.requestBreak.Swap(false)

	if dbg.requestSingleStep.Swap(false) {
		// a single step means: run this instruction and break at the next
		// boundary
		dbg.requestBreak.Store(true)
		dbg.setState(govern.StateStepping)
		return nil
	}

	dbg.crit.Lock()
	if dbg.breakpoints[pc] {
		stop = true
	}
	dbg.crit.Unlock()

	if stop {
		dbg.enterBreak(pc)
	}

	return nil
}

// enterBreak parks the emulation thread until the front-end releases it.
func (dbg *Debugger) enterBreak(pc uint32) {
	dbg.crit.Lock()
	dbg.state = govern.StateBreak
	dbg.crit.Unlock()

	if dbg.OnBreak != nil {
		dbg.OnBreak(pc)
	}

	dbg.crit.Lock()
	for {
		if dbg.requestContinue.Swap(false) {
			dbg.state = govern.StateRunning
			break
		}
		if dbg.requestSingleStep.Load() || dbg.requestDetach.Load() {
			// serviced at the next instHook
			dbg.state = govern.StateRunning
			break
		}
		dbg.cond.Wait()
	}
	dbg.crit.Unlock()
}

func (dbg *Debugger) detach() {
	dbg.setState(govern.StateDetached)
	dbg.dc.SH4.SetInstHook(nil)
	curated.SetFatalHandler(nil)
	logger.Log("debugger", "detached")
}

func (dbg *Debugger) setState(s govern.State) {
	dbg.crit.Lock()
	dbg.state = s
	dbg.crit.Unlock()
}

// onFatal intercepts a fatal error: record it, report to the front-end,
// and break rather than aborting the process.
func (dbg *Debugger) onFatal(err error) bool {
	dbg.fatalErr = err
	logger.Logf("debugger", "fatal error intercepted: %v", err)
	dbg.enterBreak(dbg.dc.SH4.Reg(sh4.PC))
	return true
}

// FatalError returns the last intercepted fatal error.
func (dbg *Debugger) FatalError() error {
	return dbg.fatalErr
}

// Peek probes memory without disturbing the emulation. the boolean is
// false if the address is unmapped.
func (dbg *Debugger) Peek(addr uint32) (uint32, bool) {
	return dbg.dc.Mem.TryRead32(addr)
}

// Poke writes memory without disturbing the emulation.
func (dbg *Debugger) Poke(addr uint32, val uint32) bool {
	return dbg.dc.Mem.TryWrite32(addr, val)
}
