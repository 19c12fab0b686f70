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

package sh4

import (
	"github.com/washingtondc-emu/washingtondc/hardware/dcsched"
)

// IRQLine identifies one input to the interrupt controller. the order
// matches the nibble layout of the IPRA-IPRD priority registers: the
// priority field for line n lives in register IPRA+n/4, nibble n%4.
type IRQLine int

const (
	IRQRTC IRQLine = iota
	IRQTMU2
	IRQTMU1
	IRQTMU0
	IRQReserved
	IRQSCI1
	IRQRef
	IRQWDT
	IRQHUDI
	IRQSCIF
	IRQDMAC
	IRQGPIO
	IRQIRL3
	IRQIRL2
	IRQIRL1
	IRQIRL0

	IRQCount
)

// IRQLineFn is the source callback for one interrupt line. it returns the
// exception code to service and true when the line is asserting.
type IRQLineFn func() (ExcpCode, bool)

// IRLLineFn samples the external 4-bit IRL bus. the value is active-low:
// 0xf means no interrupt.
type IRLLineFn func() uint32

// intc is the interrupt controller state.
type intc struct {
	irqLines [IRQCount]IRQLineFn
	irlLine  IRLLineFn
}

// RegisterIRQLine attaches the source callback for a line.
func (sh4 *SH4) RegisterIRQLine(line IRQLine, fn IRQLineFn) {
	sh4.intc.irqLines[line] = fn
}

// RegisterIRLLine attaches the sampler for the external IRL bus.
func (sh4 *SH4) RegisterIRLLine(fn IRLLineFn) {
	sh4.intc.irlLine = fn
}

// the priority and code each IRL value maps to. the bus is active-low, so
// lower values are higher priorities; the priority is 15 minus the value.
var irlCodes = [15]ExcpCode{
	ExcpExt0, ExcpExt1, ExcpExt2, ExcpExt3, ExcpExt4, ExcpExt5,
	ExcpExt6, ExcpExt7, ExcpExt8, ExcpExt9, ExcpExtA, ExcpExtB,
	ExcpExtC, ExcpExtD, ExcpExtE,
}

// GetNextIRQLine resolves the highest-priority pending interrupt. the
// returned priority is -1 when nothing is serviceable, including whenever
// SR.BL is set.
func (sh4 *SH4) GetNextIRQLine() (prio int, code ExcpCode) {
	if sh4.regs[SR]&SRBLMask != 0 {
		return -1, 0
	}

	imask := int((sh4.regs[SR] & SRIMASKMask) >> SRIMASKShift)

	maxPrio := -1
	var maxCode ExcpCode

	// skip the IRL3-IRL0 group unless ICR.IRLM configures the four pins as
	// independent lines
	lastLine := IRQCount - 1
	if sh4.regs[ICR]&ICRIRLMMask == 0 {
		lastLine = IRQGPIO
	}

	for line := IRQLine(0); line <= lastLine; line++ {
		fn := sh4.intc.irqLines[line]
		if fn == nil {
			continue
		}

		iprReg := IPRA + Reg(line)/4
		shift := 4 * (uint(line) % 4)
		prio := int((sh4.regs[iprReg] >> shift) & 0xf)

		if prio > imask && prio > maxPrio {
			if code, asserted := fn(); asserted {
				maxPrio = prio
				maxCode = code
			}
		}
	}

	// the external 4-bit IRL bus, when configured as a bus
	if sh4.regs[ICR]&ICRIRLMMask == 0 && sh4.intc.irlLine != nil {
		irlVal := sh4.intc.irlLine() & 0xf
		if irlVal != 0xf {
			prio := 15 - int(irlVal)
			if prio > maxPrio && prio > imask {
				return prio, irlCodes[irlVal]
			}
		}
	}

	return maxPrio, maxCode
}

// RefreshIntcDeferred requests an interrupt-priority re-evaluation. the
// request is coalesced: any number of requests before the scheduler next
// services the refresh event collapse to a single re-evaluation at the
// current cycle stamp.
func (sh4 *SH4) RefreshIntcDeferred() {
	if sh4.refreshEventScheduled {
		return
	}
	sh4.refreshEventScheduled = true

	// scheduling at "now" cannot fail the double-schedule check because the
	// scheduled flag above mirrors the event's own presence
	_ = sh4.sched.Schedule(&sh4.refreshEvent, sh4.sched.Now())
}

// doRefreshIntc is the refresh event's handler.
func (sh4 *SH4) doRefreshIntc(*dcsched.Event) {
	sh4.refreshEventScheduled = false
	sh4.RefreshIntc()
}

// RefreshIntc re-runs interrupt resolution immediately and records the
// winner as the deferred interrupt target.
func (sh4 *SH4) RefreshIntc() {
	sh4.pendingIRQPriority, sh4.pendingIRQCode = sh4.GetNextIRQLine()
}

// PendingInterrupt reports the interrupt selected by the last refresh.
func (sh4 *SH4) PendingInterrupt() (ExcpCode, bool) {
	return sh4.pendingIRQCode, sh4.pendingIRQPriority >= 0
}

// ServicePendingInterrupt enters the pending interrupt, if any, and clears
// the pending state. called at instruction boundaries.
func (sh4 *SH4) ServicePendingInterrupt() (bool, error) {
	if sh4.pendingIRQPriority < 0 {
		return false, nil
	}

	code := sh4.pendingIRQCode
	sh4.pendingIRQPriority = -1

	if sh4.ExecState == ExecStateSleep {
		sh4.ExecState = ExecStateNorm
	}

	return true, sh4.SetInterrupt(code)
}
