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

// InstHook is polled at every instruction boundary when installed. the
// debugger uses this to observe breakpoints and single-step requests. a
// non-nil return stops the run loop.
type InstHook func(pc uint32) error

// SetInstHook installs the per-instruction callback. a nil hook removes it.
func (sh4 *SH4) SetInstHook(hook InstHook) {
	sh4.instHook = hook
}

// ExecuteInstruction runs one instruction: service any pending interrupt,
// fetch, execute, and advance PC honouring the delayed-branch slot.
func (sh4 *SH4) ExecuteInstruction() error {
	// interrupts are taken at instruction boundaries only, and never
	// between a delayed branch and its slot
	if !sh4.DelayedBranch {
		if taken, err := sh4.ServicePendingInterrupt(); err != nil {
			return err
		} else if taken {
			return nil
		}
	}

	if sh4.ExecState != ExecStateNorm {
		// asleep until an interrupt arrives
		return nil
	}

	// the delayed branch armed by the previous instruction, if any. the
	// flag is consumed before execution so that an exception raised by the
	// slot instruction can be told apart from a buggy branch emitter
	pendingBranch := sh4.DelayedBranch
	branchTarget := sh4.DelayedBranchAddr
	sh4.DelayedBranch = false
	sh4.dontIncrementPC = false
	sh4.pcWritten = false

	op, err := sh4.FetchInst(sh4.regs[PC])
	if err != nil {
		return err
	}

	if err := sh4.executeOp(op); err != nil {
		return err
	}

	if sh4.dontIncrementPC || sh4.pcWritten {
		// an exception or a non-delayed branch redirected PC; a pending
		// delayed branch is abandoned with it
		return nil
	}

	sh4.regs[PC] += 2
	if pendingBranch {
		sh4.regs[PC] = branchTarget
	}

	return nil
}

// Run executes instructions until the cycle counter reaches the stamp.
// every instruction costs one cycle of the base clock; the scheduler's
// counter advances in step.
func (sh4 *SH4) Run(until dcsched.CycleStamp) error {
	for sh4.sched.Now() < until {
		if sh4.instHook != nil {
			if err := sh4.instHook(sh4.regs[PC]); err != nil {
				return err
			}
		}

		if sh4.ExecState != ExecStateNorm && sh4.pendingIRQPriority < 0 {
			// asleep with nothing pending: burn the remaining time
			sh4.sched.AdvanceTo(until)
			return nil
		}

		if err := sh4.ExecuteInstruction(); err != nil {
			return err
		}

		sh4.sched.AdvanceTo(sh4.sched.Now() + 1)
	}

	return nil
}
