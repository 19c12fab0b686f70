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

// Package sh4 implements the guest CPU: the register file with its banked
// general and floating-point registers, the exception engine, the interrupt
// controller, the on-chip operand cache and store queues, and the P0-P4
// virtual memory routing.
package sh4

import (
	"fmt"
	"io"
	"strings"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/dcsched"
	"github.com/washingtondc-emu/washingtondc/hardware/memory"
)

// ExecState describes what the CPU is doing between instructions.
type ExecState int

const (
	ExecStateNorm ExecState = iota
	ExecStateSleep
	ExecStateStandby
)

// SH4 is the guest CPU.
type SH4 struct {
	// the register file. banked registers are physically stored twice and
	// exchanged when SR.RB or FPSCR.FR flips
	regs [RegisterCount]uint32

	// the delayed-branch slot. when an instruction in a delay slot
	// completes, control transfers to DelayedBranchAddr
	DelayedBranch     bool
	DelayedBranchAddr uint32

	// suppresses the PC advance for an instruction aborted by an exception
	dontIncrementPC bool

	// set by instructions that assign PC directly (non-delayed branches)
	pcWritten bool

	ExecState ExecState

	// RoundToZero mirrors FPSCR.RM: false rounds to nearest, true rounds
	// toward zero. FPU helpers consult this instead of reprogramming the
	// host FPU
	RoundToZero bool

	// the system bus. P0-P3 accesses fold onto this
	bus *memory.Map

	sched *dcsched.Scheduler

	intc   intc
	ocache ocache
	tlb    TLB

	// the interrupt selected by the last intc refresh, waiting for the next
	// instruction boundary. -1 priority means none
	pendingIRQPriority int
	pendingIRQCode     ExcpCode

	// the coalesced intc refresh event
	refreshEvent          dcsched.Event
	refreshEventScheduled bool

	// the on-chip module register dispatch table and the backing words for
	// registers that are carried but not modelled
	onchipRegs    map[uint32]onchipReg
	onchipBacking map[string]uint32

	// SerialTx receives every byte the guest writes to the SCIF transmit
	// FIFO. may be nil
	SerialTx func(uint8)

	// bytes queued for the guest to read from the SCIF
	serialRxBuf []byte

	// polled at every instruction boundary when installed
	instHook InstHook
}

// NewSH4 is the preferred method of initialisation for the SH4 type.
func NewSH4(bus *memory.Map, sched *dcsched.Scheduler) *SH4 {
	sh4 := &SH4{
		bus:                bus,
		sched:              sched,
		pendingIRQPriority: -1,
	}
	sh4.refreshEvent.Handler = sh4.doRefreshIntc
	sh4.buildOnchipRegs()
	sh4.OnHardReset()

	curated.OnFatal(sh4.dumpRegs)

	return sh4
}

// OnHardReset returns every register to its power-on value and clears the
// pipeline bookkeeping.
func (sh4 *SH4) OnHardReset() {
	for i := range sh4.regs {
		sh4.regs[i] = 0
	}

	sh4.regs[SR] = SRMDMask | SRRBMask | SRBLMask | SRFDMask | SRIMASKMask
	sh4.regs[VBR] = 0
	sh4.regs[PC] = 0xa0000000
	sh4.regs[EXPEVT] = uint32(ExcpPowerOnReset)

	sh4.setFPSCR(0x41)

	sh4.DelayedBranch = false
	sh4.DelayedBranchAddr = 0
	sh4.dontIncrementPC = false
	sh4.ExecState = ExecStateNorm
	sh4.pendingIRQPriority = -1

	sh4.ocache.clear()
}

// Reg reads a register by symbolic index.
func (sh4 *SH4) Reg(r Reg) uint32 {
	return sh4.regs[r]
}

// SetReg writes a register by symbolic index, applying the side effects a
// write to SR or FPSCR carries.
func (sh4 *SH4) SetReg(r Reg, val uint32) error {
	switch r {
	case SR:
		return sh4.SetSR(val)
	case FPSCR:
		sh4.setFPSCR(val)
		return nil
	case ICR, IPRA, IPRB, IPRC, IPRD:
		sh4.regs[r] = val
		sh4.RefreshIntcDeferred()
		return nil
	}

	sh4.regs[r] = val
	return nil
}

// SetSR writes the SR register. three side effects are observed: the
// general-register banks swap when the RB bit flips, an interrupt-priority
// refresh is requested when the IMASK or BL bits change, and clearing the
// privilege bit is a feature-unsupported error because user mode is not
// implemented.
func (sh4 *SH4) SetSR(val uint32) error {
	old := sh4.regs[SR]
	sh4.regs[SR] = val
	return sh4.onSRChange(old)
}

func (sh4 *SH4) onSRChange(oldSR uint32) error {
	newSR := sh4.regs[SR]

	sh4.bankSwitchMaybe(oldSR, newSR)

	intcBits := SRIMASKMask | SRBLMask
	if (oldSR & intcBits) != (newSR & intcBits) {
		sh4.RefreshIntcDeferred()
	}

	if newSR&SRMDMask == 0 {
		return curated.Raise(curated.Unimplemented, "unprivileged mode",
			curated.Attr("feature", "unprivileged mode"),
			curated.Attr("sr", newSR),
		)
	}

	return nil
}

// setFPSCR writes the FPSCR register, swapping the floating-point banks
// when the FR bit flips and reprogramming the rounding mode from RM.
func (sh4 *SH4) setFPSCR(val uint32) {
	sh4.fpuBankSwitchMaybe(sh4.regs[FPSCR], val)
	sh4.regs[FPSCR] = val
	sh4.RoundToZero = val&FPSCRRMMask != 0
}

// bankSwitch exchanges R0-R7 with R0Bank-R7Bank.
func (sh4 *SH4) bankSwitch() {
	for i := 0; i < 8; i++ {
		sh4.regs[R0+Reg(i)], sh4.regs[R0Bank+Reg(i)] =
			sh4.regs[R0Bank+Reg(i)], sh4.regs[R0+Reg(i)]
	}
}

func (sh4 *SH4) bankSwitchMaybe(oldSR uint32, newSR uint32) {
	if (oldSR & SRRBMask) != (newSR & SRRBMask) {
		sh4.bankSwitch()
	}
}

// fpuBankSwitch exchanges FR0-FR15 with XF0-XF15.
func (sh4 *SH4) fpuBankSwitch() {
	for i := 0; i < 16; i++ {
		sh4.regs[FR0+Reg(i)], sh4.regs[XF0+Reg(i)] =
			sh4.regs[XF0+Reg(i)], sh4.regs[FR0+Reg(i)]
	}
}

func (sh4 *SH4) fpuBankSwitchMaybe(oldFPSCR uint32, newFPSCR uint32) {
	if (oldFPSCR & FPSCRFRMask) != (newFPSCR & FPSCRFRMask) {
		sh4.fpuBankSwitch()
	}
}

// TLBState exposes the translation state for the debugger and the store
// queue.
func (sh4 *SH4) TLBState() *TLB {
	return &sh4.tlb
}

func (sh4 *SH4) String() string {
	s := strings.Builder{}
	line := 0
	for r := PC; r < FR0; r++ {
		fmt.Fprintf(&s, "%-8s %08x  ", r.String(), sh4.regs[r])
		line++
		if line%4 == 0 {
			s.WriteString("\n")
		}
	}
	return strings.TrimRight(s.String(), " \n")
}

// dumpRegs is registered as a fatal-error callback: whatever brings the
// emulator down, the register file goes with it.
func (sh4 *SH4) dumpRegs(w io.Writer) {
	fmt.Fprintln(w, "SH4 registers:")
	fmt.Fprintln(w, sh4.String())
}
