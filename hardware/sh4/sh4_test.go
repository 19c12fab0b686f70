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

package sh4_test

import (
	"testing"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/dcsched"
	"github.com/washingtondc-emu/washingtondc/hardware/memory"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/bus"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/ram"
	"github.com/washingtondc-emu/washingtondc/hardware/sh4"
	"github.com/washingtondc-emu/washingtondc/test"
)

func newTestSH4(t *testing.T) (*sh4.SH4, *dcsched.Scheduler, *memory.Map) {
	t.Helper()

	m := memory.NewMap()

	// system ram and the store-queue flush target
	test.ExpectSuccess(t, m.AddRegion("system ram", 0x0c000000, 0x0fffffff, 0x00ffffff, ram.NewRAM("system ram", 0x1000000)))
	test.ExpectSuccess(t, m.AddRegion("sq target", 0x18000000, 0x18ffffff, 0x00ffffff, ram.NewRAM("sq target", 0x1000000)))

	sch := dcsched.NewScheduler()
	cpu := sh4.NewSH4(m, sch)

	// leave the reset state: unmask exceptions and interrupts
	test.ExpectSuccess(t, cpu.SetSR(cpu.Reg(sh4.SR)&^(0x10000000|0x000000f0)))
	runRefresh(sch)

	return cpu, sch, m
}

// runRefresh drains any coalesced intc refresh event.
func runRefresh(sch *dcsched.Scheduler) {
	for ev := sch.Pop(); ev != nil; ev = sch.Pop() {
		sch.AdvanceTo(ev.When)
		ev.Handler(ev)
	}
}

func TestBankSwitch(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	// record R0-R7, toggle RB twice; the registers must be untouched
	for i := 0; i < 8; i++ {
		test.ExpectSuccess(t, cpu.SetReg(sh4.R0+sh4.Reg(i), uint32(0x100+i)))
	}

	sr := cpu.Reg(sh4.SR)
	test.ExpectSuccess(t, cpu.SetSR(sr^0x20000000))

	// the active bank is now the other one
	test.ExpectInequality(t, cpu.Reg(sh4.R0), uint32(0x100))

	test.ExpectSuccess(t, cpu.SetSR(sr))
	for i := 0; i < 8; i++ {
		test.ExpectEquality(t, cpu.Reg(sh4.R0+sh4.Reg(i)), uint32(0x100+i))
	}

	// R8-R15 are unbanked and survive throughout
	test.ExpectSuccess(t, cpu.SetReg(sh4.R8, 0x8888))
	test.ExpectSuccess(t, cpu.SetSR(sr^0x20000000))
	test.ExpectEquality(t, cpu.Reg(sh4.R8), uint32(0x8888))
	test.ExpectSuccess(t, cpu.SetSR(sr))
}

func TestFPUBankSwitch(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	test.ExpectSuccess(t, cpu.SetReg(sh4.FR0, 0x3f800000))
	test.ExpectSuccess(t, cpu.SetReg(sh4.XF0, 0x40000000))

	fpscr := cpu.Reg(sh4.FPSCR)
	test.ExpectSuccess(t, cpu.SetReg(sh4.FPSCR, fpscr^0x00200000))
	test.ExpectEquality(t, cpu.Reg(sh4.FR0), uint32(0x40000000))
	test.ExpectEquality(t, cpu.Reg(sh4.XF0), uint32(0x3f800000))

	test.ExpectSuccess(t, cpu.SetReg(sh4.FPSCR, fpscr))
	test.ExpectEquality(t, cpu.Reg(sh4.FR0), uint32(0x3f800000))
}

func TestUserModeUnimplemented(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	err := cpu.SetSR(cpu.Reg(sh4.SR) &^ 0x40000000)
	test.ExpectSuccess(t, curated.Is(err, curated.Unimplemented))
}

func TestExceptionEntry(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	test.ExpectSuccess(t, cpu.SetReg(sh4.VBR, 0x8c000000))
	test.ExpectSuccess(t, cpu.SetReg(sh4.PC, 0x8c001000))
	test.ExpectSuccess(t, cpu.SetReg(sh4.R15, 0x8d000000))

	oldSR := cpu.Reg(sh4.SR)

	test.ExpectSuccess(t, cpu.SetException(sh4.ExcpUnconditionalTrap))

	// SPC, SSR and SGR hold the pre-exception state
	test.ExpectEquality(t, cpu.Reg(sh4.SPC), uint32(0x8c001000))
	test.ExpectEquality(t, cpu.Reg(sh4.SSR), oldSR)
	test.ExpectEquality(t, cpu.Reg(sh4.SGR), uint32(0x8d000000))

	// the new SR has BL, MD and RB set and FD clear
	sr := cpu.Reg(sh4.SR)
	test.ExpectEquality(t, sr&0x10000000 != 0, true)
	test.ExpectEquality(t, sr&0x40000000 != 0, true)
	test.ExpectEquality(t, sr&0x20000000 != 0, true)
	test.ExpectEquality(t, sr&0x00008000, uint32(0))

	// general exceptions vector to VBR + 0x100
	test.ExpectEquality(t, cpu.Reg(sh4.PC), uint32(0x8c000100))

	// EXPEVT latched the code
	test.ExpectEquality(t, cpu.Reg(sh4.EXPEVT), uint32(0x160))
}

func TestExceptionVectors(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	test.ExpectSuccess(t, cpu.SetReg(sh4.VBR, 0x8c000000))

	// TLB misses vector to VBR + 0x400
	test.ExpectSuccess(t, cpu.EnterException(sh4.ExcpDataTLBWriteMiss))
	test.ExpectEquality(t, cpu.Reg(sh4.PC), uint32(0x8c000400))

	// interrupts vector to VBR + 0x600
	test.ExpectSuccess(t, cpu.SetSR(cpu.Reg(sh4.SR)&^0x10000000))
	test.ExpectSuccess(t, cpu.EnterException(sh4.ExcpExt4))
	test.ExpectEquality(t, cpu.Reg(sh4.PC), uint32(0x8c000600))

	// the reset family goes to the hard-wired vector
	test.ExpectSuccess(t, cpu.SetSR(cpu.Reg(sh4.SR)&^0x10000000))
	test.ExpectSuccess(t, cpu.EnterException(sh4.ExcpManualReset))
	test.ExpectEquality(t, cpu.Reg(sh4.PC), uint32(0xa0000000))
}

func TestExceptionDuringDelayedBranch(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	cpu.DelayedBranch = true
	err := cpu.SetException(sh4.ExcpUnconditionalTrap)
	test.ExpectSuccess(t, curated.Is(err, curated.Integrity))
}

func TestInterruptGating(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	// assert the SCIF line with priority 9 in its IPRC nibble... the
	// line-to-nibble mapping is line/4 for the register and line%4 for the
	// nibble, so SCIF (line 9) is IPRC nibble 1
	cpu.RegisterIRQLine(sh4.IRQSCIF, func() (sh4.ExcpCode, bool) {
		return sh4.ExcpSCIFRXI, true
	})
	test.ExpectSuccess(t, cpu.SetReg(sh4.IPRC, 0x0090))

	// with SR.BL set, nothing is serviceable
	test.ExpectSuccess(t, cpu.SetSR(cpu.Reg(sh4.SR)|0x10000000))
	prio, _ := cpu.GetNextIRQLine()
	test.ExpectEquality(t, prio, -1)

	// clearing BL reveals the pending line
	test.ExpectSuccess(t, cpu.SetSR(cpu.Reg(sh4.SR)&^0x10000000))
	prio, code := cpu.GetNextIRQLine()
	test.ExpectEquality(t, prio, 9)
	test.ExpectEquality(t, code, sh4.ExcpSCIFRXI)

	// raising IMASK above the priority masks it again
	test.ExpectSuccess(t, cpu.SetSR(cpu.Reg(sh4.SR)|(0xa<<4)))
	prio, _ = cpu.GetNextIRQLine()
	test.ExpectEquality(t, prio, -1)
}

func TestIRLLine(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	irl := uint32(0xf)
	cpu.RegisterIRLLine(func() uint32 { return irl })

	// 0xf means no interrupt on the active-low bus
	prio, _ := cpu.GetNextIRQLine()
	test.ExpectEquality(t, prio, -1)

	// value n maps to priority 15-n and the matching EXT code
	irl = 0x2
	prio, code := cpu.GetNextIRQLine()
	test.ExpectEquality(t, prio, 13)
	test.ExpectEquality(t, code, sh4.ExcpExt2)

	// ICR.IRLM disables the bus interpretation
	test.ExpectSuccess(t, cpu.SetReg(sh4.ICR, 0x80))
	prio, _ = cpu.GetNextIRQLine()
	test.ExpectEquality(t, prio, -1)
}

func TestRefreshCoalescing(t *testing.T) {
	cpu, sch, _ := newTestSH4(t)

	// any number of refresh requests before the event fires collapse to a
	// single scheduled event
	cpu.RefreshIntcDeferred()
	cpu.RefreshIntcDeferred()
	cpu.RefreshIntcDeferred()

	ev := sch.Pop()
	test.ExpectEquality(t, ev != nil, true)
	test.ExpectEquality(t, sch.Pop() == nil, true)

	sch.AdvanceTo(ev.When)
	ev.Handler(ev)

	// once fired, a new request schedules again
	cpu.RefreshIntcDeferred()
	test.ExpectEquality(t, sch.Pop() != nil, true)
}

func TestStoreQueueFlush(t *testing.T) {
	cpu, _, m := newTestSH4(t)

	// QACR0 area bits 4-2 select physical bits 28-26: 0x18 selects area 6
	// (base 0x18000000)
	test.ExpectSuccess(t, cpu.SetReg(sh4.QACR0, 0x18))

	for i := uint32(0); i < 8; i++ {
		test.ExpectSuccess(t, cpu.SQWrite32(0xe0000040+i*4, i+1))
	}

	test.ExpectSuccess(t, cpu.SQPref(0xe0000040))

	// eight consecutive words landed at the derived physical address
	for i := uint32(0); i < 8; i++ {
		v, err := m.Read32(0x18000040 + i*4)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, v, i+1)
	}
}

func TestStoreQueueSelect(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	// address bit 5 picks the queue
	test.ExpectSuccess(t, cpu.SQWrite32(0xe0000000, 0xaaaa))
	test.ExpectSuccess(t, cpu.SQWrite32(0xe0000020, 0xbbbb))

	test.ExpectEquality(t, cpu.SQ()[0], uint32(0xaaaa))
	test.ExpectEquality(t, cpu.SQ()[8], uint32(0xbbbb))

	v, err := cpu.SQRead32(0xe0000020)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0xbbbb))
}

func TestStoreQueueFlushWithMMU(t *testing.T) {
	cpu, _, m := newTestSH4(t)

	// enable address translation and install a UTLB entry mapping the SQ
	// window page onto the flush target
	test.ExpectSuccess(t, cpu.SetReg(sh4.MMUCR, 0x1))

	tlb := cpu.TLBState()
	tlb.UTLB[0] = sh4.UTLBEnt{
		VPN:   0xe0000000 >> 10,
		PPN:   0x18000000 >> 10,
		Size:  sh4.Page4KB,
		Valid: true,
		Dirty: true,
	}

	for i := uint32(0); i < 8; i++ {
		test.ExpectSuccess(t, cpu.SQWrite32(0xe0000040+i*4, 0x10+i))
	}
	test.ExpectSuccess(t, cpu.SQPref(0xe0000040))

	v, err := m.Read32(0x18000040)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0x10))
}

func TestStoreQueueMMUMiss(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	test.ExpectSuccess(t, cpu.SetReg(sh4.MMUCR, 0x1))
	test.ExpectSuccess(t, cpu.SetReg(sh4.VBR, 0x8c000000))

	// no UTLB entry matches: the pref raises a data-TLB-write-miss guest
	// exception with TEA and PTEH set from the faulting address
	err := cpu.SQPref(0xe0000040)
	test.ExpectSuccess(t, curated.Is(err, bus.AccessExc))

	test.ExpectEquality(t, cpu.Reg(sh4.TEA), uint32(0xe0000040))
	test.ExpectEquality(t, cpu.Reg(sh4.PTEH)&^uint32(0x3ff), uint32(0xe0000040)&^uint32(0x3ff))
	test.ExpectEquality(t, cpu.Reg(sh4.EXPEVT), uint32(0x060))
	test.ExpectEquality(t, cpu.Reg(sh4.PC), uint32(0x8c000400))
}

func TestOperandCacheRAM(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	// enable the cache and the RAM mode
	test.ExpectSuccess(t, cpu.SetReg(sh4.CCR, 0x21))

	test.ExpectSuccess(t, cpu.WriteVirt32(0x7c000000, 0x12345678))
	v, err := cpu.ReadVirt32(0x7c000000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0x12345678))

	// with OIX clear, bit 13 selects the upper half
	test.ExpectSuccess(t, cpu.WriteVirt32(0x7c002000, 0x9abcdef0))
	v, _ = cpu.ReadVirt32(0x7c002000)
	test.ExpectEquality(t, v, uint32(0x9abcdef0))

	// the two halves are distinct
	v, _ = cpu.ReadVirt32(0x7c000000)
	test.ExpectEquality(t, v, uint32(0x12345678))

	// reads with the cache disabled return zero
	test.ExpectSuccess(t, cpu.SetReg(sh4.CCR, 0x20))
	v, _ = cpu.ReadVirt32(0x7c000000)
	test.ExpectEquality(t, v, uint32(0))
}

func TestCacheAddressArrayStub(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	// reads return zero, writes are discarded
	test.ExpectSuccess(t, cpu.WriteVirt32(0xf4000000, 0xffffffff))
	v, err := cpu.ReadVirt32(0xf4000000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0))
}

func TestP0Aliases(t *testing.T) {
	cpu, _, _ := newTestSH4(t)

	// P1, P2 and P3 all fold onto the same physical word
	test.ExpectSuccess(t, cpu.WriteVirt32(0x0c000000, 0x11112222))

	for _, addr := range []uint32{0x8c000000, 0xac000000, 0xcc000000} {
		v, err := cpu.ReadVirt32(addr)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, v, uint32(0x11112222))
	}
}

func TestExecuteSimpleProgram(t *testing.T) {
	cpu, sch, m := newTestSH4(t)

	// MOV #5, R0 ; ADD #3, R0 ; SHLL2 R0 ; NOP
	prog := []uint16{0xe005, 0x7003, 0x4008, 0x0009}
	for i, op := range prog {
		test.ExpectSuccess(t, m.Write16(0x0c000000+uint32(i)*2, op))
	}

	test.ExpectSuccess(t, cpu.SetReg(sh4.PC, 0x8c000000))
	test.ExpectSuccess(t, cpu.Run(sch.Now()+dcsched.CycleStamp(len(prog))))

	test.ExpectEquality(t, cpu.Reg(sh4.R0), uint32(32))
	test.ExpectEquality(t, cpu.Reg(sh4.PC), uint32(0x8c000008))
}

func TestDelayedBranch(t *testing.T) {
	cpu, sch, m := newTestSH4(t)

	// BRA disp 3 (target 0x0c00000a) ; delay slot MOV #1, R1 ; skipped
	// MOV #2, R2 ; ... target: MOV #3, R3
	prog := []uint16{
		0xa003, // 0x00: BRA 0x0a
		0xe101, // 0x02: MOV #1, R1 (delay slot)
		0xe202, // 0x04: MOV #2, R2 (skipped)
		0x0009, // 0x06
		0x0009, // 0x08
		0xe303, // 0x0a: MOV #3, R3
	}
	for i, op := range prog {
		test.ExpectSuccess(t, m.Write16(0x0c000000+uint32(i)*2, op))
	}

	test.ExpectSuccess(t, cpu.SetReg(sh4.PC, 0x8c000000))
	test.ExpectSuccess(t, cpu.Run(sch.Now()+3))

	// the delay slot executed, the fall-through did not, and control
	// reached the branch target
	test.ExpectEquality(t, cpu.Reg(sh4.R1), uint32(1))
	test.ExpectEquality(t, cpu.Reg(sh4.R2), uint32(0))
	test.ExpectEquality(t, cpu.Reg(sh4.R3), uint32(3))
}
