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
	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// ExcpCode identifies an exception or interrupt. the values are the codes
// the hardware latches into EXPEVT/INTEVT.
type ExcpCode uint32

// the exception codes. note that some codes are shared between related
// exceptions (the reset family, the TLB multiple-hit pair).
const (
	// reset-type exceptions
	ExcpPowerOnReset   ExcpCode = 0x000
	ExcpManualReset    ExcpCode = 0x020
	ExcpHudiReset      ExcpCode = 0x000
	ExcpInstTLBMultHit ExcpCode = 0x140
	ExcpDataTLBMultHit ExcpCode = 0x140

	// general exceptions (re-execution type)
	ExcpUserBreakBefore      ExcpCode = 0x1e0
	ExcpInstAddrErr          ExcpCode = 0x0e0
	ExcpInstTLBMiss          ExcpCode = 0x040
	ExcpInstTLBProtViol      ExcpCode = 0x0a0
	ExcpGenIllegalInst       ExcpCode = 0x180
	ExcpSlotIllegalInst      ExcpCode = 0x1a0
	ExcpGenFPUDisable        ExcpCode = 0x800
	ExcpSlotFPUDisable       ExcpCode = 0x820
	ExcpDataAddrRead         ExcpCode = 0x0e0
	ExcpDataAddrWrite        ExcpCode = 0x100
	ExcpDataTLBReadMiss      ExcpCode = 0x040
	ExcpDataTLBWriteMiss     ExcpCode = 0x060
	ExcpDataTLBReadProtViol  ExcpCode = 0x0a0
	ExcpDataTLBWriteProtViol ExcpCode = 0x0c0
	ExcpFPU                  ExcpCode = 0x120
	ExcpInitialPageWrite     ExcpCode = 0x080

	// general exceptions (completion type)
	ExcpUnconditionalTrap ExcpCode = 0x160
	ExcpUserBreakAfter    ExcpCode = 0x1e0

	// interrupts (completion type)
	ExcpNMI  ExcpCode = 0x1c0
	ExcpExt0 ExcpCode = 0x200
	ExcpExt1 ExcpCode = 0x220
	ExcpExt2 ExcpCode = 0x240
	ExcpExt3 ExcpCode = 0x260
	ExcpExt4 ExcpCode = 0x280
	ExcpExt5 ExcpCode = 0x2a0
	ExcpExt6 ExcpCode = 0x2c0
	ExcpExt7 ExcpCode = 0x2e0
	ExcpExt8 ExcpCode = 0x300
	ExcpExt9 ExcpCode = 0x320
	ExcpExtA ExcpCode = 0x340
	ExcpExtB ExcpCode = 0x360
	ExcpExtC ExcpCode = 0x380
	ExcpExtD ExcpCode = 0x3a0
	ExcpExtE ExcpCode = 0x3c0

	// peripheral module interrupts (completion type)
	ExcpTMU0TUNI0 ExcpCode = 0x400
	ExcpTMU1TUNI1 ExcpCode = 0x420
	ExcpTMU2TUNI2 ExcpCode = 0x440
	ExcpSCIFRXI   ExcpCode = 0x720
	ExcpSCIFTXI   ExcpCode = 0x760
)

// excpMeta is the compile-time description of one exception code.
type excpMeta struct {
	name      string
	code      ExcpCode
	prioLevel int
	prioOrder int
	offset    uint32
}

// the vector base address isn't in the table because it can be either a
// constant or a register; EnterException hardcodes the choice.
var excpMetaTable = []excpMeta{
	{"POWER_ON_RESET", ExcpPowerOnReset, 1, 1, 0},
	{"MANUAL_RESET", ExcpManualReset, 1, 2, 0},
	{"INST_TLB_MULT_HIT", ExcpInstTLBMultHit, 1, 3, 0},
	{"USER_BREAK_BEFORE", ExcpUserBreakBefore, 2, 0, 0x100},
	{"INST_ADDR_ERR", ExcpInstAddrErr, 2, 1, 0x100},
	{"INST_TLB_MISS", ExcpInstTLBMiss, 2, 2, 0x400},
	{"INST_TLB_PROT_VIOL", ExcpInstTLBProtViol, 2, 3, 0x100},
	{"GEN_ILLEGAL_INST", ExcpGenIllegalInst, 2, 4, 0x100},
	{"SLOT_ILLEGAL_INST", ExcpSlotIllegalInst, 2, 4, 0x100},
	{"GEN_FPU_DISABLE", ExcpGenFPUDisable, 2, 4, 0x100},
	{"SLOT_FPU_DISABLE", ExcpSlotFPUDisable, 2, 4, 0x100},
	{"DATA_ADDR_WRITE", ExcpDataAddrWrite, 2, 5, 0x100},
	{"DATA_TLB_WRITE_MISS", ExcpDataTLBWriteMiss, 2, 6, 0x400},
	{"DATA_TLB_WRITE_PROT_VIOL", ExcpDataTLBWriteProtViol, 2, 7, 0x100},
	{"FPU", ExcpFPU, 2, 8, 0x100},
	{"INITIAL_PAGE_WRITE", ExcpInitialPageWrite, 2, 9, 0x100},
	{"UNCONDITIONAL_TRAP", ExcpUnconditionalTrap, 2, 4, 0x100},
	{"NMI", ExcpNMI, 3, 0, 0x600},
	{"EXT_0", ExcpExt0, 4, 2, 0x600},
	{"EXT_1", ExcpExt1, 4, 2, 0x600},
	{"EXT_2", ExcpExt2, 4, 2, 0x600},
	{"EXT_3", ExcpExt3, 4, 2, 0x600},
	{"EXT_4", ExcpExt4, 4, 2, 0x600},
	{"EXT_5", ExcpExt5, 4, 2, 0x600},
	{"EXT_6", ExcpExt6, 4, 2, 0x600},
	{"EXT_7", ExcpExt7, 4, 2, 0x600},
	{"EXT_8", ExcpExt8, 4, 2, 0x600},
	{"EXT_9", ExcpExt9, 4, 2, 0x600},
	{"EXT_A", ExcpExtA, 4, 2, 0x600},
	{"EXT_B", ExcpExtB, 4, 2, 0x600},
	{"EXT_C", ExcpExtC, 4, 2, 0x600},
	{"EXT_D", ExcpExtD, 4, 2, 0x600},
	{"EXT_E", ExcpExtE, 4, 2, 0x600},
	{"TMU0_TUNI0", ExcpTMU0TUNI0, 4, 2, 0x600},
	{"TMU1_TUNI1", ExcpTMU1TUNI1, 4, 2, 0x600},
	{"TMU2_TUNI2", ExcpTMU2TUNI2, 4, 2, 0x600},
	{"SCIF_RXI", ExcpSCIFRXI, 4, 2, 0x600},
	{"SCIF_TXI", ExcpSCIFTXI, 4, 2, 0x600},
}

func excpMetaFind(code ExcpCode) *excpMeta {
	for i := range excpMetaTable {
		if excpMetaTable[i].code == code {
			return &excpMetaTable[i]
		}
	}
	return nil
}

// EnterException configures the register file for exception entry:
//
//  1. SPC <- PC, SSR <- SR, SGR <- R15.
//  2. the new SR has BL, MD and RB set and FD clear.
//  3. the SR-change side effects run against the old and new values.
//  4. PC is 0xa0000000 for the reset family and multiple-hit cases,
//     otherwise VBR plus the code's vector offset.
func (sh4 *SH4) EnterException(code ExcpCode) error {
	meta := excpMetaFind(code)
	if meta == nil {
		return curated.Raise(curated.UnknownExcpCode, "no metadata for exception code",
			curated.Attr("sh4_exception_code", uint32(code)))
	}

	sh4.regs[SPC] = sh4.regs[PC]
	sh4.regs[SSR] = sh4.regs[SR]
	sh4.regs[SGR] = sh4.regs[R15]

	oldSR := sh4.regs[SR]
	newSR := oldSR | SRBLMask | SRMDMask | SRRBMask
	newSR &^= SRFDMask
	sh4.regs[SR] = newSR
	if err := sh4.onSRChange(oldSR); err != nil {
		return err
	}

	switch code {
	case ExcpPowerOnReset, ExcpManualReset, ExcpInstTLBMultHit:
		sh4.regs[PC] = 0xa0000000
	default:
		sh4.regs[PC] = sh4.regs[VBR] + meta.offset
	}

	return nil
}

// SetException raises a CPU-initiated exception: the code is latched into
// EXPEVT, the PC advance for the aborted instruction is suppressed, and the
// register file enters the exception state.
//
// an exception while the delayed-branch flag is set is an integrity error:
// a branch that traps must not have set the flag, so the flag being set
// means the emitter of the side effect is buggy.
func (sh4 *SH4) SetException(code ExcpCode) error {
	if sh4.DelayedBranch {
		return curated.Raise(curated.Integrity, "exception raised while delayed branch pending",
			curated.Attr("sh4_exception_code", uint32(code)),
			curated.Attr("pc", sh4.regs[PC]),
		)
	}

	if sh4.regs[SR]&SRBLMask != 0 {
		return curated.Raise(curated.Unimplemented, "reset due to exception while exceptions are masked",
			curated.Attr("feature", "exception while SR.BL is set"),
			curated.Attr("sh4_exception_code", uint32(code)),
		)
	}

	sh4.regs[EXPEVT] = (uint32(code) << EXPEVTCodeShift) & EXPEVTCodeMask

	sh4.dontIncrementPC = true

	meta := excpMetaFind(code)
	if meta == nil {
		return curated.Raise(curated.Integrity, "exception with no metadata",
			curated.Attr("sh4_exception_code", uint32(code)))
	}
	logger.Logf("sh4", "CPU exception %s at PC=%08x", meta.name, sh4.regs[PC])

	return sh4.EnterException(code)
}

// SetInterrupt services a pending interrupt: the code is latched into
// INTEVT and the register file enters the exception state pointing at the
// interrupt vector.
func (sh4 *SH4) SetInterrupt(code ExcpCode) error {
	sh4.regs[INTEVT] = uint32(code)
	return sh4.EnterException(code)
}
