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

// Reg is a symbolic index into the SH4 register file. every register,
// including the floating-point banks and the on-chip module registers, is
// stored as a 32-bit word in one fixed array.
type Reg int

// the register file layout. the sixteen general registers R0-R15 are the
// active bank; R0Bank-R7Bank hold the other bank's copy of the first eight.
// bank switching physically exchanges the two blocks.
const (
	PC Reg = iota
	SR
	SSR
	SPC
	GBR
	VBR
	SGR
	DBR
	MACH
	MACL
	PR
	FPSCR
	FPUL

	R0
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	R0Bank
	R1Bank
	R2Bank
	R3Bank
	R4Bank
	R5Bank
	R6Bank
	R7Bank

	FR0
	FR1
	FR2
	FR3
	FR4
	FR5
	FR6
	FR7
	FR8
	FR9
	FR10
	FR11
	FR12
	FR13
	FR14
	FR15

	XF0
	XF1
	XF2
	XF3
	XF4
	XF5
	XF6
	XF7
	XF8
	XF9
	XF10
	XF11
	XF12
	XF13
	XF14
	XF15

	// on-chip module registers
	EXPEVT
	INTEVT
	MMUCR
	PTEH
	PTEL
	PTEA
	TTB
	TEA
	CCR
	QACR0
	QACR1
	ICR
	IPRA
	IPRB
	IPRC
	IPRD

	RegisterCount
)

// bits in the SR register.
const (
	SRTMask     uint32 = 0x00000001
	SRSMask     uint32 = 0x00000002
	SRIMASKMask uint32 = 0x000000f0
	SRQMask     uint32 = 0x00000100
	SRMMask     uint32 = 0x00000200
	SRFDMask    uint32 = 0x00008000
	SRBLMask    uint32 = 0x10000000
	SRRBMask    uint32 = 0x20000000
	SRMDMask    uint32 = 0x40000000

	SRIMASKShift = 4
)

// bits in the FPSCR register.
const (
	FPSCRRMMask uint32 = 0x00000003
	FPSCRDNMask uint32 = 0x00040000
	FPSCRPRMask uint32 = 0x00080000
	FPSCRSZMask uint32 = 0x00100000
	FPSCRFRMask uint32 = 0x00200000
)

// bits in the CCR register.
const (
	CCROCEMask uint32 = 0x00000001
	CCRWTMask  uint32 = 0x00000002
	CCRCBMask  uint32 = 0x00000004
	CCROCIMask uint32 = 0x00000008
	CCRORAMask uint32 = 0x00000020
	CCROIXMask uint32 = 0x00000080
	CCRICEMask uint32 = 0x00000100
	CCRICIMask uint32 = 0x00000800
	CCRIIXMask uint32 = 0x00008000
)

// bits in the MMUCR register.
const (
	MMUCRATMask uint32 = 0x00000001
	MMUCRTIMask uint32 = 0x00000004
	MMUCRSVMask uint32 = 0x00000100
)

// bits in the ICR register.
const (
	ICRIRLMMask uint32 = 0x00000080
	ICRNMIEMask uint32 = 0x00000100
	ICRMAIMask  uint32 = 0x00004000
	ICRNMILMask uint32 = 0x00008000
)

// bits in the EXPEVT register.
const (
	EXPEVTCodeMask  uint32 = 0x00000fff
	EXPEVTCodeShift        = 0
)

// the names of the registers, for diagnostics and the debugger.
var regNames = map[Reg]string{
	PC: "PC", SR: "SR", SSR: "SSR", SPC: "SPC", GBR: "GBR", VBR: "VBR",
	SGR: "SGR", DBR: "DBR", MACH: "MACH", MACL: "MACL", PR: "PR",
	FPSCR: "FPSCR", FPUL: "FPUL",
	R0: "R0", R1: "R1", R2: "R2", R3: "R3", R4: "R4", R5: "R5", R6: "R6",
	R7: "R7", R8: "R8", R9: "R9", R10: "R10", R11: "R11", R12: "R12",
	R13: "R13", R14: "R14", R15: "R15",
	R0Bank: "R0_BANK", R1Bank: "R1_BANK", R2Bank: "R2_BANK",
	R3Bank: "R3_BANK", R4Bank: "R4_BANK", R5Bank: "R5_BANK",
	R6Bank: "R6_BANK", R7Bank: "R7_BANK",
	EXPEVT: "EXPEVT", INTEVT: "INTEVT", MMUCR: "MMUCR", PTEH: "PTEH",
	PTEL: "PTEL", PTEA: "PTEA", TTB: "TTB", TEA: "TEA", CCR: "CCR",
	QACR0: "QACR0", QACR1: "QACR1", ICR: "ICR",
	IPRA: "IPRA", IPRB: "IPRB", IPRC: "IPRC", IPRD: "IPRD",
}

func (r Reg) String() string {
	if n, ok := regNames[r]; ok {
		return n
	}
	if r >= FR0 && r <= FR15 {
		return "FR" + itoa(int(r-FR0))
	}
	if r >= XF0 && r <= XF15 {
		return "XF" + itoa(int(r-XF0))
	}
	return "R?" + itoa(int(r))
}

// small decimal formatter so that the String function doesn't drag fmt into
// the hot path
func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var b [4]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = byte('0' + v%10)
		v /= 10
	}
	return string(b[i:])
}
