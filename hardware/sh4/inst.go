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
	"github.com/washingtondc-emu/washingtondc/hardware/memory/bus"
)

// field extraction helpers for the 16-bit instruction word. rn and rm are
// the usual register fields, imm8/disp the immediate fields.
func rn(op uint16) Reg     { return R0 + Reg((op>>8)&0xf) }
func rm(op uint16) Reg     { return R0 + Reg((op>>4)&0xf) }
func imm8(op uint16) int32 { return int32(int8(op)) }
func disp8(op uint16) uint32 {
	return uint32(op & 0xff)
}
func disp12(op uint16) int32 {
	d := int32(op & 0xfff)
	if d&0x800 != 0 {
		d -= 0x1000
	}
	return d
}

// setT sets or clears the T flag in SR.
func (sh4 *SH4) setT(v bool) {
	if v {
		sh4.regs[SR] |= SRTMask
	} else {
		sh4.regs[SR] &^= SRTMask
	}
}

func (sh4 *SH4) t() bool {
	return sh4.regs[SR]&SRTMask != 0
}

// branchDelayed arms the delayed-branch slot.
func (sh4 *SH4) branchDelayed(target uint32) {
	sh4.DelayedBranch = true
	sh4.DelayedBranchAddr = target
}

// branchNow redirects PC immediately (no delay slot).
func (sh4 *SH4) branchNow(target uint32) {
	sh4.regs[PC] = target
	sh4.pcWritten = true
}

// guestOrHostErr separates guest-exception errors, which the interpreter
// absorbs because the exception state has already been entered, from host
// errors, which propagate.
func guestOrHostErr(err error) error {
	if err == nil || curated.Is(err, bus.AccessExc) {
		return nil
	}
	return err
}

// executeOp interprets one instruction word. PC still points at the
// instruction; the caller advances it afterwards unless the instruction
// redirected control.
func (sh4 *SH4) executeOp(op uint16) error {
	switch op {
	case 0x0009: // NOP
		return nil
	case 0x0008: // CLRT
		sh4.setT(false)
		return nil
	case 0x0018: // SETT
		sh4.setT(true)
		return nil
	case 0x0028: // CLRMAC
		sh4.regs[MACH] = 0
		sh4.regs[MACL] = 0
		return nil
	case 0x001b: // SLEEP
		sh4.ExecState = ExecStateSleep
		return nil
	case 0x000b: // RTS
		sh4.branchDelayed(sh4.regs[PR])
		return nil
	case 0x002b: // RTE
		sh4.branchDelayed(sh4.regs[SPC])
		return sh4.SetSR(sh4.regs[SSR])
	}

	switch op & 0xf000 {
	case 0xe000: // MOV #imm, Rn
		sh4.regs[rn(op)] = uint32(imm8(op))
		return nil
	case 0x9000: // MOV.W @(disp, PC), Rn
		addr := sh4.regs[PC] + 4 + disp8(op)*2
		v, err := sh4.ReadVirt16(addr)
		sh4.regs[rn(op)] = uint32(int32(int16(v)))
		return guestOrHostErr(err)
	case 0xd000: // MOV.L @(disp, PC), Rn
		addr := (sh4.regs[PC] &^ 3) + 4 + disp8(op)*4
		v, err := sh4.ReadVirt32(addr)
		sh4.regs[rn(op)] = v
		return guestOrHostErr(err)
	case 0xa000: // BRA disp
		sh4.branchDelayed(sh4.regs[PC] + 4 + uint32(disp12(op)*2))
		return nil
	case 0xb000: // BSR disp
		sh4.regs[PR] = sh4.regs[PC] + 4
		sh4.branchDelayed(sh4.regs[PC] + 4 + uint32(disp12(op)*2))
		return nil
	case 0x7000: // ADD #imm, Rn
		sh4.regs[rn(op)] += uint32(imm8(op))
		return nil
	case 0x5000: // MOV.L @(disp, Rm), Rn
		addr := sh4.regs[rm(op)] + uint32(op&0xf)*4
		v, err := sh4.ReadVirt32(addr)
		sh4.regs[rn(op)] = v
		return guestOrHostErr(err)
	case 0x1000: // MOV.L Rm, @(disp, Rn)
		addr := sh4.regs[rn(op)] + uint32(op&0xf)*4
		return guestOrHostErr(sh4.WriteVirt32(addr, sh4.regs[rm(op)]))
	}

	switch op & 0xf0ff {
	case 0x0002: // STC SR, Rn
		sh4.regs[rn(op)] = sh4.regs[SR]
		return nil
	case 0x0012: // STC GBR, Rn
		sh4.regs[rn(op)] = sh4.regs[GBR]
		return nil
	case 0x0022: // STC VBR, Rn
		sh4.regs[rn(op)] = sh4.regs[VBR]
		return nil
	case 0x003a: // STC SGR, Rn
		sh4.regs[rn(op)] = sh4.regs[SGR]
		return nil
	case 0x0023: // BRAF Rn
		sh4.branchDelayed(sh4.regs[PC] + 4 + sh4.regs[rn(op)])
		return nil
	case 0x0003: // BSRF Rn
		sh4.regs[PR] = sh4.regs[PC] + 4
		sh4.branchDelayed(sh4.regs[PC] + 4 + sh4.regs[rn(op)])
		return nil
	case 0x0029: // MOVT Rn
		if sh4.t() {
			sh4.regs[rn(op)] = 1
		} else {
			sh4.regs[rn(op)] = 0
		}
		return nil
	case 0x001a: // STS MACL, Rn
		sh4.regs[rn(op)] = sh4.regs[MACL]
		return nil
	case 0x000a: // STS MACH, Rn
		sh4.regs[rn(op)] = sh4.regs[MACH]
		return nil
	case 0x002a: // STS PR, Rn
		sh4.regs[rn(op)] = sh4.regs[PR]
		return nil
	case 0x005a: // STS FPUL, Rn
		sh4.regs[rn(op)] = sh4.regs[FPUL]
		return nil
	case 0x006a: // STS FPSCR, Rn
		sh4.regs[rn(op)] = sh4.regs[FPSCR]
		return nil
	case 0x0083: // PREF @Rn
		addr := sh4.regs[rn(op)]
		if addr >= sqWindowFirst && addr <= sqWindowLast {
			return guestOrHostErr(sh4.SQPref(addr))
		}
		// an ordinary prefetch hint; nothing to do
		return nil
	case 0x402b: // JMP @Rn
		sh4.branchDelayed(sh4.regs[rn(op)])
		return nil
	case 0x400b: // JSR @Rn
		sh4.regs[PR] = sh4.regs[PC] + 4
		sh4.branchDelayed(sh4.regs[rn(op)])
		return nil
	case 0x400e: // LDC Rn, SR
		return sh4.SetSR(sh4.regs[rn(op)])
	case 0x401e: // LDC Rn, GBR
		sh4.regs[GBR] = sh4.regs[rn(op)]
		return nil
	case 0x402e: // LDC Rn, VBR
		sh4.regs[VBR] = sh4.regs[rn(op)]
		return nil
	case 0x403e: // LDC Rn, SSR
		sh4.regs[SSR] = sh4.regs[rn(op)]
		return nil
	case 0x404e: // LDC Rn, SPC
		sh4.regs[SPC] = sh4.regs[rn(op)]
		return nil
	case 0x402a: // LDS Rn, PR
		sh4.regs[PR] = sh4.regs[rn(op)]
		return nil
	case 0x405a: // LDS Rn, FPUL
		sh4.regs[FPUL] = sh4.regs[rn(op)]
		return nil
	case 0x406a: // LDS Rn, FPSCR
		sh4.setFPSCR(sh4.regs[rn(op)])
		return nil
	case 0x4007: // LDC.L @Rn+, SR
		v, err := sh4.ReadVirt32(sh4.regs[rn(op)])
		if err := guestOrHostErr(err); err != nil {
			return err
		}
		sh4.regs[rn(op)] += 4
		return sh4.SetSR(v)
	case 0x4026: // LDS.L @Rn+, PR
		v, err := sh4.ReadVirt32(sh4.regs[rn(op)])
		if err := guestOrHostErr(err); err != nil {
			return err
		}
		sh4.regs[rn(op)] += 4
		sh4.regs[PR] = v
		return nil
	case 0x4022: // STS.L PR, @-Rn
		addr := sh4.regs[rn(op)] - 4
		if err := guestOrHostErr(sh4.WriteVirt32(addr, sh4.regs[PR])); err != nil {
			return err
		}
		sh4.regs[rn(op)] = addr
		return nil
	case 0x4010: // DT Rn
		sh4.regs[rn(op)]--
		sh4.setT(sh4.regs[rn(op)] == 0)
		return nil
	case 0x4000: // SHLL Rn
		sh4.setT(sh4.regs[rn(op)]&0x80000000 != 0)
		sh4.regs[rn(op)] <<= 1
		return nil
	case 0x4001: // SHLR Rn
		sh4.setT(sh4.regs[rn(op)]&1 != 0)
		sh4.regs[rn(op)] >>= 1
		return nil
	case 0x4021: // SHAR Rn
		sh4.setT(sh4.regs[rn(op)]&1 != 0)
		sh4.regs[rn(op)] = uint32(int32(sh4.regs[rn(op)]) >> 1)
		return nil
	case 0x4004: // ROTL Rn
		v := sh4.regs[rn(op)]
		sh4.setT(v&0x80000000 != 0)
		sh4.regs[rn(op)] = v<<1 | v>>31
		return nil
	case 0x4005: // ROTR Rn
		v := sh4.regs[rn(op)]
		sh4.setT(v&1 != 0)
		sh4.regs[rn(op)] = v>>1 | v<<31
		return nil
	case 0x4008: // SHLL2 Rn
		sh4.regs[rn(op)] <<= 2
		return nil
	case 0x4018: // SHLL8 Rn
		sh4.regs[rn(op)] <<= 8
		return nil
	case 0x4028: // SHLL16 Rn
		sh4.regs[rn(op)] <<= 16
		return nil
	case 0x4009: // SHLR2 Rn
		sh4.regs[rn(op)] >>= 2
		return nil
	case 0x4019: // SHLR8 Rn
		sh4.regs[rn(op)] >>= 8
		return nil
	case 0x4029: // SHLR16 Rn
		sh4.regs[rn(op)] >>= 16
		return nil
	}

	switch op & 0xff00 {
	case 0x8800: // CMP/EQ #imm, R0
		sh4.setT(sh4.regs[R0] == uint32(imm8(op)))
		return nil
	case 0x8900: // BT disp
		if sh4.t() {
			sh4.branchNow(sh4.regs[PC] + 4 + uint32(int32(int8(op))*2))
		}
		return nil
	case 0x8b00: // BF disp
		if !sh4.t() {
			sh4.branchNow(sh4.regs[PC] + 4 + uint32(int32(int8(op))*2))
		}
		return nil
	case 0x8d00: // BT/S disp
		if sh4.t() {
			sh4.branchDelayed(sh4.regs[PC] + 4 + uint32(int32(int8(op))*2))
		}
		return nil
	case 0x8f00: // BF/S disp
		if !sh4.t() {
			sh4.branchDelayed(sh4.regs[PC] + 4 + uint32(int32(int8(op))*2))
		}
		return nil
	case 0xc300: // TRAPA #imm
		sh4.onchipBacking["TRA"] = uint32(op&0xff) << 2
		sh4.regs[PC] += 2
		sh4.pcWritten = true
		return sh4.SetException(ExcpUnconditionalTrap)
	case 0xc700: // MOVA @(disp, PC), R0
		sh4.regs[R0] = (sh4.regs[PC] &^ 3) + 4 + disp8(op)*4
		return nil
	case 0xc900: // AND #imm, R0
		sh4.regs[R0] &= uint32(op & 0xff)
		return nil
	case 0xcb00: // OR #imm, R0
		sh4.regs[R0] |= uint32(op & 0xff)
		return nil
	case 0xca00: // XOR #imm, R0
		sh4.regs[R0] ^= uint32(op & 0xff)
		return nil
	case 0xc800: // TST #imm, R0
		sh4.setT(sh4.regs[R0]&uint32(op&0xff) == 0)
		return nil
	case 0x8400: // MOV.B @(disp, Rm), R0
		addr := sh4.regs[rm(op)] + uint32(op&0xf)
		v, err := sh4.ReadVirt8(addr)
		sh4.regs[R0] = uint32(int32(int8(v)))
		return guestOrHostErr(err)
	case 0x8500: // MOV.W @(disp, Rm), R0
		addr := sh4.regs[rm(op)] + uint32(op&0xf)*2
		v, err := sh4.ReadVirt16(addr)
		sh4.regs[R0] = uint32(int32(int16(v)))
		return guestOrHostErr(err)
	case 0x8000: // MOV.B R0, @(disp, Rm)
		addr := sh4.regs[rm(op)] + uint32(op&0xf)
		return guestOrHostErr(sh4.WriteVirt8(addr, uint8(sh4.regs[R0])))
	case 0x8100: // MOV.W R0, @(disp, Rm)
		addr := sh4.regs[rm(op)] + uint32(op&0xf)*2
		return guestOrHostErr(sh4.WriteVirt16(addr, uint16(sh4.regs[R0])))
	}

	switch op & 0xf00f {
	case 0x6003: // MOV Rm, Rn
		sh4.regs[rn(op)] = sh4.regs[rm(op)]
		return nil
	case 0x6000: // MOV.B @Rm, Rn
		v, err := sh4.ReadVirt8(sh4.regs[rm(op)])
		sh4.regs[rn(op)] = uint32(int32(int8(v)))
		return guestOrHostErr(err)
	case 0x6001: // MOV.W @Rm, Rn
		v, err := sh4.ReadVirt16(sh4.regs[rm(op)])
		sh4.regs[rn(op)] = uint32(int32(int16(v)))
		return guestOrHostErr(err)
	case 0x6002: // MOV.L @Rm, Rn
		v, err := sh4.ReadVirt32(sh4.regs[rm(op)])
		sh4.regs[rn(op)] = v
		return guestOrHostErr(err)
	case 0x2000: // MOV.B Rm, @Rn
		return guestOrHostErr(sh4.WriteVirt8(sh4.regs[rn(op)], uint8(sh4.regs[rm(op)])))
	case 0x2001: // MOV.W Rm, @Rn
		return guestOrHostErr(sh4.WriteVirt16(sh4.regs[rn(op)], uint16(sh4.regs[rm(op)])))
	case 0x2002: // MOV.L Rm, @Rn
		return guestOrHostErr(sh4.WriteVirt32(sh4.regs[rn(op)], sh4.regs[rm(op)]))
	case 0x6004: // MOV.B @Rm+, Rn
		v, err := sh4.ReadVirt8(sh4.regs[rm(op)])
		if err := guestOrHostErr(err); err != nil {
			return err
		}
		if rn(op) != rm(op) {
			sh4.regs[rm(op)]++
		}
		sh4.regs[rn(op)] = uint32(int32(int8(v)))
		return nil
	case 0x6005: // MOV.W @Rm+, Rn
		v, err := sh4.ReadVirt16(sh4.regs[rm(op)])
		if err := guestOrHostErr(err); err != nil {
			return err
		}
		if rn(op) != rm(op) {
			sh4.regs[rm(op)] += 2
		}
		sh4.regs[rn(op)] = uint32(int32(int16(v)))
		return nil
	case 0x6006: // MOV.L @Rm+, Rn
		v, err := sh4.ReadVirt32(sh4.regs[rm(op)])
		if err := guestOrHostErr(err); err != nil {
			return err
		}
		if rn(op) != rm(op) {
			sh4.regs[rm(op)] += 4
		}
		sh4.regs[rn(op)] = v
		return nil
	case 0x2004: // MOV.B Rm, @-Rn
		addr := sh4.regs[rn(op)] - 1
		if err := guestOrHostErr(sh4.WriteVirt8(addr, uint8(sh4.regs[rm(op)]))); err != nil {
			return err
		}
		sh4.regs[rn(op)] = addr
		return nil
	case 0x2005: // MOV.W Rm, @-Rn
		addr := sh4.regs[rn(op)] - 2
		if err := guestOrHostErr(sh4.WriteVirt16(addr, uint16(sh4.regs[rm(op)]))); err != nil {
			return err
		}
		sh4.regs[rn(op)] = addr
		return nil
	case 0x2006: // MOV.L Rm, @-Rn
		addr := sh4.regs[rn(op)] - 4
		if err := guestOrHostErr(sh4.WriteVirt32(addr, sh4.regs[rm(op)])); err != nil {
			return err
		}
		sh4.regs[rn(op)] = addr
		return nil
	case 0x300c: // ADD Rm, Rn
		sh4.regs[rn(op)] += sh4.regs[rm(op)]
		return nil
	case 0x3008: // SUB Rm, Rn
		sh4.regs[rn(op)] -= sh4.regs[rm(op)]
		return nil
	case 0x3000: // CMP/EQ Rm, Rn
		sh4.setT(sh4.regs[rn(op)] == sh4.regs[rm(op)])
		return nil
	case 0x3002: // CMP/HS Rm, Rn
		sh4.setT(sh4.regs[rn(op)] >= sh4.regs[rm(op)])
		return nil
	case 0x3003: // CMP/GE Rm, Rn
		sh4.setT(int32(sh4.regs[rn(op)]) >= int32(sh4.regs[rm(op)]))
		return nil
	case 0x3006: // CMP/HI Rm, Rn
		sh4.setT(sh4.regs[rn(op)] > sh4.regs[rm(op)])
		return nil
	case 0x3007: // CMP/GT Rm, Rn
		sh4.setT(int32(sh4.regs[rn(op)]) > int32(sh4.regs[rm(op)]))
		return nil
	case 0x2009: // AND Rm, Rn
		sh4.regs[rn(op)] &= sh4.regs[rm(op)]
		return nil
	case 0x200b: // OR Rm, Rn
		sh4.regs[rn(op)] |= sh4.regs[rm(op)]
		return nil
	case 0x200a: // XOR Rm, Rn
		sh4.regs[rn(op)] ^= sh4.regs[rm(op)]
		return nil
	case 0x2008: // TST Rm, Rn
		sh4.setT(sh4.regs[rn(op)]&sh4.regs[rm(op)] == 0)
		return nil
	case 0x0007: // MUL.L Rm, Rn
		sh4.regs[MACL] = sh4.regs[rn(op)] * sh4.regs[rm(op)]
		return nil
	case 0x6007: // NOT Rm, Rn
		sh4.regs[rn(op)] = ^sh4.regs[rm(op)]
		return nil
	case 0x600b: // NEG Rm, Rn
		sh4.regs[rn(op)] = -sh4.regs[rm(op)]
		return nil
	case 0x6008: // SWAP.B Rm, Rn
		v := sh4.regs[rm(op)]
		sh4.regs[rn(op)] = (v &^ 0xffff) | (v&0xff)<<8 | (v>>8)&0xff
		return nil
	case 0x6009: // SWAP.W Rm, Rn
		v := sh4.regs[rm(op)]
		sh4.regs[rn(op)] = v<<16 | v>>16
		return nil
	case 0x600c: // EXTU.B Rm, Rn
		sh4.regs[rn(op)] = sh4.regs[rm(op)] & 0xff
		return nil
	case 0x600d: // EXTU.W Rm, Rn
		sh4.regs[rn(op)] = sh4.regs[rm(op)] & 0xffff
		return nil
	case 0x600e: // EXTS.B Rm, Rn
		sh4.regs[rn(op)] = uint32(int32(int8(sh4.regs[rm(op)])))
		return nil
	case 0x600f: // EXTS.W Rm, Rn
		sh4.regs[rn(op)] = uint32(int32(int16(sh4.regs[rm(op)])))
		return nil
	}

	return curated.Raise(curated.Unimplemented, "instruction not implemented",
		curated.Attr("opcode", uint32(op)),
		curated.Attr("pc", sh4.regs[PC]),
	)
}
