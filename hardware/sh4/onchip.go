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

// the on-chip module registers are a sparse set of cells scattered through
// the 0xff000000 window (mirrored into Area 7 at 0x1f000000). each has a
// name and read/write behaviour; cells nothing is modelled for fall back to
// a warn-and-store backing word, and addresses with no cell at all raise.

type onchipReadFn func(sh4 *SH4) (uint32, error)
type onchipWriteFn func(sh4 *SH4, val uint32) error

type onchipReg struct {
	name  string
	read  onchipReadFn
	write onchipWriteFn
}

// regRead/regWrite build handlers backed by the register file.
func regRead(r Reg) onchipReadFn {
	return func(sh4 *SH4) (uint32, error) {
		return sh4.regs[r], nil
	}
}

func regWrite(r Reg) onchipWriteFn {
	return func(sh4 *SH4, val uint32) error {
		sh4.regs[r] = val
		return nil
	}
}

// intcWrite stores the register and requests a deferred interrupt-priority
// refresh, since the register participates in interrupt resolution.
func intcWrite(r Reg) onchipWriteFn {
	return func(sh4 *SH4, val uint32) error {
		sh4.regs[r] = val
		sh4.RefreshIntcDeferred()
		return nil
	}
}

// warnReg reads and writes a backing word, logging each access.
func warnRead(name string) onchipReadFn {
	return func(sh4 *SH4) (uint32, error) {
		logger.Logf("sh4", "read from register %s", name)
		return sh4.onchipBacking[name], nil
	}
}

func warnWrite(name string) onchipWriteFn {
	return func(sh4 *SH4, val uint32) error {
		logger.Logf("sh4", "write of %08x to register %s", val, name)
		sh4.onchipBacking[name] = val
		return nil
	}
}

// silent backing handlers for registers touched too frequently to warn on.
func backingRead(name string) onchipReadFn {
	return func(sh4 *SH4) (uint32, error) {
		return sh4.onchipBacking[name], nil
	}
}

func backingWrite(name string) onchipWriteFn {
	return func(sh4 *SH4, val uint32) error {
		sh4.onchipBacking[name] = val
		return nil
	}
}

func warnReg(name string) onchipReg {
	return onchipReg{name: name, read: warnRead(name), write: warnWrite(name)}
}

func silentReg(name string) onchipReg {
	return onchipReg{name: name, read: backingRead(name), write: backingWrite(name)}
}

// buildOnchipRegs fills the dispatch table. called once at construction.
func (sh4 *SH4) buildOnchipRegs() {
	sh4.onchipBacking = make(map[string]uint32)
	r := map[uint32]onchipReg{
		// MMU and cache control block
		0xff000000: {name: "PTEH", read: regRead(PTEH), write: regWrite(PTEH)},
		0xff000004: {name: "PTEL", read: regRead(PTEL), write: regWrite(PTEL)},
		0xff000008: {name: "TTB", read: regRead(TTB), write: regWrite(TTB)},
		0xff00000c: {name: "TEA", read: regRead(TEA), write: regWrite(TEA)},
		0xff000010: {name: "MMUCR", read: regRead(MMUCR), write: func(sh4 *SH4, val uint32) error {
			// the TI bit reads back as zero; setting it invalidates the TLBs
			if val&MMUCRTIMask != 0 {
				sh4.tlb = TLB{}
			}
			sh4.regs[MMUCR] = val &^ MMUCRTIMask
			return nil
		}},
		0xff000014: warnReg("BASRA"),
		0xff000018: warnReg("BASRB"),
		0xff00001c: {name: "CCR", read: regRead(CCR), write: func(sh4 *SH4, val uint32) error {
			sh4.regs[CCR] = val
			return nil
		}},
		0xff000020: silentReg("TRA"),
		0xff000024: {name: "EXPEVT", read: regRead(EXPEVT), write: regWrite(EXPEVT)},
		0xff000028: {name: "INTEVT", read: regRead(INTEVT), write: regWrite(INTEVT)},
		0xff000034: {name: "PTEA", read: regRead(PTEA), write: regWrite(PTEA)},
		0xff000038: {name: "QACR0", read: regRead(QACR0), write: regWrite(QACR0)},
		0xff00003c: {name: "QACR1", read: regRead(QACR1), write: regWrite(QACR1)},

		// clock pulse generator / watchdog
		0xffc00000: warnReg("FRQCR"),
		0xffc00004: warnReg("STBCR"),
		0xffc00008: warnReg("WTCNT"),
		0xffc0000c: warnReg("WTCSR"),
		0xffc00010: warnReg("STBCR2"),

		// interrupt controller. writes participate in interrupt resolution
		// so they request a deferred refresh
		0xffd00000: {name: "ICR", read: regRead(ICR), write: intcWrite(ICR)},
		0xffd00004: {name: "IPRA", read: regRead(IPRA), write: intcWrite(IPRA)},
		0xffd00008: {name: "IPRB", read: regRead(IPRB), write: intcWrite(IPRB)},
		0xffd0000c: {name: "IPRC", read: regRead(IPRC), write: intcWrite(IPRC)},
		0xffd00010: {name: "IPRD", read: regRead(IPRD), write: intcWrite(IPRD)},

		// timer unit. carried as backing words; nothing in the core keys off
		// the TMU yet
		0xffd80000: warnReg("TOCR"),
		0xffd80004: silentReg("TSTR"),
		0xffd80008: silentReg("TCOR0"),
		0xffd8000c: silentReg("TCNT0"),
		0xffd80010: silentReg("TCR0"),
		0xffd80014: silentReg("TCOR1"),
		0xffd80018: silentReg("TCNT1"),
		0xffd8001c: silentReg("TCR1"),
		0xffd80020: silentReg("TCOR2"),
		0xffd80024: silentReg("TCNT2"),
		0xffd80028: silentReg("TCR2"),
		0xffd8002c: silentReg("TCPR2"),

		// serial interface with FIFO
		0xffe80000: silentReg("SCSMR2"),
		0xffe80004: silentReg("SCBRR2"),
		0xffe80008: silentReg("SCSCR2"),
		0xffe8000c: {name: "SCFTDR2", read: backingRead("SCFTDR2"), write: func(sh4 *SH4, val uint32) error {
			if sh4.SerialTx != nil {
				sh4.SerialTx(uint8(val))
			}
			return nil
		}},
		0xffe80010: {name: "SCFSR2", read: func(sh4 *SH4) (uint32, error) {
			// transmit always ready; receive ready while bytes are queued
			v := uint32(0x60) // TEND | TDFE
			if len(sh4.serialRxBuf) > 0 {
				v |= 0x02 // RDF
			}
			return v, nil
		}, write: func(sh4 *SH4, val uint32) error {
			return nil
		}},
		0xffe80014: {name: "SCFRDR2", read: func(sh4 *SH4) (uint32, error) {
			if len(sh4.serialRxBuf) == 0 {
				return 0, nil
			}
			v := uint32(sh4.serialRxBuf[0])
			sh4.serialRxBuf = sh4.serialRxBuf[1:]
			return v, nil
		}, write: nil},
		0xffe80018: silentReg("SCFCR2"),
		0xffe8001c: {name: "SCFDR2", read: func(sh4 *SH4) (uint32, error) {
			return uint32(len(sh4.serialRxBuf)&0x1f) << 0, nil
		}, write: nil},
		0xffe80020: silentReg("SCSPTR2"),
		0xffe80024: silentReg("SCLSR2"),
	}
	sh4.onchipRegs = r
}

// SerialRx queues bytes for the guest to read from the SCIF. called by the
// serial-over-TCP front-end.
func (sh4 *SH4) SerialRx(data []byte) {
	sh4.serialRxBuf = append(sh4.serialRxBuf, data...)
}

// onchipRead32 dispatches a read of an on-chip module register.
func (sh4 *SH4) onchipRead32(addr uint32) (uint32, error) {
	reg, ok := sh4.onchipRegs[addr]
	if !ok || reg.read == nil {
		return 0, curated.Raise(curated.Unimplemented, "read from unimplemented on-chip register",
			curated.Attr("address", addr))
	}
	return reg.read(sh4)
}

// onchipWrite32 dispatches a write of an on-chip module register.
func (sh4 *SH4) onchipWrite32(addr uint32, val uint32) error {
	reg, ok := sh4.onchipRegs[addr]
	if !ok || reg.write == nil {
		return curated.Raise(curated.Unimplemented, "write to unimplemented on-chip register",
			curated.Attr("address", addr),
			curated.Attr("value", val))
	}
	return reg.write(sh4, val)
}
