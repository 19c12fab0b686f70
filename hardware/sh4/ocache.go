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
	"encoding/binary"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/bus"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// OCRAMSize is the size of the operand cache when repurposed as RAM.
const OCRAMSize = 8 * 1024

// the store-queue virtual window and the fields of an address within it.
const (
	sqSelectMask  uint32 = 0x20
	sqSelectShift        = 5
	sqAddrMask    uint32 = 0x03ffffe0
	qacrMask      uint32 = 0x7c
	qacrShift            = 2
)

// ocache is the on-chip operand cache state: the 8KB RAM area and the two
// store queues.
type ocache struct {
	ocRAM [OCRAMSize]byte

	// two queues of eight 32-bit words each. sq[0:8] is queue zero,
	// sq[8:16] queue one
	sq [16]uint32
}

func (oc *ocache) clear() {
	for i := range oc.ocRAM {
		oc.ocRAM[i] = 0
	}
	for i := range oc.sq {
		oc.sq[i] = 0
	}
}

// oraOffset maps a physical address within the operand-cache RAM window to
// an offset into the 8KB array. the cache's single 4KB half is selected by
// one address bit; which bit depends on CCR.OIX.
func (sh4 *SH4) oraOffset(paddr uint32) uint32 {
	off := paddr & 0xfff

	var mask uint32
	if sh4.regs[CCR]&CCROIXMask != 0 {
		mask = 1 << 25
	} else {
		mask = 1 << 13
	}

	if paddr&mask != 0 {
		return OCRAMSize/2 + off
	}
	return off
}

// ocRAMRead services a read from the operand-cache RAM area. reads with the
// cache disabled return zero; writes with ORA disabled are accepted anyway.
// observed hardware diverges from the documentation here, so both cases
// warn rather than raise.
func (sh4 *SH4) ocRAMRead(paddr uint32, out []byte) {
	if sh4.regs[CCR]&CCROCEMask == 0 {
		logger.Logf("sh4", "reading %08x (%d bytes) with operand cache disabled", paddr, len(out))
		for i := range out {
			out[i] = 0
		}
		return
	}
	off := sh4.oraOffset(paddr)
	copy(out, sh4.ocache.ocRAM[off:])
}

func (sh4 *SH4) ocRAMWrite(paddr uint32, in []byte) {
	if sh4.regs[CCR]&CCRORAMask == 0 {
		logger.Logf("sh4", "writing to %08x (%d bytes) with ORA disabled", paddr, len(in))
	}
	off := sh4.oraOffset(paddr)
	copy(sh4.ocache.ocRAM[off:], in)
}

// sqFields splits a store-queue window address into the queue selector and
// the word index.
func sqFields(addr uint32) (sel uint32, idx uint32) {
	return (addr & sqSelectMask) >> sqSelectShift, (addr >> 2) & 0x7
}

// sqCheck rejects accesses whose width crosses the end of a queue.
func sqCheck(addr uint32, length int) error {
	_, idx := sqFields(addr)
	if int(idx)+length/4 > 8 {
		return curated.Raise(curated.Unimplemented, "store-queue access crossing queue boundary",
			curated.Attr("feature", "inappropriate length during a store-queue operation"),
			curated.Attr("address", addr),
			curated.Attr("length", length),
		)
	}
	return nil
}

// SQWrite32 stores one word into a store queue through the virtual window.
func (sh4 *SH4) SQWrite32(addr uint32, val uint32) error {
	if err := sqCheck(addr, 4); err != nil {
		return err
	}
	sel, idx := sqFields(addr)
	sh4.ocache.sq[8*sel+idx] = val
	return nil
}

// SQRead32 reads one word back from a store queue.
func (sh4 *SH4) SQRead32(addr uint32) (uint32, error) {
	if err := sqCheck(addr, 4); err != nil {
		return 0, err
	}
	sel, idx := sqFields(addr)
	return sh4.ocache.sq[8*sel+idx], nil
}

// SQWrite8 stores one byte into a store queue.
func (sh4 *SH4) SQWrite8(addr uint32, val uint8) error {
	sel, idx := sqFields(addr)
	word := &sh4.ocache.sq[8*sel+idx]
	shift := (addr & 3) * 8
	*word = (*word &^ (0xff << shift)) | uint32(val)<<shift
	return nil
}

// SQWrite16 stores one halfword into a store queue.
func (sh4 *SH4) SQWrite16(addr uint32, val uint16) error {
	if err := sqCheck(addr&^1, 2); err != nil {
		return err
	}
	sel, idx := sqFields(addr)
	word := &sh4.ocache.sq[8*sel+idx]
	shift := (addr & 2) * 8
	*word = (*word &^ (0xffff << shift)) | uint32(val)<<shift
	return nil
}

// SQWrite64 stores two words into a store queue.
func (sh4 *SH4) SQWrite64(addr uint32, lo uint32, hi uint32) error {
	if err := sqCheck(addr, 8); err != nil {
		return err
	}
	if err := sh4.SQWrite32(addr, lo); err != nil {
		return err
	}
	return sh4.SQWrite32(addr+4, hi)
}

// SQPref flushes one store queue to the bus as an eight-word burst. the
// physical base address comes from QACR0/QACR1 when the MMU is off, or from
// a UTLB translation when it is on. a UTLB miss raises a data-TLB-write-miss
// guest exception with TEA and PTEH set from the faulting address.
func (sh4 *SH4) SQPref(addr uint32) error {
	sqSel := (addr & sqSelectMask) >> sqSelectShift
	sqIdx := sqSel << 3

	var addrActual uint32

	if sh4.regs[MMUCR]&MMUCRATMask != 0 {
		asid := uint8(sh4.regs[PTEH] & 0xff)
		paddr, res := sh4.tlb.utlbTranslate(addr, asid)
		switch res {
		case translateMiss:
			sh4.regs[TEA] = addr
			sh4.regs[PTEH] = (sh4.regs[PTEH] & 0x3ff) | (addr &^ 0x3ff)
			if err := sh4.SetException(ExcpDataTLBWriteMiss); err != nil {
				return err
			}
			return curated.Errorf(bus.AccessExc, "data TLB write miss during store-queue prefetch")
		case translateMultHit:
			sh4.regs[TEA] = addr
			if err := sh4.SetException(ExcpDataTLBMultHit); err != nil {
				return err
			}
			return curated.Errorf(bus.AccessExc, "data TLB multiple hit during store-queue prefetch")
		}
		addrActual = (paddr &^ 0x1f) | (addr & 0x3e0)
	} else {
		qacr := sh4.regs[QACR0+Reg(sqSel)]
		addrActual = (addr & sqAddrMask) | (((qacr & qacrMask) >> qacrShift) << 26)
	}

	for i := uint32(0); i < 8; i++ {
		if err := sh4.bus.Write32(addrActual+i*4, sh4.ocache.sq[sqIdx+i]); err != nil {
			return err
		}
	}

	return nil
}

// SQ exposes the raw store-queue words for the debugger.
func (sh4 *SH4) SQ() []uint32 {
	return sh4.ocache.sq[:]
}

// ocRAM helpers at specific widths, for the P4 dispatcher.

func (sh4 *SH4) ocRAMRead32(paddr uint32) uint32 {
	var b [4]byte
	sh4.ocRAMRead(paddr, b[:])
	return binary.LittleEndian.Uint32(b[:])
}

func (sh4 *SH4) ocRAMWrite32(paddr uint32, val uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], val)
	sh4.ocRAMWrite(paddr, b[:])
}
