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

// Package holly implements the system-block side of the Holly ASIC: the
// interrupt status and mask registers through which every peripheral
// interrupt reaches the SH4's external IRL bus.
//
// Pending interrupts come in three classes, normal, external and error,
// each with its own status register. Three sets of mask registers select
// which pending bits assert the IRL bus at SH4 interrupt levels 6, 4
// and 2.
package holly

import (
	"github.com/washingtondc-emu/washingtondc/hardware/memory/mmio"
)

// bits in the ISTNRM normal-interrupt status register.
const (
	IntRenderCompleteTSP uint32 = 1 << 0
	IntRenderCompleteISP uint32 = 1 << 1
	IntRenderComplete    uint32 = 1 << 2
	IntVBlankIn          uint32 = 1 << 3
	IntVBlankOut         uint32 = 1 << 4
	IntHBlank            uint32 = 1 << 5
	IntYUVComplete       uint32 = 1 << 6
	IntTAOpaqueComplete  uint32 = 1 << 7
	IntTAOpaqueModComplete uint32 = 1 << 8
	IntTATransComplete     uint32 = 1 << 9
	IntTATransModComplete  uint32 = 1 << 10
	IntMapleDMAComplete    uint32 = 1 << 12
	IntGDROMDMAComplete    uint32 = 1 << 14
	IntTAPunchThroughComplete uint32 = 1 << 21
)

// bits in the ISTEXT external-interrupt status register.
const (
	ExtIntGDROM uint32 = 1 << 0
	ExtIntAICA  uint32 = 1 << 1
)

// the two flag bits folded into ISTNRM reads.
const (
	istnrmExtPending uint32 = 1 << 30
	istnrmErrPending uint32 = 1 << 31
)

// register addresses within the system block.
const (
	regionFirst uint32 = 0x005f6800
	regionLast  uint32 = 0x005f7fff

	addrFFST    uint32 = 0x005f688c
	addrISTNRM  uint32 = 0x005f6900
	addrISTEXT  uint32 = 0x005f6904
	addrISTERR  uint32 = 0x005f6908
	addrIML2NRM uint32 = 0x005f6910
	addrIML2EXT uint32 = 0x005f6914
	addrIML2ERR uint32 = 0x005f6918
	addrIML4NRM uint32 = 0x005f6920
	addrIML4EXT uint32 = 0x005f6924
	addrIML4ERR uint32 = 0x005f6928
	addrIML6NRM uint32 = 0x005f6930
	addrIML6EXT uint32 = 0x005f6934
	addrIML6ERR uint32 = 0x005f6938
)

// Intc is the Holly interrupt controller.
type Intc struct {
	region *mmio.Region

	istnrm uint32
	istext uint32
	isterr uint32

	iml2nrm, iml2ext, iml2err uint32
	iml4nrm, iml4ext, iml4err uint32
	iml6nrm, iml6ext, iml6err uint32

	// called whenever the pending/mask state changes so the SH4 can
	// re-evaluate its interrupt priorities
	notify func()
}

// NewIntc is the preferred method of initialisation for the Intc type.
// notify is called on every change to the interrupt state; the Dreamcast
// wires it to the SH4's deferred intc refresh.
func NewIntc(notify func()) *Intc {
	h := &Intc{notify: notify}
	h.buildRegion()
	return h
}

func (h *Intc) changed() {
	if h.notify != nil {
		h.notify()
	}
}

// RaiseNrmInt asserts bits in ISTNRM.
func (h *Intc) RaiseNrmInt(bits uint32) {
	h.istnrm |= bits
	h.changed()
}

// RaiseExtInt asserts bits in ISTEXT. external interrupts stay asserted
// until the source clears them.
func (h *Intc) RaiseExtInt(bits uint32) {
	h.istext |= bits
	h.changed()
}

// ClearExtInt deasserts bits in ISTEXT.
func (h *Intc) ClearExtInt(bits uint32) {
	h.istext &^= bits
	h.changed()
}

// RaiseErrInt asserts bits in ISTERR.
func (h *Intc) RaiseErrInt(bits uint32) {
	h.isterr |= bits
	h.changed()
}

// IRLLine samples the 4-bit external interrupt bus the Holly drives into
// the SH4. active-low: 0xf means nothing pending. the three mask sets
// correspond to SH4 interrupt levels 6, 4 and 2.
func (h *Intc) IRLLine() uint32 {
	if h.istnrm&h.iml6nrm != 0 || h.istext&h.iml6ext != 0 || h.isterr&h.iml6err != 0 {
		return 0x9
	}
	if h.istnrm&h.iml4nrm != 0 || h.istext&h.iml4ext != 0 || h.isterr&h.iml4err != 0 {
		return 0xb
	}
	if h.istnrm&h.iml2nrm != 0 || h.istext&h.iml2ext != 0 || h.isterr&h.iml2err != 0 {
		return 0xd
	}
	return 0xf
}

// Region returns the system-block register window for the memory map.
func (h *Intc) Region() *mmio.Region {
	return h.region
}

// Bounds returns the address range of the system-block window.
func (h *Intc) Bounds() (uint32, uint32) {
	return regionFirst, regionLast
}

// maskCell builds handlers for one interrupt mask register.
func (h *Intc) maskCell(name string, addr uint32, field *uint32) {
	h.region.Cell(name, addr,
		func(r *mmio.Region, idx int) (uint32, error) {
			return *field, nil
		},
		func(r *mmio.Region, idx int, val uint32) error {
			*field = val
			h.changed()
			return nil
		})
}

func (h *Intc) buildRegion() {
	r := mmio.NewRegion("holly sys block", regionFirst, regionLast)
	h.region = r

	// the FIFO status register: every FIFO idle
	r.Cell("SB_FFST", addrFFST,
		func(r *mmio.Region, idx int) (uint32, error) {
			return 0, nil
		}, nil)

	// the interrupt status registers. ISTNRM reads fold in two bits
	// summarising the other two classes; writing 1s clears. ISTEXT is
	// cleared at the source, not by writes
	r.Cell("SB_ISTNRM", addrISTNRM,
		func(r *mmio.Region, idx int) (uint32, error) {
			v := h.istnrm
			if h.istext != 0 {
				v |= istnrmExtPending
			}
			if h.isterr != 0 {
				v |= istnrmErrPending
			}
			return v, nil
		},
		func(r *mmio.Region, idx int, val uint32) error {
			h.istnrm &^= val
			h.changed()
			return nil
		})

	r.Cell("SB_ISTEXT", addrISTEXT,
		func(r *mmio.Region, idx int) (uint32, error) {
			return h.istext, nil
		},
		func(r *mmio.Region, idx int, val uint32) error {
			return nil
		})

	r.Cell("SB_ISTERR", addrISTERR,
		func(r *mmio.Region, idx int) (uint32, error) {
			return h.isterr, nil
		},
		func(r *mmio.Region, idx int, val uint32) error {
			h.isterr &^= val
			h.changed()
			return nil
		})

	h.maskCell("SB_IML2NRM", addrIML2NRM, &h.iml2nrm)
	h.maskCell("SB_IML2EXT", addrIML2EXT, &h.iml2ext)
	h.maskCell("SB_IML2ERR", addrIML2ERR, &h.iml2err)
	h.maskCell("SB_IML4NRM", addrIML4NRM, &h.iml4nrm)
	h.maskCell("SB_IML4EXT", addrIML4EXT, &h.iml4ext)
	h.maskCell("SB_IML4ERR", addrIML4ERR, &h.iml4err)
	h.maskCell("SB_IML6NRM", addrIML6NRM, &h.iml6nrm)
	h.maskCell("SB_IML6EXT", addrIML6EXT, &h.iml6ext)
	h.maskCell("SB_IML6ERR", addrIML6ERR, &h.iml6err)
}
