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

package memory

// boundaries of the regions on the Dreamcast system bus, in physical
// (29-bit) address terms. the SH4 folds its P0-P3 areas down onto this
// space before dispatch.
const (
	BootROMFirst uint32 = 0x00000000
	BootROMLast  uint32 = 0x001fffff
	BootROMMask  uint32 = 0x001fffff
	BootROMSize         = 0x200000

	FlashFirst uint32 = 0x00200000
	FlashLast  uint32 = 0x0021ffff
	FlashMask  uint32 = 0x0001ffff
	FlashSize         = 0x20000

	// Holly system-block registers, including the interrupt registers
	SysBlockFirst uint32 = 0x005f6800
	SysBlockLast  uint32 = 0x005f7fff

	// PVR2 core registers
	PVR2RegsFirst uint32 = 0x005f8000
	PVR2RegsLast  uint32 = 0x005f9fff

	// AICA channel and DSP registers
	AICARegsFirst uint32 = 0x00700000
	AICARegsLast  uint32 = 0x0070ffff

	// AICA wave memory
	AICARAMFirst uint32 = 0x00800000
	AICARAMLast  uint32 = 0x009fffff
	AICARAMMask  uint32 = 0x001fffff
	AICARAMSize         = 0x200000

	// Area 1: PVR2 texture memory. four bands at base 0x04000000: the
	// 64-bit access path, the 32-bit access path, and two mirrors. band
	// folding is the texmem region's business so the map mask keeps all
	// four bands
	TexMemFirst uint32 = 0x04000000
	TexMemLast  uint32 = 0x07ffffff
	TexMemMask  uint32 = 0x07ffffff
	TexMemSize         = 0x800000

	// Area 3: system RAM. 16MB mirrored four times
	SysRAMFirst uint32 = 0x0c000000
	SysRAMLast  uint32 = 0x0fffffff
	SysRAMMask  uint32 = 0x00ffffff
	SysRAMSize         = 0x1000000

	// Area 4: tile accelerator FIFOs. the polygon-converter FIFO and the
	// YUV-converter FIFO
	TAFIFOFirst uint32 = 0x10000000
	TAFIFOLast  uint32 = 0x107fffff
	TAYUVFirst  uint32 = 0x10800000
	TAYUVLast   uint32 = 0x10ffffff

	// Area 7: on-chip peripheral module registers (also visible through
	// the P4 area at 0xff000000)
	Area7First uint32 = 0x1f000000
	Area7Last  uint32 = 0x1ff00007
)
