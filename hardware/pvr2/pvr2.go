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

// Package pvr2 implements the PowerVR2 graphics chip: the core register
// file, the sync pulse generator that paces the raster, the tile
// accelerator front-end that captures display lists, the STARTRENDER
// replay path, and the framebuffer read/write machinery.
//
// Rendering itself is delegated to a host back-end through the gfx-IL
// instruction stream; the chip model never touches pixels beyond format
// conversion.
package pvr2

import (
	"github.com/washingtondc-emu/washingtondc/gfx/gfxil"
	"github.com/washingtondc-emu/washingtondc/gfx/obj"
	"github.com/washingtondc-emu/washingtondc/gfx/texcache"
	"github.com/washingtondc-emu/washingtondc/hardware/dcsched"
	"github.com/washingtondc-emu/washingtondc/hardware/holly"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/mmio"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/texmem"
	"github.com/washingtondc-emu/washingtondc/title"
)

// PVR2 is the graphics chip.
type PVR2 struct {
	sched  *dcsched.Scheduler
	intc   *holly.Intc
	texMem *texmem.TexMem
	rend   gfxil.Renderer
	pool   *obj.Pool

	regs *mmio.Region

	texCache *texcache.Cache

	// the window title is updated from the framebuffer path. may be nil
	Title *title.Title

	// called after every VBLANK-in so the front-end can update its window.
	// may be nil
	OnVBlank func()

	spg  spg
	ta   ta
	core core
	fb   fbHeap
}

// NewPVR2 is the preferred method of initialisation for the PVR2 type.
func NewPVR2(sched *dcsched.Scheduler, intc *holly.Intc, tm *texmem.TexMem,
	pool *obj.Pool, rend gfxil.Renderer) *PVR2 {

	pvr2 := &PVR2{
		sched:    sched,
		intc:     intc,
		texMem:   tm,
		rend:     rend,
		pool:     pool,
		texCache: texcache.NewCache(),
	}

	pvr2.buildRegs()
	pvr2.spg.init(pvr2)
	pvr2.ta.init(pvr2)
	pvr2.core.init(pvr2)
	pvr2.fb.init(pvr2)

	// framebuffers living in the gfx back-end go stale when the guest
	// writes the VRAM underneath them
	tm.SetWriteNotifier(&pvr2.fb)

	return pvr2
}

// Regs returns the core register window for the memory map.
func (pvr2 *PVR2) Regs() *mmio.Region {
	return pvr2.regs
}

// TAFifo returns the tile-accelerator FIFO interface for the memory map.
func (pvr2 *PVR2) TAFifo() *taFifo {
	return &taFifo{pvr2: pvr2}
}

// Render runs the framebuffer read path immediately, outside the usual
// VBLANK-in trigger. the front-end uses this for forced refreshes.
func (pvr2 *PVR2) Render() {
	pvr2.fb.render()
}

// FrameStamp returns the current frame stamp, a monotonic count of
// completed STARTRENDER commands.
func (pvr2 *PVR2) FrameStamp() uint32 {
	return pvr2.core.nextFrameStamp
}
