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

package hardware

import (
	"github.com/washingtondc-emu/washingtondc/gfx/gfxil"
	"github.com/washingtondc-emu/washingtondc/gfx/obj"
	"github.com/washingtondc-emu/washingtondc/hardware/aica"
	"github.com/washingtondc-emu/washingtondc/hardware/dcsched"
	"github.com/washingtondc-emu/washingtondc/hardware/holly"
	"github.com/washingtondc-emu/washingtondc/hardware/memory"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/bootrom"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/bus"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/flash"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/ram"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/texmem"
	"github.com/washingtondc-emu/washingtondc/hardware/pvr2"
	"github.com/washingtondc-emu/washingtondc/hardware/sh4"
)

// Dreamcast is the root of the emulated console.
type Dreamcast struct {
	Sched *dcsched.Scheduler
	Mem   *memory.Map

	SH4   *sh4.SH4
	Holly *holly.Intc
	PVR2  *pvr2.PVR2
	AICA  *aica.AICA

	BootROM *bootrom.BootROM
	Flash   *flash.Flash
	SysRAM  *ram.RAM
	TexMem  *texmem.TexMem

	Pool *obj.Pool
	Rend gfxil.Renderer

	// how many cycles the SH4 runs when no event is pending
	quantum dcsched.CycleStamp

	running bool
}

// the slice the CPU runs when the scheduler is empty. the SPG keeps the
// scheduler populated in practice, so this is a backstop.
const defaultQuantum = 4096

// NewDreamcast is the preferred method of initialisation for the Dreamcast
// type. rend is the host rendering back-end; pool is the graphics-object
// pool shared between the core and that back-end.
func NewDreamcast(rend gfxil.Renderer, pool *obj.Pool) (*Dreamcast, error) {
	dc := &Dreamcast{
		Sched:   dcsched.NewScheduler(),
		Mem:     memory.NewMap(),
		BootROM: bootrom.NewBootROM(),
		Flash:   flash.NewFlash(),
		SysRAM:  ram.NewRAM("system ram", memory.SysRAMSize),
		TexMem:  texmem.NewTexMem(),
		Pool:    pool,
		Rend:    rend,
		quantum: defaultQuantum,
	}

	dc.SH4 = sh4.NewSH4(dc.Mem, dc.Sched)
	dc.Holly = holly.NewIntc(dc.SH4.RefreshIntcDeferred)
	dc.SH4.RegisterIRLLine(dc.Holly.IRLLine)

	dc.PVR2 = pvr2.NewPVR2(dc.Sched, dc.Holly, dc.TexMem, pool, rend)
	dc.AICA = aica.NewAICA(dc.Sched)

	if err := dc.buildMemoryMap(); err != nil {
		return nil, err
	}

	return dc, nil
}

// buildMemoryMap lays the regions onto the system bus. the map is in
// physical (29-bit) terms; the SH4 folds its P0-P3 areas down before
// dispatch.
func (dc *Dreamcast) buildMemoryMap() error {
	hollyFirst, hollyLast := dc.Holly.Bounds()

	regions := []struct {
		name  string
		first uint32
		last  uint32
		mask  uint32
		intf  bus.Interface
	}{
		{"boot rom", memory.BootROMFirst, memory.BootROMLast, memory.BootROMMask, dc.BootROM},
		{"flash", memory.FlashFirst, memory.FlashLast, memory.FlashMask, dc.Flash},
		{"holly sys block", hollyFirst, hollyLast, 0x1fffffff, dc.Holly.Region()},
		{"pvr2 core regs", memory.PVR2RegsFirst, memory.PVR2RegsLast, 0x1fffffff, dc.PVR2.Regs()},
		{"aica regs", memory.AICARegsFirst, memory.AICARegsLast, 0x0000ffff, dc.AICA.Regs()},
		{"aica wave ram", memory.AICARAMFirst, memory.AICARAMLast, memory.AICARAMMask, dc.AICA.WaveRAM()},
		{"texture memory", memory.TexMemFirst, memory.TexMemLast, memory.TexMemMask, dc.TexMem},
		{"system ram", memory.SysRAMFirst, memory.SysRAMLast, memory.SysRAMMask, dc.SysRAM},
		{"ta fifo", memory.TAFIFOFirst, memory.TAFIFOLast, 0x1fffffff, dc.PVR2.TAFifo()},
		{"ta yuv fifo", memory.TAYUVFirst, memory.TAYUVLast, 0x1fffffff, dc.PVR2.TAFifo()},
		{"area 7", memory.Area7First, memory.Area7Last, 0x1fffffff, dc.SH4.Area7Interface()},
	}

	for _, r := range regions {
		if err := dc.Mem.AddRegion(r.name, r.first, r.last, r.mask, r.intf); err != nil {
			return err
		}
	}

	return nil
}

// RunSlice advances the emulation by one scheduler slice: run the SH4 up to
// (but not past) the next event's stamp, then fire every event that is due.
func (dc *Dreamcast) RunSlice() error {
	until := dc.Sched.Now() + dc.quantum
	if ev := dc.Sched.Peek(); ev != nil && ev.When < until {
		until = ev.When
	}

	if err := dc.SH4.Run(until); err != nil {
		return err
	}

	// fire everything that is due. events scheduled in the past still run,
	// in list order, with time advanced no further than "now"
	for ev := dc.Sched.Peek(); ev != nil && ev.When <= dc.Sched.Now(); ev = dc.Sched.Peek() {
		dc.Sched.Pop()
		dc.Sched.AdvanceTo(ev.When)
		ev.Handler(ev)
	}

	return nil
}

// Run drives the emulation until the check callback returns false or an
// error surfaces. check may be nil, in which case the emulation runs until
// an error.
func (dc *Dreamcast) Run(check func() bool) error {
	dc.running = true
	for dc.running {
		if check != nil && !check() {
			break
		}
		if err := dc.RunSlice(); err != nil {
			return err
		}
	}
	return nil
}

// Stop ends a Run loop at the next slice boundary. safe to call from event
// handlers.
func (dc *Dreamcast) Stop() {
	dc.running = false
}

// Reset returns the console to its power-on state. loaded ROM and flash
// contents are preserved.
func (dc *Dreamcast) Reset() {
	dc.SH4.OnHardReset()
}
