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

package pvr2

import (
	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/clocks"
	"github.com/washingtondc-emu/washingtondc/hardware/dcsched"
	"github.com/washingtondc-emu/washingtondc/hardware/holly"
)

// the sync pulse generator tracks the raster position and schedules the
// HBLANK, VBLANK-in and VBLANK-out interrupts.
//
// the video clock is supposed to be 27MHz, which doesn't evenly divide from
// the 200MHz base clock. it ticks on every 7th cycle instead, which means
// the video clock actually runs a little fast at approximately 28.57MHz.
// tracking the missed cycles and letting them accumulate would be more
// accurate; that improvement is left open.
type spg struct {
	pvr2 *PVR2

	// video-clock cycle of the last raster sync
	lastSync uint64

	// 1 for the 27MHz pixel clock, 2 for 13.5MHz. set through FB_R_CTRL
	pclkDiv uint32

	rasterX uint32
	rasterY uint32

	hblankEvent    dcsched.Event
	vblankInEvent  dcsched.Event
	vblankOutEvent dcsched.Event

	hblankScheduled    bool
	vblankInScheduled  bool
	vblankOutScheduled bool
}

func (s *spg) init(pvr2 *PVR2) {
	s.pvr2 = pvr2
	s.pclkDiv = 2

	s.hblankEvent.Handler = s.handleHblank
	s.vblankInEvent.Handler = s.handleVblankIn
	s.vblankOutEvent.Handler = s.handleVblankOut

	s.schedNextHblank()
	s.schedNextVblankIn()
	s.schedNextVblankOut()
}

// register field accessors.

func (s *spg) hcount() uint32 {
	return (s.pvr2.reg(regSPGLoad) & 0x3ff) + 1
}

func (s *spg) vcount() uint32 {
	return ((s.pvr2.reg(regSPGLoad) >> 16) & 0x3ff) + 1
}

func (s *spg) hblankIntMode() uint32 {
	return (s.pvr2.reg(regSPGHBlankInt) >> 12) & 0x3
}

func (s *spg) hblankIntCompVal() uint32 {
	return s.pvr2.reg(regSPGHBlankInt) & 0x3ff
}

func (s *spg) vblankInIntLine() uint32 {
	return s.pvr2.reg(regSPGVBlankInt) & 0x3ff
}

func (s *spg) vblankOutIntLine() uint32 {
	return (s.pvr2.reg(regSPGVBlankInt) >> 16) & 0x3ff
}

// Interlaced reports the scan mode from SPG_CONTROL.
func (s *spg) interlaced() bool {
	return s.pvr2.reg(regSPGControl)&(1<<4) != 0
}

func (s *spg) setPclkDiv(div uint32) {
	if div != 1 && div != 2 {
		return
	}
	s.pclkDiv = div
}

// vclkStamp is the current time in video-clock cycles.
func (s *spg) vclkStamp() uint64 {
	return uint64(s.pvr2.sched.Now()) / clocks.PixelClockDivisor
}

// sync brings the raster position up to date with the clock.
func (s *spg) sync() {
	hcount := s.hcount()
	vcount := s.vcount()

	cur := s.vclkStamp()
	delta := cur - s.lastSync
	s.lastSync = cur

	s.rasterX += uint32(delta / uint64(s.pclkDiv))
	s.rasterY += s.rasterX / hcount
	s.rasterX %= hcount
	s.rasterY %= vcount
}

// status builds the SPG_STATUS value: the current scanline plus the vsync
// flag (bit 13).
func (s *spg) status() uint32 {
	s.sync()

	v := s.rasterY & 0x3ff
	if s.rasterY < s.vblankOutIntLine() || s.rasterY >= s.vblankInIntLine() {
		v |= 1 << 13 // vsync
	}
	return v
}

// retime is called whenever a timing register is written: bring the raster
// up to date, drop every scheduled event, and reschedule against the new
// register values.
func (s *spg) retime() {
	s.sync()
	s.unschedAll()
	s.sync()
	s.schedNextHblank()
	s.schedNextVblankIn()
	s.schedNextVblankOut()
}

func (s *spg) unschedAll() {
	if s.hblankScheduled {
		s.pvr2.sched.Cancel(&s.hblankEvent)
		s.hblankScheduled = false
	}
	if s.vblankInScheduled {
		s.pvr2.sched.Cancel(&s.vblankInEvent)
		s.vblankInScheduled = false
	}
	if s.vblankOutScheduled {
		s.pvr2.sched.Cancel(&s.vblankOutEvent)
		s.vblankOutScheduled = false
	}
}

// toBaseCycles converts a pixel count into a base-clock cycle stamp for
// scheduling.
func (s *spg) toBaseCycles(pixels uint64) dcsched.CycleStamp {
	per := uint64(clocks.PixelClockDivisor) * uint64(s.pclkDiv)
	return dcsched.CycleStamp(per * (pixels + uint64(s.pvr2.sched.Now())/per))
}

// schedNextHblank schedules the next HBLANK interrupt per the mode field:
// mode 0 fires on the comparison line, mode 1 every comp lines, mode 2
// every line. call sync first.
func (s *spg) schedNextHblank() {
	mode := s.hblankIntMode()
	hcount := uint64(s.hcount())
	vcount := uint64(s.vcount())
	comp := uint64(s.hblankIntCompVal())
	rasterX := uint64(s.rasterX)
	rasterY := uint64(s.rasterY)

	var nextPixels uint64
	switch mode {
	case 0:
		if comp <= rasterY {
			nextPixels = (vcount-rasterY+comp)*hcount - rasterX
		} else {
			nextPixels = (comp-rasterY)*hcount - rasterX
		}
	case 1:
		if comp == 0 {
			// degenerate comparison value; treat as every line
			nextPixels = hcount - rasterX
			break
		}
		nextLine := (1+(rasterY+1)/comp)*comp - 1
		if nextLine < vcount {
			nextPixels = (nextLine-rasterY)*hcount - rasterX
		} else {
			nextPixels = (vcount-rasterY+nextLine)*hcount - rasterX
		}
	case 2:
		nextPixels = hcount - rasterX
	default:
		curated.Fatal(curated.Raise(curated.Unimplemented, "hblank interrupt mode",
			curated.Attr("hblank_int_mode", mode)))
		return
	}

	_ = s.pvr2.sched.Schedule(&s.hblankEvent, s.toBaseCycles(nextPixels))
	s.hblankScheduled = true
}

// schedNextVblankIn schedules the next VBLANK-in interrupt. call sync
// first.
func (s *spg) schedNextVblankIn() {
	hcount := uint64(s.hcount())
	vcount := uint64(s.vcount())
	line := uint64(s.vblankInIntLine())
	rasterX := uint64(s.rasterX)
	rasterY := uint64(s.rasterY)

	var lines uint64
	if rasterY <= line {
		lines = line - rasterY
		if lines == 0 {
			lines = vcount
		}
	} else {
		lines = vcount - rasterY + line
	}

	_ = s.pvr2.sched.Schedule(&s.vblankInEvent, s.toBaseCycles(lines*hcount-rasterX))
	s.vblankInScheduled = true
}

// schedNextVblankOut schedules the next VBLANK-out interrupt. call sync
// first.
func (s *spg) schedNextVblankOut() {
	hcount := uint64(s.hcount())
	vcount := uint64(s.vcount())
	line := uint64(s.vblankOutIntLine())
	rasterX := uint64(s.rasterX)
	rasterY := uint64(s.rasterY)

	var lines uint64
	if rasterY < line {
		lines = line - rasterY
	} else {
		lines = vcount - rasterY + line
	}

	_ = s.pvr2.sched.Schedule(&s.vblankOutEvent, s.toBaseCycles(lines*hcount-rasterX))
	s.vblankOutScheduled = true
}

func (s *spg) handleHblank(*dcsched.Event) {
	s.hblankScheduled = false
	s.sync()

	s.pvr2.intc.RaiseNrmInt(holly.IntHBlank)

	s.schedNextHblank()
}

func (s *spg) handleVblankIn(*dcsched.Event) {
	s.vblankInScheduled = false
	s.sync()

	s.pvr2.intc.RaiseNrmInt(holly.IntVBlankIn)
	s.schedNextVblankIn()

	s.pvr2.fb.render()
	if s.pvr2.OnVBlank != nil {
		s.pvr2.OnVBlank()
	}
}

func (s *spg) handleVblankOut(*dcsched.Event) {
	s.vblankOutScheduled = false
	s.sync()

	s.pvr2.intc.RaiseNrmInt(holly.IntVBlankOut)
	s.schedNextVblankOut()
}
