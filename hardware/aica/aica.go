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

// Package aica models the sound chip as far as the core needs it: the 2MB
// wave memory, and the per-channel register block that guest boot code
// probes and programs. The DSP and the embedded ARM7 processor are not
// emulated; channel state is decoded so that the optional WAV capture can
// lift keyed-on samples out of wave memory.
package aica

import (
	"encoding/binary"

	"github.com/washingtondc-emu/washingtondc/hardware/dcsched"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/ram"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// the chip has sixty-four channels, each with an 0x80-byte register block.
const (
	ChannelCount  = 64
	channelStride = 0x80

	// size of the wave memory
	WaveRAMSize = 0x200000
)

// SampleFormat is the per-channel sample encoding.
type SampleFormat int

const (
	FmtPCM16 SampleFormat = iota
	FmtPCM8
	FmtADPCM
	FmtADPCMLong
)

// Channel is the decoded state of one AICA channel.
type Channel struct {
	// start address in wave memory
	StartAddr uint32

	// loop points, in samples
	LoopStart uint32
	LoopEnd   uint32

	Fmt       SampleFormat
	LoopEnable bool

	// the key-on bit as written; latched into Playing by a KYONEX strobe
	KeyOnBit bool
	Playing  bool
}

// AICA is the sound chip.
type AICA struct {
	sched *dcsched.Scheduler

	waveRAM *ram.RAM

	// the raw register backing. the guest reads back whatever it wrote
	regs *ram.RAM

	channels [ChannelCount]Channel

	// receives every sample keyed on while capture is enabled. may be nil
	capture *Recorder
}

// NewAICA is the preferred method of initialisation for the AICA type.
func NewAICA(sched *dcsched.Scheduler) *AICA {
	return &AICA{
		sched:   sched,
		waveRAM: ram.NewRAM("aica wave ram", WaveRAMSize),
		regs:    ram.NewRAM("aica regs", 0x10000),
	}
}

// WaveRAM returns the wave-memory region for the memory map.
func (a *AICA) WaveRAM() *ram.RAM {
	return a.waveRAM
}

// Regs returns the register region for the memory map.
func (a *AICA) Regs() *regsIntf {
	return &regsIntf{aica: a}
}

// SetCapture enables WAV capture of keyed-on samples.
func (a *AICA) SetCapture(rec *Recorder) {
	a.capture = rec
}

// Capture returns the active recorder, if any.
func (a *AICA) Capture() *Recorder {
	return a.capture
}

// Channel exposes a channel's decoded state.
func (a *AICA) Channel(n int) *Channel {
	return &a.channels[n]
}

// decodeWrite picks apart a write landing in a channel's register block.
func (a *AICA) decodeWrite(addr uint32, val uint32) {
	chNo := addr / channelStride
	if chNo >= ChannelCount {
		return
	}
	ch := &a.channels[chNo]

	switch addr % channelStride {
	case 0x00:
		// play control: key-on, sample format, loop enable and the top
		// bits of the start address
		ch.KeyOnBit = val&(1<<14) != 0
		ch.Fmt = SampleFormat((val >> 7) & 3)
		ch.LoopEnable = val&(1<<9) != 0
		ch.StartAddr = (ch.StartAddr & 0xffff) | (val&0x7f)<<16

		if val&(1<<15) != 0 {
			// KYONEX latches the key-on bit of every channel at once
			a.keyExecute()
		}
	case 0x04:
		ch.StartAddr = (ch.StartAddr &^ 0xffff) | (val & 0xffff)
	case 0x08:
		ch.LoopStart = val & 0xffff
	case 0x0c:
		ch.LoopEnd = val & 0xffff
	}
}

// keyExecute starts and stops channels per their key-on bits.
func (a *AICA) keyExecute() {
	for i := range a.channels {
		ch := &a.channels[i]
		if ch.KeyOnBit && !ch.Playing {
			ch.Playing = true
			logger.Logf("aica", "channel %d key-on addr=%08x fmt=%d", i, ch.StartAddr, ch.Fmt)
			if a.capture != nil {
				a.capture.captureChannel(a, ch)
			}
		} else if !ch.KeyOnBit && ch.Playing {
			ch.Playing = false
		}
	}
}

// samplePCM16 lifts a channel's sample data out of wave memory.
func (a *AICA) samplePCM16(ch *Channel) []int {
	if ch.Fmt != FmtPCM16 {
		// only plain PCM is captured; compressed formats would need the
		// Yamaha ADPCM decoder
		return nil
	}

	end := ch.StartAddr + ch.LoopEnd*2
	if end > WaveRAMSize {
		end = WaveRAMSize
	}

	var out []int
	for addr := ch.StartAddr; addr+2 <= end; addr += 2 {
		out = append(out, int(int16(binary.LittleEndian.Uint16(a.waveRAM.Data[addr:]))))
	}
	return out
}

// regsIntf adapts the register block for the memory map: reads come from
// the backing store, writes are stored and decoded.
type regsIntf struct {
	aica *AICA
}

// Read8 implements the bus.Interface interface.
func (r *regsIntf) Read8(addr uint32) (uint8, error) { return r.aica.regs.Read8(addr) }

// Read16 implements the bus.Interface interface.
func (r *regsIntf) Read16(addr uint32) (uint16, error) { return r.aica.regs.Read16(addr) }

// Read32 implements the bus.Interface interface.
func (r *regsIntf) Read32(addr uint32) (uint32, error) { return r.aica.regs.Read32(addr) }

// ReadFloat32 implements the bus.Interface interface.
func (r *regsIntf) ReadFloat32(addr uint32) (float32, error) { return r.aica.regs.ReadFloat32(addr) }

// ReadFloat64 implements the bus.Interface interface.
func (r *regsIntf) ReadFloat64(addr uint32) (float64, error) { return r.aica.regs.ReadFloat64(addr) }

// Write8 implements the bus.Interface interface.
func (r *regsIntf) Write8(addr uint32, val uint8) error {
	if err := r.aica.regs.Write8(addr, val); err != nil {
		return err
	}
	v, _ := r.aica.regs.Read32(addr &^ 3)
	r.aica.decodeWrite(addr&^3, v)
	return nil
}

// Write16 implements the bus.Interface interface.
func (r *regsIntf) Write16(addr uint32, val uint16) error {
	if err := r.aica.regs.Write16(addr, val); err != nil {
		return err
	}
	v, _ := r.aica.regs.Read32(addr &^ 3)
	r.aica.decodeWrite(addr&^3, v)
	return nil
}

// Write32 implements the bus.Interface interface.
func (r *regsIntf) Write32(addr uint32, val uint32) error {
	if err := r.aica.regs.Write32(addr, val); err != nil {
		return err
	}
	r.aica.decodeWrite(addr, val)
	return nil
}

// WriteFloat32 implements the bus.Interface interface.
func (r *regsIntf) WriteFloat32(addr uint32, val float32) error {
	return r.aica.regs.WriteFloat32(addr, val)
}

// WriteFloat64 implements the bus.Interface interface.
func (r *regsIntf) WriteFloat64(addr uint32, val float64) error {
	return r.aica.regs.WriteFloat64(addr, val)
}
