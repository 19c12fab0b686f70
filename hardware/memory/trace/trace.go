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

// Package trace wraps a memory region with a transparent proxy that logs
// every write to a capture file. reads pass straight through.
//
// The capture format is little-endian. each write becomes one packet: a
// 4-byte type tag (1 = write), the 4-byte address, the 4-byte length, the
// data bytes, and zero padding so the next packet starts on a 4-byte
// boundary.
package trace

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/bus"
)

// the packet type tags recognised by the capture format.
const (
	TagWrite uint32 = 1
)

// Proxy wraps a bus.Interface, recording writes to the capture writer. it
// implements bus.Interface itself so it can replace the wrapped region in
// the memory map.
type Proxy struct {
	intf bus.Interface
	out  io.Writer
}

// NewProxy is the preferred method of initialisation for the Proxy type.
func NewProxy(intf bus.Interface, out io.Writer) *Proxy {
	return &Proxy{
		intf: intf,
		out:  out,
	}
}

// record appends one write packet to the capture file.
func (p *Proxy) record(addr uint32, data []byte) error {
	hdr := make([]byte, 12)
	binary.LittleEndian.PutUint32(hdr[0:], TagWrite)
	binary.LittleEndian.PutUint32(hdr[4:], addr)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(data)))

	if _, err := p.out.Write(hdr); err != nil {
		return curated.Errorf(curated.FileIO, err)
	}
	if _, err := p.out.Write(data); err != nil {
		return curated.Errorf(curated.FileIO, err)
	}

	// zero-pad to a 4-byte boundary
	if pad := (4 - len(data)%4) % 4; pad > 0 {
		if _, err := p.out.Write(make([]byte, pad)); err != nil {
			return curated.Errorf(curated.FileIO, err)
		}
	}

	return nil
}

// Read8 implements the bus.Interface interface.
func (p *Proxy) Read8(addr uint32) (uint8, error) { return p.intf.Read8(addr) }

// Read16 implements the bus.Interface interface.
func (p *Proxy) Read16(addr uint32) (uint16, error) { return p.intf.Read16(addr) }

// Read32 implements the bus.Interface interface.
func (p *Proxy) Read32(addr uint32) (uint32, error) { return p.intf.Read32(addr) }

// ReadFloat32 implements the bus.Interface interface.
func (p *Proxy) ReadFloat32(addr uint32) (float32, error) { return p.intf.ReadFloat32(addr) }

// ReadFloat64 implements the bus.Interface interface.
func (p *Proxy) ReadFloat64(addr uint32) (float64, error) { return p.intf.ReadFloat64(addr) }

// Write8 implements the bus.Interface interface.
func (p *Proxy) Write8(addr uint32, val uint8) error {
	if err := p.record(addr, []byte{val}); err != nil {
		return err
	}
	return p.intf.Write8(addr, val)
}

// Write16 implements the bus.Interface interface.
func (p *Proxy) Write16(addr uint32, val uint16) error {
	d := make([]byte, 2)
	binary.LittleEndian.PutUint16(d, val)
	if err := p.record(addr, d); err != nil {
		return err
	}
	return p.intf.Write16(addr, val)
}

// Write32 implements the bus.Interface interface.
func (p *Proxy) Write32(addr uint32, val uint32) error {
	d := make([]byte, 4)
	binary.LittleEndian.PutUint32(d, val)
	if err := p.record(addr, d); err != nil {
		return err
	}
	return p.intf.Write32(addr, val)
}

// WriteFloat32 implements the bus.Interface interface.
func (p *Proxy) WriteFloat32(addr uint32, val float32) error {
	d := make([]byte, 4)
	binary.LittleEndian.PutUint32(d, math.Float32bits(val))
	if err := p.record(addr, d); err != nil {
		return err
	}
	return p.intf.WriteFloat32(addr, val)
}

// WriteFloat64 implements the bus.Interface interface.
func (p *Proxy) WriteFloat64(addr uint32, val float64) error {
	d := make([]byte, 8)
	binary.LittleEndian.PutUint64(d, math.Float64bits(val))
	if err := p.record(addr, d); err != nil {
		return err
	}
	return p.intf.WriteFloat64(addr, val)
}
