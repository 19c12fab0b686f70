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
	"math"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/gfx/gfxil"
	"github.com/washingtondc-emu/washingtondc/hardware/holly"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// parameter types in the TA parameter control word.
const (
	paraTypeEndOfList    = 0
	paraTypeUserTileClip = 1
	paraTypeObjListSet   = 2
	paraTypePolyHeader   = 4
	paraTypeSpriteHeader = 5
	paraTypeVertex       = 7
)

// the TA sinks a stream of 32-byte command packets into per-polygon-group
// display-list commands, keyed by the value TA_VERTBUF_POS held when the
// list was opened.
//
// the physical GPU reads a tile array pointed to by REGION_BASE; rebuilding
// that array is impractical for high-level emulation, so STARTRENDER
// key-matches PARAM_BASE against recently captured lists instead.
type ta struct {
	pvr2 *PVR2

	// packet assembly buffer. most packets are eight words; sprite
	// vertices are sixteen
	fifo     [16]uint32
	fifoLen  int
	wordsCur int

	// the list being captured. nil between TA_LIST_INIT commands
	curList *displayList

	// the group the current header opened. valid only while haveGroup is set
	curGroup PolyType
	haveGroup bool

	// vertex format state from the current header
	hdrTexEnable bool
	hdrUV16      bool
	hdrQuad      bool
	hdrBaseColor [4]float32
	hdrOffsColor [4]float32
}

func (t *ta) init(pvr2 *PVR2) {
	t.pvr2 = pvr2
	t.wordsCur = 8
}

// listInit services a write to TA_LIST_INIT: open (or reuse) the display
// list keyed by TA_VERTBUF_START and reset the capture state.
func (t *ta) listInit() {
	key := t.pvr2.reg(regTAVertbufStart)
	t.pvr2.regs.SetBacking(t.pvr2.regs.Idx(regTAVertbufPos), key)

	t.curList = t.openList(key)
	t.fifoLen = 0
	t.wordsCur = 8
	t.haveGroup = false
}

// listCont services a write to TA_LIST_CONT: keep capturing into the
// current list after an end-of-list.
func (t *ta) listCont() {
	if t.curList == nil {
		logger.Log("pvr2", "TA_LIST_CONT with no open display list")
		return
	}
	t.haveGroup = false
}

// openList finds the tracked display list for the key, reusing a list with
// the same key, then an invalid slot, then the least recently used slot.
// the chosen list is cleared and its age refreshed.
func (t *ta) openList(key uint32) *displayList {
	c := &t.pvr2.core

	var list *displayList
	for i := range c.dispLists {
		if c.dispLists[i].valid && c.dispLists[i].key == key {
			list = &c.dispLists[i]
			break
		}
	}

	if list == nil {
		for i := range c.dispLists {
			if !c.dispLists[i].valid {
				list = &c.dispLists[i]
				break
			}
		}
	}

	if list == nil {
		list = &c.dispLists[0]
		for i := range c.dispLists {
			if c.listAge(&c.dispLists[i]) > c.listAge(list) {
				list = &c.dispLists[i]
			}
		}
	}

	list.init()
	list.valid = true
	list.key = key

	c.incAgeCounter()
	list.ageCounter = c.dispListCounter

	return list
}

// fifoWrite sinks one word of TA input.
func (t *ta) fifoWrite(val uint32) error {
	t.fifo[t.fifoLen] = val
	t.fifoLen++

	if t.fifoLen == 1 {
		// the control word decides the packet length: sprite vertices
		// span two 32-byte bursts
		t.wordsCur = 8
		if (val>>29)&7 == paraTypeVertex && t.hdrQuad {
			t.wordsCur = 16
		}
	}

	if t.fifoLen < t.wordsCur {
		return nil
	}

	t.fifoLen = 0
	return t.decodePacket()
}

func float32At(w uint32) float32 {
	return math.Float32frombits(w)
}

// unpackARGB expands a packed 32-bit colour into RGBA floats.
func unpackARGB(packed uint32) [4]float32 {
	return [4]float32{
		float32((packed&0x00ff0000)>>16) / 255.0,
		float32((packed&0x0000ff00)>>8) / 255.0,
		float32(packed&0x000000ff) / 255.0,
		float32((packed&0xff000000)>>24) / 255.0,
	}
}

// decodePacket interprets one assembled packet.
func (t *ta) decodePacket() error {
	pcw := t.fifo[0]
	paraType := (pcw >> 29) & 7

	switch paraType {
	case paraTypeEndOfList:
		return t.decodeEndOfList()
	case paraTypeUserTileClip, paraTypeObjListSet:
		// tile-level bookkeeping the HLE replay has no use for
		return nil
	case paraTypePolyHeader:
		return t.decodeHeader(pcw, false)
	case paraTypeSpriteHeader:
		return t.decodeHeader(pcw, true)
	case paraTypeVertex:
		return t.decodeVertex(pcw)
	}

	logger.Logf("pvr2", "TA packet with unrecognised parameter type %d", paraType)
	return nil
}

func (t *ta) decodeEndOfList() error {
	if t.curList == nil || !t.haveGroup {
		return nil
	}

	cmd := t.curList.allocCmd(t.curGroup)
	if cmd != nil {
		cmd.tp = cmdEndOfGroup
	}

	// each group completion has its own interrupt bit
	switch t.curGroup {
	case PolyTypeOpaque:
		t.pvr2.intc.RaiseNrmInt(holly.IntTAOpaqueComplete)
	case PolyTypeOpaqueMod:
		t.pvr2.intc.RaiseNrmInt(holly.IntTAOpaqueModComplete)
	case PolyTypeTrans:
		t.pvr2.intc.RaiseNrmInt(holly.IntTATransComplete)
	case PolyTypeTransMod:
		t.pvr2.intc.RaiseNrmInt(holly.IntTATransModComplete)
	case PolyTypePunchThrough:
		t.pvr2.intc.RaiseNrmInt(holly.IntTAPunchThroughComplete)
	}

	t.haveGroup = false
	return nil
}

// decodeHeader captures a polygon or sprite header: the group it opens and
// the rendering parameters from the ISP, TSP and texture-control words.
func (t *ta) decodeHeader(pcw uint32, sprite bool) error {
	if t.curList == nil {
		logger.Log("pvr2", "TA header with no open display list; write TA_LIST_INIT first")
		return nil
	}

	group := PolyType((pcw >> 24) & 7)
	if group >= PolyTypeCount {
		return curated.Raise(curated.Integrity, "TA header names impossible polygon group",
			curated.Attr("value", pcw))
	}
	t.curGroup = group
	t.haveGroup = true

	isp := t.fifo[1]
	tsp := t.fifo[2]
	tcw := t.fifo[3]

	cmd := t.curList.allocCmd(group)
	if cmd == nil {
		return nil
	}

	cmd.tp = cmdHeader
	hdr := &cmd.hdr

	hdr.quadGeometry = sprite

	hdr.depthFunc = gfxil.DepthFunc((isp >> 29) & 7)
	hdr.depthWrite = isp&(1<<26) == 0

	hdr.srcBlend = gfxil.BlendFactor((tsp >> 29) & 7)
	hdr.dstBlend = gfxil.BlendFactor((tsp >> 26) & 7)
	hdr.texWrapU = wrapMode(tsp>>16&1 != 0, tsp>>18&1 != 0)
	hdr.texWrapV = wrapMode(tsp>>15&1 != 0, tsp>>17&1 != 0)
	hdr.texFilter = gfxil.TexFilter((tsp >> 13) & 3)
	hdr.texInst = gfxil.TexInst((tsp >> 6) & 3)
	hdr.texWidthShift = 3 + int((tsp>>3)&7)
	hdr.texHeightShift = 3 + int(tsp&7)

	hdr.texEnable = pcw&(1<<3) != 0
	hdr.texMipmap = tcw&(1<<31) != 0
	hdr.texVQ = tcw&(1<<30) != 0
	hdr.pixFmt = int((tcw >> 27) & 7)
	hdr.texTwiddle = tcw&(1<<26) == 0
	hdr.strideSel = tcw&(1<<25) != 0
	hdr.texPalette = (tcw >> 21) & 0x3f
	hdr.texAddr = (tcw & 0x1fffff) << 3

	t.hdrTexEnable = hdr.texEnable
	t.hdrUV16 = pcw&(1<<0) != 0
	t.hdrQuad = sprite

	if sprite {
		// sprites carry their colours in the header
		t.hdrBaseColor = unpackARGB(t.fifo[4])
		t.hdrOffsColor = unpackARGB(t.fifo[5])
	}

	return nil
}

func wrapMode(flip bool, clamp bool) gfxil.TexWrap {
	switch {
	case clamp:
		return gfxil.TexWrapClamp
	case flip:
		return gfxil.TexWrapFlip
	}
	return gfxil.TexWrapRepeat
}

// decodeVertex captures one vertex (or one sprite, which arrives as a
// single sixteen-word vertex packet).
func (t *ta) decodeVertex(pcw uint32) error {
	if t.curList == nil || !t.haveGroup {
		logger.Log("pvr2", "TA vertex with no open polygon group")
		return nil
	}

	cmd := t.curList.allocCmd(t.curGroup)
	if cmd == nil {
		return nil
	}

	if t.hdrQuad {
		cmd.tp = cmdQuad
		quad := &cmd.quad

		// a sprite is four positions; the fourth z is implied by the
		// plane of the first three
		quad.vertPos[0] = [3]float32{float32At(t.fifo[1]), float32At(t.fifo[2]), float32At(t.fifo[3])}
		quad.vertPos[1] = [3]float32{float32At(t.fifo[4]), float32At(t.fifo[5]), float32At(t.fifo[6])}
		quad.vertPos[2] = [3]float32{float32At(t.fifo[7]), float32At(t.fifo[8]), float32At(t.fifo[9])}
		quad.vertPos[3] = [3]float32{
			float32At(t.fifo[10]),
			float32At(t.fifo[11]),
			quad.vertPos[0][2] + (quad.vertPos[2][2] - quad.vertPos[1][2]),
		}

		quad.texCoordsPacked[0] = t.fifo[13]
		quad.texCoordsPacked[1] = t.fifo[14]
		quad.texCoordsPacked[2] = t.fifo[15]

		quad.baseColor = t.hdrBaseColor
		quad.offsColor = t.hdrOffsColor

		quad.degenerate = quad.vertPos[0][2] == 0 || quad.vertPos[1][2] == 0 ||
			quad.vertPos[2][2] == 0

		return nil
	}

	cmd.tp = cmdVertex
	vtx := &cmd.vtx

	vtx.endOfStrip = pcw&(1<<28) != 0
	vtx.pos[0] = float32At(t.fifo[1])
	vtx.pos[1] = float32At(t.fifo[2])
	vtx.pos[2] = float32At(t.fifo[3])

	if t.hdrTexEnable {
		if t.hdrUV16 {
			u, v := unpackUV16(t.fifo[4])
			vtx.texCoord[0] = u
			vtx.texCoord[1] = v
		} else {
			vtx.texCoord[0] = float32At(t.fifo[4])
			vtx.texCoord[1] = float32At(t.fifo[5])
		}
		vtx.baseColor = unpackARGB(t.fifo[6])
		vtx.offsColor = unpackARGB(t.fifo[7])
	} else {
		vtx.baseColor = unpackARGB(t.fifo[6])
		vtx.offsColor = [4]float32{}
	}

	return nil
}

// taFifo adapts the TA input FIFO for the memory map (Area 4). only 32-bit
// writes carry TA data; the CPU bursts them through the store queues.
type taFifo struct {
	pvr2 *PVR2
}

// Write32 implements the bus.Interface interface.
func (f *taFifo) Write32(addr uint32, val uint32) error {
	return f.pvr2.ta.fifoWrite(val)
}

// WriteFloat32 implements the bus.Interface interface.
func (f *taFifo) WriteFloat32(addr uint32, val float32) error {
	return f.pvr2.ta.fifoWrite(math.Float32bits(val))
}

// WriteFloat64 implements the bus.Interface interface. the two words land
// in FIFO order.
func (f *taFifo) WriteFloat64(addr uint32, val float64) error {
	bits := math.Float64bits(val)
	if err := f.pvr2.ta.fifoWrite(uint32(bits)); err != nil {
		return err
	}
	return f.pvr2.ta.fifoWrite(uint32(bits >> 32))
}

func (f *taFifo) widthError(addr uint32, length int) error {
	return curated.Raise(curated.Unimplemented, "narrow write to TA FIFO",
		curated.Attr("address", addr),
		curated.Attr("length", length),
	)
}

// Write8 implements the bus.Interface interface.
func (f *taFifo) Write8(addr uint32, val uint8) error {
	return f.widthError(addr, 1)
}

// Write16 implements the bus.Interface interface.
func (f *taFifo) Write16(addr uint32, val uint16) error {
	return f.widthError(addr, 2)
}

func (f *taFifo) readError(addr uint32, length int) error {
	return curated.Raise(curated.Unimplemented, "read from TA FIFO",
		curated.Attr("address", addr),
		curated.Attr("length", length),
	)
}

// Read8 implements the bus.Interface interface. the FIFO is write-only.
func (f *taFifo) Read8(addr uint32) (uint8, error) {
	return 0, f.readError(addr, 1)
}

// Read16 implements the bus.Interface interface. the FIFO is write-only.
func (f *taFifo) Read16(addr uint32) (uint16, error) {
	return 0, f.readError(addr, 2)
}

// Read32 implements the bus.Interface interface. the FIFO is write-only.
func (f *taFifo) Read32(addr uint32) (uint32, error) {
	return 0, f.readError(addr, 4)
}

// ReadFloat32 implements the bus.Interface interface.
func (f *taFifo) ReadFloat32(addr uint32) (float32, error) {
	return 0, f.readError(addr, 4)
}

// ReadFloat64 implements the bus.Interface interface.
func (f *taFifo) ReadFloat64(addr uint32) (float64, error) {
	return 0, f.readError(addr, 8)
}
