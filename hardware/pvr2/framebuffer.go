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
	"encoding/binary"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/gfx/gfxil"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// FBState records where a framebuffer's authoritative pixels live: in
// guest VRAM, in the gfx back-end, or both.
type FBState int

const (
	FBStateInvalid FBState = 0
	FBStateVirt    FBState = 1
	FBStateGfx     FBState = 2
	FBStateVirtAndGfx FBState = 3
)

// size of the framebuffer heap. a handful of descriptors is plenty; games
// double- or triple-buffer at most.
const fbHeapSize = 16

// framebuffer write formats from FB_W_CTRL.
const (
	fbFmt0555KRGB = 0
	fbFmt565RGB   = 1
	fbFmt4444ARGB = 2
	fbFmt1555ARGB = 3
	fbFmt888RGB   = 4
	fbFmt0888KRGB = 5
	fbFmt8888ARGB = 6
	fbFmtReserved = 7
)

// framebuffer is one descriptor in the heap.
type framebuffer struct {
	obj      int
	objBytes int

	readWidth  int
	readHeight int

	linestride uint32

	// field start and end addresses in VRAM (32-bit path). two entries for
	// the two interlaced fields
	addrFirst [2]uint32
	addrLast  [2]uint32

	// the smaller of the two field start addresses; the read path's search
	// key
	addrKey uint32

	// clip rectangle and tile bounds for the write path
	xClipMin, xClipMax int
	yClipMin, yClipMax int
	tileW, tileH       int

	stamp uint32

	state    FBState
	vertFlip bool
	fmt      int
}

// fbHeap is the pool of framebuffer descriptors plus the interface the
// texture memory uses to report writes.
type fbHeap struct {
	pvr2 *PVR2

	heap  [fbHeapSize]framebuffer
	stamp uint32
}

func (h *fbHeap) init(pvr2 *PVR2) {
	h.pvr2 = pvr2
	for i := range h.heap {
		h.heap[i].obj = -1
	}
}

// bytesPerPix decodes the pixel size from FB_R_CTRL.
func bytesPerPix(fbRCtrl uint32) int {
	switch (fbRCtrl >> 2) & 3 {
	case 0, 1:
		return 2
	case 2:
		return 3
	}
	return 4
}

// ensureObj (re)establishes the slot's gfx object with room for the frame.
func (h *fbHeap) ensureObj(fb *framebuffer, nBytes int) error {
	if fb.obj >= 0 && fb.objBytes == nBytes {
		return nil
	}

	if fb.obj >= 0 {
		h.pvr2.pool.Free(fb.obj)
		fb.obj = -1
	}

	handle, err := h.pvr2.pool.Alloc()
	if err != nil {
		return err
	}
	if err := h.pvr2.pool.Init(handle, nBytes); err != nil {
		return err
	}

	fb.obj = handle
	fb.objBytes = nBytes
	return nil
}

// render is the framebuffer read path, invoked on every VBLANK-in: find or
// convert the frame the guest wants scanned out and post it to the
// back-end.
func (h *fbHeap) render() {
	fbRCtrl := h.pvr2.reg(regFBRCtrl)
	if fbRCtrl&1 == 0 {
		logger.Log("pvr2", "framebuffer disabled")
		return
	}

	interlace := h.pvr2.spg.interlaced()
	fbRSize := h.pvr2.reg(regFBRSize)
	sof1 := h.pvr2.reg(regFBRSOF1) &^ 3

	modulus := (fbRSize >> 20) & 0x3ff
	concat := uint8((fbRCtrl >> 4) & 7)

	pixSz := bytesPerPix(fbRCtrl)
	widthBytes := ((fbRSize & 0x3ff) + 1) * 4
	if int(widthBytes)%pixSz != 0 {
		curated.Fatal(curated.Raise(curated.Unimplemented, "framebuffer width not a pixel multiple",
			curated.Attr("width", widthBytes),
			curated.Attr("pix_sz", pixSz)))
		return
	}
	width := int(widthBytes) / pixSz
	height := int((fbRSize>>10)&0x3ff) + 1

	addrFirst := sof1
	if interlace {
		sof2 := h.pvr2.reg(regFBRSOF2) &^ 3
		if sof2 < addrFirst {
			addrFirst = sof2
		}
	}

	var fb *framebuffer
	for i := range h.heap {
		cand := &h.heap[i]
		if cand.readWidth == width && cand.readHeight == height &&
			cand.addrKey == addrFirst && cand.state != FBStateInvalid {
			fb = cand
			break
		}
	}

	if fb == nil {
		fb = h.pickFB(width, height, addrFirst)
	}

	if fb.state&FBStateGfx == 0 {
		if err := h.syncFromVRAM(fb, width, height, addrFirst, modulus, concat, interlace); err != nil {
			curated.Fatal(err)
			return
		}
	}

	h.stamp++
	fb.stamp = h.stamp

	postHeight := fb.readHeight
	if interlace {
		postHeight *= 2
	}

	if h.pvr2.Title != nil {
		h.pvr2.Title.SetResolution(fb.readWidth, postHeight, interlace)
		switch (fbRCtrl >> 2) & 3 {
		case 0:
			h.pvr2.Title.SetPixFmt("555 RGB")
		case 1:
			h.pvr2.Title.SetPixFmt("565 RGB")
		case 2:
			h.pvr2.Title.SetPixFmt("888 RGB")
		case 3:
			h.pvr2.Title.SetPixFmt("0888 RGB")
		}
	}

	if err := h.pvr2.rend.ExecIL([]gfxil.Inst{{
		Op: gfxil.PostFramebuffer,
		Arg: gfxil.PostFramebufferArg{
			Obj:        fb.obj,
			Width:      fb.readWidth,
			Height:     postHeight,
			VertFlip:   fb.vertFlip,
			Interlaced: interlace,
		},
	}}); err != nil {
		curated.Fatal(err)
	}
}

// pickFB claims the least recently used slot, first syncing any back-end
// content it still owns back to VRAM.
func (h *fbHeap) pickFB(width int, height int, addrKey uint32) *framebuffer {
	fb := &h.heap[0]
	for i := range h.heap {
		if h.heap[i].state == FBStateInvalid {
			fb = &h.heap[i]
			break
		}
		if h.heap[i].stamp < fb.stamp {
			fb = &h.heap[i]
		}
	}

	if fb.state == FBStateGfx {
		h.syncToVRAM(fb)
	}

	fb.readWidth = width
	fb.readHeight = height
	fb.addrKey = addrKey
	fb.state = FBStateInvalid

	return fb
}

// syncFromVRAM converts the guest frame to RGBA8888 in the slot's gfx
// object.
func (h *fbHeap) syncFromVRAM(fb *framebuffer, width int, height int,
	addrFirst uint32, modulus uint32, concat uint8, interlace bool) error {

	fbRCtrl := h.pvr2.reg(regFBRCtrl)
	pixType := (fbRCtrl >> 2) & 3
	pixSz := bytesPerPix(fbRCtrl)

	// one field advances by the line length plus the modulus padding
	lineAdvance := uint32(width*pixSz) + modulus*4 - 4

	sof1 := h.pvr2.reg(regFBRSOF1) &^ 3
	sof2 := h.pvr2.reg(regFBRSOF2) &^ 3

	nBytes := width * height * 4
	if err := h.ensureObj(fb, nBytes); err != nil {
		return err
	}

	out := make([]byte, nBytes)
	vram := h.pvr2.texMem.Bytes()

	convertRow := func(dstRow int, srcAddr uint32) error {
		if int(srcAddr)+width*pixSz > len(vram) {
			return curated.Raise(curated.MemOutOfBounds, "framebuffer read outside VRAM",
				curated.Attr("address", srcAddr))
		}
		src := vram[srcAddr:]
		dst := out[dstRow*width*4:]

		switch pixType {
		case 0:
			convRGB555(dst, src, width, concat)
		case 1:
			convRGB565(dst, src, width, concat)
		case 2:
			convRGB888(dst, src, width)
		case 3:
			convRGB0888(dst, src, width)
		}
		return nil
	}

	if interlace {
		for row := 0; row < height; row++ {
			// even rows come from field one, odd rows from field two
			var addr uint32
			if row%2 == 0 {
				addr = sof1 + uint32(row/2)*lineAdvance
			} else {
				addr = sof2 + uint32(row/2)*lineAdvance
			}
			if err := convertRow(row, addr); err != nil {
				return err
			}
		}
	} else {
		for row := 0; row < height; row++ {
			if err := convertRow(row, sof1+uint32(row)*lineAdvance); err != nil {
				return err
			}
		}
	}

	if err := h.pvr2.rend.ExecIL([]gfxil.Inst{{
		Op:  gfxil.WriteObj,
		Arg: gfxil.WriteObjArg{Obj: fb.obj, Dat: out},
	}}); err != nil {
		return err
	}

	fb.readWidth = width
	fb.readHeight = height
	fb.addrFirst[0] = sof1
	fb.addrFirst[1] = sof2
	fb.addrLast[0] = sof1 + uint32(height)*lineAdvance - 1
	fb.addrLast[1] = sof2 + uint32(height)*lineAdvance - 1
	fb.addrKey = addrFirst
	fb.vertFlip = true
	fb.state = FBStateVirtAndGfx

	return nil
}

// format conversions to RGBA8888. the concat bits replace the precision
// the narrow formats lack.

func convRGB565(dst []byte, src []byte, n int, concat uint8) {
	for i := 0; i < n; i++ {
		pix := binary.LittleEndian.Uint16(src[i*2:])
		dst[i*4+0] = byte((pix&0xf800)>>11)<<3 | concat
		dst[i*4+1] = byte((pix&0x07e0)>>5)<<2 | (concat & 0x3)
		dst[i*4+2] = byte(pix&0x001f)<<3 | concat
		dst[i*4+3] = 255
	}
}

func convRGB555(dst []byte, src []byte, n int, concat uint8) {
	for i := 0; i < n; i++ {
		pix := binary.LittleEndian.Uint16(src[i*2:])
		dst[i*4+0] = byte((pix&0x7c00)>>10)<<3 | concat
		dst[i*4+1] = byte((pix&0x03e0)>>5)<<3 | concat
		dst[i*4+2] = byte(pix&0x001f)<<3 | concat
		dst[i*4+3] = 255
	}
}

func convRGB888(dst []byte, src []byte, n int) {
	for i := 0; i < n; i++ {
		dst[i*4+0] = src[i*3+0]
		dst[i*4+1] = src[i*3+1]
		dst[i*4+2] = src[i*3+2]
		dst[i*4+3] = 255
	}
}

func convRGB0888(dst []byte, src []byte, n int) {
	for i := 0; i < n; i++ {
		pix := binary.LittleEndian.Uint32(src[i*4:])
		dst[i*4+0] = byte(pix >> 16)
		dst[i*4+1] = byte(pix >> 8)
		dst[i*4+2] = byte(pix)
		dst[i*4+3] = 255
	}
}

// setRenderTarget is the framebuffer write path: bind the slot the
// STARTRENDER output will land in.
func (h *fbHeap) setRenderTarget() (int, int, int, error) {
	tileW := int((h.pvr2.reg(regTAGlobTileClip)&0x3f)+1) << 5
	tileH := int(((h.pvr2.reg(regTAGlobTileClip)>>16)&0xf)+1) << 5

	xClip := h.pvr2.reg(regFBXClip)
	yClip := h.pvr2.reg(regFBYClip)
	xClipMin := int(xClip & 0x7ff)
	xClipMax := int((xClip >> 16) & 0x7ff)
	yClipMin := int(yClip & 0x3ff)
	yClipMax := int((yClip >> 16) & 0x3ff)

	xMax := xClipMax
	if tileW < xMax {
		xMax = tileW
	}
	yMax := yClipMax
	if tileH < yMax {
		yMax = tileH
	}
	width := xMax - xClipMin + 1
	height := yMax - yClipMin + 1

	fbWCtrl := h.pvr2.reg(regFBWCtrl)
	format := int(fbWCtrl & 7)
	switch format {
	case fbFmt4444ARGB, fbFmtReserved:
		return -1, 0, 0, curated.Raise(curated.Unimplemented, "framebuffer write format",
			curated.Attr("fb_pix_fmt", format))
	}

	sof1 := h.pvr2.reg(regFBWSOF1) &^ 3
	sof2 := h.pvr2.reg(regFBWSOF2) &^ 3
	linestride := (h.pvr2.reg(regFBWLinestride) & 0x1ff) * 8

	// find an existing slot for this target, else take the LRU slot
	var fb *framebuffer
	for i := range h.heap {
		cand := &h.heap[i]
		if cand.readWidth == width && cand.readHeight == height &&
			cand.addrFirst[0] == sof1 && cand.state != FBStateInvalid {
			fb = cand
			break
		}
	}
	if fb == nil {
		fb = h.pickFB(width, height, sof1)
	}

	if fb.readWidth != width || fb.readHeight != height {
		// games sometimes render with one geometry and scan out with
		// another; only the read dimensions are tracked
		logger.Logf("pvr2", "read-dimensions of framebuffer are %dx%d, but write-dimensions are %dx%d",
			fb.readWidth, fb.readHeight, width, height)
	}

	if err := h.ensureObj(fb, width*height*4); err != nil {
		return -1, 0, 0, err
	}

	bpp := uint32(2)
	if format >= fbFmt888RGB {
		bpp = 4
	}

	fb.readWidth = width
	fb.readHeight = height
	fb.linestride = linestride
	fb.addrFirst[0] = sof1
	fb.addrFirst[1] = sof2
	fb.addrLast[0] = sof1 + linestride*uint32(height-1) + uint32(width)*bpp - 1
	fb.addrLast[1] = sof2 + linestride*uint32(height-1) + uint32(width)*bpp - 1
	fb.addrKey = sof1
	fb.xClipMin = xClipMin
	fb.xClipMax = xClipMax
	fb.yClipMin = yClipMin
	fb.yClipMax = yClipMax
	fb.tileW = tileW
	fb.tileH = tileH
	fb.fmt = format
	fb.vertFlip = true
	fb.state = FBStateGfx

	h.stamp++
	fb.stamp = h.stamp

	if err := h.pvr2.rend.ExecIL([]gfxil.Inst{{
		Op:  gfxil.BindRenderTarget,
		Arg: gfxil.BindRenderTargetArg{Obj: fb.obj},
	}}); err != nil {
		return -1, 0, 0, err
	}

	return fb.obj, width, height, nil
}

// syncToVRAM reads the back-end's pixels back and packs them into VRAM in
// the slot's write format.
func (h *fbHeap) syncToVRAM(fb *framebuffer) {
	if fb.state != FBStateGfx || fb.obj < 0 {
		return
	}

	dat := make([]byte, fb.objBytes)
	if err := h.pvr2.rend.ExecIL([]gfxil.Inst{{
		Op:  gfxil.ReadObj,
		Arg: gfxil.ReadObjArg{Obj: fb.obj, Dat: dat},
	}}); err != nil {
		curated.Fatal(err)
		return
	}

	vram := h.pvr2.texMem.Bytes()
	width := fb.readWidth
	height := fb.readHeight

	writePix := func(addr uint32, rgba []byte) {
		if int(addr)+4 > len(vram) {
			return
		}
		switch fb.fmt {
		case fbFmt565RGB:
			pix := uint16(rgba[0]&0xf8)<<8 | uint16(rgba[1]&0xfc)<<3 | uint16(rgba[2])>>3
			binary.LittleEndian.PutUint16(vram[addr:], pix)
		case fbFmt0555KRGB:
			pix := uint16(rgba[0]&0xf8)<<7 | uint16(rgba[1]&0xf8)<<2 | uint16(rgba[2])>>3
			binary.LittleEndian.PutUint16(vram[addr:], pix)
		case fbFmt1555ARGB:
			var a uint16
			if rgba[3] != 0 {
				a = 1 << 15
			}
			pix := a | uint16(rgba[0]&0xf8)<<7 | uint16(rgba[1]&0xf8)<<2 | uint16(rgba[2])>>3
			binary.LittleEndian.PutUint16(vram[addr:], pix)
		case fbFmt0888KRGB, fbFmt888RGB:
			binary.LittleEndian.PutUint32(vram[addr:],
				uint32(rgba[0])<<16|uint32(rgba[1])<<8|uint32(rgba[2]))
		case fbFmt8888ARGB:
			binary.LittleEndian.PutUint32(vram[addr:],
				uint32(rgba[3])<<24|uint32(rgba[0])<<16|uint32(rgba[1])<<8|uint32(rgba[2]))
		}
	}

	bpp := uint32(2)
	if fb.fmt >= fbFmt888RGB {
		bpp = 4
	}

	// the back-end's frame is bottom-up relative to the guest's layout
	for row := 0; row < height; row++ {
		lineOffs := fb.addrFirst[0] + uint32(height-(row+1))*fb.linestride
		for col := 0; col < width; col++ {
			writePix(lineOffs+uint32(col)*bpp, dat[(row*width+col)*4:])
		}
	}

	fb.state = FBStateVirtAndGfx
}

// NotifyWrite implements the bus.WriteNotifier interface: a VRAM write
// overlapping a framebuffer whose pixels live in the back-end moves that
// slot to the Virt state so the next render pass re-reads VRAM.
func (h *fbHeap) NotifyWrite(addr uint32, length uint32) {
	first := addr
	last := addr + length - 1

	for i := range h.heap {
		fb := &h.heap[i]
		if fb.state&FBStateGfx == 0 {
			continue
		}
		for field := 0; field < 2; field++ {
			if first <= fb.addrLast[field] && last >= fb.addrFirst[field] {
				fb.state = FBStateVirt
				break
			}
		}
	}
}

// notifyTexRead syncs back any framebuffer the back-end owns whose pixels
// overlap a texture about to be sampled.
func (h *fbHeap) notifyTexRead(first uint32, last uint32) {
	for i := range h.heap {
		fb := &h.heap[i]
		if fb.state != FBStateGfx {
			continue
		}
		for field := 0; field < 2; field++ {
			if first <= fb.addrLast[field] && last >= fb.addrFirst[field] {
				h.syncToVRAM(fb)
				break
			}
		}
	}
}
