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
	"math"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/gfx/gfxil"
	"github.com/washingtondc-emu/washingtondc/gfx/texcache"
	"github.com/washingtondc-emu/washingtondc/hardware/clocks"
	"github.com/washingtondc-emu/washingtondc/hardware/dcsched"
	"github.com/washingtondc-emu/washingtondc/hardware/holly"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// fields of the ISP_BACKGND_T register.
const (
	ispBackgndTAddrShift = 1
	ispBackgndTAddrMask  = 0x7ffffc << ispBackgndTAddrShift
	ispBackgndTSkipShift = 24
	ispBackgndTSkipMask  = 7 << ispBackgndTSkipShift
)

// core holds the state of display-list replay: the captured lists, the
// vertex accumulation buffer, and the gfx-IL staging buffer.
type core struct {
	pvr2 *PVR2

	curPolyGroup PolyType

	// texture state carried between header and vertices
	strideSel      bool
	texWidthShift  int
	texHeightShift int

	// minimum and maximum vertex depth per frame, for the clip range
	clipMin float32
	clipMax float32

	// the previous two verts of the current triangle strip
	stripVert1 [gfxil.VertLen]float32
	stripVert2 [gfxil.VertLen]float32
	stripLen   int

	bgColor [4]float32

	// vertices not yet flushed into a DRAW_ARRAY
	vertBuf   []float32
	vertStart int

	// staged gfx-IL instructions for the in-flight frame
	ilBuf []gfxil.Inst

	ptAlphaRef uint32

	nextFrameStamp uint32

	dispLists       [MaxFramesInFlight]displayList
	dispListCounter uint32

	renderCompleteEvent          dcsched.Event
	renderCompleteEventScheduled bool
}

func (c *core) init(pvr2 *PVR2) {
	c.pvr2 = pvr2
	c.renderCompleteEvent.Handler = c.handleRenderComplete
	for i := range c.dispLists {
		c.dispLists[i].init()
	}
}

func (c *core) renderFrameInit() {
	c.ilBuf = c.ilBuf[:0]
	c.clipMin = -1.0
	c.clipMax = 1.0
}

func (c *core) pushIL(inst gfxil.Inst) {
	c.ilBuf = append(c.ilBuf, inst)
}

// pushVert appends one vertex to the accumulation buffer.
func (c *core) pushVert(vert [gfxil.VertLen]float32) {
	c.vertBuf = append(c.vertBuf, vert[:]...)
}

// flushVerts emits the accumulated vertices as one DRAW_ARRAY.
func (c *core) flushVerts() {
	count := len(c.vertBuf) / gfxil.VertLen
	if count == c.vertStart {
		return
	}

	verts := make([]float32, (count-c.vertStart)*gfxil.VertLen)
	copy(verts, c.vertBuf[c.vertStart*gfxil.VertLen:])
	c.pushIL(gfxil.Inst{Op: gfxil.DrawArray, Arg: gfxil.DrawArrayArg{Verts: verts}})

	c.vertStart = count
}

// listExec replays each of the five polygon groups in the fixed hardware
// order. modifier-volume groups are skipped. translucent groups are
// bracketed with depth-sort markers when order-independent transparency is
// enabled (ISP_FEED_CFG bit 0 clear).
func (c *core) listExec(list *displayList) error {
	c.vertBuf = c.vertBuf[:0]
	c.vertStart = 0

	for group := PolyTypeOpaque; group <= PolyTypePunchThrough; group++ {
		if group == PolyTypeOpaqueMod || group == PolyTypeTransMod {
			continue
		}

		g := &list.groups[group]
		if !g.valid {
			continue
		}

		c.curPolyGroup = group

		sortMode := false
		if group == PolyTypeTrans && c.pvr2.reg(regISPFeedCfg)&1 == 0 {
			sortMode = true
			c.pushIL(gfxil.Inst{Op: gfxil.BeginDepthSort})
		}

		punchThrough := group == PolyTypePunchThrough
		blendEnable := group == PolyTypeTrans

		for i := range g.cmds {
			cmd := &g.cmds[i]
			var err error
			switch cmd.tp {
			case cmdHeader:
				err = c.execHeader(cmd, punchThrough, blendEnable)
			case cmdVertex:
				c.execVertex(cmd)
			case cmdQuad:
				c.execQuad(cmd)
			case cmdEndOfGroup:
				c.flushVerts()
			}
			if err != nil {
				return err
			}
		}

		if sortMode {
			c.pushIL(gfxil.Inst{Op: gfxil.EndDepthSort})
		}
	}

	return nil
}

// execHeader flushes any accumulated vertices, resolves the header's
// texture through the cache, and emits the rendering-parameter commands.
func (c *core) execHeader(cmd *displayListCmd, punchThrough bool, blendEnable bool) error {
	hdr := &cmd.hdr

	c.flushVerts()

	param := gfxil.RendParam{
		TexInst:      hdr.texInst,
		TexFilter:    hdr.texFilter,
		TexWrapU:     hdr.texWrapU,
		TexWrapV:     hdr.texWrapV,
		SrcBlend:     hdr.srcBlend,
		DstBlend:     hdr.dstBlend,
		DepthWrite:   hdr.depthWrite,
		DepthFunc:    hdr.depthFunc,
		PunchThrough: punchThrough,
	}

	if hdr.texEnable {
		linestride := uint32(1) << hdr.texWidthShift
		if hdr.strideSel {
			linestride = 32 * (c.pvr2.reg(regTextControl) & 0x1f)
		}
		if linestride == 0 || linestride > uint32(1)<<hdr.texWidthShift {
			return curated.Raise(curated.Unimplemented, "texture linestride out of range",
				curated.Attr("linestride", linestride))
		}

		texNo, err := c.resolveTexture(hdr, linestride)
		if err != nil {
			return err
		}
		if texNo >= 0 {
			param.TexEnable = true
			param.TexNo = texNo
		}
	}

	c.pushIL(gfxil.Inst{Op: gfxil.SetRendParam, Arg: gfxil.SetRendParamArg{Param: param}})
	c.pushIL(gfxil.Inst{Op: gfxil.SetBlendEnable, Arg: gfxil.SetBlendEnableArg{Enable: blendEnable}})

	c.stripLen = 0
	c.strideSel = hdr.strideSel
	c.texWidthShift = hdr.texWidthShift
	c.texHeightShift = hdr.texHeightShift

	return nil
}

// resolveTexture looks the header's texture up in the cache, uploading it
// to the back-end on a miss. returns -1 when the texture could not be
// made available.
func (c *core) resolveTexture(hdr *cmdHeaderData, linestride uint32) (int, error) {
	key := texcache.Key{
		Addr:       hdr.texAddr,
		PalStart:   hdr.texPalette,
		WShift:     hdr.texWidthShift,
		HShift:     hdr.texHeightShift,
		Linestride: linestride,
		PixFmt:     hdr.pixFmt,
		Twiddled:   hdr.texTwiddle,
		VQ:         hdr.texVQ,
		Mipmap:     hdr.texMipmap,
		StrideSel:  hdr.strideSel,
	}

	if texNo, ok := c.pvr2.texCache.Find(key, c.nextFrameStamp); ok {
		return texNo, nil
	}

	// before sampling from VRAM, make sure no framebuffer is sitting on
	// top of the texture data in the gfx back-end
	texLen := texByteLen(hdr)
	c.pvr2.fb.notifyTexRead(hdr.texAddr, hdr.texAddr+texLen-1)

	handle, err := c.pvr2.pool.Alloc()
	if err != nil {
		logger.Logf("pvr2", "failed to add texture %08x to the texture cache", hdr.texAddr)
		return -1, nil
	}

	texNo, evicted, err := c.pvr2.texCache.Insert(key, handle, c.nextFrameStamp)
	if err != nil {
		c.pvr2.pool.Free(handle)
		return -1, nil
	}
	if evicted >= 0 {
		c.pushIL(gfxil.Inst{Op: gfxil.FreeTex, Arg: gfxil.FreeTexArg{TexNo: texNo}})
		c.pvr2.pool.Free(evicted)
	}

	// raw texture bytes; decoding twiddled and compressed layouts is the
	// back-end's business
	vram := c.pvr2.texMem.Bytes()
	first := hdr.texAddr
	if int(first)+int(texLen) > len(vram) {
		return -1, curated.Raise(curated.MemOutOfBounds, "texture outside VRAM",
			curated.Attr("address", first),
			curated.Attr("length", int(texLen)),
		)
	}

	dat := make([]byte, texLen)
	copy(dat, vram[first:])

	if err := c.pvr2.pool.Init(handle, len(dat)); err != nil {
		return -1, err
	}
	c.pushIL(gfxil.Inst{Op: gfxil.WriteObj, Arg: gfxil.WriteObjArg{Obj: handle, Dat: dat}})
	c.pushIL(gfxil.Inst{Op: gfxil.SetTex, Arg: gfxil.SetTexArg{
		TexNo:  texNo,
		Obj:    handle,
		Fmt:    gfxil.TexFmt(hdr.pixFmt),
		WShift: hdr.texWidthShift,
		HShift: hdr.texHeightShift,
	}})

	return texNo, nil
}

// texByteLen computes the in-VRAM length of a texture.
func texByteLen(hdr *cmdHeaderData) uint32 {
	texels := uint32(1) << (hdr.texWidthShift + hdr.texHeightShift)
	if hdr.texVQ {
		// one byte per 2x2 texel block plus the codebook
		return texels/4 + 256*8
	}
	return texels * 2
}

// execVertex handles a triangle-strip vertex: un-strip by re-emitting the
// previous two vertices, track the clip range from 1/z, adjust U when a
// stride texture is bound, and push.
func (c *core) execVertex(cmd *displayListCmd) {
	vtx := &cmd.vtx

	if c.stripLen >= 3 {
		c.pushVert(c.stripVert1)
		c.pushVert(c.stripVert2)
	}

	zRecip := float32(1.0) / vtx.pos[2]
	if zRecip < c.clipMin {
		c.clipMin = zRecip
	}
	if zRecip > c.clipMax {
		c.clipMax = zRecip
	}

	var vert [gfxil.VertLen]float32
	vert[gfxil.VertPos+0] = vtx.pos[0]
	vert[gfxil.VertPos+1] = vtx.pos[1]
	vert[gfxil.VertPos+2] = vtx.pos[2]
	copy(vert[gfxil.VertBaseCol:], vtx.baseColor[:])
	copy(vert[gfxil.VertOffsCol:], vtx.offsColor[:])

	if c.strideSel {
		linestride := 32 * (c.pvr2.reg(regTextControl) & 0x1f)
		vert[gfxil.VertTexCoord+0] =
			vtx.texCoord[0] * (float32(uint32(1)<<c.texWidthShift) / float32(linestride))
		vert[gfxil.VertTexCoord+1] = vtx.texCoord[1]
	} else {
		vert[gfxil.VertTexCoord+0] = vtx.texCoord[0]
		vert[gfxil.VertTexCoord+1] = vtx.texCoord[1]
	}

	c.pushVert(vert)

	if vtx.endOfStrip {
		c.stripLen = 0
	} else {
		c.stripVert1 = c.stripVert2
		c.stripVert2 = vert
		c.stripLen++
	}
}

// unpackUV16 expands one packed 16-bit texture coordinate pair: each half
// is the upper sixteen bits of a float32.
func unpackUV16(packed uint32) (u float32, v float32) {
	u = math.Float32frombits(packed & 0xffff0000)
	v = math.Float32frombits(packed << 16)
	return u, v
}

// execQuad emits a sprite as two triangles. the fourth texture coordinate
// is derived from the other three by vector addition; the clip range is
// updated from all four z values.
func (c *core) execQuad(cmd *displayListCmd) {
	quad := &cmd.quad

	if quad.degenerate {
		return
	}

	var uv [4][2]float32
	uv[0][0], uv[0][1] = unpackUV16(quad.texCoordsPacked[0])
	uv[1][0], uv[1][1] = unpackUV16(quad.texCoordsPacked[1])
	uv[2][0], uv[2][1] = unpackUV16(quad.texCoordsPacked[2])

	uv[3][0] = uv[1][0] + (uv[0][0] - uv[1][0]) + (uv[2][0] - uv[1][0])
	uv[3][1] = uv[1][1] + (uv[0][1] - uv[1][1]) + (uv[2][1] - uv[1][1])

	if c.strideSel {
		linestride := 32 * (c.pvr2.reg(regTextControl) & 0x1f)
		scale := float32(linestride) / float32(uint32(1)<<c.texWidthShift)
		for i := 0; i < 3; i++ {
			uv[i][0] *= scale
		}
	}

	var verts [4][gfxil.VertLen]float32
	for i := 0; i < 4; i++ {
		verts[i][gfxil.VertPos+0] = quad.vertPos[i][0]
		verts[i][gfxil.VertPos+1] = quad.vertPos[i][1]
		verts[i][gfxil.VertPos+2] = 1.0 / quad.vertPos[i][2]
		copy(verts[i][gfxil.VertBaseCol:], quad.baseColor[:])
		copy(verts[i][gfxil.VertOffsCol:], quad.offsColor[:])
		verts[i][gfxil.VertTexCoord+0] = uv[i][0]
		verts[i][gfxil.VertTexCoord+1] = uv[i][1]
	}

	c.pushVert(verts[0])
	c.pushVert(verts[1])
	c.pushVert(verts[2])

	c.pushVert(verts[0])
	c.pushVert(verts[2])
	c.pushVert(verts[3])

	for i := 0; i < 4; i++ {
		z := quad.vertPos[i][2]
		if z < c.clipMin {
			c.clipMin = z
		}
		if z > c.clipMax {
			c.clipMax = z
		}
	}
}

// startRender services the STARTRENDER register write: select the youngest
// captured display list matching PARAM_BASE, replay it into the gfx-IL
// buffer, and hand the frame to the back-end.
func (pvr2 *PVR2) startRender() error {
	c := &pvr2.core

	c.renderFrameInit()

	// find the youngest display list within a small window below
	// PARAM_BASE. some games offset TA_OL_BASE from PARAM_BASE, so an
	// exact key match is too strict
	key := pvr2.reg(regParamBase)
	var list *displayList
	for i := range c.dispLists {
		cand := &c.dispLists[i]
		if cand.valid && key <= cand.key && cand.key-key < 0x00100000 {
			if list == nil || c.listAge(cand) < c.listAge(list) {
				list = cand
			}
		}
	}

	if list != nil {
		if age := c.listAge(list); age > listStaleAge {
			logger.Logf("pvr2", "display list age is %d; possible list mismatch", age)
		}

		// refresh the chosen list's age so lists which are created once
		// but rendered often don't go stale
		c.incAgeCounter()
		list.ageCounter = c.dispListCounter

		if err := c.listExec(list); err != nil {
			return err
		}
	} else {
		logger.Logf("pvr2", "unable to locate display list for key %08x", key)
	}
	c.flushVerts()

	// the background plane's colour lives in VRAM behind ISP_BACKGND_T
	backgndTag := pvr2.reg(regISPBackgndT)
	backgndAddr := (backgndTag & ispBackgndTAddrMask) >> ispBackgndTAddrShift
	backgndSkip := (backgndTag&ispBackgndTSkipMask)>>ispBackgndTSkipShift + 3

	// the tag points at three ISP/TSP parameter words followed by three
	// vertices of backgndSkip words each; the colour is the fourth word of
	// vertex zero
	vram := pvr2.texMem.Bytes()
	bgColorAddr := backgndAddr + (3+0*backgndSkip+3)*4
	var bgColorSrc uint32
	if int(bgColorAddr)+4 <= len(vram) {
		bgColorSrc = binary.LittleEndian.Uint32(vram[bgColorAddr:])
	}

	c.bgColor[0] = float32((bgColorSrc&0x00ff0000)>>16) / 255.0
	c.bgColor[1] = float32((bgColorSrc&0x0000ff00)>>8) / 255.0
	c.bgColor[2] = float32(bgColorSrc&0x000000ff) / 255.0
	c.bgColor[3] = float32((bgColorSrc&0xff000000)>>24) / 255.0

	// bind a framebuffer as the render target
	tgt, width, height, err := pvr2.fb.setRenderTarget()
	if err != nil {
		return err
	}

	cmds := []gfxil.Inst{
		{Op: gfxil.BeginRend, Arg: gfxil.BeginRendArg{
			ScreenWidth:  width,
			ScreenHeight: height,
			RendTgt:      tgt,
		}},
		{Op: gfxil.SetClipRange, Arg: gfxil.SetClipRangeArg{
			ClipMin: c.clipMin,
			ClipMax: c.clipMax,
		}},
		{Op: gfxil.Clear, Arg: gfxil.ClearArg{BgColor: c.bgColor}},
	}
	cmds = append(cmds, c.ilBuf...)
	cmds = append(cmds, gfxil.Inst{Op: gfxil.EndRend, Arg: gfxil.EndRendArg{RendTgt: tgt}})

	if err := pvr2.rend.ExecIL(cmds); err != nil {
		return err
	}

	c.nextFrameStamp++

	if !c.renderCompleteEventScheduled {
		c.renderCompleteEventScheduled = true
		_ = pvr2.sched.Schedule(&c.renderCompleteEvent,
			pvr2.sched.Now()+clocks.RenderCompleteDelay)
	}

	return nil
}

func (c *core) handleRenderComplete(*dcsched.Event) {
	c.renderCompleteEventScheduled = false
	c.pvr2.intc.RaiseNrmInt(holly.IntRenderComplete)
}
