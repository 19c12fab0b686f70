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

// Package gfxil defines the rendering intermediate language: the wire
// protocol between the PVR2 core and the host rendering back-end.
//
// The core never introspects how frames are drawn. It emits a stream of
// instructions referring to textures and render targets by the integer
// handles maintained in the gfx object pool, and the back-end executes the
// stream however it likes. ExecIL blocks until the back-end has accepted
// the batch.
package gfxil

// Op is a rendering-intermediate opcode.
type Op int

// the complete opcode set. every back-end must support all of them.
const (
	SetTex Op = iota
	FreeTex
	BeginRend
	EndRend
	Clear
	SetBlendEnable
	SetRendParam
	DrawArray
	WriteObj
	ReadObj
	InitObj
	PostFramebuffer
	BindRenderTarget
	SetClipRange
	BeginDepthSort
	EndDepthSort
)

func (op Op) String() string {
	switch op {
	case SetTex:
		return "SET_TEX"
	case FreeTex:
		return "FREE_TEX"
	case BeginRend:
		return "BEGIN_REND"
	case EndRend:
		return "END_REND"
	case Clear:
		return "CLEAR"
	case SetBlendEnable:
		return "SET_BLEND_ENABLE"
	case SetRendParam:
		return "SET_REND_PARAM"
	case DrawArray:
		return "DRAW_ARRAY"
	case WriteObj:
		return "WRITE_OBJ"
	case ReadObj:
		return "READ_OBJ"
	case InitObj:
		return "INIT_OBJ"
	case PostFramebuffer:
		return "POST_FRAMEBUFFER"
	case BindRenderTarget:
		return "BIND_RENDER_TARGET"
	case SetClipRange:
		return "SET_CLIP_RANGE"
	case BeginDepthSort:
		return "BEGIN_DEPTH_SORT"
	case EndDepthSort:
		return "END_DEPTH_SORT"
	}
	return "unknown"
}

// VertLen is the stride of a DRAW_ARRAY vertex in floats: three position,
// four base colour, four offset colour, two texture coordinates, and one
// padding slot.
const VertLen = 14

// offsets of the vertex components within the VertLen stride.
const (
	VertPos      = 0
	VertBaseCol  = 3
	VertOffsCol  = 7
	VertTexCoord = 11
)

// TexInst is the texture-colour combine function from the TSP instruction
// word.
type TexInst int

const (
	TexInstDecal TexInst = iota
	TexInstMod
	TexInstDecalAlpha
	TexInstModAlpha
)

// TexFilter is the sampling filter.
type TexFilter int

const (
	TexFilterNearest TexFilter = iota
	TexFilterBilinear
	TexFilterTrilinearA
	TexFilterTrilinearB
)

// TexWrap is the per-axis wrapping mode.
type TexWrap int

const (
	TexWrapRepeat TexWrap = iota
	TexWrapFlip
	TexWrapClamp
)

// BlendFactor enumerates the blending weights of the TSP instruction word.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendOtherColor
	BlendOneMinusOtherColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// DepthFunc enumerates the depth-test comparison functions.
type DepthFunc int

const (
	DepthNever DepthFunc = iota
	DepthLess
	DepthEqual
	DepthLessEqual
	DepthGreater
	DepthNotEqual
	DepthGreaterEqual
	DepthAlways
)

// TexFmt is the pixel format of a texture handed to the back-end.
type TexFmt int

const (
	TexFmtARGB1555 TexFmt = iota
	TexFmtRGB565
	TexFmtARGB4444
	TexFmtARGB8888
	TexFmtYUV422
)

// RendParam is the argument record for SET_REND_PARAM.
type RendParam struct {
	TexEnable  bool
	TexNo      int
	TexInst    TexInst
	TexFilter  TexFilter
	TexWrapU   TexWrap
	TexWrapV   TexWrap
	SrcBlend   BlendFactor
	DstBlend   BlendFactor
	DepthWrite bool
	DepthFunc  DepthFunc
	PunchThrough bool
}

// the argument records for the remaining opcodes.
type (
	// SetTexArg associates a texture number with a gfx object and a format.
	SetTexArg struct {
		TexNo  int
		Obj    int
		Fmt    TexFmt
		WShift int
		HShift int
	}

	// FreeTexArg releases a texture number.
	FreeTexArg struct {
		TexNo int
	}

	// BeginRendArg opens a frame targeting a render-target object.
	BeginRendArg struct {
		ScreenWidth  int
		ScreenHeight int
		RendTgt      int
	}

	// EndRendArg closes the frame opened with the same render target.
	EndRendArg struct {
		RendTgt int
	}

	// ClearArg clears the target to the background colour.
	ClearArg struct {
		BgColor [4]float32
	}

	// SetBlendEnableArg switches blending on or off.
	SetBlendEnableArg struct {
		Enable bool
	}

	// SetRendParamArg configures rendering state for subsequent draws.
	SetRendParamArg struct {
		Param RendParam
	}

	// DrawArrayArg renders a group of triangles. len(Verts) is a multiple
	// of VertLen.
	DrawArrayArg struct {
		Verts []float32
	}

	// InitObjArg establishes an object and its length in bytes.
	InitObjArg struct {
		Obj    int
		NBytes int
	}

	// WriteObjArg copies data into an object. len(Dat) must equal the
	// object's established length.
	WriteObjArg struct {
		Obj int
		Dat []byte
	}

	// ReadObjArg reads an object back into Dat. len(Dat) must equal the
	// object's established length.
	ReadObjArg struct {
		Obj int
		Dat []byte
	}

	// PostFramebufferArg presents a finished frame held in an object.
	PostFramebufferArg struct {
		Obj        int
		Width      int
		Height     int
		VertFlip   bool
		Interlaced bool
	}

	// BindRenderTargetArg directs subsequent rendering into an object.
	BindRenderTargetArg struct {
		Obj int
	}

	// SetClipRangeArg sets the depth range covered by the frame.
	SetClipRangeArg struct {
		ClipMin float32
		ClipMax float32
	}
)

// Inst is one rendering-intermediate instruction: an opcode and its typed
// argument record. opcodes without arguments carry a nil Arg.
type Inst struct {
	Op  Op
	Arg interface{}
}

// Renderer is the interface the host rendering back-end provides to the
// core. ExecIL must process every instruction in the batch before
// returning; the core assumes the back-end serialises all calls.
type Renderer interface {
	ExecIL(cmds []Inst) error
}
