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

// Package headless is the default rendering back-end: it accepts the
// complete gfx-IL instruction set, keeps object and texture stores in host
// memory, and discards geometry. useful for automated runs, for tests, and
// as the substrate the SDL window back-end builds on.
package headless

import (
	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/gfx/gfxil"
	"github.com/washingtondc-emu/washingtondc/gfx/obj"
)

// PresentFunc receives every posted framebuffer.
type PresentFunc func(arg gfxil.PostFramebufferArg, rgba []byte)

// Renderer is the headless back-end. it implements gfxil.Renderer.
type Renderer struct {
	pool *obj.Pool

	// texture number -> object handle bindings
	texBindings [texBindingCount]int

	// the object rendering is currently directed into
	rendTgt int

	// called on POST_FRAMEBUFFER. may be nil
	present PresentFunc

	// frame statistics
	Frames int
	Draws  int
	Verts  int
}

const texBindingCount = 512

// NewRenderer is the preferred method of initialisation for the Renderer
// type. the pool is shared with the emulation side, which allocates the
// handles this back-end stores data against.
func NewRenderer(pool *obj.Pool) *Renderer {
	r := &Renderer{
		pool:    pool,
		rendTgt: -1,
	}
	for i := range r.texBindings {
		r.texBindings[i] = -1
	}
	return r
}

// SetPresentFunc registers the consumer of posted framebuffers.
func (r *Renderer) SetPresentFunc(f PresentFunc) {
	r.present = f
}

// ExecIL implements the gfxil.Renderer interface.
func (r *Renderer) ExecIL(cmds []gfxil.Inst) error {
	for i := range cmds {
		if err := r.exec(&cmds[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) exec(cmd *gfxil.Inst) error {
	switch cmd.Op {
	case gfxil.SetTex:
		arg := cmd.Arg.(gfxil.SetTexArg)
		r.texBindings[arg.TexNo] = arg.Obj
	case gfxil.FreeTex:
		arg := cmd.Arg.(gfxil.FreeTexArg)
		r.texBindings[arg.TexNo] = -1
	case gfxil.BeginRend:
		arg := cmd.Arg.(gfxil.BeginRendArg)
		r.rendTgt = arg.RendTgt
	case gfxil.EndRend:
		arg := cmd.Arg.(gfxil.EndRendArg)
		if arg.RendTgt != r.rendTgt {
			return curated.Raise(curated.Integrity, "END_REND target does not match BEGIN_REND",
				curated.Attr("bound", r.rendTgt),
				curated.Attr("ended", arg.RendTgt),
			)
		}
		r.rendTgt = -1
		r.Frames++
	case gfxil.Clear:
		arg := cmd.Arg.(gfxil.ClearArg)
		r.clear(arg)
	case gfxil.SetBlendEnable, gfxil.SetRendParam, gfxil.SetClipRange,
		gfxil.BeginDepthSort, gfxil.EndDepthSort:
		// state only; nothing to do without a rasteriser
	case gfxil.DrawArray:
		arg := cmd.Arg.(gfxil.DrawArrayArg)
		r.Draws++
		r.Verts += len(arg.Verts) / gfxil.VertLen
	case gfxil.WriteObj:
		arg := cmd.Arg.(gfxil.WriteObjArg)
		return r.pool.Write(arg.Obj, arg.Dat)
	case gfxil.ReadObj:
		arg := cmd.Arg.(gfxil.ReadObjArg)
		return r.pool.Read(arg.Obj, arg.Dat)
	case gfxil.InitObj:
		arg := cmd.Arg.(gfxil.InitObjArg)
		return r.pool.Init(arg.Obj, arg.NBytes)
	case gfxil.PostFramebuffer:
		arg := cmd.Arg.(gfxil.PostFramebufferArg)
		if r.present != nil {
			r.present(arg, r.pool.Get(arg.Obj).Dat())
		}
	case gfxil.BindRenderTarget:
		arg := cmd.Arg.(gfxil.BindRenderTargetArg)
		o := r.pool.Get(arg.Obj)
		o.SetState(obj.StateTex)
	default:
		return curated.Raise(curated.Unimplemented, "gfx-il opcode",
			curated.Attr("opcode", cmd.Op.String()))
	}
	return nil
}

// clear fills the bound render target with the background colour, if the
// target has backing the right shape for RGBA8888.
func (r *Renderer) clear(arg gfxil.ClearArg) {
	if r.rendTgt < 0 {
		return
	}

	o := r.pool.Get(r.rendTgt)
	dat := o.Dat()

	var px [4]byte
	for i := 0; i < 4; i++ {
		c := arg.BgColor[i]
		if c < 0 {
			c = 0
		} else if c > 1 {
			c = 1
		}
		px[i] = byte(c * 255)
	}

	for i := 0; i+4 <= len(dat); i += 4 {
		copy(dat[i:], px[:])
	}
}
