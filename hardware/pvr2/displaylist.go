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

	"github.com/washingtondc-emu/washingtondc/gfx/gfxil"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// PolyType enumerates the five polygon groups of a display list, in the
// order the hardware renders them.
type PolyType int

const (
	PolyTypeOpaque PolyType = iota
	PolyTypeOpaqueMod
	PolyTypeTrans
	PolyTypeTransMod
	PolyTypePunchThrough

	PolyTypeCount
)

// MaxFramesInFlight bounds how many display lists are tracked at once. it
// is extremely unlikely that anybody would ever use more than two.
const MaxFramesInFlight = 4

// a list older than this at STARTRENDER suggests the key match found the
// wrong list.
const listStaleAge = 32

// lists older than this are invalidated when the age counter is rebased.
const listRollbackAgeLimit = 32 * 1024

// capacity of one polygon group.
const displayListMaxLen = 128 * 1024

// cmdType discriminates display-list commands.
type cmdType int

const (
	cmdHeader cmdType = iota
	cmdEndOfGroup
	cmdVertex
	cmdQuad
)

// cmdHeaderData carries the rendering parameters captured from a TA
// polygon or sprite header.
type cmdHeaderData struct {
	quadGeometry bool

	strideSel  bool
	texEnable  bool
	texTwiddle bool
	texVQ      bool
	texMipmap  bool

	texWidthShift  int
	texHeightShift int
	texWrapU       gfxil.TexWrap
	texWrapV       gfxil.TexWrap
	texInst        gfxil.TexInst
	texFilter      gfxil.TexFilter
	pixFmt         int
	texAddr        uint32
	texPalette     uint32

	srcBlend gfxil.BlendFactor
	dstBlend gfxil.BlendFactor

	depthWrite bool
	depthFunc  gfxil.DepthFunc
}

// cmdVertexData is one triangle-strip vertex.
type cmdVertexData struct {
	pos        [3]float32
	texCoord   [2]float32
	baseColor  [4]float32
	offsColor  [4]float32
	endOfStrip bool
}

// cmdQuadData is one sprite. the fourth texture coordinate is derived from
// the other three by vector addition.
type cmdQuadData struct {
	vertPos         [4][3]float32
	texCoordsPacked [3]uint32
	degenerate      bool
	baseColor       [4]float32
	offsColor       [4]float32
}

// displayListCmd is one captured command.
type displayListCmd struct {
	tp  cmdType
	hdr cmdHeaderData
	vtx cmdVertexData
	quad cmdQuadData
}

// displayListGroup is the command sequence for one polygon group.
type displayListGroup struct {
	valid bool
	cmds  []displayListCmd
}

// displayList is a captured frame of TA input, keyed by the TA_VERTBUF_POS
// value it was generated under.
type displayList struct {
	key        uint32
	ageCounter uint32
	valid      bool
	groups     [PolyTypeCount]displayListGroup
}

func (list *displayList) init() {
	list.valid = false
	for i := range list.groups {
		list.groups[i].valid = false
		list.groups[i].cmds = list.groups[i].cmds[:0]
	}
}

// allocCmd appends a command slot to a polygon group.
func (list *displayList) allocCmd(tp PolyType) *displayListCmd {
	group := &list.groups[tp]
	group.valid = true

	if len(group.cmds) >= displayListMaxLen {
		logger.Log("pvr2", "command capacity exceeded for display list")
		return nil
	}

	group.cmds = append(group.cmds, displayListCmd{})
	return &group.cmds[len(group.cmds)-1]
}

// listAge computes a list's age against the global counter.
func (c *core) listAge(list *displayList) uint32 {
	return c.dispListCounter - list.ageCounter
}

// incAgeCounter increments the global display-list counter. on overflow
// the counter is rolled back as far as possible: every valid list younger
// than the rollback limit has its age preserved relative to the oldest
// such list, and anything older is invalidated so that an ancient list
// can't pin the odometer.
func (c *core) incAgeCounter() {
	c.dispListCounter++
	if c.dispListCounter < math.MaxUint32 {
		return
	}

	oldest := uint32(math.MaxUint32)
	for i := range c.dispLists {
		list := &c.dispLists[i]
		if list.valid && list.ageCounter <= oldest && c.listAge(list) < listRollbackAgeLimit {
			oldest = list.ageCounter
		}
	}

	if oldest == math.MaxUint32 {
		// no list was young enough to keep
		for i := range c.dispLists {
			if c.dispLists[i].valid {
				logger.Logf("pvr2", "display list %08x being marked as invalid due to advanced age", c.dispLists[i].key)
				c.dispLists[i].valid = false
			}
		}
		c.dispListCounter = 0
		return
	}

	for i := range c.dispLists {
		list := &c.dispLists[i]
		if !list.valid {
			continue
		}
		if c.listAge(list) < listRollbackAgeLimit {
			list.ageCounter -= oldest
		} else {
			logger.Logf("pvr2", "display list %08x being marked as invalid due to advanced age", list.key)
			list.valid = false
		}
	}
	c.dispListCounter -= oldest
}
