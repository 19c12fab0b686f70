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
	"github.com/washingtondc-emu/washingtondc/hardware/memory/mmio"
)

// the PVR2 core register addresses.
const (
	regsFirst uint32 = 0x005f8000
	regsLast  uint32 = 0x005f9fff

	regID            uint32 = 0x005f8000
	regRevision      uint32 = 0x005f8004
	regSoftReset     uint32 = 0x005f8008
	regStartRender   uint32 = 0x005f8014
	regTestSelect    uint32 = 0x005f8018
	regParamBase     uint32 = 0x005f8020
	regRegionBase    uint32 = 0x005f802c
	regSpanSortCfg   uint32 = 0x005f8030
	regVOBorderCol   uint32 = 0x005f8040
	regFBRCtrl       uint32 = 0x005f8044
	regFBWCtrl       uint32 = 0x005f8048
	regFBWLinestride uint32 = 0x005f804c
	regFBRSOF1       uint32 = 0x005f8050
	regFBRSOF2       uint32 = 0x005f8054
	regFBRSize       uint32 = 0x005f805c
	regFBWSOF1       uint32 = 0x005f8060
	regFBWSOF2       uint32 = 0x005f8064
	regFBXClip       uint32 = 0x005f8068
	regFBYClip       uint32 = 0x005f806c
	regFPUShadScale  uint32 = 0x005f8074
	regFPUCullVal    uint32 = 0x005f8078
	regFPUParamCfg   uint32 = 0x005f807c
	regHalfOffset    uint32 = 0x005f8080
	regFPUPerpVal    uint32 = 0x005f8084
	regISPBackgndD   uint32 = 0x005f8088
	regISPBackgndT   uint32 = 0x005f808c
	regISPFeedCfg    uint32 = 0x005f8098
	regSDRAMRefresh  uint32 = 0x005f80a0
	regSDRAMArbCfg   uint32 = 0x005f80a4
	regSDRAMCfg      uint32 = 0x005f80a8
	regFogCol        uint32 = 0x005f80b0
	regFogColVert    uint32 = 0x005f80b4
	regFogDensity    uint32 = 0x005f80b8
	regFogClampMax   uint32 = 0x005f80bc
	regFogClampMin   uint32 = 0x005f80c0
	regSPGTriggerPos uint32 = 0x005f80c4
	regSPGHBlankInt  uint32 = 0x005f80c8
	regSPGVBlankInt  uint32 = 0x005f80cc
	regSPGControl    uint32 = 0x005f80d0
	regSPGHBlank     uint32 = 0x005f80d4
	regSPGLoad       uint32 = 0x005f80d8
	regSPGVBlank     uint32 = 0x005f80dc
	regSPGWidth      uint32 = 0x005f80e0
	regTextControl   uint32 = 0x005f80e4
	regVOControl     uint32 = 0x005f80e8
	regVOStartX      uint32 = 0x005f80ec
	regVOStartY      uint32 = 0x005f80f0
	regScalerCtl     uint32 = 0x005f80f4
	regPalRamCtrl    uint32 = 0x005f8108
	regSPGStatus     uint32 = 0x005f810c
	regFBBurstCtrl   uint32 = 0x005f8110
	regYCoeff        uint32 = 0x005f8118
	regPTAlphaRef    uint32 = 0x005f811c
	regTAOLBase      uint32 = 0x005f8124
	regTAVertbufStart uint32 = 0x005f8128
	regTAOLLimit      uint32 = 0x005f812c
	regTAVertbufLimit uint32 = 0x005f8130
	regTANextOPB      uint32 = 0x005f8134
	regTAVertbufPos   uint32 = 0x005f8138
	regTAGlobTileClip uint32 = 0x005f813c
	regTAAllocCtrl    uint32 = 0x005f8140
	regTAListInit     uint32 = 0x005f8144
	regTAYUVTexBase   uint32 = 0x005f8148
	regTAYUVTexCtrl   uint32 = 0x005f814c
	regTAYUVTexCnt    uint32 = 0x005f8150
	regTAListCont     uint32 = 0x005f8160
	regTANextOPBInit  uint32 = 0x005f8164

	regFogTableFirst uint32 = 0x005f8200
	regFogTableLast  uint32 = 0x005f83fc

	regPaletteFirst uint32 = 0x005f9000
	regPaletteLast  uint32 = 0x005f9ffc
)

// the hardware's identity registers.
const (
	pvr2IDValue       uint32 = 0x17fd11db
	pvr2RevisionValue uint32 = 0x00000011
)

// reg reads a register's backing word directly.
func (pvr2 *PVR2) reg(addr uint32) uint32 {
	return pvr2.regs.Peek(addr)
}

func (pvr2 *PVR2) buildRegs() {
	r := mmio.NewRegion("pvr2 core regs", regsFirst, regsLast)
	pvr2.regs = r

	r.Cell("ID", regID,
		func(r *mmio.Region, idx int) (uint32, error) {
			return pvr2IDValue, nil
		}, nil)
	r.Cell("REVISION", regRevision,
		func(r *mmio.Region, idx int) (uint32, error) {
			return pvr2RevisionValue, nil
		}, nil)

	r.WarnCell("SOFTRESET", regSoftReset)

	r.Cell("STARTRENDER", regStartRender, nil,
		func(r *mmio.Region, idx int, val uint32) error {
			return pvr2.startRender()
		})

	// registers faithfully modelled by their backing word alone
	for _, c := range []struct {
		name string
		addr uint32
	}{
		{"PARAM_BASE", regParamBase},
		{"REGION_BASE", regRegionBase},
		{"SPAN_SORT_CFG", regSpanSortCfg},
		{"VO_BORDER_COL", regVOBorderCol},
		{"FB_W_CTRL", regFBWCtrl},
		{"FB_W_LINESTRIDE", regFBWLinestride},
		{"FB_R_SOF1", regFBRSOF1},
		{"FB_R_SOF2", regFBRSOF2},
		{"FB_R_SIZE", regFBRSize},
		{"FB_W_SOF1", regFBWSOF1},
		{"FB_W_SOF2", regFBWSOF2},
		{"FB_X_CLIP", regFBXClip},
		{"FB_Y_CLIP", regFBYClip},
		{"FPU_SHAD_SCALE", regFPUShadScale},
		{"FPU_CULL_VAL", regFPUCullVal},
		{"FPU_PARAM_CFG", regFPUParamCfg},
		{"HALF_OFFSET", regHalfOffset},
		{"FPU_PERP_VAL", regFPUPerpVal},
		{"ISP_BACKGND_D", regISPBackgndD},
		{"ISP_BACKGND_T", regISPBackgndT},
		{"ISP_FEED_CFG", regISPFeedCfg},
		{"SDRAM_REFRESH", regSDRAMRefresh},
		{"SDRAM_ARB_CFG", regSDRAMArbCfg},
		{"SDRAM_CFG", regSDRAMCfg},
		{"FOG_COL_RAM", regFogCol},
		{"FOG_COL_VERT", regFogColVert},
		{"FOG_DENSITY", regFogDensity},
		{"FOG_CLAMP_MAX", regFogClampMax},
		{"FOG_CLAMP_MIN", regFogClampMin},
		{"SPG_TRIGGER_POS", regSPGTriggerPos},
		{"SPG_CONTROL", regSPGControl},
		{"SPG_HBLANK", regSPGHBlank},
		{"SPG_VBLANK", regSPGVBlank},
		{"SPG_WIDTH", regSPGWidth},
		{"TEXT_CONTROL", regTextControl},
		{"VO_CONTROL", regVOControl},
		{"VO_STARTX", regVOStartX},
		{"VO_STARTY", regVOStartY},
		{"SCALER_CTL", regScalerCtl},
		{"PAL_RAM_CTRL", regPalRamCtrl},
		{"FB_BURSTCTRL", regFBBurstCtrl},
		{"Y_COEFF", regYCoeff},
		{"TEST_SELECT", regTestSelect},
		{"TA_OL_BASE", regTAOLBase},
		{"TA_VERTBUF_START", regTAVertbufStart},
		{"TA_OL_LIMIT", regTAOLLimit},
		{"TA_VERTBUF_LIMIT", regTAVertbufLimit},
		{"TA_GLOB_TILE_CLIP", regTAGlobTileClip},
		{"TA_ALLOC_CTRL", regTAAllocCtrl},
		{"TA_YUV_TEX_BASE", regTAYUVTexBase},
		{"TA_YUV_TEX_CTRL", regTAYUVTexCtrl},
		{"TA_YUV_TEX_CNT", regTAYUVTexCnt},
		{"TA_NEXT_OPB_INIT", regTANextOPBInit},
	} {
		r.SilentCell(c.name, c.addr)
	}

	r.Cell("PT_ALPHA_REF", regPTAlphaRef, mmio.BackingRead,
		func(r *mmio.Region, idx int, val uint32) error {
			r.SetBacking(idx, val)
			pvr2.core.ptAlphaRef = val
			return nil
		})

	// FB_R_CTRL carries the pixel-clock divisor for the SPG
	r.Cell("FB_R_CTRL", regFBRCtrl, mmio.BackingRead,
		func(r *mmio.Region, idx int, val uint32) error {
			r.SetBacking(idx, val)
			if val&(1<<23) != 0 {
				pvr2.spg.setPclkDiv(1)
			} else {
				pvr2.spg.setPclkDiv(2)
			}
			return nil
		})

	// any write to the SPG timing registers re-times the raster events
	spgWrite := func(r *mmio.Region, idx int, val uint32) error {
		r.SetBacking(idx, val)
		pvr2.spg.retime()
		return nil
	}
	r.Cell("SPG_HBLANK_INT", regSPGHBlankInt, mmio.BackingRead, spgWrite)
	r.Cell("SPG_VBLANK_INT", regSPGVBlankInt, mmio.BackingRead, spgWrite)
	r.Cell("SPG_LOAD", regSPGLoad, mmio.BackingRead, spgWrite)

	r.Cell("SPG_STATUS", regSPGStatus,
		func(r *mmio.Region, idx int) (uint32, error) {
			return pvr2.spg.status(), nil
		}, nil)

	r.Cell("TA_NEXT_OPB", regTANextOPB, mmio.BackingRead, mmio.BackingWrite)

	r.Cell("TA_VERTBUF_POS", regTAVertbufPos,
		func(r *mmio.Region, idx int) (uint32, error) {
			return r.Backing(idx), nil
		},
		func(r *mmio.Region, idx int, val uint32) error {
			r.SetBacking(idx, val)
			return nil
		})

	r.Cell("TA_LIST_INIT", regTAListInit, mmio.BackingRead,
		func(r *mmio.Region, idx int, val uint32) error {
			if val&0x80000000 != 0 {
				pvr2.ta.listInit()
			}
			return nil
		})

	r.Cell("TA_LIST_CONT", regTAListCont, mmio.BackingRead,
		func(r *mmio.Region, idx int, val uint32) error {
			if val&0x80000000 != 0 {
				pvr2.ta.listCont()
			}
			return nil
		})

	// the fog table and palette RAM are plain backing words
	for addr := regFogTableFirst; addr <= regFogTableLast; addr += 4 {
		r.SilentCell("FOG_TABLE", addr)
	}
	for addr := regPaletteFirst; addr <= regPaletteLast; addr += 4 {
		r.SilentCell("PALETTE_RAM", addr)
	}

	// power-on defaults observed on hardware
	r.SetBacking(r.Idx(regSPGHBlankInt), 0x31d<<16)
	r.SetBacking(r.Idx(regSPGVBlankInt), 0x00150104)
	r.SetBacking(r.Idx(regSPGLoad), (0x106<<16)|0x359)
}
