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

package sh4

// PageSize enumerates the four page sizes a TLB entry can map.
type PageSize int

const (
	Page1KB PageSize = iota
	Page4KB
	Page64KB
	Page1MB
)

// shift returns the number of offset bits within a page of this size.
func (sz PageSize) shift() uint {
	switch sz {
	case Page1KB:
		return 10
	case Page4KB:
		return 12
	case Page64KB:
		return 16
	}
	return 20
}

// UTLBEnt is one entry of the unified TLB.
type UTLBEnt struct {
	ASID uint8

	// virtual page number, bits 31-10 of the virtual address
	VPN uint32

	// physical page number, bits 28-10 of the physical address
	PPN uint32

	// bit 0: writable. bit 1: user-mode accessible
	Protection uint8

	Size PageSize

	Valid        bool
	Shared       bool
	Cacheable    bool
	Dirty        bool
	WriteThrough bool

	// timing control. carried but never consulted
	TC bool
}

// ITLBEnt is one entry of the instruction TLB.
type ITLBEnt struct {
	ASID uint8
	VPN  uint32
	PPN  uint32

	// bit 0: user-mode accessible
	Protection uint8

	Size PageSize

	Valid     bool
	Shared    bool
	Cacheable bool
	TC        bool
}

// sizes of the two TLBs.
const (
	UTLBLen = 64
	ITLBLen = 4
)

// TLB is the SH4's address-translation state.
type TLB struct {
	UTLB [UTLBLen]UTLBEnt
	ITLB [ITLBLen]ITLBEnt
}

// translation outcomes.
type translateResult int

const (
	translateSuccess translateResult = iota
	translateMiss
	translateMultHit
)

// utlbTranslate looks the virtual address up in the unified TLB. asid is
// the current PTEH ASID; entries marked shared match any ASID.
func (tlb *TLB) utlbTranslate(vaddr uint32, asid uint8) (uint32, translateResult) {
	found := -1

	for i := range tlb.UTLB {
		ent := &tlb.UTLB[i]
		if !ent.Valid {
			continue
		}
		if !ent.Shared && ent.ASID != asid {
			continue
		}

		shift := ent.Size.shift()
		if (vaddr >> shift) != ((ent.VPN << 10) >> shift) {
			continue
		}

		if found >= 0 {
			return 0, translateMultHit
		}
		found = i
	}

	if found < 0 {
		return 0, translateMiss
	}

	ent := &tlb.UTLB[found]
	shift := ent.Size.shift()
	pageMask := uint32(1)<<shift - 1
	paddr := ((ent.PPN << 10) &^ pageMask) | (vaddr & pageMask)

	return paddr, translateSuccess
}
