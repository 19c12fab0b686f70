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

// Package texcache tracks which guest textures have been handed to the
// rendering back-end. entries are keyed by everything that affects a
// texture's decoded appearance; a guest texture matching an entry is reused
// by texture number rather than re-uploaded.
package texcache

import (
	"github.com/washingtondc-emu/washingtondc/curated"
)

// Size is the number of texture slots. texture numbers are indices into the
// cache.
const Size = 512

// Key identifies a guest texture.
type Key struct {
	Addr       uint32
	PalStart   uint32
	WShift     int
	HShift     int
	Linestride uint32
	PixFmt     int
	Twiddled   bool
	VQ         bool
	Mipmap     bool
	StrideSel  bool
}

// Entry is one texture slot.
type Entry struct {
	Key   Key
	Obj   int
	Valid bool

	// stamp of the frame the entry was last used by. eviction picks the
	// least recently used slot
	LastUsed uint32
}

// Cache is the texture cache.
type Cache struct {
	entries [Size]Entry
}

// NewCache is the preferred method of initialisation for the Cache type.
func NewCache() *Cache {
	return &Cache{}
}

// Find looks the key up, refreshing the entry's use stamp on a hit. the
// returned texture number is only meaningful when ok is true.
func (c *Cache) Find(k Key, frameStamp uint32) (int, bool) {
	for i := range c.entries {
		if c.entries[i].Valid && c.entries[i].Key == k {
			c.entries[i].LastUsed = frameStamp
			return i, true
		}
	}
	return -1, false
}

// Insert claims a slot for the key, evicting the least recently used valid
// entry if the cache is full. the caller is told which object handle was
// evicted (or -1) so it can emit FREE_TEX and release the handle.
func (c *Cache) Insert(k Key, objHandle int, frameStamp uint32) (texNo int, evictedObj int, err error) {
	// first choice: an invalid slot
	slot := -1
	for i := range c.entries {
		if !c.entries[i].Valid {
			slot = i
			break
		}
	}

	evictedObj = -1
	if slot == -1 {
		// evict the least recently used entry
		oldest := uint32(0)
		for i := range c.entries {
			if slot == -1 || c.entries[i].LastUsed < oldest {
				slot = i
				oldest = c.entries[i].LastUsed
			}
		}
		if slot == -1 {
			return -1, -1, curated.Raise(curated.FailedAlloc, "texture cache full")
		}
		evictedObj = c.entries[slot].Obj
	}

	c.entries[slot] = Entry{
		Key:      k,
		Obj:      objHandle,
		Valid:    true,
		LastUsed: frameStamp,
	}

	return slot, evictedObj, nil
}

// Entry returns the slot for a texture number.
func (c *Cache) Entry(texNo int) *Entry {
	return &c.entries[texNo]
}

// InvalidateRange invalidates every entry whose texture data overlaps the
// VRAM range. returns the object handles released so the caller can emit
// FREE_TEX for each.
func (c *Cache) InvalidateRange(first uint32, last uint32) []int {
	var freed []int
	for i := range c.entries {
		if !c.entries[i].Valid {
			continue
		}
		e := &c.entries[i]
		texLen := uint32((1 << e.Key.WShift) * (1 << e.Key.HShift) * 2)
		if e.Key.Addr <= last && e.Key.Addr+texLen-1 >= first {
			freed = append(freed, e.Obj)
			e.Valid = false
		}
	}
	return freed
}
