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

// Package obj is the graphics-object pool: stable integer handles for the
// textures and render targets that cross the boundary between the PVR2 core
// and the rendering back-end.
//
// The emulation side allocates and frees handles; the back-end stores data
// against them. Neither side passes pointers across the boundary, only
// handles, so the back-end is free to keep an object in host memory, in GPU
// memory, or both.
package obj

import (
	"github.com/washingtondc-emu/washingtondc/curated"
)

// Count is the fixed size of the pool.
const Count = 768

// State describes where an object's authoritative data currently lives.
type State int

const (
	// StateInvalid objects are free for allocation
	StateInvalid State = iota

	// StateDat objects have their data in the pool's host-side buffer
	StateDat

	// StateTex objects live in back-end (GPU) storage; the host-side
	// buffer may be stale
	StateTex
)

// ReadHook intercepts Read for objects whose data is generated on demand.
type ReadHook func(o *Object, dat []byte) error

// WriteHook intercepts Write.
type WriteHook func(o *Object, dat []byte) error

// Object is one slot in the pool.
type Object struct {
	state   State
	dat     []byte
	datLen  int
	onRead  ReadHook
	onWrite WriteHook

	// Arg is an opaque value for the hooks
	Arg interface{}

	inUse bool
}

// State returns the object's current state.
func (o *Object) State() State {
	return o.state
}

// SetState records where the object's authoritative data lives.
func (o *Object) SetState(s State) {
	o.state = s
}

// Len returns the object's established length in bytes.
func (o *Object) Len() int {
	return o.datLen
}

// Dat exposes the object's host-side buffer, allocating it on first use.
func (o *Object) Dat() []byte {
	if o.dat == nil {
		o.dat = make([]byte, o.datLen)
	}
	return o.dat
}

// SetHooks installs read/write interceptors for the object.
func (o *Object) SetHooks(onRead ReadHook, onWrite WriteHook) {
	o.onRead = onRead
	o.onWrite = onWrite
}

// Pool is the fixed array of objects. handles are indices into the array.
type Pool struct {
	objs [Count]Object
}

// NewPool is the preferred method of initialisation for the Pool type.
func NewPool() *Pool {
	return &Pool{}
}

// Alloc claims a free handle. allocation scans linearly; the pool is small
// and allocation is rare.
func (p *Pool) Alloc() (int, error) {
	for i := range p.objs {
		if !p.objs[i].inUse {
			p.objs[i].inUse = true
			return i, nil
		}
	}
	return -1, curated.Raise(curated.FailedAlloc, "gfx object pool exhausted")
}

// Free releases a handle and discards the object's data.
func (p *Pool) Free(handle int) {
	o := &p.objs[handle]
	o.inUse = false
	o.state = StateInvalid
	o.dat = nil
	o.datLen = 0
	o.onRead = nil
	o.onWrite = nil
	o.Arg = nil
}

// Get returns the object for a handle.
func (p *Pool) Get(handle int) *Object {
	return &p.objs[handle]
}

// Init establishes an object's length. initialising an object that already
// has a length is an integrity error: the object should have been freed
// first.
func (p *Pool) Init(handle int, nBytes int) error {
	o := &p.objs[handle]
	if o.datLen != 0 {
		return curated.Raise(curated.Integrity, "gfx object initialised twice",
			curated.Attr("handle", handle))
	}
	o.dat = nil
	o.datLen = nBytes
	o.state = StateDat
	return nil
}

// Write copies data into the object. the length must match the established
// length exactly.
func (p *Pool) Write(handle int, dat []byte) error {
	o := &p.objs[handle]
	if len(dat) != o.datLen {
		return curated.Raise(curated.Overflow, "gfx object write length mismatch",
			curated.Attr("handle", handle),
			curated.Attr("length", len(dat)),
			curated.Attr("expected length", o.datLen),
		)
	}

	if o.onWrite != nil {
		return o.onWrite(o, dat)
	}

	copy(o.Dat(), dat)
	o.state = StateDat
	return nil
}

// Read copies the object's data out. the length must match the established
// length exactly.
func (p *Pool) Read(handle int, dat []byte) error {
	o := &p.objs[handle]
	if len(dat) != o.datLen {
		return curated.Raise(curated.Overflow, "gfx object read length mismatch",
			curated.Attr("handle", handle),
			curated.Attr("length", len(dat)),
			curated.Attr("expected length", o.datLen),
		)
	}

	if o.onRead != nil {
		return o.onRead(o, dat)
	}

	copy(dat, o.Dat())
	return nil
}
