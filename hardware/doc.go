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

// Package hardware is the base package for the Dreamcast emulation. It and
// its sub-packages contain everything required for a headless emulation.
//
// The Dreamcast type is the root of the emulation and contains external
// references to all the console's sub-systems. From here, the emulation can
// either be run continuously (with an optional callback to check for
// continuation) or advanced one scheduler slice at a time.
package hardware
