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

// Package curated is the error mechanism used throughout the emulator.
//
// A curated error pairs a pattern string with the values to format it with.
// The pattern doubles as the error's identity: the Is() and Has() functions
// match on it, and the kind constants (Unimplemented, Integrity, etc.) are
// patterns recognised by the fatal-error reporter.
//
// Errors raised by the emulation core may carry typed attributes (named
// string/int/uint32 values) describing the failure site: the address of a
// bad access, the path of a missing file, the feature that was not
// implemented. Attributes unwind into the fatal report as one
// "[name] = value" line each.
//
// Hard failures bubble up the call chain as ordinary return values and reach
// Fatal() in the root loop. Fatal runs any registered state-dump callbacks
// and aborts, unless the debugger has installed a handler to reclaim
// control.
package curated
