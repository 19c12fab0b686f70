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

package curated

// the error kinds recognised by the emulator. every hard failure in the
// emulator core is one of these patterns, possibly wrapping a more detailed
// error. the kind decides the headline of the fatal-error report.
const (
	Unimplemented   = "unimplemented: %v"
	InvalidParam    = "invalid parameter: %v"
	MemOutOfBounds  = "memory out of bounds: %v"
	FailedAlloc     = "failed allocation: %v"
	FileIO          = "file error: %v"
	UnknownExcpCode = "unknown exception code: %v"
	Integrity       = "integrity: %v"
	InvalidFileLen  = "invalid file length: %v"
	Overflow        = "overflow: %v"
)

// kindNames maps a kind pattern to the name used in the fatal-error headline.
var kindNames = map[string]string{
	Unimplemented:   "Unimplemented",
	InvalidParam:    "InvalidParam",
	MemOutOfBounds:  "MemOutOfBounds",
	FailedAlloc:     "FailedAlloc",
	FileIO:          "FileIO",
	UnknownExcpCode: "UnknownExcpCode",
	Integrity:       "Integrity",
	InvalidFileLen:  "InvalidFileLen",
	Overflow:        "Overflow",
}

// KindOf returns the name of the error kind at the head of the error chain.
// The empty string is returned for errors that are not curated or whose
// pattern is not one of the kind constants.
func KindOf(err error) string {
	if err == nil {
		return ""
	}

	er, ok := err.(curated)
	if !ok {
		return ""
	}

	if n, ok := kindNames[er.pattern]; ok {
		return n
	}

	// the kind may be further down the chain
	for i := range er.values {
		if e, ok := er.values[i].(curated); ok {
			if n := KindOf(e); n != "" {
				return n
			}
		}
	}

	return ""
}
