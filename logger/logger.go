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

// Package logger is the central log for the emulator. Log entries are pairs
// of a tag, identifying the subsystem that created the entry, and a detail
// string. Entries accumulate in memory and can be dumped with Write() or
// Tail(); SetEcho() mirrors new entries to a writer as they arrive.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

type entry struct {
	tag    string
	detail string
}

type logger struct {
	crit sync.Mutex

	entries []entry

	// write new entries to the echo writer as they arrive
	echo io.Writer
}

// the central logger instance. it is process-wide state shared by the
// emulation goroutine and the debugger goroutine, so everything goes through
// the mutex.
var central = &logger{}

// Log adds a new entry to the central logger. multi-line details are split
// into one entry per line.
func Log(tag, detail string) {
	central.crit.Lock()
	defer central.crit.Unlock()

	for _, d := range strings.Split(detail, "\n") {
		if d == "" {
			continue
		}
		e := entry{tag: tag, detail: d}
		central.entries = append(central.entries, e)
		if central.echo != nil {
			fmt.Fprintf(central.echo, "%s: %s\n", e.tag, e.detail)
		}
	}
}

// Logf adds a new formatted entry to the central logger.
func Logf(tag, detail string, args ...interface{}) {
	Log(tag, fmt.Sprintf(detail, args...))
}

// Write the entire contents of the central logger to the io.Writer.
func Write(output io.Writer) {
	central.crit.Lock()
	defer central.crit.Unlock()

	for _, e := range central.entries {
		fmt.Fprintf(output, "%s: %s\n", e.tag, e.detail)
	}
}

// Tail writes the last number of entries to the io.Writer.
func Tail(output io.Writer, number int) {
	central.crit.Lock()
	defer central.crit.Unlock()

	if number > len(central.entries) {
		number = len(central.entries)
	}

	for _, e := range central.entries[len(central.entries)-number:] {
		fmt.Fprintf(output, "%s: %s\n", e.tag, e.detail)
	}
}

// SetEcho prints new entries to the io.Writer as they arrive. a nil writer
// turns echoing off.
func SetEcho(output io.Writer) {
	central.crit.Lock()
	defer central.crit.Unlock()

	central.echo = output
}

// Clear all entries from the central logger.
func Clear() {
	central.crit.Lock()
	defer central.crit.Unlock()

	central.entries = central.entries[:0]
}
