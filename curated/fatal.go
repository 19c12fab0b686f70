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

import (
	"fmt"
	"io"
	"os"
)

// functions registered with OnFatal. run in registration order just before
// the process aborts, giving subsystems a chance to dump state (the SH4
// register dump being the canonical example).
var fatalCallbacks []func(io.Writer)

// the active fatal handler. nil means abort the process.
var fatalHandler func(error) bool

// OnFatal registers a callback to be run by Fatal() before the process
// aborts. callbacks receive the writer the error report was written to.
func OnFatal(f func(io.Writer)) {
	fatalCallbacks = append(fatalCallbacks, f)
}

// SetFatalHandler installs an interceptor for Fatal(). if the handler returns
// true the process is not aborted and Fatal() returns to the caller. the
// debugger uses this to regain control when the emulation core fails.
// a nil handler restores the default abort behaviour.
func SetFatalHandler(f func(error) bool) {
	fatalHandler = f
}

// Report writes the standard fatal-error report for err: the headline
// "ERROR: <kind>", a "[message]" line with the error text, then one line per
// attribute.
func Report(w io.Writer, err error) {
	kind := KindOf(err)
	if kind == "" {
		kind = err.Error()
	}
	fmt.Fprintf(w, "ERROR: %s\n", kind)
	fmt.Fprintf(w, "[message] = %v\n", err)
	for _, a := range Attributes(err) {
		fmt.Fprintln(w, a.String())
	}
}

// Fatal reports err and aborts the process, running every OnFatal callback
// first. if a fatal handler is installed and it claims the error, Fatal
// returns instead.
func Fatal(err error) {
	if fatalHandler != nil && fatalHandler(err) {
		return
	}

	Report(os.Stderr, err)
	for _, f := range fatalCallbacks {
		f(os.Stderr)
	}
	os.Exit(1)
}
