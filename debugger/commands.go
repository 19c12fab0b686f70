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

package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/washingtondc-emu/washingtondc/debugger/govern"
	"github.com/washingtondc-emu/washingtondc/debugger/terminal"
	"github.com/washingtondc-emu/washingtondc/hardware/sh4"
)

// Loop reads and services front-end commands until the user quits or
// detaches. intended to run on its own goroutine while the emulation
// thread runs the console.
func (dbg *Debugger) Loop(term terminal.Terminal, quit func()) {
	defer term.Cleanup()

	for {
		line, err := term.ReadLine("(washdbg) ")
		if err != nil {
			quit()
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help", "?":
			term.Print("break <addr>     arm a breakpoint")
			term.Print("delete <addr>    disarm a breakpoint")
			term.Print("bplist           list breakpoints")
			term.Print("step             execute one instruction")
			term.Print("continue, c      resume the emulation")
			term.Print("stop             break at the next instruction")
			term.Print("regs             print the register file")
			term.Print("x <addr> [n]     read n words of memory")
			term.Print("set <addr> <v>   write one word of memory")
			term.Print("detach           remove the debugger and run free")
			term.Print("quit             end the emulation")

		case "break":
			if addr, ok := parseAddr(term, fields, 1); ok {
				dbg.SetBreakpoint(addr)
				term.Print(fmt.Sprintf("breakpoint at %08x", addr))
			}

		case "delete":
			if addr, ok := parseAddr(term, fields, 1); ok {
				dbg.ClearBreakpoint(addr)
			}

		case "bplist":
			for _, addr := range dbg.Breakpoints() {
				term.Print(fmt.Sprintf("%08x", addr))
			}

		case "step", "s":
			dbg.Post(govern.RequestSingleStep)

		case "continue", "c":
			dbg.Post(govern.RequestContinue)

		case "stop":
			dbg.Post(govern.RequestBreak)

		case "regs":
			term.Print(dbg.dc.SH4.String())

		case "x":
			addr, ok := parseAddr(term, fields, 1)
			if !ok {
				break
			}
			count := uint32(1)
			if len(fields) > 2 {
				if n, err := strconv.ParseUint(fields[2], 0, 32); err == nil {
					count = uint32(n)
				}
			}
			for i := uint32(0); i < count; i++ {
				a := addr + i*4
				if v, ok := dbg.Peek(a); ok {
					term.Print(fmt.Sprintf("%08x: %08x", a, v))
				} else {
					term.Print(fmt.Sprintf("%08x: <unmapped>", a))
				}
			}

		case "set":
			addr, ok := parseAddr(term, fields, 1)
			if !ok {
				break
			}
			val, ok := parseAddr(term, fields, 2)
			if !ok {
				break
			}
			if !dbg.Poke(addr, val) {
				term.Print("write failed")
			}

		case "pc":
			term.Print(fmt.Sprintf("%08x", dbg.dc.SH4.Reg(sh4.PC)))

		case "detach":
			dbg.Post(govern.RequestDetach)
			dbg.Post(govern.RequestContinue)
			return

		case "quit", "q":
			quit()
			// release the emulation thread so it can observe the quit
			dbg.Post(govern.RequestContinue)
			return

		default:
			term.Print(fmt.Sprintf("unrecognised command %q; try help", fields[0]))
		}
	}
}

func parseAddr(term terminal.Terminal, fields []string, idx int) (uint32, bool) {
	if len(fields) <= idx {
		term.Print("missing argument")
		return 0, false
	}
	v, err := strconv.ParseUint(fields[idx], 0, 32)
	if err != nil {
		term.Print(fmt.Sprintf("bad address %q", fields[idx]))
		return 0, false
	}
	return uint32(v), true
}
