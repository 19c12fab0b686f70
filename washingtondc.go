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

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/bradleyjkemp/memviz"

	"github.com/washingtondc-emu/washingtondc/config"
	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/debugger"
	"github.com/washingtondc-emu/washingtondc/debugger/terminal"
	"github.com/washingtondc-emu/washingtondc/debugger/terminal/colorterm"
	"github.com/washingtondc-emu/washingtondc/debugger/terminal/plainterm"
	"github.com/washingtondc-emu/washingtondc/gfx/headless"
	"github.com/washingtondc-emu/washingtondc/gfx/obj"
	"github.com/washingtondc-emu/washingtondc/gui/sdlwash"
	"github.com/washingtondc-emu/washingtondc/hardware"
	"github.com/washingtondc-emu/washingtondc/hardware/aica"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/bus"
	"github.com/washingtondc-emu/washingtondc/hardware/memory/trace"
	"github.com/washingtondc-emu/washingtondc/hardware/sh4"
	"github.com/washingtondc-emu/washingtondc/logger"
	"github.com/washingtondc-emu/washingtondc/performance"
	"github.com/washingtondc-emu/washingtondc/serial"
)

// the boot modes selected by the command line.
const (
	bootFirmware = iota
	bootDirect
	bootDirectNoIPBin
)

// load addresses for the direct boot modes, as system-RAM offsets and the
// entry points that go with them.
const (
	syscallLoadOffset = 0x0
	ipBinLoadOffset   = 0x8000
	firstReadOffset   = 0x10000

	ipBinEntryPoint     = 0xac008300
	firstReadEntryPoint = 0xac010000
)

func run() int {
	biosPath := flag.String("b", "", "path to the boot ROM image")
	flashPath := flag.String("f", "", "path to the flash image")
	mountPath := flag.String("m", "", "path to a GD-ROM image to mount")
	directPath := flag.String("d", "", "direct-boot: path to IP.BIN")
	skipIPBinPath := flag.String("u", "", "direct-boot: skip IP.BIN and run this 1ST_READ.BIN")
	syscallPath := flag.String("s", "", "path to a syscall image")
	gdbStub := flag.Bool("g", false, "enable the GDB remote stub")
	washDbg := flag.Bool("w", false, "enable the WashDbg debugger")
	serialTCP := flag.Bool("t", false, "serve the serial port over TCP")
	useJit := flag.Bool("j", false, "select the JIT")
	useNativeJit := flag.Bool("x", false, "select the native JIT")
	useInterp := flag.Bool("p", false, "select the interpreter")
	noMemJit := flag.Bool("n", false, "disable inline memory access in the JIT")
	logStdout := flag.Bool("l", false, "echo the log to stdout")
	verbose := flag.Bool("v", false, "verbose logging")
	headlessMode := flag.Bool("headless", false, "run without a window")
	tracePath := flag.String("trace", "", "capture AICA wave memory writes to this file")
	statsAddr := flag.String("stats", "", "serve live runtime statistics on this address")
	memvizPath := flag.String("memviz", "", "dump the console state graph to this file and exit")
	flag.Parse()

	if *logStdout || *verbose {
		logger.SetEcho(os.Stdout)
	}

	// the interpreter is the only execution engine in this build
	if *useJit || *useNativeJit || *noMemJit {
		logger.Log("main", "JIT execution is not available; using the interpreter")
	}
	_ = useInterp

	if *gdbStub {
		fmt.Fprintln(os.Stderr, "the GDB remote stub is not available in this build; try -w")
		return 1
	}

	// the configuration file is looked for in the working directory
	var cfg *config.File
	if f, err := os.Open(config.FileName); err == nil {
		logger.Logf("main", "parsing configuration file %s", config.FileName)
		cfg, err = config.Parse(f)
		f.Close()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	} else {
		logger.Logf("main", "unable to open %s; does it even exist?", config.FileName)
		cfg = config.NewFile()
	}

	// the object pool is shared between the emulation and the renderer
	pool := obj.NewPool()

	// choose the rendering back-end
	var window *sdlwash.Window
	var dc *hardware.Dreamcast
	var err error

	if *headlessMode {
		dc, err = hardware.NewDreamcast(headless.NewRenderer(pool), pool)
	} else {
		window, err = sdlwash.NewWindow(pool)
		if err == nil {
			dc, err = hardware.NewDreamcast(window, pool)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *memvizPath != "" {
		f, err := os.Create(*memvizPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		memviz.Map(f, dc)
		f.Close()
		return 0
	}

	if *tracePath != "" {
		f, err := os.Create(*tracePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		dc.Mem.WrapRegion("aica wave ram", func(intf bus.Interface) bus.Interface {
			return trace.NewProxy(intf, f)
		})
	}

	// mount images and load host files
	bootMode := bootFirmware

	if *biosPath != "" {
		if err := dc.BootROM.Load(*biosPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if *flashPath != "" {
		if err := dc.Flash.Load(*flashPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if *mountPath != "" {
		// disc parsing is handled by an external collaborator; nothing in
		// this build consumes the image yet
		logger.Logf("main", "GD-ROM image %s noted but disc access is not wired up", *mountPath)
	}
	if *syscallPath != "" {
		if err := loadRAM(dc, *syscallPath, syscallLoadOffset); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if *directPath != "" {
		bootMode = bootDirect
		if err := loadRAM(dc, *directPath, ipBinLoadOffset); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if *skipIPBinPath != "" {
		bootMode = bootDirectNoIPBin
		if err := loadRAM(dc, *skipIPBinPath, firstReadOffset); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	switch bootMode {
	case bootDirect:
		_ = dc.SH4.SetReg(sh4.PC, ipBinEntryPoint)
	case bootDirectNoIPBin:
		_ = dc.SH4.SetReg(sh4.PC, firstReadEntryPoint)
	}

	// optional AICA WAV capture
	var wavDump string
	if v, ok := cfg.GetString("aica.wavdump"); ok {
		wavDump = v
		dc.AICA.SetCapture(aica.NewRecorder())
	}

	if *statsAddr != "" {
		stop := performance.StartMonitor(*statsAddr)
		defer stop()
	}

	var serialServer *serial.Server
	if *serialTCP {
		serialServer, err = serial.NewServer(dc.SH4, "localhost:1998")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer serialServer.Close()
	}

	// ctrl-c stops the emulation cleanly
	var stop atomic.Bool
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)
	go func() {
		<-intChan
		stop.Store(true)
	}()

	// the debugger front-end runs on its own goroutine
	if *washDbg {
		dbg := debugger.NewDebugger(dc)
		var term terminal.Terminal
		if ct, err := colorterm.NewColorTerminal(); err == nil {
			term = ct
		} else {
			term = plainterm.NewPlainTerminal()
		}
		go dbg.Loop(term, func() { stop.Store(true) })
	}

	check := func() bool {
		if stop.Load() {
			return false
		}
		if serialServer != nil {
			serialServer.Poll()
		}
		if window != nil {
			return window.Service()
		}
		return true
	}

	exitVal := 0
	if err := dc.Run(check); err != nil {
		curated.Fatal(err)
		exitVal = 1
	}

	// write mutable state back to the host
	if *flashPath != "" {
		if err := dc.Flash.Save(*flashPath); err != nil {
			logger.Logf("main", "failed to save flash: %v", err)
		}
	}
	if wavDump != "" {
		if rec := dc.AICA.Capture(); rec != nil {
			if err := rec.Save(wavDump); err != nil {
				logger.Logf("main", "failed to save wav dump: %v", err)
			}
		}
	}

	if window != nil {
		window.Destroy()
	}

	return exitVal
}

// loadRAM copies a host file into system RAM at the offset.
func loadRAM(dc *hardware.Dreamcast, path string, offset uint32) error {
	d, err := os.ReadFile(path)
	if err != nil {
		return curated.Errorf(curated.FileIO, err)
	}
	copy(dc.SysRAM.Data[offset:], d)
	return nil
}

func main() {
	os.Exit(run())
}
