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

// Package performance measures the emulator's throughput and optionally
// serves live runtime statistics over HTTP.
package performance

import (
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/washingtondc-emu/washingtondc/logger"
)

// StartMonitor launches the live statistics server. the returned function
// stops it.
func StartMonitor(addr string) func() {
	viewer.SetConfiguration(viewer.WithAddr(addr))

	mgr := statsview.New()
	go func() {
		// Start blocks until Stop is called
		_ = mgr.Start()
	}()

	logger.Logf("performance", "monitoring on http://%s/debug/statsview", addr)

	return mgr.Stop
}

// FPS measures how often the guest completes a frame, smoothed over a one
// second window.
type FPS struct {
	start  time.Time
	frames int
	value  float64
}

// NewFPS is the preferred method of initialisation for the FPS type.
func NewFPS() *FPS {
	return &FPS{start: time.Now()}
}

// Frame records one completed frame. it returns true when the smoothing
// window rolled over and Value changed.
func (f *FPS) Frame() bool {
	f.frames++

	elapsed := time.Since(f.start)
	if elapsed < time.Second {
		return false
	}

	f.value = float64(f.frames) / elapsed.Seconds()
	f.frames = 0
	f.start = time.Now()
	return true
}

// Value returns the most recent frames-per-second measurement.
func (f *FPS) Value() float64 {
	return f.value
}
