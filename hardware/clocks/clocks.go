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

// Package clocks defines the constant values that define the speed of the
// clocks in the Dreamcast console.
//
// All scheduling in the emulator is expressed in cycles of the SH4 core
// clock. Every other device derives its own clock by integer division of the
// SH4 clock.
package clocks

// SchedFrequency is the frequency all scheduler cycle stamps are expressed
// in: the 200MHz SH4 core clock.
const SchedFrequency = 200 * 1000 * 1000

// the PVR2 pixel clock is nominally 27MHz. the emulator divides the SH4
// clock by seven (giving approximately 28.57MHz) so that pixel timing can be
// expressed as an integer number of SH4 cycles. the error is a little under
// six percent and is accepted.
//
// the further division by one or two is selected by the pclk_div field of
// FB_R_CTRL: division by two for VGA-style progressive scan, by one for
// interlaced video.
const PixelClockDivisor = 7

// RenderCompleteDelay is the number of SH4 cycles between the STARTRENDER
// command and the render-complete interrupt.
const RenderCompleteDelay = SchedFrequency / 1024
