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

// Package sdlwash is the SDL2 window front-end. it embeds the headless
// gfx-IL back-end for object and texture storage and adds presentation:
// every POST_FRAMEBUFFER updates an SDL streaming texture which is then
// scaled into the window.
//
// SDL requires that window creation and the event loop run on the main OS
// thread; the emulation runs elsewhere and reaches this package only
// through the renderer interface and the Service function.
package sdlwash

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/gfx/gfxil"
	"github.com/washingtondc-emu/washingtondc/gfx/headless"
	"github.com/washingtondc-emu/washingtondc/gfx/obj"
	"github.com/washingtondc-emu/washingtondc/performance"
	"github.com/washingtondc-emu/washingtondc/resources"
	"github.com/washingtondc-emu/washingtondc/title"
)

// the window opens at the native video resolution.
const (
	defaultWidth  = 640
	defaultHeight = 480
)

// Window is the SDL2 front-end. it implements gfxil.Renderer by embedding
// the headless back-end.
type Window struct {
	*headless.Renderer

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	texWidth  int
	texHeight int

	// the most recently posted frame, kept for screenshots
	lastFrame []byte

	Title *title.Title
	fps   *performance.FPS

	quit bool
}

// NewWindow is the preferred method of initialisation for the Window type.
// must be called from the main OS thread.
func NewWindow(pool *obj.Pool) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, curated.Errorf("sdlwash: %v", err)
	}

	win := &Window{
		Renderer: headless.NewRenderer(pool),
		Title:    &title.Title{},
		fps:      performance.NewFPS(),
	}

	var err error
	win.window, err = sdl.CreateWindow("WashingtonDC",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		defaultWidth, defaultHeight,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, curated.Errorf("sdlwash: %v", err)
	}

	win.renderer, err = sdl.CreateRenderer(win.window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		win.window.Destroy()
		return nil, curated.Errorf("sdlwash: %v", err)
	}

	win.Renderer.SetPresentFunc(win.present)

	return win, nil
}

// present receives every posted framebuffer from the embedded back-end.
func (win *Window) present(arg gfxil.PostFramebufferArg, rgba []byte) {
	if win.texture == nil || win.texWidth != arg.Width || win.texHeight != arg.Height {
		if win.texture != nil {
			win.texture.Destroy()
		}
		var err error
		win.texture, err = win.renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888,
			sdl.TEXTUREACCESS_STREAMING, int32(arg.Width), int32(arg.Height))
		if err != nil {
			return
		}
		win.texWidth = arg.Width
		win.texHeight = arg.Height
	}

	// an interlaced post carries one field's worth of rows; line-double it
	pitch := arg.Width * 4
	pixels := rgba
	if arg.Interlaced && len(rgba)*2 >= arg.Height*pitch {
		doubled := make([]byte, arg.Height*pitch)
		for row := 0; row < arg.Height; row++ {
			copy(doubled[row*pitch:(row+1)*pitch], rgba[(row/2)*pitch:])
		}
		pixels = doubled
	}
	if len(pixels) < arg.Height*pitch {
		return
	}

	_ = win.texture.Update(nil, pixels, pitch)
	win.lastFrame = pixels

	_ = win.renderer.Clear()
	if arg.VertFlip {
		_ = win.renderer.CopyEx(win.texture, nil, nil, 0, nil, sdl.FLIP_VERTICAL)
	} else {
		_ = win.renderer.Copy(win.texture, nil, nil)
	}
	win.renderer.Present()

	if win.fps.Frame() {
		win.Title.SetFPS(win.fps.Value())
		win.window.SetTitle(win.Title.String())
	}
}

// Service processes pending window events. must be called regularly from
// the main OS thread. returns false once the user has asked to quit.
func (win *Window) Service() bool {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			win.quit = true
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYDOWN && ev.Keysym.Sym == sdl.K_F12 {
				win.screenshot()
			}
		}
	}
	return !win.quit
}

// screenshot saves the last presented frame as a BMP in the screenshot
// directory.
func (win *Window) screenshot() {
	if win.lastFrame == nil {
		return
	}

	dir, err := resources.ScreenshotDir()
	if err != nil {
		return
	}

	surf, err := sdl.CreateRGBSurfaceWithFormat(0,
		int32(win.texWidth), int32(win.texHeight), 32, sdl.PIXELFORMAT_ABGR8888)
	if err != nil {
		return
	}
	defer surf.Free()

	copy(surf.Pixels(), win.lastFrame)
	_ = surf.SaveBMP(dir + "/screenshot.bmp")
}

// Destroy releases the window and its SDL resources.
func (win *Window) Destroy() {
	if win.texture != nil {
		win.texture.Destroy()
	}
	if win.renderer != nil {
		win.renderer.Destroy()
	}
	if win.window != nil {
		win.window.Destroy()
	}
	sdl.Quit()
}
