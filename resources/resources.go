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

// Package resources locates the emulator's host-side files: the
// configuration directory, the data directory and the screenshot directory.
// XDG conventions are honoured with the usual fallbacks into $HOME.
package resources

import (
	"os"
	"path/filepath"

	"github.com/washingtondc-emu/washingtondc/curated"
)

// the name of the directory the emulator claims under the config and data
// roots.
const appName = "washdc"

// ConfigDir returns the emulator's configuration directory:
// $XDG_CONFIG_HOME/washdc or, if XDG_CONFIG_HOME is unset,
// $HOME/.config/washdc.
func ConfigDir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", curated.Errorf(curated.FileIO, err)
	}

	return filepath.Join(home, ".config", appName), nil
}

// DataDir returns the emulator's data directory: $XDG_DATA_HOME/washdc or,
// if XDG_DATA_HOME is unset, $HOME/.local/share/washdc.
func DataDir() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", curated.Errorf(curated.FileIO, err)
	}

	return filepath.Join(home, ".local", "share", appName), nil
}

// ScreenshotDir returns the directory screenshots are saved to, beneath the
// data directory.
func ScreenshotDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "screenshots"), nil
}

// JoinPath returns the path beneath the config directory, creating any
// intermediate directories as necessary.
func JoinPath(path ...string) (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}

	p := filepath.Join(append([]string{d}, path...)...)

	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return "", curated.Errorf(curated.FileIO, err)
	}

	return p, nil
}
