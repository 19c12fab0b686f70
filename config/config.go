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

// Package config parses the emulator's wash.cfg file. The format is line
// oriented: a key, whitespace, and a value. Comments begin with a semicolon
// and run to the end of the line. Malformed lines are logged and skipped;
// the parser recovers at the next newline. Duplicate keys overwrite.
package config

import (
	"io"
	"strconv"

	"github.com/washingtondc-emu/washingtondc/curated"
	"github.com/washingtondc-emu/washingtondc/logger"
)

// FileName is the canonical name of the configuration file.
const FileName = "wash.cfg"

// keys and values longer than this have their excess characters dropped.
const maxFieldLen = 255

// parser states. the parser is fed one character at a time and recovers from
// any error at the next newline.
type parseState int

const (
	statePreKey parseState = iota
	stateKey
	statePreVal
	stateVal
	statePostVal
	stateError
)

// File is a parsed configuration file.
type File struct {
	// insertion-ordered keys so that iteration is stable
	keys []string
	vals map[string]string

	// parser state
	state     parseState
	key       []byte
	val       []byte
	lineCount int
	inComment bool
}

// NewFile is the preferred method of initialisation for the File type.
func NewFile() *File {
	return &File{
		vals:  make(map[string]string),
		state: statePreKey,
	}
}

// Parse reads the entire reader through the parser state machine.
func Parse(r io.Reader) (*File, error) {
	f := NewFile()

	b := make([]byte, 1)
	for {
		_, err := r.Read(b)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, curated.Errorf(curated.FileIO, err)
		}
		f.putChar(b[0])
	}

	// in case the last line doesn't end with a newline
	f.putChar('\n')

	return f, nil
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f'
}

// putChar advances the parser state machine by one character.
func (f *File) putChar(ch byte) {
	// a null terminator counts as a newline so that any data which does not
	// end in a newline can be flushed
	if ch == 0 {
		ch = '\n'
	}

	// replace comments with whitespace without otherwise touching the parser
	// state
	if ch == ';' {
		f.inComment = true
	}
	if f.inComment {
		if ch == '\n' {
			f.inComment = false
		} else {
			ch = ' '
		}
	}

	switch f.state {
	case statePreKey:
		if ch == '\n' {
			f.newline()
		} else if !isSpace(ch) {
			f.state = stateKey
			f.key = append(f.key[:0], ch)
		}
	case stateKey:
		if ch == '\n' {
			logger.Logf("config", "incomplete line %d", f.lineCount)
			f.newline()
		} else if isSpace(ch) {
			f.state = statePreVal
		} else if len(f.key) < maxFieldLen {
			f.key = append(f.key, ch)
		} else {
			logger.Logf("config", "dropped char from line %d; key length is limited to %d characters", f.lineCount, maxFieldLen)
		}
	case statePreVal:
		if ch == '\n' {
			logger.Logf("config", "incomplete line %d", f.lineCount)
			f.newline()
		} else if !isSpace(ch) {
			f.state = stateVal
			f.val = append(f.val[:0], ch)
		}
	case stateVal:
		if ch == '\n' {
			f.addEntry()
			f.newline()
		} else if isSpace(ch) {
			f.state = statePostVal
		} else if len(f.val) < maxFieldLen {
			f.val = append(f.val, ch)
		} else {
			logger.Logf("config", "dropped char from line %d; value length is limited to %d characters", f.lineCount, maxFieldLen)
		}
	case statePostVal:
		if ch == '\n' {
			f.addEntry()
			f.newline()
		} else if !isSpace(ch) {
			f.state = stateError
			logger.Logf("config", "invalid data on line %d", f.lineCount)
		}
	case stateError:
		if ch == '\n' {
			f.newline()
		}
	}
}

func (f *File) addEntry() {
	key := string(f.key)
	if _, ok := f.vals[key]; ok {
		logger.Logf("config", "overwriting existing config key %q at line %d", key, f.lineCount)
	} else {
		f.keys = append(f.keys, key)
	}
	f.vals[key] = string(f.val)
}

func (f *File) newline() {
	f.state = statePreKey
	f.key = f.key[:0]
	f.val = f.val[:0]
	f.lineCount++
}

// GetString returns the value for the key. the second return value is false
// if the key is not present.
func (f *File) GetString(key string) (string, bool) {
	v, ok := f.vals[key]
	return v, ok
}

// GetBool interprets the value for the key as a boolean. recognised values
// are "true", "1", "false" and "0". an unrecognised value returns an error
// without mutating out.
func (f *File) GetBool(key string, out *bool) error {
	v, ok := f.vals[key]
	if !ok {
		return curated.Errorf(curated.InvalidParam, "no such config key")
	}

	switch v {
	case "true", "1":
		*out = true
	case "false", "0":
		*out = false
	default:
		logger.Logf("config", "error parsing config node %q", key)
		return curated.Errorf(curated.InvalidParam, "not a boolean value")
	}

	return nil
}

// GetInt interprets the value for the key as an integer. an unrecognised
// value returns an error without mutating out.
func (f *File) GetInt(key string, out *int) error {
	v, ok := f.vals[key]
	if !ok {
		return curated.Errorf(curated.InvalidParam, "no such config key")
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Logf("config", "error parsing config node %q", key)
		return curated.Errorf(curated.InvalidParam, "not an integer value")
	}

	*out = n
	return nil
}

// Keys returns every key in the file in the order of first appearance.
func (f *File) Keys() []string {
	return f.keys
}
