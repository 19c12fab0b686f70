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
	"runtime"
)

// Attribute is a named diagnostic value attached to an error at the raise
// site. values are strings, ints or uint32s; anything else is formatted with
// the %v verb.
type Attribute struct {
	Name  string
	Value interface{}
}

func (a Attribute) String() string {
	switch v := a.Value.(type) {
	case uint32:
		return fmt.Sprintf("[%s] = 0x%08x", a.Name, v)
	default:
		return fmt.Sprintf("[%s] = %v", a.Name, v)
	}
}

// Attr is a convenience constructor for Attribute.
func Attr(name string, value interface{}) Attribute {
	return Attribute{Name: name, Value: value}
}

// Raise creates a curated error of the given kind, recording the raise site
// (file and line) alongside any caller supplied attributes.
func Raise(kind string, detail string, attrs ...Attribute) error {
	er := curated{
		pattern: kind,
		values:  []interface{}{detail},
	}

	if _, file, line, ok := runtime.Caller(1); ok {
		er.attrs = append(er.attrs, Attr("file", file), Attr("line", line))
	}
	er.attrs = append(er.attrs, attrs...)

	return er
}

// WithAttr returns a copy of err with the attributes appended. non-curated
// errors are wrapped first.
func WithAttr(err error, attrs ...Attribute) error {
	er, ok := err.(curated)
	if !ok {
		er = curated{pattern: "%v", values: []interface{}{err}}
	}
	er.attrs = append(er.attrs, attrs...)
	return er
}

// Attributes unwinds every attribute in the error chain, outermost first.
func Attributes(err error) []Attribute {
	er, ok := err.(curated)
	if !ok {
		return nil
	}

	attrs := append([]Attribute{}, er.attrs...)
	for i := range er.values {
		if e, ok := er.values[i].(curated); ok {
			attrs = append(attrs, Attributes(e)...)
		}
	}

	return attrs
}
