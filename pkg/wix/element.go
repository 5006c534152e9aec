// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wix

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Schema is the WiX v3 namespace.
const Schema = "http://schemas.microsoft.com/wix/2006/wi"

// Element is an XML element whose children keep insertion order.
type Element struct {
	Name      string
	Attrs     []xml.Attr
	ProcInsts []xml.ProcInst
	Children  []*Element
}

// NewElement returns an element with attributes given as name, value pairs.
func NewElement(name string, attrs ...string) *Element {
	e := &Element{Name: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		e.Set(attrs[i], attrs[i+1])
	}
	return e
}

// Add appends a child element built from name and attrs and returns it.
func (e *Element) Add(name string, attrs ...string) *Element {
	c := NewElement(name, attrs...)
	e.Children = append(e.Children, c)
	return c
}

// Set sets or replaces an attribute.
func (e *Element) Set(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name.Local == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// Attr returns the value of an attribute, or "".
func (e *Element) Attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Find returns the first descendant named name in document order, or nil.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// FindAll returns every descendant named name in document order.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
		out = append(out, c.FindAll(name)...)
	}
	return out
}

// MarshalXML writes the element, its processing instructions, then its children.
func (e *Element) MarshalXML(enc *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Name}, Attr: e.Attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, pi := range e.ProcInsts {
		if err := enc.EncodeToken(pi); err != nil {
			return err
		}
	}
	for _, c := range e.Children {
		if err := enc.Encode(c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// Document renders root as an indented UTF-8 XML document.
func Document(root *Element) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", root.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush %s: %w", root.Name, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ParseElement reads an XML document into an Element tree. Namespaces are
// dropped from names and xmlns attributes removed; comments and the XML
// declaration are skipped.
func ParseElement(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)

	var root *Element
	var stack []*Element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse template: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			e := &Element{Name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				e.Set(a.Name.Local, a.Value)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("template has more than one root element")
				}
				root = e
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.ProcInst:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.ProcInsts = append(cur.ProcInsts, xml.CopyToken(t).(xml.ProcInst))
			}
		}
	}
	if root == nil {
		return nil, errors.New("template has no root element")
	}
	return root, nil
}
