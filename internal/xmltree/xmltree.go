// Package xmltree decodes XML documents into nested maps.
//
// The shape follows the usual XML-to-object convention: an element that
// occurs once is stored as its value, an element that repeats is stored as a
// []any in document order. Text-only elements become strings, anything with
// child elements or attributes becomes a map[string]any. Attributes are keyed
// "@name"; text next to child elements is kept under "#text". Namespaces are
// dropped, only local names are used.
//
// Callers cannot tell a single child from a list by type alone and should
// normalize with a to-array helper before iterating.
package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	AttrPrefix = "@"
	TextKey    = "#text"
)

var ErrEmptyDocument = errors.New("xmltree: empty document")

type frame struct {
	name     string
	fields   map[string]any
	text     strings.Builder
	hasField bool
}

// Decode reads one XML document and returns its root element keyed by name.
func Decode(r io.Reader) (map[string]any, error) {
	dec := xml.NewDecoder(r)
	root := &frame{fields: map[string]any{}}
	stack := []*frame{root}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmltree: decode: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			f := &frame{name: t.Name.Local, fields: map[string]any{}}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				f.fields[AttrPrefix+a.Name.Local] = a.Value
				f.hasField = true
			}
			stack = append(stack, f)
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			addChild(parent, f.name, f.value())
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("xmltree: decode: %w", io.ErrUnexpectedEOF)
	}
	if len(root.fields) == 0 {
		return nil, ErrEmptyDocument
	}
	return root.fields, nil
}

func (f *frame) value() any {
	text := strings.TrimSpace(f.text.String())
	if !f.hasField {
		return text
	}
	if text != "" {
		f.fields[TextKey] = text
	}
	return f.fields
}

func addChild(parent *frame, name string, v any) {
	parent.hasField = true
	prev, ok := parent.fields[name]
	if !ok {
		parent.fields[name] = v
		return
	}
	if list, ok := prev.([]any); ok {
		parent.fields[name] = append(list, v)
		return
	}
	parent.fields[name] = []any{prev, v}
}
