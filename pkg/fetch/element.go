package fetch

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Attr is one XML attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// Element is a generic XML element tree. Text content is not kept; Gameday
// documents carry everything in attributes.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
}

// Attr returns the raw attribute value and whether it was present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrMap copies the attributes into a map.
func (e *Element) AttrMap() map[string]string {
	out := make(map[string]string, len(e.Attrs))
	for _, a := range e.Attrs {
		out[a.Name] = a.Value
	}
	return out
}

// Iter returns every descendant (and e itself) with the given name in
// depth-first document order.
func (e *Element) Iter(name string) []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(el *Element) {
		if el.Name == name {
			out = append(out, el)
		}
		for _, c := range el.Children {
			walk(c)
		}
	}
	walk(e)
	return out
}

// ChildrenNamed returns direct children with the given name.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ParseXML decodes a document into an Element tree rooted at its first element.
func ParseXML(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var root *Element
	var stack []*Element
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unclosed element %s", stack[len(stack)-1].Name)
	}
	return root, nil
}
