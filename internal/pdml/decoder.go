package pdml

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Decode reads one XML document into a Node tree. Attributes and children keep the
// order in which they appear and names keep their prefix. Prolog, comments and whitespace are skipped; anything
// else outside of elements, text inside elements and unterminated elements are errors.
func Decode(r io.Reader) (*Node, error) {
	d := xml.NewDecoder(r)

	var root *Node
	for {
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, NewParseError("malformed pdml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil {
				return nil, NewParseError("malformed pdml: unexpected element <%s> after the root element", qualifiedName(t.Name))
			}
			root, err = decodeElement(d, t)
			if err != nil {
				return nil, err
			}
		case xml.EndElement:
			return nil, NewParseError("malformed pdml: unexpected end element </%s>", qualifiedName(t.Name))
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) > 0 {
				return nil, NewParseError("malformed pdml: text outside of an element")
			}
		}
	}

	if root == nil {
		return nil, NewParseError("malformed pdml: no root element")
	}
	return root, nil
}

func decodeElement(d *xml.Decoder, start xml.StartElement) (*Node, error) {
	n := &Node{
		Name:  qualifiedName(start.Name),
		Attrs: make([]Attr, 0, len(start.Attr)),
	}
	for _, a := range start.Attr {
		n.Attrs = append(n.Attrs, Attr{Name: qualifiedName(a.Name), Value: a.Value})
	}

	for {
		tok, err := d.RawToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, NewParseError("malformed pdml: element <%s> is not terminated", n.Name)
			}
			return nil, NewParseError("malformed pdml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(d, t)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		case xml.EndElement:
			if end := qualifiedName(t.Name); end != n.Name {
				return nil, NewParseError("malformed pdml: element <%s> closed by </%s>", n.Name, end)
			}
			return n, nil
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) > 0 {
				return nil, NewParseError("malformed pdml: unexpected text in element <%s>", n.Name)
			}
		}
	}
}

// qualifiedName is the name as written in the document. Raw tokens keep the prefix in Space.
func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
