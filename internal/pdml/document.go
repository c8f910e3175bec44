package pdml

import (
	api "github.com/kubev2v/pcap-query/api/v1alpha1"
)

const (
	elementPdml   = "pdml"
	elementPacket = "packet"
	elementProto  = "proto"
	elementField  = "field"
)

// NewDocument maps a decoded tree onto the public document. Values are copied as is.
func NewDocument(root *Node) (*api.Pdml, error) {
	if root.Name != elementPdml {
		return nil, NewParseError("malformed pdml: root element is <%s>, expected <%s>", root.Name, elementPdml)
	}

	doc := &api.Pdml{
		Version:     root.AttrOrEmpty("version"),
		Creator:     root.AttrOrEmpty("creator"),
		Time:        root.AttrOrEmpty("time"),
		CaptureFile: root.AttrOrEmpty("capture_file"),
		Packets:     make([]api.Packet, 0, len(root.Children)),
	}

	for _, p := range root.Children {
		if p.Name != elementPacket {
			return nil, unexpected(p, root)
		}
		packet := api.Packet{Protos: make([]api.Proto, 0, len(p.Children))}
		for _, pr := range p.Children {
			if pr.Name != elementProto {
				return nil, unexpected(pr, p)
			}
			proto, err := newProto(pr)
			if err != nil {
				return nil, err
			}
			packet.Protos = append(packet.Protos, proto)
		}
		doc.Packets = append(doc.Packets, packet)
	}

	return doc, nil
}

func newProto(n *Node) (api.Proto, error) {
	fields, err := newFields(n)
	if err != nil {
		return api.Proto{}, err
	}
	return api.Proto{
		Name:     n.AttrOrEmpty("name"),
		Pos:      n.AttrOrEmpty("pos"),
		Showname: n.AttrOrEmpty("showname"),
		Size:     n.AttrOrEmpty("size"),
		Hide:     n.AttrOrEmpty("hide"),
		Fields:   fields,
	}, nil
}

// newFields maps the children of a proto or field. A proto nested in a field is
// carried as a field with the same attributes.
func newFields(parent *Node) ([]api.Field, error) {
	if len(parent.Children) == 0 {
		return nil, nil
	}

	fields := make([]api.Field, 0, len(parent.Children))
	for _, c := range parent.Children {
		if c.Name != elementField && c.Name != elementProto {
			return nil, unexpected(c, parent)
		}
		children, err := newFields(c)
		if err != nil {
			return nil, err
		}
		fields = append(fields, api.Field{
			Name:          c.AttrOrEmpty("name"),
			Pos:           c.AttrOrEmpty("pos"),
			Showname:      c.AttrOrEmpty("showname"),
			Size:          c.AttrOrEmpty("size"),
			Value:         c.AttrOrEmpty("value"),
			Show:          c.AttrOrEmpty("show"),
			Hide:          c.AttrOrEmpty("hide"),
			Unmaskedvalue: c.AttrOrEmpty("unmaskedvalue"),
			Fields:        children,
		})
	}
	return fields, nil
}

func unexpected(n, parent *Node) error {
	return NewParseError("malformed pdml: unexpected element <%s> in <%s>", n.Name, parent.Name)
}
