package pdml

// Attr is one attribute of an element, in source order.
type Attr struct {
	Name  string
	Value string
}

// Node is one element of a decoded document. Children nest without depth limit.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOrEmpty returns the value of the named attribute or "".
func (n *Node) AttrOrEmpty(name string) string {
	v, _ := n.Attr(name)
	return v
}
