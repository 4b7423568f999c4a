package bbcode

import "strings"

// NodeTag is the start tag a node was opened by. Name is lower case.
type NodeTag struct {
	Name       string
	NameRange  Span
	Params     Params
	ParamRange Span

	spec *tagSpec
}

type innerKind int

const (
	innerNone innerKind = iota
	innerText
	innerTree
)

// Inner is the content of a node: nothing, one text run, or a list of
// child nodes. Most tags hold one text run, which needs no slice.
type Inner struct {
	kind  innerKind
	text  string
	span  Span
	nodes []*Node
}

// Node is an intermediate parse node. Text leaves have no tag and hold
// their text; the root has no tag and always holds a child list.
type Node struct {
	Tag   *NodeTag
	Inner Inner
}

func newRoot() *Node {
	return &Node{Inner: Inner{kind: innerTree}}
}

func newLeaf(value string, r Span) *Node {
	return &Node{Inner: Inner{kind: innerText, text: value, span: r}}
}

// IsText reports whether n is a text leaf
func (n *Node) IsText() bool {
	return n.Tag == nil && n.Inner.kind == innerText
}

// Text returns the text of a leaf, or of a tag holding one text run.
func (n *Node) Text() (string, bool) {
	if n.Inner.kind != innerText {
		return "", false
	}
	return n.Inner.text, true
}

// Children returns the content of n as nodes: the child list, or the
// single text run as a leaf.
func (n *Node) Children() []*Node {
	switch n.Inner.kind {
	case innerText:
		return []*Node{newLeaf(n.Inner.text, n.Inner.span)}
	case innerTree:
		return n.Inner.nodes
	}
	return nil
}

// blank reports whether n holds nothing but whitespace
func (n *Node) blank() bool {
	switch n.Inner.kind {
	case innerText:
		return strings.TrimSpace(n.Inner.text) == ""
	case innerTree:
		return len(n.Inner.nodes) == 0
	}
	return true
}

func (n *Node) putText(value string, r Span) {
	switch n.Inner.kind {
	case innerNone:
		n.Inner = Inner{kind: innerText, text: value, span: r}
	case innerText:
		n.Inner = Inner{kind: innerTree, nodes: []*Node{newLeaf(n.Inner.text, n.Inner.span), newLeaf(value, r)}}
	case innerTree:
		n.Inner.nodes = append(n.Inner.nodes, newLeaf(value, r))
	}
}

func (n *Node) putNode(child *Node) {
	switch n.Inner.kind {
	case innerNone:
		n.Inner = Inner{kind: innerTree, nodes: []*Node{child}}
	case innerText:
		n.Inner = Inner{kind: innerTree, nodes: []*Node{newLeaf(n.Inner.text, n.Inner.span), child}}
	case innerTree:
		n.Inner.nodes = append(n.Inner.nodes, child)
	}
}
