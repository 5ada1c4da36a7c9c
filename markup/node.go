// Package markup implements the deco markup language: line classification,
// the keyword registry, the block parser and the inline marker processor.
// The result of a parse is a tree of Nodes owned by a single document root.
package markup

import (
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// NodeKind discriminates the node variants produced by the parser.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindParagraph
	KindHeading
	KindListItem
	KindBlock // decorated block or inline keyword span
	KindText
	KindEmphasis
	KindCode
	KindRuby
	KindError
)

func (k NodeKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list_item"
	case KindBlock:
		return "block"
	case KindText:
		return "text"
	case KindEmphasis:
		return "emphasis"
	case KindCode:
		return "code"
	case KindRuby:
		return "ruby"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Attrs is an insertion-ordered string→string attribute map, so rendered
// attributes always come out in the order they were authored.
type Attrs struct {
	m *linkedhashmap.Map
}

func NewAttrs() *Attrs {
	return &Attrs{m: linkedhashmap.New()}
}

func (a *Attrs) Set(key, value string) {
	a.m.Put(key, value)
}

func (a *Attrs) Get(key string) (string, bool) {
	v, ok := a.m.Get(key)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (a *Attrs) Keys() []string {
	keys := make([]string, 0, a.m.Size())
	for _, k := range a.m.Keys() {
		keys = append(keys, k.(string))
	}
	return keys
}

func (a *Attrs) Len() int {
	if a == nil {
		return 0
	}
	return a.m.Size()
}

func (a *Attrs) Clone() *Attrs {
	c := NewAttrs()
	if a == nil {
		return c
	}
	for _, k := range a.Keys() {
		v, _ := a.Get(k)
		c.Set(k, v)
	}
	return c
}

// Node is one element of the parsed tree. A node either carries text content
// or owns children, never both; the two constructors enforce the split.
type Node struct {
	Kind    NodeKind
	Level   int    // heading level 1–5, zero otherwise
	Keyword string // keyword name for KindBlock nodes
	Attrs   *Attrs
	Line    int // 1-based source line

	content  string
	children []*Node
	leaf     bool
}

// NewLeaf builds a content-carrying node.
func NewLeaf(kind NodeKind, content string, line int) *Node {
	return &Node{Kind: kind, Attrs: NewAttrs(), Line: line, content: content, leaf: true}
}

// NewContainer builds a child-owning node.
func NewContainer(kind NodeKind, line int) *Node {
	return &Node{Kind: kind, Attrs: NewAttrs(), Line: line}
}

// NewBlock builds a container for a decorated block with the given keyword.
func NewBlock(keyword string, line int) *Node {
	n := NewContainer(KindBlock, line)
	n.Keyword = keyword
	return n
}

// NewErrorNode builds a leaf describing a recoverable parse failure. The
// renderer turns these into visible inline error elements.
func NewErrorNode(msg string, line int) *Node {
	return NewLeaf(KindError, msg, line)
}

// IsLeaf reports whether the node carries content rather than children.
func (n *Node) IsLeaf() bool { return n.leaf }

// Content returns the text payload of a leaf node; empty for containers.
func (n *Node) Content() string { return n.content }

// Children returns the owned child list; nil for leaves.
func (n *Node) Children() []*Node { return n.children }

// Append attaches a child. Appending to a leaf is a programmer error and is
// refused so the content/children exclusivity cannot be broken after
// construction.
func (n *Node) Append(child *Node) bool {
	if n.leaf || child == nil {
		return false
	}
	n.children = append(n.children, child)
	return true
}

// Clone deep-copies a subtree. Used by the conversion cache, which must not
// hand the same owned tree to two documents.
func (n *Node) Clone() *Node {
	c := &Node{
		Kind:    n.Kind,
		Level:   n.Level,
		Keyword: n.Keyword,
		Attrs:   n.Attrs.Clone(),
		Line:    n.Line,
		content: n.content,
		leaf:    n.leaf,
	}
	for _, child := range n.children {
		c.children = append(c.children, child.Clone())
	}
	return c
}

// PlainText flattens a subtree to its raw text, dropping all decoration.
// Ruby nodes contribute only their base text.
func (n *Node) PlainText() string {
	if n.leaf {
		if n.Kind == KindError {
			return ""
		}
		return n.content
	}
	var sb strings.Builder
	for _, child := range n.children {
		sb.WriteString(child.PlainText())
	}
	return sb.String()
}
