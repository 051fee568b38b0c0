package scene

import (
	"github.com/taigrr/lumen/pkg/gfx"
	"github.com/taigrr/lumen/pkg/math3d"
)

// Node is one element of a prefab's transform hierarchy. A node draws
// only when it carries both a mesh and a material.
type Node struct {
	Name     string
	Visible  bool
	Local    math3d.Mat4
	Mesh     gfx.Mesh
	Material *Material

	parent   *Node
	children []*Node
}

// NewNode creates a visible node with an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Visible: true, Local: math3d.Identity()}
}

// AddChild attaches c under n, detaching it from any previous parent.
func (n *Node) AddChild(c *Node) {
	if c.parent != nil {
		c.parent.removeChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

func (n *Node) removeChild(c *Node) {
	for i, ch := range n.children {
		if ch == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

// Children returns the child list. Callers must not modify it.
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// GlobalMatrix composes the local transforms from the root down to n.
func (n *Node) GlobalMatrix() math3d.Mat4 {
	m := n.Local
	for p := n.parent; p != nil; p = p.parent {
		m = p.Local.Mul(m)
	}
	return m
}

// Drawable reports whether the node has both a mesh and a material.
func (n *Node) Drawable() bool {
	return n.Mesh != nil && n.Material != nil
}

// Walk visits n and its descendants depth-first in order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}
