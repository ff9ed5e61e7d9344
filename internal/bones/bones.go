// Package bones rebuilds the bone forest of a geometry from its flat,
// name-parented bone list.
package bones

import (
	"errors"
	"fmt"

	"github.com/Faultbox/mibu/pkg/geometry"
)

// Hierarchy errors.
var (
	ErrUnknownParent = errors.New("bone parent not found")
	ErrParentCycle   = errors.New("bone parent chain forms a cycle")
	ErrDuplicateBone = errors.New("duplicate bone name")
)

// Node is a bone placed in the forest.
type Node struct {
	Bone     *geometry.Bone
	Parent   *Node
	Children []*Node
	Depth    int
}

// Name returns the bone name.
func (n *Node) Name() string { return n.Bone.Name }

// Forest is the set of root nodes of a geometry, in input order.
type Forest struct {
	Roots  []*Node
	byName map[string]*Node
	count  int
}

// Build links every bone under its parent. Bones may appear in any order;
// roots and siblings keep their input order. The bones slice must outlive
// the forest since nodes point into it.
func Build(bones []geometry.Bone) (*Forest, error) {
	f := &Forest{byName: make(map[string]*Node, len(bones))}

	// Lookup first, so parents declared after their children still resolve.
	for i := range bones {
		b := &bones[i]
		if _, dup := f.byName[b.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBone, b.Name)
		}
		f.byName[b.Name] = &Node{Bone: b}
	}

	for i := range bones {
		b := &bones[i]
		if err := checkChain(b, f.byName); err != nil {
			return nil, err
		}
		n := f.byName[b.Name]
		if b.Parent == "" {
			f.Roots = append(f.Roots, n)
			continue
		}
		p := f.byName[b.Parent]
		n.Parent = p
		p.Children = append(p.Children, n)
	}

	f.Walk(func(n *Node) bool {
		if n.Parent != nil {
			n.Depth = n.Parent.Depth + 1
		}
		return true
	})
	f.count = len(bones)
	return f, nil
}

// checkChain follows b's parent references up to a root.
func checkChain(b *geometry.Bone, byName map[string]*Node) error {
	visited := map[string]bool{b.Name: true}
	for cur := b; cur.Parent != ""; {
		p, ok := byName[cur.Parent]
		if !ok {
			return fmt.Errorf("%w: %q (parent of %q)", ErrUnknownParent, cur.Parent, cur.Name)
		}
		if visited[cur.Parent] {
			return fmt.Errorf("%w: %q", ErrParentCycle, b.Name)
		}
		visited[cur.Parent] = true
		cur = p.Bone
	}
	return nil
}

// Walk visits nodes in pre-order. Returning false from fn skips the
// node's children.
func (f *Forest) Walk(fn func(*Node) bool) {
	var visit func(*Node)
	visit = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, r := range f.Roots {
		visit(r)
	}
}

// Flatten returns every node in pre-order.
func (f *Forest) Flatten() []*Node {
	out := make([]*Node, 0, f.count)
	f.Walk(func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Lookup returns the node for a bone name.
func (f *Forest) Lookup(name string) (*Node, bool) {
	n, ok := f.byName[name]
	return n, ok
}

// Len returns the number of bones in the forest.
func (f *Forest) Len() int { return f.count }

// Ancestors returns the chain from the root down to n's parent.
func (n *Node) Ancestors() []*Node {
	var chain []*Node
	for p := n.Parent; p != nil; p = p.Parent {
		chain = append(chain, p)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// EffectiveMirror resolves a cube's mirror flag against this node's bone.
func (n *Node) EffectiveMirror(c geometry.Cube) bool {
	return c.IsMirrored(n.Bone)
}

// CubeName returns the display name of the i-th cube of the bone. Inflated
// cubes are overlay shells and carry a " Layer" suffix.
func (n *Node) CubeName(i int) string {
	if n.Bone.Cubes[i].Inflate != 0 {
		return n.Bone.Name + " Layer"
	}
	return n.Bone.Name
}
