package scene

import "github.com/achilleasa/lumen/types"

// Bvh node definition. Nodes live in a flat arena; children and
// primitives are referenced by index so the tree carries no pointers.
type BvhNode struct {
	// Bounding box extents.
	Min types.Vec3
	Max types.Vec3

	// Arena indices of the child nodes; valid for internal nodes only.
	Left  int32
	Right int32

	// Primitive index range covered by a leaf. Count is zero for
	// internal nodes; an empty primitive set yields an empty arena
	// instead of a zero-count leaf.
	First uint32
	Count uint32
}

// Check whether the node is a leaf.
func (n *BvhNode) IsLeaf() bool {
	return n.Count > 0
}

// Link the node to its children and clear the leaf range.
func (n *BvhNode) SetChildNodes(left, right int32) {
	n.Left = left
	n.Right = right
	n.First = 0
	n.Count = 0
}

// Mark the node as a leaf covering count primitives starting at first.
func (n *BvhNode) SetLeaf(first, count uint32) {
	n.First = first
	n.Count = count
}
