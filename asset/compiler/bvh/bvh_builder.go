package bvh

import (
	"math"
	"time"

	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

const (
	// Number of candidate split planes evaluated per axis.
	splitBins = 16

	// Cost of traversing an internal node relative to intersecting a
	// primitive. A range becomes a leaf when no candidate split beats
	// traversalCost + splitCost >= 2 * itemCount.
	traversalCost float32 = 15.0
)

// The Interface type provides indexed access to a primitive set. The
// builder reorders the set through Swap so that every leaf covers a
// contiguous index range of the caller's backing array.
type Interface interface {
	// Number of items in the set.
	Len() int

	// Bounding box of item i.
	Bounds(i int) (min, max types.Vec3)

	// Centroid of item i.
	Centroid(i int) types.Vec3

	// Swap items i and j.
	Swap(i, j int)
}

type stats struct {
	totalItems      int
	nodes           int
	leafs           int
	maxDepth        int
	maxItemsPerLeaf int
}

type builder struct {
	logger log.Logger

	items Interface

	// Bvh nodes stored as a contiguous list
	nodes []scene.BvhNode

	// Ranges holding at most this many items always become leafs.
	maxLeafItems int

	// Stats
	stats stats
}

// Construct a BVH over a primitive set.
//
// The builder scores binned split candidates with the surface area
// heuristic (lower is better) and partitions the set in place, so after
// Build returns the caller's array order matches the leaf index ranges.
// Ranges of maxLeafItems or fewer items become leafs immediately; larger
// ranges become leafs when no split improves on the leaf cost. An empty
// set produces an empty node list and a single item a single leaf.
func Build(items Interface, maxLeafItems int) []scene.BvhNode {
	if maxLeafItems < 1 {
		maxLeafItems = 1
	}
	b := &builder{
		logger:       log.New("bvh"),
		items:        items,
		nodes:        make([]scene.BvhNode, 0),
		maxLeafItems: maxLeafItems,
		stats: stats{
			totalItems: items.Len(),
		},
	}

	if items.Len() == 0 {
		return b.nodes
	}

	start := time.Now()
	b.partition(0, items.Len(), 0)
	b.logger.Debugf(
		"BVH tree build time: %d ms, items: %d, maxDepth: %d, nodes: %d, leafs: %d, max items/leaf: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.totalItems, b.stats.maxDepth, b.stats.nodes, b.stats.leafs, b.stats.maxItemsPerLeaf,
	)
	return b.nodes
}

// Partition the [first, last) item range and return its node index.
func (b *builder) partition(first, last, depth int) int32 {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	node := scene.BvhNode{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}

	// Calculate bounding box for node
	for i := first; i < last; i++ {
		itemMin, itemMax := b.items.Bounds(i)
		node.Min = types.MinVec3(node.Min, itemMin)
		node.Max = types.MaxVec3(node.Max, itemMax)
	}

	// Do we have enough items for partitioning? If not create a leaf
	count := last - first
	if count <= b.maxLeafItems {
		return b.createLeaf(&node, first, count)
	}

	axis, splitPoint, splitCost := b.bestSplit(&node, first, last)

	// Compare the best split against the cost of leaving a leaf
	if traversalCost+splitCost >= 2.0*float32(count) {
		return b.createLeaf(&node, first, count)
	}

	mid := b.partitionItems(first, last, axis, splitPoint)

	// Add node to list
	nodeIndex := int32(len(b.nodes))
	b.nodes = append(b.nodes, node)
	b.stats.nodes++

	// Partition children and update node indices
	leftNodeIndex := b.partition(first, mid, depth+1)
	rightNodeIndex := b.partition(mid, last, depth+1)
	b.nodes[nodeIndex].SetChildNodes(leftNodeIndex, rightNodeIndex)

	return nodeIndex
}

// Evaluate binned split candidates on all three axes and return the one
// with the lowest surface area heuristic cost. Candidate planes are
// placed at regular fractions of the node extent; when every candidate
// leaves one side empty the returned cost is MaxFloat32 and the caller
// falls back to a leaf.
func (b *builder) bestSplit(node *scene.BvhNode, first, last int) (bestAxis int, bestPoint, bestCost float32) {
	side := node.Max.Sub(node.Min)
	parentArea := 2.0 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])

	bestCost = math.MaxFloat32
	for bin := 1; bin < splitBins; bin++ {
		frac := float32(bin) / splitBins
		for axis := 0; axis < 3; axis++ {
			splitPoint := node.Min[axis] + side[axis]*frac
			cost := b.scoreSplit(first, last, axis, splitPoint, parentArea)
			if cost < bestCost {
				bestCost = cost
				bestAxis = axis
				bestPoint = splitPoint
			}
		}
	}
	return bestAxis, bestPoint, bestCost
}

// Score one split candidate. Each side costs its bounding box area
// relative to the parent times twice its item count; empty partitions
// are assigned the worst possible score.
func (b *builder) scoreSplit(first, last, axis int, splitPoint, parentArea float32) float32 {
	lmin := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	rmin := types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	lmax := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	rmax := types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}

	leftCount := 0
	rightCount := 0
	for i := first; i < last; i++ {
		itemMin, itemMax := b.items.Bounds(i)
		if b.items.Centroid(i)[axis] < splitPoint {
			leftCount++
			lmin = types.MinVec3(lmin, itemMin)
			lmax = types.MaxVec3(lmax, itemMax)
		} else {
			rightCount++
			rmin = types.MinVec3(rmin, itemMin)
			rmax = types.MaxVec3(rmax, itemMax)
		}
	}

	// Make sure that we don't generate empty partitions
	if leftCount == 0 || rightCount == 0 {
		return math.MaxFloat32
	}

	lside := lmax.Sub(lmin)
	rside := rmax.Sub(rmin)
	larea := 2.0 * (lside[0]*lside[1] + lside[1]*lside[2] + lside[0]*lside[2])
	rarea := 2.0 * (rside[0]*rside[1] + rside[1]*rside[2] + rside[0]*rside[2])

	return larea/parentArea*2.0*float32(leftCount) + rarea/parentArea*2.0*float32(rightCount)
}

// Reorder the [first, last) range so that items with a centroid below
// the split point precede the rest; returns the start of the upper side.
func (b *builder) partitionItems(first, last, axis int, splitPoint float32) int {
	mid := first
	for i := first; i < last; i++ {
		if b.items.Centroid(i)[axis] < splitPoint {
			b.items.Swap(i, mid)
			mid++
		}
	}
	return mid
}

// Store a leaf covering count items starting at first.
func (b *builder) createLeaf(node *scene.BvhNode, first, count int) int32 {
	node.SetLeaf(uint32(first), uint32(count))

	// append node to list
	nodeIndex := int32(len(b.nodes))
	b.nodes = append(b.nodes, *node)

	// update stats
	b.stats.leafs++
	if count > b.stats.maxItemsPerLeaf {
		b.stats.maxItemsPerLeaf = count
	}

	return nodeIndex
}
