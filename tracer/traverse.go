package tracer

import (
	"math"

	"github.com/achilleasa/lumen/scene"
)

type primKind uint8

const (
	sphereKind primKind = iota
	planeKind
	triangleKind
)

// A pending BVH node visit. The stack keeps the box entry distance so
// nodes that can no longer improve on the closest hit are skipped when
// they surface.
type stackEntry struct {
	t    float32
	node int32
}

// nearestHit walks the sphere, plane and triangle BVH trees in turn and
// fills hit with the closest intersection at distance >= tMin. On equal
// distances the primitive encountered first wins.
func (t *Tracer) nearestHit(r Ray, tMin float32, hit *Hit) bool {
	closest := float32(math.MaxFloat32)
	kind := sphereKind
	index := -1

	if i, ti, ok := t.walkNearest(r, t.scene.SphereBvh, sphereKind, tMin, closest); ok {
		kind, index, closest = sphereKind, i, ti
	}
	if i, ti, ok := t.walkNearest(r, t.scene.PlaneBvh, planeKind, tMin, closest); ok {
		kind, index, closest = planeKind, i, ti
	}
	if i, ti, ok := t.walkNearest(r, t.scene.TriangleBvh, triangleKind, tMin, closest); ok {
		kind, index, closest = triangleKind, i, ti
	}
	if index < 0 {
		return false
	}

	switch kind {
	case sphereKind:
		fillSphereHit(r, &t.scene.Spheres[index], closest, hit)
	case planeKind:
		fillPlaneHit(r, &t.scene.Planes[index], closest, hit)
	case triangleKind:
		fillTriangleHit(r, &t.scene.Triangles[index], t.scene.VertexNormals, closest, hit)
	}
	return true
}

// anyHit reports whether any primitive intersects the ray within
// [tMin, tMax]. Unlike nearestHit the walk stops at the first accepted
// intersection with no ordering requirement.
func (t *Tracer) anyHit(r Ray, tMin, tMax float32) bool {
	return t.walkAny(r, t.scene.SphereBvh, sphereKind, tMin, tMax) ||
		t.walkAny(r, t.scene.PlaneBvh, planeKind, tMin, tMax) ||
		t.walkAny(r, t.scene.TriangleBvh, triangleKind, tMin, tMax)
}

// walkNearest finds the closest primitive of one type strictly below
// the incoming closest bound. The stack is ordered far to near; pushes
// happen before the bound tightens, so stale entries are skipped when
// popped instead of assuming the top is always the nearest node.
func (t *Tracer) walkNearest(r Ray, nodes []scene.BvhNode, kind primKind, tMin, closest float32) (int, float32, bool) {
	if len(nodes) == 0 {
		return 0, 0, false
	}

	best := -1
	stack := append(t.stack[:0], stackEntry{t: 0, node: 0})

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if closest <= entry.t {
			continue
		}

		node := &nodes[entry.node]
		if node.IsLeaf() {
			first, last := int(node.First), int(node.First+node.Count)
			switch kind {
			case sphereKind:
				for i := first; i < last; i++ {
					if ti, ok := sphereHit(r, &t.scene.Spheres[i], tMin, closest); ok && ti < closest {
						closest, best = ti, i
					}
				}
			case planeKind:
				for i := first; i < last; i++ {
					if ti, ok := planeHit(r, &t.scene.Planes[i], tMin, closest); ok && ti < closest {
						closest, best = ti, i
					}
				}
			case triangleKind:
				for i := first; i < last; i++ {
					if ti, _, _, ok := triangleHit(r, &t.scene.Triangles[i], tMin, closest); ok && ti < closest {
						closest, best = ti, i
					}
				}
			}
			continue
		}

		leftT, leftOk := slabHit(r, &nodes[node.Left], closest)
		rightT, rightOk := slabHit(r, &nodes[node.Right], closest)
		switch {
		case leftOk && rightOk:
			// Push the farther child first so the nearer one pops first.
			if leftT < rightT {
				stack = append(stack, stackEntry{t: rightT, node: node.Right}, stackEntry{t: leftT, node: node.Left})
			} else {
				stack = append(stack, stackEntry{t: leftT, node: node.Left}, stackEntry{t: rightT, node: node.Right})
			}
		case leftOk:
			stack = append(stack, stackEntry{t: leftT, node: node.Left})
		case rightOk:
			stack = append(stack, stackEntry{t: rightT, node: node.Right})
		}
	}

	t.stack = stack
	return best, closest, best >= 0
}

func (t *Tracer) walkAny(r Ray, nodes []scene.BvhNode, kind primKind, tMin, tMax float32) bool {
	if len(nodes) == 0 {
		return false
	}

	stack := append(t.stack[:0], stackEntry{node: 0})

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &nodes[entry.node]
		if node.IsLeaf() {
			if t.leafAnyHit(r, node, kind, tMin, tMax) {
				t.stack = stack
				return true
			}
			continue
		}

		if ti, ok := slabHit(r, &nodes[node.Left], tMax); ok {
			stack = append(stack, stackEntry{t: ti, node: node.Left})
		}
		if ti, ok := slabHit(r, &nodes[node.Right], tMax); ok {
			stack = append(stack, stackEntry{t: ti, node: node.Right})
		}
	}

	t.stack = stack
	return false
}

func (t *Tracer) leafAnyHit(r Ray, node *scene.BvhNode, kind primKind, tMin, tMax float32) bool {
	first, last := int(node.First), int(node.First+node.Count)
	switch kind {
	case sphereKind:
		for i := first; i < last; i++ {
			if _, ok := sphereHit(r, &t.scene.Spheres[i], tMin, tMax); ok {
				return true
			}
		}
	case planeKind:
		for i := first; i < last; i++ {
			if _, ok := planeHit(r, &t.scene.Planes[i], tMin, tMax); ok {
				return true
			}
		}
	case triangleKind:
		for i := first; i < last; i++ {
			if _, _, _, ok := triangleHit(r, &t.scene.Triangles[i], tMin, tMax); ok {
				return true
			}
		}
	}
	return false
}

// slabHit intersects the ray with a node bounding box and returns the
// entry distance. Boxes whose entry lies at or beyond the closest
// accepted hit are rejected.
func slabHit(r Ray, node *scene.BvhNode, closest float32) (float32, bool) {
	tNear := float32(math.Inf(-1))
	tFar := float32(math.Inf(1))

	for axis := 0; axis < 3; axis++ {
		t1 := (node.Min[axis] - r.Origin[axis]) / r.Dir[axis]
		t2 := (node.Max[axis] - r.Origin[axis]) / r.Dir[axis]
		if t2 < t1 {
			t1, t2 = t2, t1
		}
		if t1 > tNear {
			tNear = t1
		}
		if t2 < tFar {
			tFar = t2
		}
	}

	if tFar < tNear || tFar <= 0 || tNear >= closest {
		return 0, false
	}
	return tNear, true
}
