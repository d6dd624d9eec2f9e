// Package maskpoly converts a binary mask image into a minimal set of
// axis-aligned-edge polygons covering exactly its "inside" pixels, via
// an incremental edge-walk (see Build for the algorithm).
package maskpoly

import (
	"container/list"

	"github.com/banshee-data/eroimgtool/internal/geom"
	"github.com/banshee-data/eroimgtool/internal/grid"
)

type direction int

const (
	dirRight direction = iota
	dirDown
	dirLeft
	dirUp
	dirInvalid
)

// segment is a unit edge starting at (x,y) and heading in dir.
type segment struct {
	x, y int
	dir  direction
}

func (s segment) endX() int {
	switch s.dir {
	case dirLeft:
		return s.x - 1
	case dirRight:
		return s.x + 1
	default:
		return s.x
	}
}

func (s segment) endY() int {
	switch s.dir {
	case dirUp:
		return s.y + 1
	case dirDown:
		return s.y - 1
	default:
		return s.y
	}
}

func opposing(a, b segment) bool {
	return (a.dir == dirLeft && b.dir == dirRight) ||
		(a.dir == dirRight && b.dir == dirLeft) ||
		(a.dir == dirUp && b.dir == dirDown) ||
		(a.dir == dirDown && b.dir == dirUp)
}

// cleanupOpposing removes adjacent edge pairs that cancel (go out then
// immediately back), rotates the list so a same-direction run is
// contiguous for the emit step, then strips any opposing front/back
// pair left over from the rotation.
func cleanupOpposing(segs *list.List) {
	for e := segs.Front(); e != nil; {
		n := e.Next()
		if n == nil {
			break
		}
		s1 := e.Value.(segment)
		s2 := n.Value.(segment)
		if opposing(s1, s2) {
			prev := e.Prev()
			segs.Remove(e)
			segs.Remove(n)
			if prev != nil {
				e = prev
			} else {
				e = segs.Front()
			}
		} else {
			e = n
		}
	}

	for segs.Len() > 0 && segs.Front().Value.(segment).dir == segs.Back().Value.(segment).dir {
		front := segs.Front()
		v := front.Value
		segs.Remove(front)
		segs.PushBack(v)
	}

	for segs.Len() > 0 && opposing(segs.Front().Value.(segment), segs.Back().Value.(segment)) {
		segs.Remove(segs.Front())
		if segs.Len() > 0 {
			segs.Remove(segs.Back())
		}
	}
}

// segsToPoly walks the cleaned segment list, coalescing runs of equal
// direction into single vertices.
func segsToPoly(segs *list.List) geom.Poly {
	var pts []geom.Point
	lastDir := dirInvalid
	for e := segs.Front(); e != nil; e = e.Next() {
		s := e.Value.(segment)
		end := geom.Point{X: float64(s.endX()), Y: float64(s.endY())}
		if s.dir == lastDir && len(pts) > 0 {
			pts[len(pts)-1] = end
		} else {
			pts = append(pts, end)
		}
		lastDir = s.dir
	}
	return geom.Poly{Pts: pts}
}

// Build turns mask into a PolyVec covering every pixel for which the
// "inside" predicate holds (value != 0, or value == 0 when invert is
// true). Runs of edges with the same direction are always coalesced into
// single vertices; BuildNoMerge skips that step.
func Build(mask *grid.Image[int], invert bool) geom.PolyVec {
	return build(mask, invert, true)
}

// BuildNoMerge is Build with merge disabled: the start point of every
// unit edge is emitted as its own vertex, useful for tests that want to
// inspect every unit-edge vertex.
func BuildNoMerge(mask *grid.Image[int], invert bool) geom.PolyVec {
	return build(mask, invert, false)
}

func build(mask *grid.Image[int], invert, merge bool) geom.PolyVec {
	xw, yw := mask.XW, mask.YW

	work := grid.New[int](xw, yw)
	for i, v := range mask.Arr {
		inside := v != 0
		if invert {
			inside = !inside
		}
		if inside {
			work.Arr[i] = -1
		} else {
			work.Arr[i] = 0
		}
	}

	var polys geom.PolyVec
	lastIdx := 0

	for polyIdx := 1; ; polyIdx++ {
		idx := -1
		for i := lastIdx; i < len(work.Arr); i++ {
			if work.Arr[i] < 0 {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		lastIdx = idx + 1
		x0 := idx % work.XW
		y0 := idx / work.XW

		segs := list.New()
		segs.PushBack(segment{x0, y0, dirUp})
		segs.PushBack(segment{x0, y0 + 1, dirRight})
		segs.PushBack(segment{x0 + 1, y0 + 1, dirDown})
		segs.PushBack(segment{x0 + 1, y0, dirLeft})
		work.Set(x0, y0, polyIdx)

		for {
			anyRepl := false
			for e := segs.Front(); e != nil; {
				s := e.Value.(segment)
				x, y := s.x, s.y

				var repl bool
				var n1, n2, n3 segment

				switch s.dir {
				case dirRight:
					if y < yw && work.At(x, y) < 0 {
						n1 = segment{x, y, dirUp}
						n2 = segment{x, y + 1, dirRight}
						n3 = segment{x + 1, y + 1, dirDown}
						work.Set(x, y, polyIdx)
						repl = true
					} else if y > 0 && work.At(x, y-1) < 0 {
						n1 = segment{x, y, dirDown}
						n2 = segment{x, y - 1, dirRight}
						n3 = segment{x + 1, y - 1, dirUp}
						work.Set(x, y-1, polyIdx)
						repl = true
					}
				case dirDown:
					if x < xw && work.At(x, y-1) < 0 {
						n1 = segment{x, y, dirRight}
						n2 = segment{x + 1, y, dirDown}
						n3 = segment{x + 1, y - 1, dirLeft}
						work.Set(x, y-1, polyIdx)
						repl = true
					} else if x > 0 && work.At(x-1, y-1) < 0 {
						n1 = segment{x, y, dirLeft}
						n2 = segment{x - 1, y, dirDown}
						n3 = segment{x - 1, y - 1, dirRight}
						work.Set(x-1, y-1, polyIdx)
						repl = true
					}
				case dirLeft:
					if y < yw && work.At(x-1, y) < 0 {
						n1 = segment{x, y, dirUp}
						n2 = segment{x, y + 1, dirLeft}
						n3 = segment{x - 1, y + 1, dirDown}
						work.Set(x-1, y, polyIdx)
						repl = true
					} else if y > 0 && work.At(x-1, y-1) < 0 {
						n1 = segment{x, y, dirDown}
						n2 = segment{x, y - 1, dirLeft}
						n3 = segment{x - 1, y - 1, dirUp}
						work.Set(x-1, y-1, polyIdx)
						repl = true
					}
				case dirUp:
					if x > 0 && work.At(x-1, y) < 0 {
						n1 = segment{x, y, dirLeft}
						n2 = segment{x - 1, y, dirUp}
						n3 = segment{x - 1, y + 1, dirRight}
						work.Set(x-1, y, polyIdx)
						repl = true
					} else if x < xw && work.At(x, y) < 0 {
						n1 = segment{x, y, dirRight}
						n2 = segment{x + 1, y, dirUp}
						n3 = segment{x + 1, y + 1, dirLeft}
						work.Set(x, y, polyIdx)
						repl = true
					}
				}

				if repl {
					e.Value = n3
					n2e := segs.InsertBefore(n2, e)
					segs.InsertBefore(n1, n2e)
					e = n2e
					anyRepl = true
				}
				e = e.Next()
			}
			if !anyRepl {
				break
			}
		}

		cleanupOpposing(segs)

		if merge {
			polys = append(polys, segsToPoly(segs))
		} else {
			var pts []geom.Point
			for e := segs.Front(); e != nil; e = e.Next() {
				pts = append(pts, geom.Point{X: float64(e.Value.(segment).x), Y: float64(e.Value.(segment).y)})
			}
			polys = append(polys, geom.Poly{Pts: pts})
		}
	}

	return polys
}
