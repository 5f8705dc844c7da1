package algo

import (
	"math"

	"github.com/elektrokombinacija/sipp-planner/internal/core"
)

// findSuccessors generates every safe (vertex, interval) successor of cur.
// goal carries the target of the current partial search; when it is the
// agent's true goal the exact heuristic pivot is used, otherwise the larger
// of the straight-line distance to goal and the differential lower bounds
// over the oracle's pivots.
func (s *SIPP) findSuccessors(cur core.Node, m core.Map, h core.Heuristic, goal core.Node) []core.Node {
	var succs []core.Node
	for _, move := range m.ValidMoves(cur.ID) {
		cost := core.Dist(cur.Pos, move.Pos)
		t := cur.G + cost
		intervals := s.safeIntervals(move.ID, t)
		cons := s.constraints[edgeKey{cur.ID, move.ID}]
		for _, iv := range intervals {
			if iv.Hi < t {
				continue
			}
			g := t
			if iv.Lo > g {
				g = iv.Lo
			}
			// push the departure past any forbidden window on the edge
			for _, mc := range cons {
				if g-cost+core.Epsilon > mc.T1 && g-cost < mc.T2 {
					g = mc.T2 + cost
				}
			}
			// must leave cur within its safe interval and arrive with
			// positive residency left at the destination
			if g-cost > cur.Interval.Hi-core.Epsilon || g > iv.Hi-core.Epsilon {
				continue
			}
			n := core.Node{ID: move.ID, Pos: move.Pos, G: g, Interval: iv}
			if goal.ID == s.agent.Goal {
				n.F = g + h.Value(n.ID, int(s.agent.ID))
			} else {
				hv := core.Dist(goal.Pos, move.Pos)
				for i := 0; i < h.Size(); i++ {
					if d := math.Abs(h.Value(n.ID, i) - h.Value(goal.ID, i)); d > hv {
						hv = d
					}
				}
				n.F = g + hv
			}
			succs = append(succs, n)
		}
	}
	return succs
}

// safeIntervals returns the full safe-interval decomposition at v, or the
// single interval [t, Infinity] when v carries no collisions.
func (s *SIPP) safeIntervals(v core.VertexID, t float64) []core.Interval {
	colls := s.collisionIntervals[v]
	if len(colls) == 0 {
		return []core.Interval{{Lo: t, Hi: core.Infinity}}
	}
	intervals := make([]core.Interval, 0, len(colls)+1)
	lo := 0.0
	for _, c := range colls {
		intervals = append(intervals, core.Interval{Lo: lo, Hi: c.Lo})
		lo = c.Hi
	}
	return append(intervals, core.Interval{Lo: lo, Hi: core.Infinity})
}

// findMin pops the head of the open list.
func (s *SIPP) findMin() core.Node {
	n := s.open[0]
	s.open = s.open[1:]
	return n
}

// addOpen inserts n into the open list, which is kept ordered by
// (F ascending, G descending) with epsilon-tolerant comparisons. A state
// already open at the same vertex with the same interval end is replaced
// only when n is strictly better.
func (s *SIPP) addOpen(n core.Node) {
	if len(s.open) == 0 {
		s.open = append(s.open, n)
		return
	}
	posIdx := -1
	for i := range s.open {
		e := &s.open[i]
		if posIdx < 0 {
			if e.F > n.F+core.Epsilon {
				posIdx = i
			} else if timeEqual(e.F, n.F) && n.G+core.Epsilon > e.G {
				posIdx = i
			}
		}
		if e.ID == n.ID && timeEqual(e.Interval.Hi, n.Interval.Hi) {
			if n.F > e.F-core.Epsilon {
				return // existing entry dominates
			}
			if posIdx == i {
				e.F = n.F
				e.G = n.G
				e.Interval = n.Interval
				e.Parent = n.Parent
				return
			}
			s.open = append(s.open[:i], s.open[i+1:]...)
			break
		}
	}
	if posIdx < 0 {
		s.open = append(s.open, n)
		return
	}
	s.open = append(s.open, core.Node{})
	copy(s.open[posIdx+1:], s.open[posIdx:])
	s.open[posIdx] = n
}

// reconstructPath walks the parent chain of cur and inserts explicit wait
// nodes wherever consecutive arrival times exceed the edge distance.
func (s *SIPP) reconstructPath(cur core.Node) []core.Node {
	nodes := []core.Node{cur}
	for p := cur.Parent; p != nil; p = p.Parent {
		nodes = append(nodes, *p)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i := 0; i+1 < len(nodes); i++ {
		u, v := nodes[i], nodes[i+1]
		if math.Abs(v.G-u.G-core.NodeDist(u, v)) > core.Epsilon {
			wait := u
			wait.G = v.G - core.NodeDist(u, v)
			nodes = append(nodes, core.Node{})
			copy(nodes[i+2:], nodes[i+1:])
			nodes[i+1] = wait
		}
	}
	// returned nodes stand on their own; parents belong to the search
	for i := range nodes {
		nodes[i].Parent = nil
	}
	return nodes
}

// findPartialPath runs a multi-source, multi-goal A* over safe intervals up
// to the maxF bound. All goals share a vertex and differ only in their safe
// sub-interval; paths[k] stays empty (Cost < 0) for goals not reached.
func (s *SIPP) findPartialPath(starts, goals []core.Node, m core.Map, h core.Heuristic, maxF float64) []core.Path {
	s.open = s.open[:0]
	s.closed = make(map[core.VertexID][]*core.Node)
	s.closedCount = 0

	paths := make([]core.Path, len(goals))
	for i := range paths {
		paths[i].Cost = -1
	}
	found := 0

	for _, st := range starts {
		st.Parent = nil
		s.addOpen(st)
	}
	goalRef := core.Node{ID: goals[0].ID, Pos: goals[0].Pos}

	for len(s.open) > 0 {
		cur := s.findMin()
		owned := cur
		s.closed[cur.ID] = append(s.closed[cur.ID], &owned)
		s.closedCount++

		if cur.ID == goals[0].ID {
			for i := range goals {
				if paths[i].Cost >= 0 {
					continue
				}
				if cur.G-core.Epsilon < goals[i].Interval.Hi && goals[i].Interval.Lo-core.Epsilon < cur.Interval.Hi {
					nodes := s.reconstructPath(cur)
					if nodes[len(nodes)-1].G < goals[i].Interval.Lo {
						cur.G = goals[i].Interval.Lo
						wait := cur
						wait.Parent = nil
						nodes = append(nodes, wait)
					}
					paths[i].Nodes = nodes
					paths[i].Cost = cur.G
					paths[i].Expanded = s.closedCount
					found++
				}
			}
			if found == len(goals) {
				return paths
			}
		}

		for _, succ := range s.findSuccessors(cur, m, h, goalRef) {
			if succ.F > maxF {
				continue
			}
			succ.Parent = &owned
			if s.closedDominates(succ) {
				continue
			}
			s.addOpen(succ)
		}
	}
	return paths
}

// closedDominates reports whether some closed state at n's vertex already
// covers n's safe interval. Endpoint equality counts as containment; the
// comparisons are inclusive so this holds at the sentinel, where Epsilon
// falls below float spacing.
func (s *SIPP) closedDominates(n core.Node) bool {
	for _, e := range s.closed[n.ID] {
		if e.Interval.Lo-core.Epsilon <= n.Interval.Lo && e.Interval.Hi+core.Epsilon >= n.Interval.Hi {
			return true
		}
	}
	return false
}
