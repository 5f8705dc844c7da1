package algo

import (
	"sort"

	"github.com/elektrokombinacija/sipp-planner/internal/core"
)

// makeConstraints dispatches raw constraints into the planner's working
// structures: wait constraints become collision intervals, move constraints
// become per-edge forbidden windows, positive constraints naming the
// planning agent become landmarks sorted by window start.
func (s *SIPP) makeConstraints(cons []core.Constraint) {
	for _, con := range cons {
		switch {
		case !con.Positive && con.From == con.To:
			s.addCollisionInterval(con.From, core.Interval{Lo: con.T1, Hi: con.T2})
		case !con.Positive:
			s.addMoveConstraint(core.MoveFromConstraint(con))
		case con.Agent == s.agent.ID:
			s.addLandmark(core.MoveFromConstraint(con))
		default:
			s.positive = append(s.positive, core.MoveFromConstraint(con))
		}
	}
}

// addLandmark inserts lm keeping landmarks ordered by T1 ascending.
func (s *SIPP) addLandmark(lm core.Move) {
	idx := len(s.landmarks)
	for i := range s.landmarks {
		if s.landmarks[i].T1 > lm.T1 {
			idx = i
			break
		}
	}
	s.landmarks = append(s.landmarks, core.Move{})
	copy(s.landmarks[idx+1:], s.landmarks[idx:])
	s.landmarks[idx] = lm
}

// addCollisionInterval merges iv into the vertex's forbidden set, keeping
// the list sorted by Lo and pairwise-disjoint modulo Epsilon.
func (s *SIPP) addCollisionInterval(id core.VertexID, iv core.Interval) {
	list := append(s.collisionIntervals[id], iv)
	sort.Slice(list, func(i, j int) bool {
		if list[i].Lo != list[j].Lo {
			return list[i].Lo < list[j].Lo
		}
		return list[i].Hi < list[j].Hi
	})
	for i := 0; i+1 < len(list); i++ {
		if list[i].Hi+core.Epsilon > list[i+1].Lo {
			if list[i+1].Hi > list[i].Hi {
				list[i].Hi = list[i+1].Hi
			}
			list = append(list[:i+1], list[i+2:]...)
			i--
		}
	}
	s.collisionIntervals[id] = list
}

// addMoveConstraint merges m into the sorted, disjoint forbidden-window
// list for its edge: insertion-sorted on T1, then coalesced left to right.
// A merged window keeps the identity fields of its first contributor and
// the list stays monotone in T1.
func (s *SIPP) addMoveConstraint(m core.Move) {
	key := edgeKey{m.From, m.To}
	list := s.constraints[key]
	idx := len(list)
	for i := range list {
		if list[i].T1 > m.T1 {
			idx = i
			break
		}
	}
	list = append(list, core.Move{})
	copy(list[idx+1:], list[idx:])
	list[idx] = m
	for i := 0; i+1 < len(list); i++ {
		if list[i].T2+core.Epsilon > list[i+1].T1 {
			if list[i+1].T2 > list[i].T2 {
				list[i].T2 = list[i+1].T2
			}
			list = append(list[:i+1], list[i+2:]...)
			i--
		}
	}
	s.constraints[key] = list
}

// getEndpoints splits [t1, t2] at the given vertex into its maximal safe
// sub-intervals, earliest first. Each sub-interval is returned as a node
// ready to seed or terminate a partial search.
func (s *SIPP) getEndpoints(id core.VertexID, pos core.Pos, t1, t2 float64) []core.Node {
	nodes := []core.Node{{ID: id, Pos: pos, Interval: core.Interval{Lo: t1, Hi: t2}}}
	colls := s.collisionIntervals[id]
	if len(colls) == 0 {
		return nodes
	}
	// colls is sorted and disjoint, so one left-to-right sweep reaches the
	// fixed point and keeps the accumulator ordered earliest to latest.
	for _, c := range colls {
		for i := 0; i < len(nodes); i++ {
			n := nodes[i]
			switch {
			case c.Lo-core.Epsilon < n.Interval.Lo && c.Hi+core.Epsilon > n.Interval.Hi:
				// fully covered
				nodes = append(nodes[:i], nodes[i+1:]...)
				i--
			case c.Lo-core.Epsilon < n.Interval.Lo && c.Hi > n.Interval.Lo:
				// clips the front
				nodes[i].Interval.Lo = c.Hi
			case c.Lo-core.Epsilon > n.Interval.Lo && c.Hi+core.Epsilon < n.Interval.Hi:
				// strictly inside: split
				tail := core.Node{ID: id, Pos: pos, Interval: core.Interval{Lo: c.Hi, Hi: n.Interval.Hi}}
				nodes[i].Interval.Hi = c.Lo
				nodes = append(nodes, core.Node{})
				copy(nodes[i+2:], nodes[i+1:])
				nodes[i+1] = tail
				i++
			case c.Lo < n.Interval.Hi && c.Hi+core.Epsilon > n.Interval.Hi:
				// clips the back
				nodes[i].Interval.Hi = c.Lo
			}
		}
	}
	return nodes
}
