package algo

import (
	"github.com/elektrokombinacija/sipp-planner/internal/core"
)

// SIPP is a safe-interval path planner: a time-expanded A* over
// (vertex, safe interval) states. A single FindPath call fully resets the
// planner, so one instance can serve successive planning requests; distinct
// instances may run concurrently as long as the Map and Heuristic they
// share are read-only.
type SIPP struct {
	agent              core.Agent
	open               []core.Node
	closed             map[core.VertexID][]*core.Node
	closedCount        int
	collisionIntervals map[core.VertexID][]core.Interval
	constraints        map[edgeKey][]core.Move
	landmarks          []core.Move
	positive           []core.Move
}

// NewSIPP creates a planner.
func NewSIPP() *SIPP {
	s := &SIPP{}
	s.clear()
	return s
}

func (s *SIPP) Name() string { return "SIPP" }

func (s *SIPP) clear() {
	s.open = nil
	s.closed = make(map[core.VertexID][]*core.Node)
	s.closedCount = 0
	s.collisionIntervals = make(map[core.VertexID][]core.Interval)
	s.constraints = make(map[edgeKey][]core.Move)
	s.landmarks = nil
	s.positive = nil
}

// FindPath plans a minimum-cost path for agent from its start to its goal
// that avoids every forbidden vertex interval and edge window in cons and
// performs every landmark traversal within its window. treeSize is accepted
// for parity with the surrounding framework and is not consulted.
func (s *SIPP) FindPath(agent core.Agent, m core.Map, cons []core.Constraint, h core.Heuristic, treeSize int) core.Path {
	s.clear()
	s.agent = agent
	s.makeConstraints(cons)

	var result core.Path
	if len(s.landmarks) > 0 {
		result = s.findWithLandmarks(m, h)
		if result.Empty() {
			return core.EmptyPath()
		}
	} else {
		starts := s.getEndpoints(agent.Start, agent.StartPos, 0, core.Infinity)
		goals := s.getEndpoints(agent.Goal, agent.GoalPos, 0, core.Infinity)
		if len(starts) == 0 || len(goals) == 0 {
			return core.EmptyPath()
		}
		parts := s.findPartialPath(starts[:1], goals[len(goals)-1:], m, h, core.Infinity)
		if parts[0].Cost < 0 {
			return core.EmptyPath()
		}
		result = parts[0]
	}
	result.Cost = result.Nodes[len(result.Nodes)-1].G
	result.AgentID = agent.ID
	return result
}

// findWithLandmarks chains partial searches across the ordered landmarks,
// carrying every surviving path prefix between segments, and returns the
// first surviving result.
func (s *SIPP) findWithLandmarks(m core.Map, h core.Heuristic) core.Path {
	var results []core.Path
	K := len(s.landmarks)
	for i := 0; i <= K; i++ {
		var starts, goals []core.Node
		if i == 0 {
			eps := s.getEndpoints(s.agent.Start, s.agent.StartPos, 0, core.Infinity)
			if len(eps) == 0 {
				return core.EmptyPath()
			}
			starts = eps[:1]
		} else {
			for _, r := range results {
				starts = append(starts, r.Nodes[len(r.Nodes)-1])
			}
		}
		if i == K {
			eps := s.getEndpoints(s.agent.Goal, s.agent.GoalPos, 0, core.Infinity)
			if len(eps) == 0 {
				return core.EmptyPath()
			}
			goals = eps[len(eps)-1:]
		} else {
			lm := s.landmarks[i]
			goals = s.getEndpoints(lm.From, lm.FromPos, lm.T1, lm.T2)
		}
		if len(goals) == 0 {
			return core.EmptyPath()
		}

		parts := s.findPartialPath(starts, goals, m, h, goals[len(goals)-1].Interval.Hi)

		var newResults []core.Path
		if i == 0 {
			for _, p := range parts {
				if len(p.Nodes) == 0 {
					continue
				}
				newResults = append(newResults, p)
			}
		} else {
			// a part continues every surviving result whose final safe
			// interval it starts in; matches fan out
			for _, p := range parts {
				if len(p.Nodes) == 0 {
					continue
				}
				for _, r := range results {
					if p.Nodes[0].Interval.Equal(r.Nodes[len(r.Nodes)-1].Interval) {
						newResults = append(newResults, addPart(r, p))
					}
				}
			}
		}
		results = newResults
		if len(results) == 0 {
			return core.EmptyPath()
		}

		if i < K {
			results = s.traverseLandmark(s.landmarks[i], results)
			if len(results) == 0 {
				return core.EmptyPath()
			}
		}
	}
	return results[0]
}

// traverseLandmark appends the forced landmark edge to the surviving
// results. For every safe endpoint at the landmark's destination it picks
// the result whose back reaches it earliest, inserting a wait at the source
// when the departure must be delayed. The destination node's interval end
// is extended to the next collision there, since the agent now resides at
// the destination.
func (s *SIPP) traverseLandmark(lm core.Move, results []core.Path) []core.Path {
	starts := make([]core.Node, 0, len(results))
	for _, r := range results {
		starts = append(starts, r.Nodes[len(r.Nodes)-1])
	}
	offset := core.Dist(lm.FromPos, lm.ToPos)
	goals := s.getEndpoints(lm.To, lm.ToPos, lm.T1+offset, lm.T2+offset)

	var extended []core.Path
	for _, goal := range goals {
		bestG := core.Infinity
		bestStart := -1
		for j := range starts {
			if g := s.checkEndpoint(starts[j], goal); g < bestG {
				bestG = g
				bestStart = j
			}
		}
		if bestStart < 0 {
			continue
		}
		goal.G = bestG
		goal.Interval.Hi = s.residencyEnd(goal.ID, goal.G, goal.Interval.Hi)

		res := clonePath(results[bestStart])
		if goal.G-starts[bestStart].G > offset+core.Epsilon {
			wait := res.Nodes[len(res.Nodes)-1]
			wait.G = goal.G - offset
			res.Nodes = append(res.Nodes, wait)
		}
		res.Nodes = append(res.Nodes, goal)
		extended = append(extended, res)
	}
	return extended
}

// residencyEnd returns the start of the first collision at v after g, the
// sentinel when v has no collisions at all, or hi unchanged when every
// collision precedes g.
func (s *SIPP) residencyEnd(v core.VertexID, g, hi float64) float64 {
	colls := s.collisionIntervals[v]
	if len(colls) == 0 {
		return core.Infinity
	}
	for _, c := range colls {
		if g < c.Lo {
			return c.Lo
		}
	}
	return hi
}

// checkEndpoint returns the earliest arrival time at goal for the forced
// traversal start -> goal, waiting at start when the goal's window has not
// opened and skipping past forbidden edge windows; Infinity when the
// traversal cannot be performed.
func (s *SIPP) checkEndpoint(start, goal core.Node) float64 {
	cost := core.NodeDist(start, goal)
	if start.G+cost < goal.Interval.Lo {
		start.G = goal.Interval.Lo - cost
	}
	for _, mc := range s.constraints[edgeKey{start.ID, goal.ID}] {
		if start.G+core.Epsilon > mc.T1 && start.G < mc.T2 {
			start.G = mc.T2
		}
	}
	if start.G > start.Interval.Hi || start.G+cost > goal.Interval.Hi {
		return core.Infinity
	}
	return start.G + cost
}

// addPart concatenates part onto a copy of result, dropping the duplicated
// join node at the seam.
func addPart(result, part core.Path) core.Path {
	nodes := make([]core.Node, 0, len(result.Nodes)+len(part.Nodes)-1)
	nodes = append(nodes, result.Nodes...)
	nodes = append(nodes, part.Nodes[1:]...)
	out := result
	out.Nodes = nodes
	return out
}

func clonePath(p core.Path) core.Path {
	out := p
	out.Nodes = append([]core.Node(nil), p.Nodes...)
	return out
}
