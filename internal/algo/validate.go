package algo

import (
	"fmt"
	"math"

	"github.com/elektrokombinacija/sipp-planner/internal/core"
)

// ValidatePath checks a planned path against the constraint set it was
// planned under: the movement/wait invariant between consecutive nodes,
// residency against wait constraints, departure times against move
// constraints, and landmark traversal windows. Returns nil when the path
// is consistent; an empty path is trivially consistent.
func ValidatePath(path core.Path, cons []core.Constraint, agent core.AgentID) error {
	if path.Empty() {
		return nil
	}
	nodes := path.Nodes

	for i := 0; i+1 < len(nodes); i++ {
		u, v := nodes[i], nodes[i+1]
		d := core.NodeDist(u, v)
		move := u.ID != v.ID
		wait := u.ID == v.ID && v.G > u.G
		if move && math.Abs(v.G-u.G-d) > core.Epsilon {
			return fmt.Errorf("motion invariant broken at %d: %v->%v arrives %.4f after %.4f, edge %.4f",
				i, u.ID, v.ID, v.G, u.G, d)
		}
		if !move && !wait {
			return fmt.Errorf("node %d repeats vertex %v without advancing time", i, u.ID)
		}

		// residency at u: from arrival until departure (the wait end for
		// waits, the departure instant for moves)
		depart := v.G
		if move {
			depart = v.G - d
		}
		for _, c := range cons {
			if c.Positive || c.From != c.To || c.From != u.ID {
				continue
			}
			if c.T1+core.Epsilon < depart && c.T2-core.Epsilon > u.G {
				return fmt.Errorf("vertex %v occupied during forbidden [%.4f, %.4f] (resident [%.4f, %.4f])",
					u.ID, c.T1, c.T2, u.G, depart)
			}
		}

		if move {
			for _, c := range cons {
				if c.Positive || c.From == c.To || c.From != u.ID || c.To != v.ID {
					continue
				}
				if depart+core.Epsilon > c.T1 && depart < c.T2 {
					return fmt.Errorf("edge %v->%v departed at %.4f inside forbidden [%.4f, %.4f]",
						u.ID, v.ID, depart, c.T1, c.T2)
				}
			}
		}
	}

	for _, c := range cons {
		if !c.Positive || c.Agent != agent {
			continue
		}
		if !hasTraversal(nodes, c) {
			return fmt.Errorf("landmark %v->%v within [%.4f, %.4f] missing", c.From, c.To, c.T1, c.T2)
		}
	}
	return nil
}

// hasTraversal reports whether the node sequence departs c.From toward
// c.To within the landmark's window.
func hasTraversal(nodes []core.Node, c core.Constraint) bool {
	for i := 0; i+1 < len(nodes); i++ {
		u, v := nodes[i], nodes[i+1]
		if u.ID != c.From || v.ID != c.To {
			continue
		}
		depart := v.G - core.NodeDist(u, v)
		if depart+core.Epsilon > c.T1 && depart < c.T2+core.Epsilon {
			return true
		}
	}
	return false
}
