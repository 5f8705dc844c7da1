// Package algo implements per-agent planning algorithms.
package algo

import (
	"math"

	"github.com/elektrokombinacija/sipp-planner/internal/core"
)

// Planner is the interface for single-agent path planners.
type Planner interface {
	// FindPath plans a path for agent over m under cons, consulting the
	// heuristic oracle h. treeSize is the size of the caller's constraint
	// tree, passed through for parity with the surrounding framework.
	// Returns the empty path (Cost < 0) when no feasible route exists.
	FindPath(agent core.Agent, m core.Map, cons []core.Constraint, h core.Heuristic, treeSize int) core.Path

	// Name returns the algorithm name.
	Name() string
}

// timeEqual compares times with tolerance.
func timeEqual(a, b float64) bool {
	return math.Abs(a-b) < core.Epsilon
}

// edgeKey identifies a directed edge.
type edgeKey struct {
	from, to core.VertexID
}
