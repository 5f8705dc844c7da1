package core

// Node is a search state: a vertex together with the safe interval during
// which the agent resides there. G is the earliest arrival compatible with
// the interval, F = G + h. Parent points at the node this one was generated
// from; the search's closed set owns parents, so they stay valid for the
// lifetime of a partial search.
type Node struct {
	ID       VertexID
	Pos      Pos
	G, F     float64
	Interval Interval
	Parent   *Node
}

// NodeDist returns the Euclidean distance between two nodes' positions.
func NodeDist(a, b Node) float64 {
	return Dist(a.Pos, b.Pos)
}

// Path is a timed node sequence for one agent. For consecutive nodes u, v
// either v.G-u.G equals the edge distance (movement) or u.ID == v.ID and
// v.G > u.G (explicit wait). Cost < 0 marks an empty path.
type Path struct {
	Nodes    []Node
	Cost     float64
	AgentID  AgentID
	Expanded int
}

// EmptyPath returns the no-path sentinel.
func EmptyPath() Path {
	return Path{Cost: -1}
}

// Empty reports whether the path carries no feasible route.
func (p Path) Empty() bool {
	return p.Cost < 0 || len(p.Nodes) == 0
}

// EndTime returns the arrival time at the last node, or -1 for an empty path.
func (p Path) EndTime() float64 {
	if len(p.Nodes) == 0 {
		return -1
	}
	return p.Nodes[len(p.Nodes)-1].G
}
