package core

// Constraint restricts when an agent may occupy a vertex or traverse an
// edge. With Positive false and From == To it forbids waiting at From
// during [T1, T2]; with From != To it forbids departing along From->To
// during [T1, T2]. With Positive true and Agent naming the planning agent
// it is a landmark: the traversal From->To must start within [T1, T2].
type Constraint struct {
	Agent    AgentID
	Positive bool
	From, To VertexID
	FromPos  Pos
	ToPos    Pos
	T1, T2   float64
}

// Move is a directed edge with a time window. The geometric endpoints are
// retained for distance computation and diagnostics.
type Move struct {
	From, To VertexID
	FromPos  Pos
	ToPos    Pos
	T1, T2   float64
}

// MoveFromConstraint lifts a constraint into a Move.
func MoveFromConstraint(c Constraint) Move {
	return Move{
		From:    c.From,
		To:      c.To,
		FromPos: c.FromPos,
		ToPos:   c.ToPos,
		T1:      c.T1,
		T2:      c.T2,
	}
}

// Offset returns the traversal cost of the move's edge.
func (m Move) Offset() float64 {
	return Dist(m.FromPos, m.ToPos)
}
