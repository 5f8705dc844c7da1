package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/sipp-planner/internal/core"
)

// lineWorkspace builds a 1 x n corridor with unit edges.
func lineWorkspace(n int) *core.Workspace {
	ws := core.NewWorkspace()
	for x := 0; x < n; x++ {
		ws.AddVertex(&core.Vertex{ID: core.VertexID(x), Pos: core.Pos{X: float64(x)}})
	}
	for x := 0; x+1 < n; x++ {
		ws.AddEdge(core.VertexID(x), core.VertexID(x+1))
	}
	return ws
}

// gridWorkspace builds an n x n 4-connected grid, id = y*n + x.
func gridWorkspace(n int) *core.Workspace {
	ws := core.NewWorkspace()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			id := core.VertexID(y*n + x)
			ws.AddVertex(&core.Vertex{ID: id, Pos: core.Pos{X: float64(x), Y: float64(y)}})
		}
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			id := core.VertexID(y*n + x)
			if x < n-1 {
				ws.AddEdge(id, id+1)
			}
			if y < n-1 {
				ws.AddEdge(id, id+core.VertexID(n))
			}
		}
	}
	return ws
}

func agentBetween(ws *core.Workspace, id core.AgentID, start, goal core.VertexID) core.Agent {
	return core.Agent{
		ID:       id,
		Start:    start,
		Goal:     goal,
		StartPos: ws.VertexByID(start).Pos,
		GoalPos:  ws.VertexByID(goal).Pos,
	}
}

func waitConstraint(ws *core.Workspace, v core.VertexID, t1, t2 float64) core.Constraint {
	pos := ws.VertexByID(v).Pos
	return core.Constraint{From: v, To: v, FromPos: pos, ToPos: pos, T1: t1, T2: t2}
}

func moveConstraint(ws *core.Workspace, from, to core.VertexID, t1, t2 float64) core.Constraint {
	return core.Constraint{
		From: from, To: to,
		FromPos: ws.VertexByID(from).Pos, ToPos: ws.VertexByID(to).Pos,
		T1: t1, T2: t2,
	}
}

func landmarkConstraint(ws *core.Workspace, agent core.AgentID, from, to core.VertexID, t1, t2 float64) core.Constraint {
	c := moveConstraint(ws, from, to, t1, t2)
	c.Positive = true
	c.Agent = agent
	return c
}

func hasWaitAt(p core.Path, v core.VertexID) bool {
	for i := 0; i+1 < len(p.Nodes); i++ {
		if p.Nodes[i].ID == v && p.Nodes[i+1].ID == v && p.Nodes[i+1].G > p.Nodes[i].G {
			return true
		}
	}
	return false
}

func TestFindPath_StraightLine(t *testing.T) {
	ws := lineWorkspace(5)
	agent := agentBetween(ws, 0, 0, 4)
	h := core.NewStraightLineHeuristic(ws, agent)

	path := NewSIPP().FindPath(agent, ws, nil, h, 1)

	require.False(t, path.Empty())
	assert.InDelta(t, 4.0, path.Cost, 1e-6)
	require.Len(t, path.Nodes, 5)
	for i, n := range path.Nodes {
		assert.Equal(t, core.VertexID(i), n.ID)
		assert.InDelta(t, float64(i), n.G, 1e-6)
	}
	assert.NoError(t, ValidatePath(path, nil, agent.ID))
}

func TestFindPath_WaitConstraint(t *testing.T) {
	ws := lineWorkspace(3)
	agent := agentBetween(ws, 0, 0, 2)
	h := core.NewStraightLineHeuristic(ws, agent)
	cons := []core.Constraint{waitConstraint(ws, 1, 1.0, 2.0)}

	path := NewSIPP().FindPath(agent, ws, cons, h, 1)

	require.False(t, path.Empty())
	assert.InDelta(t, 3.0, path.Cost, 1e-6)
	assert.True(t, hasWaitAt(path, 0), "expected an explicit wait before entering the blocked cell")
	last := path.Nodes[len(path.Nodes)-1]
	assert.Equal(t, core.VertexID(2), last.ID)
	assert.InDelta(t, 3.0, last.G, 1e-6)
	assert.NoError(t, ValidatePath(path, cons, agent.ID))
}

func TestFindPath_MoveConstraintForcesWait(t *testing.T) {
	ws := gridWorkspace(3)
	agent := agentBetween(ws, 0, 0, 2) // (0,0) -> (2,0)
	h := core.NewStraightLineHeuristic(ws, agent)
	cons := []core.Constraint{moveConstraint(ws, 1, 2, 1.0, 2.5)}

	path := NewSIPP().FindPath(agent, ws, cons, h, 1)

	require.False(t, path.Empty())
	assert.InDelta(t, 3.5, path.Cost, 1e-6)
	assert.True(t, hasWaitAt(path, 1), "expected a wait at (1,0) until the edge window closes")
	assert.NoError(t, ValidatePath(path, cons, agent.ID))
}

func TestFindPath_Infeasible(t *testing.T) {
	ws := lineWorkspace(3)
	agent := agentBetween(ws, 0, 0, 2)
	h := core.NewStraightLineHeuristic(ws, agent)
	cons := []core.Constraint{waitConstraint(ws, 1, 0, core.Infinity)}

	path := NewSIPP().FindPath(agent, ws, cons, h, 1)

	assert.True(t, path.Empty())
	assert.Less(t, path.Cost, 0.0)
}

func TestFindPath_Landmark(t *testing.T) {
	ws := lineWorkspace(5)
	agent := agentBetween(ws, 0, 0, 4)
	h := core.NewStraightLineHeuristic(ws, agent)
	cons := []core.Constraint{landmarkConstraint(ws, agent.ID, 2, 3, 5.0, 6.0)}

	path := NewSIPP().FindPath(agent, ws, cons, h, 1)

	require.False(t, path.Empty())
	assert.InDelta(t, 7.0, path.Cost, 1e-6)
	assert.NoError(t, ValidatePath(path, cons, agent.ID))

	// departure along the forced edge lies inside the window
	found := false
	for i := 0; i+1 < len(path.Nodes); i++ {
		u, v := path.Nodes[i], path.Nodes[i+1]
		if u.ID == 2 && v.ID == 3 {
			depart := v.G - core.NodeDist(u, v)
			assert.InDelta(t, 5.0, depart, 1e-6)
			found = true
		}
	}
	assert.True(t, found, "landmark traversal missing from path")
}

func TestFindPath_LandmarkDelayedDestination(t *testing.T) {
	ws := lineWorkspace(5)
	agent := agentBetween(ws, 0, 0, 4)
	h := core.NewStraightLineHeuristic(ws, agent)
	cons := []core.Constraint{
		landmarkConstraint(ws, agent.ID, 2, 3, 5.0, 6.0),
		waitConstraint(ws, 3, 5.5, 6.5),
	}

	path := NewSIPP().FindPath(agent, ws, cons, h, 1)

	require.False(t, path.Empty())
	assert.InDelta(t, 7.5, path.Cost, 1e-6)
	assert.True(t, hasWaitAt(path, 2))
	assert.NoError(t, ValidatePath(path, cons, agent.ID))
}

func TestFindPath_LandmarkWindowBlocked(t *testing.T) {
	ws := lineWorkspace(5)
	agent := agentBetween(ws, 0, 0, 4)
	h := core.NewStraightLineHeuristic(ws, agent)
	cons := []core.Constraint{
		landmarkConstraint(ws, agent.ID, 2, 3, 5.0, 6.0),
		waitConstraint(ws, 2, 4.0, 7.0), // covers the whole departure window
	}

	path := NewSIPP().FindPath(agent, ws, cons, h, 1)
	assert.True(t, path.Empty())
}

func TestAddOpen_Dominance(t *testing.T) {
	s := NewSIPP()
	iv := core.Interval{Lo: 0, Hi: 10}

	s.addOpen(core.Node{ID: 5, G: 1, F: 3, Interval: iv})
	s.addOpen(core.Node{ID: 5, G: 1, F: 5, Interval: iv})
	require.Len(t, s.open, 1, "worse duplicate must be discarded")
	assert.InDelta(t, 3.0, s.open[0].F, 1e-9)

	s.addOpen(core.Node{ID: 5, G: 2, F: 2, Interval: iv})
	require.Len(t, s.open, 1, "better duplicate must replace the entry")
	assert.InDelta(t, 2.0, s.open[0].F, 1e-9)
	assert.InDelta(t, 2.0, s.open[0].G, 1e-9)
}

func TestAddOpen_OrdersByFThenLargerG(t *testing.T) {
	s := NewSIPP()
	s.addOpen(core.Node{ID: 1, G: 1, F: 4, Interval: core.Interval{Hi: 1}})
	s.addOpen(core.Node{ID: 2, G: 3, F: 2, Interval: core.Interval{Hi: 2}})
	s.addOpen(core.Node{ID: 3, G: 1, F: 2, Interval: core.Interval{Hi: 3}})
	s.addOpen(core.Node{ID: 4, G: 2, F: 2, Interval: core.Interval{Hi: 4}})

	var order []core.VertexID
	for len(s.open) > 0 {
		order = append(order, s.findMin().ID)
	}
	// f ascending, ties broken toward larger g
	assert.Equal(t, []core.VertexID{2, 4, 3, 1}, order)
}

func TestFindPath_ExpansionBoundedByDominance(t *testing.T) {
	ws := gridWorkspace(3)
	agent := agentBetween(ws, 0, 0, 8)
	h := core.NewStraightLineHeuristic(ws, agent)

	path := NewSIPP().FindPath(agent, ws, nil, h, 1)

	require.False(t, path.Empty())
	assert.InDelta(t, 4.0, path.Cost, 1e-6)
	// every vertex has a single safe interval, so no state is expanded twice
	assert.LessOrEqual(t, path.Expanded, 9)
}

func TestFindPath_Deterministic(t *testing.T) {
	ws := gridWorkspace(3)
	agent := agentBetween(ws, 7, 0, 8)
	h := core.NewStraightLineHeuristic(ws, agent)
	cons := []core.Constraint{
		waitConstraint(ws, 1, 0.5, 1.5),
		waitConstraint(ws, 4, 1.0, 3.0),
		moveConstraint(ws, 5, 8, 2.0, 4.0),
	}

	first := NewSIPP().FindPath(agent, ws, cons, h, 1)
	second := NewSIPP().FindPath(agent, ws, cons, h, 1)

	require.False(t, first.Empty())
	assert.Equal(t, first, second)
	assert.NoError(t, ValidatePath(first, cons, agent.ID))
}

func TestFindPartialPath_RespectsMaxF(t *testing.T) {
	ws := gridWorkspace(3)
	agent := agentBetween(ws, 0, 0, 2)
	h := core.NewStraightLineHeuristic(ws, agent)

	s := NewSIPP()
	s.clear()
	s.agent = agent
	s.makeConstraints([]core.Constraint{moveConstraint(ws, 1, 2, 1.0, 2.5)})

	starts := s.getEndpoints(agent.Start, agent.StartPos, 0, core.Infinity)
	goals := s.getEndpoints(agent.Goal, agent.GoalPos, 0, core.Infinity)
	require.NotEmpty(t, starts)
	require.NotEmpty(t, goals)

	// the optimum costs 3.5; a tighter bound must leave the goal unreached
	parts := s.findPartialPath(starts[:1], goals[len(goals)-1:], ws, h, 3.0)
	assert.Less(t, parts[0].Cost, 0.0)

	parts = s.findPartialPath(starts[:1], goals[len(goals)-1:], ws, h, 3.5)
	require.GreaterOrEqual(t, parts[0].Cost, 0.0)
	assert.InDelta(t, 3.5, parts[0].Cost, 1e-6)
}

func TestValidatePath_FlagsViolations(t *testing.T) {
	ws := lineWorkspace(3)
	bad := core.Path{
		Cost:    2,
		AgentID: 1,
		Nodes: []core.Node{
			{ID: 0, Pos: core.Pos{X: 0}, G: 0},
			{ID: 1, Pos: core.Pos{X: 1}, G: 1},
			{ID: 2, Pos: core.Pos{X: 2}, G: 2},
		},
	}
	cons := []core.Constraint{waitConstraint(ws, 1, 0.5, 1.5)}
	assert.Error(t, ValidatePath(bad, cons, 1))

	cons = []core.Constraint{moveConstraint(ws, 1, 2, 0.5, 1.5)}
	assert.Error(t, ValidatePath(bad, cons, 1))

	cons = []core.Constraint{landmarkConstraint(ws, 1, 2, 1, 0.0, 5.0)}
	assert.Error(t, ValidatePath(bad, cons, 1), "reverse traversal must not satisfy the landmark")

	assert.NoError(t, ValidatePath(bad, nil, 1))
}
