// Command sipp runs safe-interval planning scenarios.
package main

import (
	"fmt"
	"time"

	"github.com/elektrokombinacija/sipp-planner/internal/algo"
	"github.com/elektrokombinacija/sipp-planner/internal/core"
)

type scenario struct {
	name  string
	ws    *core.Workspace
	agent core.Agent
	cons  []core.Constraint
}

func main() {
	fmt.Println("=== Safe-Interval Path Planning ===")

	for _, sc := range buildScenarios() {
		fmt.Printf("\n--- %s ---\n", sc.name)
		runPlanner(sc)
	}
}

func runPlanner(sc scenario) {
	var planner algo.Planner = algo.NewSIPP()
	h := core.NewStraightLineHeuristic(sc.ws, sc.agent)

	start := time.Now()
	path := planner.FindPath(sc.agent, sc.ws, sc.cons, h, 1)
	elapsed := time.Since(start)

	if path.Empty() {
		fmt.Printf("  %s: no path (time=%v)\n", planner.Name(), elapsed)
		return
	}
	if err := algo.ValidatePath(path, sc.cons, sc.agent.ID); err != nil {
		fmt.Printf("  %s: INVALID path: %v\n", planner.Name(), err)
		return
	}
	fmt.Printf("  %s: cost=%.2f, expanded=%d, time=%v\n", planner.Name(), path.Cost, path.Expanded, elapsed)
	for _, n := range path.Nodes {
		fmt.Printf("    t=%6.2f  vertex %-3d (%.0f, %.0f)\n", n.G, n.ID, n.Pos.X, n.Pos.Y)
	}
}

func buildScenarios() []scenario {
	corridor := lineWorkspace(5)
	grid := gridWorkspace(3)

	return []scenario{
		{
			name:  "Free corridor",
			ws:    corridor,
			agent: agentBetween(corridor, 0, 0, 4),
		},
		{
			name:  "Blocked cell forces a wait",
			ws:    corridor,
			agent: agentBetween(corridor, 1, 0, 2),
			cons: []core.Constraint{
				vertexWindow(corridor, 1, 1.0, 2.0),
			},
		},
		{
			name:  "Forbidden edge window",
			ws:    grid,
			agent: agentBetween(grid, 2, 0, 2),
			cons: []core.Constraint{
				edgeWindow(grid, 1, 2, 1.0, 2.5),
			},
		},
		{
			name:  "Mandatory traversal",
			ws:    corridor,
			agent: agentBetween(corridor, 3, 0, 4),
			cons: []core.Constraint{
				landmarkWindow(corridor, 3, 2, 3, 5.0, 6.0),
			},
		},
		{
			name:  "Fully blocked",
			ws:    corridor,
			agent: agentBetween(corridor, 4, 0, 4),
			cons: []core.Constraint{
				vertexWindow(corridor, 2, 0, core.Infinity),
			},
		},
	}
}

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
			ws.AddVertex(&core.Vertex{
				ID:  core.VertexID(y*n + x),
				Pos: core.Pos{X: float64(x), Y: float64(y)},
			})
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

func vertexWindow(ws *core.Workspace, v core.VertexID, t1, t2 float64) core.Constraint {
	pos := ws.VertexByID(v).Pos
	return core.Constraint{From: v, To: v, FromPos: pos, ToPos: pos, T1: t1, T2: t2}
}

func edgeWindow(ws *core.Workspace, from, to core.VertexID, t1, t2 float64) core.Constraint {
	return core.Constraint{
		From: from, To: to,
		FromPos: ws.VertexByID(from).Pos, ToPos: ws.VertexByID(to).Pos,
		T1: t1, T2: t2,
	}
}

func landmarkWindow(ws *core.Workspace, agent core.AgentID, from, to core.VertexID, t1, t2 float64) core.Constraint {
	c := edgeWindow(ws, from, to, t1, t2)
	c.Positive = true
	c.Agent = agent
	return c
}
