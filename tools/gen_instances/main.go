// Package main provides instance generation for planner benchmarks.
// Generates deterministic grid instances with random constraint sets.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// InstanceParams defines parameters for instance generation.
type InstanceParams struct {
	Seed          int64   `json:"seed"`
	GridWidth     int     `json:"grid_width"`
	GridHeight    int     `json:"grid_height"`
	WaitCount     int     `json:"wait_count"`     // Forbidden vertex interval draws (draws on start/goal are dropped)
	MoveCount     int     `json:"move_count"`     // Forbidden edge windows
	LandmarkCount int     `json:"landmark_count"` // Mandatory traversals
	Horizon       float64 `json:"horizon"`        // Latest constraint window start
	WindowMax     float64 `json:"window_max"`     // Maximum constraint window length
}

// Vertex is a grid location.
type Vertex struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Edge connects two vertices.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Agent is the planning request.
type Agent struct {
	ID    int `json:"id"`
	Start int `json:"start"`
	Goal  int `json:"goal"`
}

// Constraint is a raw planner constraint.
type Constraint struct {
	Agent    int     `json:"agent"`
	Positive bool    `json:"positive"`
	From     int     `json:"from"`
	To       int     `json:"to"`
	T1       float64 `json:"t1"`
	T2       float64 `json:"t2"`
}

// Instance represents a complete planning problem.
type Instance struct {
	Name        string         `json:"name"`
	Params      InstanceParams `json:"params"`
	Vertices    []Vertex       `json:"vertices"`
	Edges       []Edge         `json:"edges"`
	Agent       Agent          `json:"agent"`
	Constraints []Constraint   `json:"constraints"`
	Generated   string         `json:"generated"`
}

// generateInstance creates a planning instance from parameters.
func generateInstance(params InstanceParams) *Instance {
	rng := rand.New(rand.NewSource(params.Seed))

	inst := &Instance{
		Name:      fmt.Sprintf("sipp_%dx%d_%d", params.GridWidth, params.GridHeight, params.Seed),
		Params:    params,
		Generated: time.Now().UTC().Format(time.RFC3339),
	}

	// 4-connected grid
	for y := 0; y < params.GridHeight; y++ {
		for x := 0; x < params.GridWidth; x++ {
			id := y*params.GridWidth + x
			inst.Vertices = append(inst.Vertices, Vertex{ID: id, X: float64(x), Y: float64(y)})
			if x < params.GridWidth-1 {
				inst.Edges = append(inst.Edges, Edge{From: id, To: id + 1})
			}
			if y < params.GridHeight-1 {
				inst.Edges = append(inst.Edges, Edge{From: id, To: id + params.GridWidth})
			}
		}
	}

	n := len(inst.Vertices)
	inst.Agent = Agent{ID: 0, Start: 0, Goal: n - 1}

	randomWindow := func() (float64, float64) {
		t1 := rng.Float64() * params.Horizon
		return t1, t1 + rng.Float64()*params.WindowMax
	}

	// Forbidden vertex intervals; start and goal stay clear so the
	// instance remains solvable.
	for i := 0; i < params.WaitCount; i++ {
		v := rng.Intn(n)
		if v == inst.Agent.Start || v == inst.Agent.Goal {
			continue
		}
		t1, t2 := randomWindow()
		inst.Constraints = append(inst.Constraints, Constraint{From: v, To: v, T1: t1, T2: t2})
	}

	// Forbidden edge windows along random grid edges.
	for i := 0; i < params.MoveCount; i++ {
		e := inst.Edges[rng.Intn(len(inst.Edges))]
		t1, t2 := randomWindow()
		inst.Constraints = append(inst.Constraints, Constraint{From: e.From, To: e.To, T1: t1, T2: t2})
	}

	// Mandatory traversals, windows spaced so the sequence stays
	// satisfiable on an empty grid.
	base := float64(params.GridWidth + params.GridHeight)
	for i := 0; i < params.LandmarkCount; i++ {
		e := inst.Edges[rng.Intn(len(inst.Edges))]
		t1 := base * float64(i+1)
		inst.Constraints = append(inst.Constraints, Constraint{
			Agent:    inst.Agent.ID,
			Positive: true,
			From:     e.From,
			To:       e.To,
			T1:       t1,
			T2:       t1 + 2,
		})
	}

	return inst
}

func main() {
	seed := flag.Int64("seed", 42, "Random seed for deterministic generation")
	gridWidth := flag.Int("width", 10, "Grid width")
	gridHeight := flag.Int("height", 10, "Grid height")
	waitCount := flag.Int("waits", 15, "Number of forbidden vertex interval draws (draws on start/goal are dropped)")
	moveCount := flag.Int("moves", 10, "Number of forbidden edge windows")
	landmarkCount := flag.Int("landmarks", 0, "Number of mandatory traversals")
	horizon := flag.Float64("horizon", 20, "Latest constraint window start")
	windowMax := flag.Float64("window", 4, "Maximum constraint window length")
	count := flag.Int("count", 1, "Number of instances (seed advances per instance)")
	outputDir := flag.String("output", "testdata", "Output directory")

	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < *count; i++ {
		params := InstanceParams{
			Seed:          *seed + int64(i),
			GridWidth:     *gridWidth,
			GridHeight:    *gridHeight,
			WaitCount:     *waitCount,
			MoveCount:     *moveCount,
			LandmarkCount: *landmarkCount,
			Horizon:       *horizon,
			WindowMax:     *windowMax,
		}

		inst := generateInstance(params)
		filename := filepath.Join(*outputDir, inst.Name+".json")
		data, err := json.MarshalIndent(inst, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling instance %s: %v\n", inst.Name, err)
			continue
		}
		if err := os.WriteFile(filename, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing instance %s: %v\n", filename, err)
			continue
		}

		fmt.Printf("Generated: %s (%dx%d grid, %d constraints)\n",
			filename, params.GridWidth, params.GridHeight, len(inst.Constraints))
	}
}
