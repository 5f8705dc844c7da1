// Package main provides a benchmark runner for the planner.
// Runs the planner on generated instances and collects metrics.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/elektrokombinacija/sipp-planner/internal/algo"
	"github.com/elektrokombinacija/sipp-planner/internal/core"
)

// InstanceFile mirrors the gen_instances output.
type InstanceFile struct {
	Name   string `json:"name"`
	Params struct {
		Seed       int64 `json:"seed"`
		GridWidth  int   `json:"grid_width"`
		GridHeight int   `json:"grid_height"`
	} `json:"params"`
	Vertices []struct {
		ID int     `json:"id"`
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
	} `json:"vertices"`
	Edges []struct {
		From int `json:"from"`
		To   int `json:"to"`
	} `json:"edges"`
	Agent struct {
		ID    int `json:"id"`
		Start int `json:"start"`
		Goal  int `json:"goal"`
	} `json:"agent"`
	Constraints []struct {
		Agent    int     `json:"agent"`
		Positive bool    `json:"positive"`
		From     int     `json:"from"`
		To       int     `json:"to"`
		T1       float64 `json:"t1"`
		T2       float64 `json:"t2"`
	} `json:"constraints"`
}

// BenchmarkResult stores results from a single planner run.
type BenchmarkResult struct {
	Timestamp     string
	GoVersion     string
	OS            string
	Arch          string
	Instance      string
	GridSize      string
	Constraints   int
	RuntimeMs     float64
	Success       bool
	Valid         bool
	Cost          float64
	NodesExpanded int
	PathLength    int
}

func loadInstance(path string) (*InstanceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var inst InstanceFile
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

// buildProblem converts a loaded instance into planner inputs.
func buildProblem(inst *InstanceFile) (*core.Workspace, core.Agent, []core.Constraint) {
	ws := core.NewWorkspace()
	for _, v := range inst.Vertices {
		ws.AddVertex(&core.Vertex{ID: core.VertexID(v.ID), Pos: core.Pos{X: v.X, Y: v.Y}})
	}
	for _, e := range inst.Edges {
		ws.AddEdge(core.VertexID(e.From), core.VertexID(e.To))
	}

	agent := core.Agent{
		ID:       core.AgentID(inst.Agent.ID),
		Start:    core.VertexID(inst.Agent.Start),
		Goal:     core.VertexID(inst.Agent.Goal),
		StartPos: ws.VertexByID(core.VertexID(inst.Agent.Start)).Pos,
		GoalPos:  ws.VertexByID(core.VertexID(inst.Agent.Goal)).Pos,
	}

	cons := make([]core.Constraint, 0, len(inst.Constraints))
	for _, c := range inst.Constraints {
		from, to := core.VertexID(c.From), core.VertexID(c.To)
		cons = append(cons, core.Constraint{
			Agent:    core.AgentID(c.Agent),
			Positive: c.Positive,
			From:     from,
			To:       to,
			FromPos:  ws.VertexByID(from).Pos,
			ToPos:    ws.VertexByID(to).Pos,
			T1:       c.T1,
			T2:       c.T2,
		})
	}
	return ws, agent, cons
}

func runPlanner(inst *InstanceFile) *BenchmarkResult {
	result := &BenchmarkResult{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		Instance:    inst.Name,
		GridSize:    fmt.Sprintf("%dx%d", inst.Params.GridWidth, inst.Params.GridHeight),
		Constraints: len(inst.Constraints),
	}

	ws, agent, cons := buildProblem(inst)
	h := core.NewStraightLineHeuristic(ws, agent)
	planner := algo.NewSIPP()

	startTime := time.Now()
	path := planner.FindPath(agent, ws, cons, h, 1)
	result.RuntimeMs = float64(time.Since(startTime).Microseconds()) / 1000.0

	if path.Empty() {
		return result
	}
	result.Success = true
	result.Cost = path.Cost
	result.NodesExpanded = path.Expanded
	result.PathLength = len(path.Nodes)
	result.Valid = algo.ValidatePath(path, cons, agent.ID) == nil
	return result
}

func writeCSV(results []*BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"timestamp", "go_version", "os", "arch",
		"instance", "grid_size", "constraints",
		"runtime_ms", "success", "valid", "cost", "nodes_expanded", "path_length",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Timestamp, r.GoVersion, r.OS, r.Arch,
			r.Instance, r.GridSize, fmt.Sprintf("%d", r.Constraints),
			fmt.Sprintf("%.3f", r.RuntimeMs), fmt.Sprintf("%t", r.Success),
			fmt.Sprintf("%t", r.Valid), fmt.Sprintf("%.3f", r.Cost),
			fmt.Sprintf("%d", r.NodesExpanded), fmt.Sprintf("%d", r.PathLength),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(results []*BenchmarkResult) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	var runs, successes, valid int
	var totalMs, totalCost float64
	var totalExpanded int
	for _, r := range results {
		runs++
		totalMs += r.RuntimeMs
		if r.Success {
			successes++
			totalCost += r.Cost
			totalExpanded += r.NodesExpanded
		}
		if r.Valid {
			valid++
		}
	}
	fmt.Printf("\nRuns: %d  Solved: %d  Valid: %d  AvgRuntime: %.3fms",
		runs, successes, valid, totalMs/float64(runs))
	if successes > 0 {
		fmt.Printf("  AvgCost: %.2f  AvgExpanded: %.1f",
			totalCost/float64(successes), float64(totalExpanded)/float64(successes))
	}
	fmt.Println()
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory with instance JSON files")
	output := flag.String("output", "benchmark_results.csv", "CSV output file")
	flag.Parse()

	entries, err := os.ReadDir(*inputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input directory: %v\n", err)
		os.Exit(1)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var results []*BenchmarkResult
	for _, name := range names {
		inst, err := loadInstance(filepath.Join(*inputDir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", name, err)
			continue
		}
		r := runPlanner(inst)
		results = append(results, r)
		fmt.Printf("%-30s success=%-5t valid=%-5t cost=%8.2f expanded=%6d %8.3fms\n",
			r.Instance, r.Success, r.Valid, r.Cost, r.NodesExpanded, r.RuntimeMs)
	}

	if err := writeCSV(results, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}
