package domain

import "strings"

// GoalKind classifies a node of the goal graph.
type GoalKind string

// Goal kinds.
const (
	GoalValue   GoalKind = "value"
	GoalGoal    GoalKind = "goal"
	GoalProject GoalKind = "project"
)

// GoalNode is one value, goal or project note.
type GoalNode struct {
	Kind   GoalKind          `json:"kind"`
	Name   string            `json:"name"`
	Status string            `json:"status,omitempty"`
	Tags   []string          `json:"tags,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Path   string            `json:"path"`
}

// GoalGraph is the static value/goal context passed to analysis.
type GoalGraph struct {
	Values   []GoalNode `json:"values,omitempty"`
	Goals    []GoalNode `json:"goals,omitempty"`
	Projects []GoalNode `json:"projects,omitempty"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GoalGraph) IsEmpty() bool {
	return g == nil || len(g.Values)+len(g.Goals)+len(g.Projects) == 0
}

// ActiveGoals returns the names of goals that are listed in active, or
// all goals whose status is not done/dropped when active is empty.
func (g *GoalGraph) ActiveGoals(active []string) []string {
	if g == nil {
		return nil
	}
	if len(active) > 0 {
		wanted := make(map[string]bool, len(active))
		for _, name := range active {
			wanted[strings.ToLower(strings.TrimSpace(name))] = true
		}
		var out []string
		for _, node := range g.Goals {
			if wanted[strings.ToLower(node.Name)] {
				out = append(out, node.Name)
			}
		}
		return out
	}
	var out []string
	for _, node := range g.Goals {
		switch strings.ToLower(node.Status) {
		case "done", "dropped", "archived":
			continue
		}
		out = append(out, node.Name)
	}
	return out
}
