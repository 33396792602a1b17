package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/hive/internal/store"
)

// TaskMermaid produces a Mermaid graph TD diagram of a project's tasks.
// Tasks are grouped by agent type; dependencies become arrows from the
// prerequisite to the dependent task. Dependencies on unknown IDs are
// skipped.
func TaskMermaid(tasks []store.Task) string {
	// Mermaid node IDs must be alphanumeric.
	nodeIDs := make(map[string]string, len(tasks))
	for i, t := range tasks {
		nodeIDs[t.ID] = fmt.Sprintf("T%d", i)
	}

	var groups []string
	byAgent := make(map[string][]store.Task)
	for _, t := range tasks {
		agent := t.AgentType
		if agent == "" {
			agent = "unassigned"
		}
		if _, ok := byAgent[agent]; !ok {
			groups = append(groups, agent)
		}
		byAgent[agent] = append(byAgent[agent], t)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, agent := range groups {
		sb.WriteString(fmt.Sprintf("  subgraph G%d[\"%.40s\"]\n", i, agent))
		for _, t := range byAgent[agent] {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeIDs[t.ID], label(t)))
		}
		sb.WriteString("  end\n")
	}

	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			src, ok := nodeIDs[dep]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s --> %s\n", src, nodeIDs[t.ID]))
		}
	}

	return sb.String()
}

// label renders a task name with its status, with quotes made safe for a
// Mermaid string.
func label(t store.Task) string {
	name := strings.ReplaceAll(t.Name, `"`, "'")
	if t.Status == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, t.Status)
}
