package workflow

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Overlay carries run data to highlight on a rendered graph.
type Overlay struct {
	Visited []string
	Current string
}

// Mermaid renders the graph as a Mermaid flowchart. The start step is drawn
// as a circle, End as ((end)), and branch edges carry their label. A
// non-nil overlay highlights visited steps and the current one.
func (g *Graph) Mermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, name := range g.order {
		id := mermaidID(name)
		opener, closer := "[", "]"
		if name == g.start {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, name, closer)

		e := g.edges[name]
		switch e.kind {
		case edgeStatic:
			fmt.Fprintf(&sb, "    %s --> %s\n", id, mermaidID(e.to))
		case edgeBranch:
			for _, label := range slices.Sorted(maps.Keys(e.cases)) {
				safeLabel := strings.ReplaceAll(label, "\"", "'")
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, safeLabel, mermaidID(e.cases[label]))
			}
		case edgeConditional:
			for _, t := range e.targets {
				fmt.Fprintf(&sb, "    %s -.-> %s\n", id, mermaidID(t))
			}
		}
	}
	fmt.Fprintf(&sb, "    %s((end))\n", mermaidID(End))

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Visited {
			id := mermaidID(name)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", id)
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", mermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func mermaidID(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(name)
}
