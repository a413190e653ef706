package diagram

import (
	"fmt"
	"regexp"
	"strings"
)

// FlowchartHeader opens every diagram the translator produces.
const FlowchartHeader = "flowchart TD"

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// RenderMermaid renders a DiagramModel as a Mermaid flowchart string:
// the header, one line per node, a blank line, then one line per edge.
func RenderMermaid(model *DiagramModel) string {
	var b strings.Builder

	b.WriteString(FlowchartHeader)
	b.WriteString("\n")

	for _, node := range model.Nodes {
		b.WriteString(mermaidNodeDef(node))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	for _, edge := range model.Edges {
		b.WriteString(mermaidEdge(edge))
		b.WriteString("\n")
	}

	return b.String()
}

// mermaidNodeDef returns a Mermaid node definition with the appropriate shape.
func mermaidNodeDef(node *Node) string {
	id := SanitizeID(node.ID)

	switch node.Kind {
	case NodeKindDecision:
		return fmt.Sprintf("%s{%s}", id, node.Label)
	case NodeKindCircle:
		return fmt.Sprintf("%s((%s))", id, node.Label)
	case NodeKindCylinder:
		return fmt.Sprintf("%s[( %s )]", id, node.Label)
	case NodeKindParallelogram:
		return fmt.Sprintf("%s[/ %s /]", id, node.Label)
	default: // rectangle
		return fmt.Sprintf("%s[%s]", id, node.Label)
	}
}

// mermaidEdge returns a Mermaid link with the arrow for the edge style.
func mermaidEdge(edge Edge) string {
	from, to := SanitizeID(edge.From), SanitizeID(edge.To)

	switch edge.Style {
	case EdgeStyleDashed:
		// The label pipes are always written, even when empty.
		return fmt.Sprintf("%s -.->|%s| %s", from, edge.Label, to)
	case EdgeStyleThick:
		return fmt.Sprintf("%s ==>%s %s", from, pipeLabel(edge.Label), to)
	case EdgeStyleDotted:
		// Mermaid has no labelled form for this link.
		return fmt.Sprintf("%s -.- %s", from, to)
	default:
		return fmt.Sprintf("%s -->%s %s", from, pipeLabel(edge.Label), to)
	}
}

func pipeLabel(label string) string {
	if label == "" {
		return ""
	}
	return "|" + label + "|"
}

// SanitizeID converts a step name to a Mermaid-safe identifier by replacing
// every character outside [A-Za-z0-9_] with an underscore. Distinct names
// may collide; the function is idempotent.
func SanitizeID(name string) string {
	return unsafeIDChars.ReplaceAllString(name, "_")
}
