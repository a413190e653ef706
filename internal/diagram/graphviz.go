package diagram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// Format is an output format supported by RenderGraphviz.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat validates a graphviz output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("diagram: unsupported format %q (want dot, svg or png)", s)
	}
}

// RenderGraphviz lays out a DiagramModel with graphviz and returns the
// rendered bytes in the requested format.
func RenderGraphviz(ctx context.Context, model *DiagramModel, format Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("diagram: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("diagram: create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.TBRank)

	gvNodes := make(map[string]*cgraph.Node, len(model.Nodes))
	for _, node := range model.Nodes {
		gvNode, nErr := ensureNode(graph, gvNodes, node.ID, node.Label)
		if nErr != nil {
			return nil, nErr
		}
		applyNodeShape(gvNode, node.Kind)
	}

	for _, edge := range model.Edges {
		// Dangling references become plain nodes, as Mermaid does.
		from, fErr := ensureNode(graph, gvNodes, edge.From, edge.From)
		if fErr != nil {
			return nil, fErr
		}
		to, tErr := ensureNode(graph, gvNodes, edge.To, edge.To)
		if tErr != nil {
			return nil, tErr
		}
		e, eErr := graph.CreateEdgeByName("", from, to)
		if eErr != nil {
			return nil, fmt.Errorf("diagram: create edge %s -> %s: %w", edge.From, edge.To, eErr)
		}
		applyEdgeStyle(e, edge)
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.Format(format), &buf); err != nil {
		return nil, fmt.Errorf("diagram: render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// ensureNode returns the graphviz node for a step name, creating it on
// first use. Names are keyed by their sanitized form.
func ensureNode(graph *cgraph.Graph, nodes map[string]*cgraph.Node, name, label string) (*cgraph.Node, error) {
	id := SanitizeID(name)
	if n, ok := nodes[id]; ok {
		return n, nil
	}
	n, err := graph.CreateNodeByName(id)
	if err != nil {
		return nil, fmt.Errorf("diagram: create node %s: %w", id, err)
	}
	n.SetLabel(label)
	n.SetShape(cgraph.BoxShape)
	nodes[id] = n
	return n, nil
}

// applyNodeShape sets the graphviz shape matching a node kind.
func applyNodeShape(gvNode *cgraph.Node, kind NodeKind) {
	switch kind {
	case NodeKindDecision:
		gvNode.SetShape(cgraph.DiamondShape)
	case NodeKindCircle:
		gvNode.SetShape(cgraph.CircleShape)
	case NodeKindCylinder:
		gvNode.SetShape(cgraph.CylinderShape)
	case NodeKindParallelogram:
		gvNode.SetShape(cgraph.ParallelogramShape)
	default:
		gvNode.SetShape(cgraph.BoxShape)
	}
}

// applyEdgeStyle maps an edge style and label onto graphviz attributes.
func applyEdgeStyle(e *cgraph.Edge, edge Edge) {
	switch edge.Style {
	case EdgeStyleDashed:
		e.SetStyle(cgraph.DashedEdgeStyle)
	case EdgeStyleThick:
		e.SetStyle(cgraph.BoldEdgeStyle)
	case EdgeStyleDotted:
		e.SetStyle(cgraph.DottedEdgeStyle)
		e.SetArrowHead(cgraph.NoneArrow)
	default:
		e.SetStyle(cgraph.SolidEdgeStyle)
	}
	if edge.Label != "" && edge.Style != EdgeStyleDotted {
		e.SetLabel(edge.Label)
	}
}
