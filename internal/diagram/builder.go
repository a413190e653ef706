package diagram

import (
	"github.com/rendis/floxyview/pkg/schema"
)

// startNodeID names the synthetic entry node.
const startNodeID = "_start_"

// Edge labels.
const (
	labelYes       = "yes"
	labelNo        = "no"
	labelOnFailure = "on failure"
)

// Build constructs a DiagramModel from a normalized document.
//
// Nodes come first: the optional start node, then one node per step in
// document order. Edges follow the same order: the start edge, then for
// each step its next/branch edges, failure edge, parallel edges and
// wait-for edges.
func Build(doc *schema.Document) *DiagramModel {
	model := &DiagramModel{}

	if _, ok := doc.StartStep(); ok {
		model.Nodes = append(model.Nodes, &Node{ID: startNodeID, Label: "Start", Kind: NodeKindCircle})
		model.Edges = appendEdge(model.Edges, Edge{From: startNodeID, To: doc.Start, Style: EdgeStyleSolid})
	}

	doc.Each(func(step *schema.Step) {
		model.Nodes = append(model.Nodes, stepToNode(step))
	})
	doc.Each(func(step *schema.Step) {
		model.Edges = append(model.Edges, stepEdges(step)...)
	})

	return model
}

// stepToNode maps a Step to a diagram Node.
func stepToNode(step *schema.Step) *Node {
	return &Node{
		ID:    step.Name,
		Label: step.DisplayLabel(),
		Kind:  stepTypeToKind(step.Type),
	}
}

// stepTypeToKind converts a schema.StepType to a NodeKind.
func stepTypeToKind(st schema.StepType) NodeKind {
	switch st {
	case schema.StepTypeCondition:
		return NodeKindDecision
	case schema.StepTypeJoin:
		return NodeKindCircle
	case schema.StepTypeSavePoint:
		return NodeKindCylinder
	case schema.StepTypeHuman:
		return NodeKindParallelogram
	default: // task, fork, parallel
		return NodeKindRectangle
	}
}

// stepEdges returns the outgoing (and, for wait_for, incoming) edges of a step.
func stepEdges(step *schema.Step) []Edge {
	var edges []Edge

	if step.Type == schema.StepTypeCondition {
		// Only the first next entry is the "yes" branch.
		if len(step.Next) > 0 {
			edges = appendEdge(edges, Edge{From: step.Name, To: step.Next[0], Label: labelYes, Style: EdgeStyleSolid})
		}
		edges = appendEdge(edges, Edge{From: step.Name, To: step.Else, Label: labelNo, Style: EdgeStyleSolid})
	} else {
		for _, next := range step.Next {
			edges = appendEdge(edges, Edge{From: step.Name, To: next, Style: EdgeStyleSolid})
		}
	}

	edges = appendEdge(edges, Edge{From: step.Name, To: step.OnFailure, Label: labelOnFailure, Style: EdgeStyleDashed})

	for _, child := range step.Parallel {
		edges = appendEdge(edges, Edge{From: step.Name, To: child, Style: EdgeStyleThick})
	}

	// Dependencies point at the waiting step.
	for _, dep := range step.WaitFor {
		edges = appendEdge(edges, Edge{From: dep, To: step.Name, Style: EdgeStyleDotted})
	}

	return edges
}

// appendEdge drops edges with an empty endpoint.
func appendEdge(edges []Edge, e Edge) []Edge {
	if e.From == "" || e.To == "" {
		return edges
	}
	return append(edges, e)
}
