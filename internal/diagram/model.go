package diagram

// NodeKind selects the shape a node is drawn with.
type NodeKind string

const (
	NodeKindRectangle     NodeKind = "rectangle"
	NodeKindDecision      NodeKind = "decision"
	NodeKindCircle        NodeKind = "circle"
	NodeKindCylinder      NodeKind = "cylinder"
	NodeKindParallelogram NodeKind = "parallelogram"
)

// EdgeStyle selects the line an edge is drawn with.
type EdgeStyle string

const (
	EdgeStyleSolid  EdgeStyle = "solid"
	EdgeStyleDashed EdgeStyle = "dashed"
	EdgeStyleThick  EdgeStyle = "thick"
	EdgeStyleDotted EdgeStyle = "dotted"
)

// DiagramModel is the intermediate representation used by all renderers.
type DiagramModel struct {
	Nodes []*Node
	Edges []Edge
}

// Node represents a single step in the diagram. ID is the step name as
// declared; renderers sanitize it.
type Node struct {
	ID    string
	Label string
	Kind  NodeKind
}

// Edge represents a control-flow relationship between two steps.
type Edge struct {
	From  string
	To    string
	Label string
	Style EdgeStyle
}
