package schema

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// StepType enumerates the kinds of steps in a flow document.
type StepType string

const (
	StepTypeTask      StepType = "task"
	StepTypeCondition StepType = "condition"
	StepTypeJoin      StepType = "join"
	StepTypeSavePoint StepType = "save_point"
	StepTypeHuman     StepType = "human"
	StepTypeFork      StepType = "fork"
	StepTypeParallel  StepType = "parallel"
)

// ParseStepType maps a declared type to a StepType. Matching is
// case-insensitive but otherwise exact; unknown or empty values (including
// padded ones such as " condition ") fall back to StepTypeTask.
func ParseStepType(s string) StepType {
	switch strings.ToLower(s) {
	case "condition":
		return StepTypeCondition
	case "join":
		return StepTypeJoin
	case "save_point", "savepoint":
		return StepTypeSavePoint
	case "human":
		return StepTypeHuman
	case "fork":
		return StepTypeFork
	case "parallel":
		return StepTypeParallel
	default:
		return StepTypeTask
	}
}

// Step is the canonical view of one step, independent of the document
// shape or field casing it was read from.
type Step struct {
	Name      string
	Type      StepType
	Label     string   // "" when the document declares none
	Next      []string // for conditions only Next[0] is the "yes" branch
	Else      string
	OnFailure string
	Parallel  []string
	WaitFor   []string // dependencies; edges point from these to the step
}

// DisplayLabel returns the label shown in the diagram.
func (s *Step) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

// Document is a normalized flow definition. Steps keep the order in which
// their keys appear in the source text.
type Document struct {
	Start string
	Steps *orderedmap.OrderedMap[string, *Step]
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Steps: orderedmap.New[string, *Step]()}
}

// StartStep returns the entry step when Start names an existing step.
func (d *Document) StartStep() (*Step, bool) {
	if d.Start == "" {
		return nil, false
	}
	return d.Steps.Get(d.Start)
}

// Each calls fn for every step in document order.
func (d *Document) Each(fn func(step *Step)) {
	for pair := d.Steps.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Value)
	}
}
