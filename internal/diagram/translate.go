package diagram

import (
	"errors"

	"github.com/rendis/floxyview/pkg/schema"
)

// Placeholder is the preview diagram shown when no document is supplied.
// It exercises every node shape and edge kind.
const Placeholder = `flowchart TD
    step1([Start]) --> step2[Task]
    step2 --> step3{Condition?}
    step3 -->|yes| step4[Handler]
    step3 -->|no| step5[Rollback]
    step4 -.->|on failure| step7[Compensation]
    step4 ==> step6[ParallelTask]
    step5 --> step6 --> step8([Complete])`

// Translate converts a JSON flow document into Mermaid flowchart source.
//
// It never fails: empty input yields Placeholder, and invalid input yields a
// single-node error diagram (see ErrorDiagram).
func Translate(raw string) string {
	if raw == "" {
		return Placeholder
	}
	model, err := FromJSON([]byte(raw))
	if err != nil {
		return ErrorDiagram(err)
	}
	return RenderMermaid(model)
}

// FromJSON parses a JSON flow document and builds its diagram model.
func FromJSON(raw []byte) (*DiagramModel, error) {
	doc, err := schema.Parse(raw)
	if err != nil {
		return nil, err
	}
	return Build(doc), nil
}

// FromYAML is FromJSON for documents written in YAML.
func FromYAML(raw []byte) (*DiagramModel, error) {
	converted, err := schema.FromYAML(raw)
	if err != nil {
		return nil, err
	}
	return FromJSON(converted)
}

// ErrorDiagram renders err as a one-node diagram. Parse errors embed the
// decoder message; anything else is reported as an invalid format.
func ErrorDiagram(err error) string {
	var se *schema.Error
	if errors.As(err, &se) && se.Code == schema.ErrCodeParse {
		msg := se.Message
		if se.Cause != nil {
			msg = se.Cause.Error()
		}
		return FlowchartHeader + "\nerror([Invalid JSON: " + msg + "])"
	}
	return FlowchartHeader + "\nerror([Invalid JSON format])"
}
