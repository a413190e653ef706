package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// flatShapeJSON recognises documents with a top-level steps object.
const flatShapeJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://floxyview.dev/schemas/flat.json",
  "type": "object",
  "required": ["steps"],
  "properties": {
    "steps": { "type": "object" }
  }
}`

// legacyShapeJSON recognises documents nesting Steps and Start under Definition.
const legacyShapeJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://floxyview.dev/schemas/legacy.json",
  "type": "object",
  "required": ["Definition"],
  "properties": {
    "Definition": {
      "type": "object",
      "required": ["Steps"],
      "properties": {
        "Steps": { "type": "object" }
      }
    }
  }
}`

// documentShape describes where one accepted layout keeps its steps and start.
type documentShape struct {
	name     string
	schema   *jsonschema.Schema
	envelope string // key holding the steps/start pair, "" for top level
	stepsKey string
	startKey string
}

// shapes are tried in order; the flat layout wins when both match.
var shapes = []documentShape{
	{
		name:     "flat",
		schema:   mustCompileShape("https://floxyview.dev/schemas/flat.json", flatShapeJSON),
		stepsKey: "steps",
		startKey: "start",
	},
	{
		name:     "legacy",
		schema:   mustCompileShape("https://floxyview.dev/schemas/legacy.json", legacyShapeJSON),
		envelope: "Definition",
		stepsKey: "Steps",
		startKey: "Start",
	},
}

func mustCompileShape(url, src string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		panic(fmt.Sprintf("schema: unmarshal %s: %v", url, err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		panic(fmt.Sprintf("schema: add resource %s: %v", url, err))
	}
	return c.MustCompile(url)
}

// Field candidates, lower/snake first. The first present, non-empty value wins.
var (
	typeKeys      = []string{"type", "Type"}
	labelKeys     = []string{"label", "Label"}
	nextKeys      = []string{"next", "Next"}
	elseKeys      = []string{"else", "Else"}
	onFailureKeys = []string{"on_failure", "OnFailure"}
	parallelKeys  = []string{"parallel", "Parallel"}
	waitForKeys   = []string{"wait_for", "WaitFor"}
)

// Parse decodes raw JSON text and normalizes it into a Document.
//
// Errors are *Error values: ErrCodeParse when the text is not JSON,
// ErrCodeSchema when neither accepted document shape is present.
func Parse(raw []byte) (*Document, error) {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, NewError(ErrCodeParse, "invalid JSON").WithCause(err)
	}

	shape, ok := detectShape(value)
	if !ok {
		return nil, NewError(ErrCodeSchema, "invalid format")
	}

	stepsRaw, startRaw, err := shape.locate(raw)
	if err != nil {
		return nil, NewErrorf(ErrCodeSchema, "invalid %s document", shape.name).WithCause(err)
	}

	steps := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(stepsRaw, steps); err != nil {
		return nil, NewErrorf(ErrCodeSchema, "invalid %s steps", shape.name).WithCause(err)
	}

	doc := NewDocument()
	doc.Start, _ = decodeString(startRaw)
	for pair := steps.Oldest(); pair != nil; pair = pair.Next() {
		doc.Steps.Set(pair.Key, normalizeStep(pair.Key, pair.Value))
	}
	return doc, nil
}

// detectShape returns the first accepted shape the decoded value satisfies.
func detectShape(value any) (documentShape, bool) {
	for _, s := range shapes {
		if s.schema.Validate(value) == nil {
			return s, true
		}
	}
	return documentShape{}, false
}

// locate extracts the raw steps object and start value for the shape.
func (s documentShape) locate(raw []byte) (json.RawMessage, json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, nil, err
	}
	if s.envelope != "" {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(fields[s.envelope], &inner); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", s.envelope, err)
		}
		fields = inner
	}
	return fields[s.stepsKey], fields[s.startKey], nil
}

// normalizeStep converts one untyped step value into a Step. Values that are
// not JSON objects yield a plain task labelled with the step name.
func normalizeStep(name string, raw json.RawMessage) *Step {
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(raw, &fields)

	return &Step{
		Name:      name,
		Type:      ParseStepType(resolveField(fields, decodeString, typeKeys...)),
		Label:     resolveField(fields, decodeString, labelKeys...),
		Next:      resolveField(fields, decodeNames, nextKeys...),
		Else:      resolveField(fields, decodeString, elseKeys...),
		OnFailure: resolveField(fields, decodeString, onFailureKeys...),
		Parallel:  resolveField(fields, decodeNames, parallelKeys...),
		WaitFor:   resolveField(fields, decodeNames, waitForKeys...),
	}
}

// resolveField checks keys in order and returns the first value that is
// present and decodes to something non-empty. The zero value is returned
// when no candidate qualifies.
func resolveField[T any](fields map[string]json.RawMessage, decode func(json.RawMessage) (T, bool), keys ...string) T {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if v, ok := decode(raw); ok {
			return v
		}
	}
	var zero T
	return zero
}

// decodeString accepts a non-empty JSON string.
func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == "" {
		return "", false
	}
	return s, true
}

// decodeNames accepts a single step name or an array of them. Empty and
// non-string entries are dropped.
func decodeNames(raw json.RawMessage) ([]string, bool) {
	if s, ok := decodeString(raw); ok {
		return []string{s}, true
	}
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil, false
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := decodeString(item); ok {
			names = append(names, s)
		}
	}
	return names, len(names) > 0
}
