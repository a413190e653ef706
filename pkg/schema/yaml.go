package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// IsYAMLName reports whether a file name carries a YAML extension.
func IsYAMLName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// FromYAML converts a YAML flow document into equivalent JSON text.
// Mapping keys keep their written order, so steps render in the order
// they appear in the YAML source. Aliases and merge keys (<<) are
// expanded. Empty input yields empty output.
func FromYAML(raw []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, NewError(ErrCodeParse, "invalid YAML").WithCause(err)
	}
	if len(root.Content) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	if err := writeYAMLNode(&buf, &root); err != nil {
		return nil, NewError(ErrCodeParse, "invalid YAML").WithCause(err)
	}
	return buf.Bytes(), nil
}

type yamlEntry struct {
	key   string
	value *yaml.Node
}

// mappingEntries flattens a mapping in written order, expanding merge keys
// (<<). Explicit keys override merged ones wherever they appear; among
// merge sources the earlier one wins.
func mappingEntries(n *yaml.Node) ([]yamlEntry, error) {
	var entries []yamlEntry
	index := make(map[string]int)

	add := func(key string, value *yaml.Node, merged bool) {
		i, seen := index[key]
		switch {
		case !seen:
			index[key] = len(entries)
			entries = append(entries, yamlEntry{key: key, value: value})
		case !merged:
			entries[i].value = value
		}
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := resolveAlias(n.Content[i]), n.Content[i+1]
		if k.Kind != yaml.ScalarNode || k.ShortTag() != "!!merge" {
			add(k.Value, v, false)
			continue
		}

		sources, err := mergeSources(v)
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			inherited, err := mappingEntries(src)
			if err != nil {
				return nil, err
			}
			for _, e := range inherited {
				add(e.key, e.value, true)
			}
		}
	}
	return entries, nil
}

// mergeSources returns the mappings a merge key refers to: one mapping or
// a sequence of them.
func mergeSources(v *yaml.Node) ([]*yaml.Node, error) {
	v = resolveAlias(v)
	switch v.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{v}, nil
	case yaml.SequenceNode:
		sources := make([]*yaml.Node, 0, len(v.Content))
		for _, item := range v.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: merge sequence entries must be mappings", item.Line)
			}
			sources = append(sources, item)
		}
		return sources, nil
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping or a sequence of mappings", v.Line)
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func writeYAMLNode(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		return writeYAMLNode(buf, n.Content[0])

	case yaml.AliasNode:
		return writeYAMLNode(buf, n.Alias)

	case yaml.MappingNode:
		entries, err := mappingEntries(n)
		if err != nil {
			return err
		}
		buf.WriteByte('{')
		for i, e := range entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(e.key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeYAMLNode(buf, e.value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeYAMLNode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case yaml.ScalarNode:
		var v any = n.Value
		if n.ShortTag() != "!!str" {
			if err := n.Decode(&v); err != nil {
				return fmt.Errorf("line %d: %w", n.Line, err)
			}
		}
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		buf.Write(out)
		return nil

	default:
		return fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}
