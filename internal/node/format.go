package node

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v4"
)

// FlatNode is the wire-format view of a Node.
//
// Classes holds a []string when no class has arguments, and otherwise a
// mapping node of every class in precedence order.
type FlatNode struct {
	Name        string         `yaml:"name,omitempty"`
	Classes     any            `yaml:"classes"`
	Parameters  map[string]any `yaml:"parameters"`
	Environment *string        `yaml:"environment,omitempty"`
}

// Flatten builds the wire-format view of n.
func Flatten(n *Node) (FlatNode, error) {
	flat := FlatNode{
		Name:        n.Name,
		Parameters:  n.Parameters,
		Environment: n.Environment,
	}
	if flat.Parameters == nil {
		flat.Parameters = make(map[string]any)
	}

	// If none of the classes have arguments, use a list instead
	if !n.HasClassArguments() {
		flat.Classes = n.ClassNames()
		return flat, nil
	}

	classes := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, c := range n.Classes {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Name}

		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		if c.Args != nil {
			value = &yaml.Node{}
			if err := value.Encode(c.Args); err != nil {
				return FlatNode{}, fmt.Errorf("class %q: %w", c.Name, err)
			}
		}

		classes.Content = append(classes.Content, key, value)
	}
	flat.Classes = classes

	return flat, nil
}

// FlattenAll builds wire-format views for nodes, keeping their order.
func FlattenAll(nodes []*Node) ([]FlatNode, error) {
	flat := make([]FlatNode, 0, len(nodes))
	for _, n := range nodes {
		f, err := Flatten(n)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		flat = append(flat, f)
	}
	return flat, nil
}

// Encode writes v as a single YAML document with an explicit start marker.
func Encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
