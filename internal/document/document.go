package document

import (
	"fmt"
	"slices"

	"go.yaml.in/yaml/v4"
)

// Document is the decoded form of a single node or fragment file.
type Document struct {
	Classes     Classes        `yaml:"classes"`
	Parameters  map[string]any `yaml:"parameters"`
	Environment *string        `yaml:"environment"`
	Includes    Includes       `yaml:":include"`
}

// Class is a class name with its optional argument mapping.
// Args is nil when the class was given without arguments.
type Class struct {
	Name string
	Args map[string]any
}

// Classes holds classes in declaration order.
type Classes []Class

// UnmarshalYAML handles both list and mapping forms for classes.
// A list may mix bare names with single-entry mappings (name: args).
func (c *Classes) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)

	seen := make(map[string]bool)
	var classes Classes
	add := func(name string, args map[string]any) {
		if seen[name] {
			return
		}
		seen[name] = true
		classes = append(classes, Class{Name: name, Args: args})
	}

	switch value.Kind {
	case yaml.SequenceNode:
		for _, item := range value.Content {
			item = resolveAlias(item)
			switch item.Kind {
			case yaml.ScalarNode:
				name, err := className(item)
				if err != nil {
					return err
				}
				add(name, nil)
			case yaml.MappingNode:
				if err := decodeClassMapping(item, add); err != nil {
					return err
				}
			default:
				return fmt.Errorf("line %d: class entry must be a name or a mapping", item.Line)
			}
		}
	case yaml.MappingNode:
		if err := decodeClassMapping(value, add); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: classes must be a list or a mapping", value.Line)
	}

	*c = classes
	return nil
}

// decodeClassMapping walks mapping pairs in document order.
func decodeClassMapping(value *yaml.Node, add func(string, map[string]any)) error {
	for i := 0; i+1 < len(value.Content); i += 2 {
		name, err := className(value.Content[i])
		if err != nil {
			return err
		}
		var args map[string]any
		if err := value.Content[i+1].Decode(&args); err != nil {
			return fmt.Errorf("class %q: %w", name, err)
		}
		add(name, args)
	}
	return nil
}

// className decodes a scalar class name. Null and empty names are rejected.
func className(n *yaml.Node) (string, error) {
	n = resolveAlias(n)
	if n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return "", fmt.Errorf("line %d: class name must be a non-empty string", n.Line)
	}
	var name string
	if err := n.Decode(&name); err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("line %d: class name must be a non-empty string", n.Line)
	}
	return name, nil
}

// Includes lists the documents named by an :include directive.
type Includes []string

// UnmarshalYAML handles both string and list forms for includes.
func (i *Includes) UnmarshalYAML(value *yaml.Node) error {
	// Try string form first (shorthand)
	if value.Kind == yaml.ScalarNode {
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		if single == "" {
			return fmt.Errorf("line %d: :include names must not be empty", value.Line)
		}
		*i = Includes{single}
		return nil
	}

	// Fall back to list form
	var list []string
	if err := value.Decode(&list); err != nil {
		return fmt.Errorf("line %d: :include must be a string or a list of strings: %w", value.Line, err)
	}
	if slices.Contains(list, "") {
		return fmt.Errorf("line %d: :include names must not be empty", value.Line)
	}
	*i = list
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
