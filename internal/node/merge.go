package node

import "github.com/neox5/yamlenc/internal/document"

// layer is the data contributed by one document, possibly already merged
// with its own includes.
type layer struct {
	classes     []Class
	parameters  map[string]any
	environment *string
	depth       int // longest include chain below this document
}

// localLayer extracts the document's own contribution.
func localLayer(doc *document.Document) *layer {
	l := &layer{
		classes:     doc.Classes,
		parameters:  doc.Parameters,
		environment: doc.Environment,
	}
	if l.parameters == nil {
		l.parameters = make(map[string]any)
	}
	return l
}

// mergeLayers flattens layers given in precedence order (highest first)
// into a new owned layer. The first occurrence of a class or parameter wins.
func mergeLayers(layers []*layer) *layer {
	result := &layer{parameters: make(map[string]any)}
	seen := make(map[string]bool)

	for i, l := range layers {
		for _, c := range l.classes {
			if seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			result.classes = append(result.classes, c)
		}

		for key, value := range l.parameters {
			if _, exists := result.parameters[key]; !exists {
				result.parameters[key] = value
			}
		}

		if result.environment == nil && l.environment != nil {
			env := *l.environment
			result.environment = &env
		}

		// layers[0] is the including document itself
		if i > 0 && l.depth+1 > result.depth {
			result.depth = l.depth + 1
		}
	}

	return result
}
