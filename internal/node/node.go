// Package node resolves node classifications from a tree of YAML documents.
//
// A node document lives at nodes/<name>.yaml below the base directory. It
// may name other documents with an :include directive; included data is
// merged in at lower precedence than the including document:
//
//   - classes: a class already present keeps its arguments
//   - parameters: a key already present keeps its value (no deep merge)
//   - environment: the first value found wins
//
// Earlier entries of an :include list take precedence over later ones.
package node

import "github.com/neox5/yamlenc/internal/document"

// NodesDir is the subdirectory of the base directory holding node documents.
const NodesDir = "nodes"

// Class is a class name with its optional argument mapping.
type Class = document.Class

// Node is the resolved classification of a single node.
type Node struct {
	Name        string
	Classes     []Class
	Parameters  map[string]any
	Environment *string
}

// HasClassArguments reports whether any class carries a non-empty argument mapping.
func (n *Node) HasClassArguments() bool {
	for _, c := range n.Classes {
		if len(c.Args) > 0 {
			return true
		}
	}
	return false
}

// ClassNames returns class names in precedence order.
func (n *Node) ClassNames() []string {
	names := make([]string, len(n.Classes))
	for i, c := range n.Classes {
		names[i] = c.Name
	}
	return names
}

// Class returns the named class.
func (n *Node) Class(name string) (Class, bool) {
	for _, c := range n.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return Class{}, false
}
