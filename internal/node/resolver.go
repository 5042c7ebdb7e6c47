package node

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/neox5/yamlenc/internal/document"
)

// Observer receives resolution statistics.
type Observer interface {
	DocumentLoaded(name string)
	NodeResolved(n *Node, depth int, elapsed time.Duration)
	NodeFailed(name string, err error)
}

type nopObserver struct{}

func (nopObserver) DocumentLoaded(string)                  {}
func (nopObserver) NodeResolved(*Node, int, time.Duration) {}
func (nopObserver) NodeFailed(string, error)               {}

// Option configures a Resolver.
type Option func(*Resolver)

// WithObserver reports resolution statistics to o.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		if o != nil {
			r.observer = o
		}
	}
}

// Resolver resolves nodes below a base directory.
// It holds no state between calls; every resolution reads from disk.
type Resolver struct {
	baseDir  string
	observer Observer
}

// NewResolver creates a resolver for the tree rooted at baseDir.
func NewResolver(baseDir string, opts ...Option) *Resolver {
	r := &Resolver{
		baseDir:  baseDir,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseDir returns the directory documents are resolved against.
func (r *Resolver) BaseDir() string {
	return r.baseDir
}

// Resolve resolves the node document nodes/<name> and all of its includes.
func (r *Resolver) Resolve(name string) (*Node, error) {
	start := time.Now()

	merged, err := r.resolveInclude(path.Join(NodesDir, name), resolveContext{})
	if err != nil {
		r.observer.NodeFailed(name, err)
		return nil, err
	}

	n := &Node{
		Name:        name,
		Classes:     merged.classes,
		Parameters:  merged.parameters,
		Environment: merged.environment,
	}

	elapsed := time.Since(start)
	r.observer.NodeResolved(n, merged.depth, elapsed)
	slog.Debug("resolved node",
		"name", name,
		"classes", len(n.Classes),
		"parameters", len(n.Parameters),
		"depth", merged.depth,
		"elapsed", elapsed)

	return n, nil
}

// ResolveAll resolves every *.yaml file directly inside the nodes directory.
// Subdirectories are ignored. Resolution stops at the first failing node.
func (r *Resolver) ResolveAll() ([]*Node, error) {
	names, err := r.NodeNames()
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(names))
	for _, name := range names {
		n, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// NodeNames lists node names in directory order.
func (r *Resolver) NodeNames() ([]string, error) {
	nodesDir := filepath.Join(r.baseDir, NodesDir)
	entries, err := os.ReadDir(nodesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), document.Ext)
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}

	slog.Debug("listed nodes", "dir", nodesDir, "count", len(names))
	return names, nil
}

// resolveInclude loads a document and merges in everything it includes.
func (r *Resolver) resolveInclude(name string, ctx resolveContext) (*layer, error) {
	name = path.Clean(filepath.ToSlash(name))

	if chain := ctx.cycle(name); chain != nil {
		return nil, ctx.wrap(&CycleError{Chain: chain})
	}
	ctx = ctx.push(name)

	doc, err := document.Load(r.baseDir, name)
	if err != nil {
		return nil, ctx.wrap(err)
	}
	r.observer.DocumentLoaded(name)

	// Handle empty documents gracefully
	if doc == nil {
		return &layer{parameters: make(map[string]any)}, nil
	}

	local := localLayer(doc)
	if len(doc.Includes) == 0 {
		return mergeLayers([]*layer{local}), nil
	}

	layers := make([]*layer, 0, len(doc.Includes)+1)
	layers = append(layers, local)
	for _, inc := range doc.Includes {
		included, err := r.resolveInclude(inc, ctx)
		if err != nil {
			return nil, err
		}
		layers = append(layers, included)
	}

	slog.Debug("merged includes", "document", name, "includes", []string(doc.Includes))
	return mergeLayers(layers), nil
}
