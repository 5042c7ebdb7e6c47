package node

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neox5/yamlenc/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files below a fresh base directory. Keys are
// slash-separated paths relative to the base.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, NodesDir), 0o755))
	for name, content := range files {
		path := filepath.Join(base, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return base
}

func strPtr(s string) *string {
	return &s
}

func TestResolve_DocumentWithoutIncludes(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/web1.example.com.yaml": `
classes: [apache, ntp]
parameters:
  role: web
  dns: [10.0.0.1, 10.0.0.2]
environment: production
`,
	})

	n, err := NewResolver(base).Resolve("web1.example.com")
	require.NoError(t, err)

	assert.Equal(t, "web1.example.com", n.Name)
	assert.Equal(t, []Class{{Name: "apache"}, {Name: "ntp"}}, n.Classes)
	assert.Equal(t, map[string]any{
		"role": "web",
		"dns":  []any{"10.0.0.1", "10.0.0.2"},
	}, n.Parameters)
	assert.Equal(t, strPtr("production"), n.Environment)
}

func TestResolve_NameComesFromFileName(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/db1.yaml": "name: something-else\nclasses: [postgresql]\n",
	})

	n, err := NewResolver(base).Resolve("db1")
	require.NoError(t, err)
	assert.Equal(t, "db1", n.Name)
}

func TestResolve_EmptyDocument(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/bare.yaml": "",
	})

	n, err := NewResolver(base).Resolve("bare")
	require.NoError(t, err)

	assert.Equal(t, "bare", n.Name)
	assert.Empty(t, n.Classes)
	assert.NotNil(t, n.Parameters)
	assert.Empty(t, n.Parameters)
	assert.Nil(t, n.Environment)
}

func TestResolve_LocalWinsOverInclude(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/web1.yaml": "classes: [apache]\n:include: base\n",
		"base.yaml":       "classes: [apache: {port: 80}]\nparameters: {env: prod}\n",
	})

	n, err := NewResolver(base).Resolve("web1")
	require.NoError(t, err)

	assert.Equal(t, []Class{{Name: "apache"}}, n.Classes)
	assert.Equal(t, map[string]any{"env": "prod"}, n.Parameters)
	assert.False(t, n.HasClassArguments())
}

func TestResolve_ClosestDocumentWinsAcrossChain(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/app1.yaml": `
parameters: {tier: node, only_node: 1}
:include: roles/app
`,
		"roles/app.yaml": `
parameters: {tier: role, only_role: 2}
:include: common
`,
		"common.yaml": `
parameters: {tier: common, only_common: 3}
environment: staging
`,
	})

	n, err := NewResolver(base).Resolve("app1")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"tier":        "node",
		"only_node":   1,
		"only_role":   2,
		"only_common": 3,
	}, n.Parameters)
	assert.Equal(t, strPtr("staging"), n.Environment)
}

func TestResolve_EnvironmentFromNearestInclude(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/n.yaml": ":include: [first, second]\n",
		"first.yaml":   ":include: deep\n",
		"deep.yaml":    "environment: from-deep\n",
		"second.yaml":  "environment: from-second\n",
	})

	n, err := NewResolver(base).Resolve("n")
	require.NoError(t, err)

	// first (and everything below it) beats second
	assert.Equal(t, strPtr("from-deep"), n.Environment)
}

func TestResolve_LocalEnvironmentWins(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/n.yaml": "environment: mine\n:include: base\n",
		"base.yaml":    "environment: theirs\n",
	})

	n, err := NewResolver(base).Resolve("n")
	require.NoError(t, err)
	assert.Equal(t, strPtr("mine"), n.Environment)
}

func TestResolve_IncludeOrderDecidesPrecedence(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/n.yaml": ":include: [a, b]\nclasses: [local]\n",
		"a.yaml":       "classes:\n  shared: {from: a}\n  only_a: ~\nparameters: {k: a}\n",
		"b.yaml":       "classes:\n  shared: {from: b}\n  only_b: {x: 1}\nparameters: {k: b, kb: b}\n",
	})

	n, err := NewResolver(base).Resolve("n")
	require.NoError(t, err)

	assert.Equal(t, []string{"local", "shared", "only_a", "only_b"}, n.ClassNames())

	shared, ok := n.Class("shared")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"from": "a"}, shared.Args)

	assert.Equal(t, map[string]any{"k": "a", "kb": "b"}, n.Parameters)
}

func TestResolve_ParametersAreNotDeepMerged(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/n.yaml": "parameters:\n  ntp:\n    servers: [a]\n:include: base\n",
		"base.yaml":    "parameters:\n  ntp:\n    servers: [b]\n    iburst: true\n",
	})

	n, err := NewResolver(base).Resolve("n")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"servers": []any{"a"}}, n.Parameters["ntp"])
}

func TestResolve_DiamondIncludeIsNotACycle(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/n.yaml": ":include: [left, right]\n",
		"left.yaml":    ":include: common\nclasses: [left]\n",
		"right.yaml":   ":include: common\nclasses: [right]\n",
		"common.yaml":  "classes: [base]\n",
	})

	n, err := NewResolver(base).Resolve("n")
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "base", "right"}, n.ClassNames())
}

func TestResolve_NestedIncludePathsAreRelativeToBase(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/n.yaml":         ":include: roles/web\n",
		"roles/web.yaml":       ":include: profiles/apache\n",
		"profiles/apache.yaml": "classes: [apache]\n",
	})

	n, err := NewResolver(base).Resolve("n")
	require.NoError(t, err)
	assert.Equal(t, []string{"apache"}, n.ClassNames())
}

func TestResolve_CyclicInclude(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		wantChain []string
	}{
		{
			name: "self include",
			files: map[string]string{
				"nodes/n.yaml": ":include: nodes/n\n",
			},
			wantChain: []string{"nodes/n", "nodes/n"},
		},
		{
			name: "through second document",
			files: map[string]string{
				"nodes/n.yaml": ":include: base\n",
				"base.yaml":    ":include: nodes/n\n",
			},
			wantChain: []string{"nodes/n", "base", "nodes/n"},
		},
		{
			name: "between fragments",
			files: map[string]string{
				"nodes/n.yaml": ":include: a\n",
				"a.yaml":       ":include: b\n",
				"b.yaml":       ":include: ./a\n",
			},
			wantChain: []string{"a", "b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := writeTree(t, tt.files)

			_, err := NewResolver(base).Resolve("n")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCyclicInclude)

			var cycleErr *CycleError
			require.ErrorAs(t, err, &cycleErr)
			assert.Equal(t, tt.wantChain, cycleErr.Chain)
		})
	}
}

func TestResolve_MissingInclude(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/n.yaml":   ":include: roles/web\n",
		"roles/web.yaml": ":include: missing\n",
	})

	_, err := NewResolver(base).Resolve("n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	msg := err.Error()
	assert.Contains(t, msg, filepath.Join(base, "missing.yaml"))
	assert.Contains(t, msg, `in include "missing"`)
	assert.Contains(t, msg, `in include "roles/web"`)
	assert.Contains(t, msg, `in node document "nodes/n"`)
}

func TestResolve_MissingNode(t *testing.T) {
	base := writeTree(t, nil)

	_, err := NewResolver(base).Resolve("ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestResolve_MalformedInclude(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/n.yaml": ":include: base\n",
		"base.yaml":    "- not\n- a mapping\n",
	})

	_, err := NewResolver(base).Resolve("n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Join(base, "base.yaml"))
	assert.Contains(t, err.Error(), "mapping at its top level")
}

func TestResolve_IncludeWithSeveralDocuments(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/n.yaml": ":include: base\n",
		"base.yaml":    "classes: [a]\n---\nclasses: [b]\n",
	})

	_, err := NewResolver(base).Resolve("n")
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrMultipleDocuments)
	assert.Contains(t, err.Error(), filepath.Join(base, "base.yaml"))
	assert.Contains(t, err.Error(), `in include "base"`)
}

func TestResolve_EmptyIncludeName(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/n.yaml": ":include: ''\n",
	})

	_, err := NewResolver(base).Resolve("n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":include names must not be empty")
	assert.NotContains(t, err.Error(), `in include "."`)
}

func TestResolve_IsRepeatable(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/n.yaml": "classes: [a]\n:include: base\n",
		"base.yaml":    "classes: [b]\nparameters: {x: 1}\n",
	})
	r := NewResolver(base)

	first, err := r.Resolve("n")
	require.NoError(t, err)
	second, err := r.Resolve("n")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveAll(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/a.yaml":            "classes: [x]\n",
		"nodes/b.yaml":            "classes: [y]\n",
		"nodes/README":            "not a node",
		"nodes/sub/c.yaml":        "classes: [z]\n",
		"nodes/archive.yaml.orig": "classes: [old]\n",
	})

	nodes, err := NewResolver(base).ResolveAll()
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestResolveAll_StopsAtFirstFailure(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/a.yaml": "classes: [x]\n",
		"nodes/b.yaml": ":include: missing\n",
	})

	nodes, err := NewResolver(base).ResolveAll()
	require.Error(t, err)
	assert.Nil(t, nodes)
}

func TestResolveAll_MissingNodesDir(t *testing.T) {
	_, err := NewResolver(t.TempDir()).ResolveAll()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

type recordingObserver struct {
	loaded   []string
	resolved map[string]int
	failed   []string
}

func (o *recordingObserver) DocumentLoaded(name string) {
	o.loaded = append(o.loaded, name)
}

func (o *recordingObserver) NodeResolved(n *Node, depth int, _ time.Duration) {
	if o.resolved == nil {
		o.resolved = make(map[string]int)
	}
	o.resolved[n.Name] = depth
}

func (o *recordingObserver) NodeFailed(name string, _ error) {
	o.failed = append(o.failed, name)
}

func TestResolve_ReportsToObserver(t *testing.T) {
	base := writeTree(t, map[string]string{
		"nodes/a.yaml":   ":include: roles/x\n",
		"roles/x.yaml":   ":include: common\n",
		"common.yaml":    "classes: [c]\n",
		"nodes/b.yaml":   "classes: [b]\n",
		"nodes/bad.yaml": ":include: nope\n",
	})
	obs := &recordingObserver{}
	r := NewResolver(base, WithObserver(obs))

	_, err := r.Resolve("a")
	require.NoError(t, err)
	_, err = r.Resolve("b")
	require.NoError(t, err)
	_, err = r.Resolve("bad")
	require.Error(t, err)

	assert.Equal(t, []string{"nodes/a", "roles/x", "common", "nodes/b", "nodes/bad"}, obs.loaded)
	assert.Equal(t, map[string]int{"a": 2, "b": 0}, obs.resolved)
	assert.Equal(t, []string{"bad"}, obs.failed)
}
