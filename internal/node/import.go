package node

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/neox5/yamlenc/internal/document"
	"go.yaml.in/yaml/v4"
)

var (
	// ErrImportNotList reports import input that is not a YAML list.
	ErrImportNotList = errors.New("input YAML document is not a list")

	// ErrImportMissingName reports a list entry without a name.
	ErrImportMissingName = errors.New("expected node information to contain a 'name' field")
)

// nodeInfo is one entry of an import list, as produced by classify output.
type nodeInfo struct {
	Name        string           `yaml:"name"`
	Classes     document.Classes `yaml:"classes"`
	Parameters  map[string]any   `yaml:"parameters"`
	Environment *string          `yaml:"environment"`
}

// Import reads a list of node definitions from r and writes each one to
// nodes/<name>.yaml below baseDir, replacing any existing file. When only is
// non-empty, entries for other nodes are skipped. It returns the number of
// files written.
func Import(r io.Reader, baseDir, only string) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read input: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("failed to parse input: %w", err)
	}
	list := &root
	if list.Kind == yaml.DocumentNode && len(list.Content) > 0 {
		list = list.Content[0]
	}
	if list.Kind != yaml.SequenceNode {
		return 0, ErrImportNotList
	}

	// Decode everything before writing anything
	infos := make([]nodeInfo, 0, len(list.Content))
	for i, item := range list.Content {
		var info nodeInfo
		if err := item.Decode(&info); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
		if info.Name == "" {
			return 0, fmt.Errorf("entry %d: %w", i, ErrImportMissingName)
		}
		if strings.ContainsAny(info.Name, `/\`) || info.Name == "." || info.Name == ".." {
			return 0, fmt.Errorf("entry %d: invalid node name %q", i, info.Name)
		}
		infos = append(infos, info)
	}

	written := 0
	for _, info := range infos {
		if only != "" && info.Name != only {
			continue
		}

		// The name is carried by the file name, not the document
		flat, err := Flatten(&Node{
			Classes:     info.Classes,
			Parameters:  info.Parameters,
			Environment: info.Environment,
		})
		if err != nil {
			return written, fmt.Errorf("node %q: %w", info.Name, err)
		}

		path := document.Path(filepath.Join(baseDir, NodesDir), info.Name)
		if err := writeFile(path, flat); err != nil {
			return written, fmt.Errorf("node %q: %w", info.Name, err)
		}
		written++

		slog.Debug("imported node", "name", info.Name, "path", path)
	}

	return written, nil
}

// writeFile replaces path atomically with the encoded document.
func writeFile(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, v); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
