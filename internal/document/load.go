// Package document reads node and fragment YAML files.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v4"
)

// Ext is the file extension of every document.
const Ext = ".yaml"

// ErrMalformedDocument reports a document whose top level is not a mapping.
var ErrMalformedDocument = errors.New("YAML document must have a mapping at its top level")

// ErrMultipleDocuments reports a file holding more than one YAML document.
var ErrMultipleDocuments = errors.New("expected a single document in the stream")

// Error wraps a failure to read or decode the document at Path.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	// PathError repeats the path; keep only the OS reason
	var pathErr *fs.PathError
	if errors.As(e.Err, &pathErr) {
		return fmt.Sprintf("%s: %v", e.Path, pathErr.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Path returns the file path of the named document below baseDir.
func Path(baseDir, name string) string {
	return filepath.Join(baseDir, filepath.FromSlash(name)+Ext)
}

// Load reads the named document below baseDir.
// It returns a nil Document when the file holds no data.
func Load(baseDir, name string) (*Document, error) {
	path := Path(baseDir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	doc, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	slog.Debug("loaded document", "path", path, "empty", doc == nil)
	return doc, nil
}

// Parse decodes YAML data read from path. The data must hold at most one
// document.
func Parse(path string, data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &Error{Path: path, Err: err}
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = ErrMultipleDocuments
		}
		return nil, &Error{Path: path, Err: err}
	}

	top := &root
	if top.Kind == yaml.DocumentNode {
		if len(top.Content) == 0 {
			return nil, nil
		}
		top = top.Content[0]
	}
	top = resolveAlias(top)

	switch {
	case top.Kind == 0:
		return nil, nil
	case top.Kind == yaml.ScalarNode && top.ShortTag() == "!!null":
		return nil, nil
	case top.Kind != yaml.MappingNode:
		return nil, &Error{Path: path, Err: ErrMalformedDocument}
	}

	var doc Document
	if err := top.Decode(&doc); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return &doc, nil
}
