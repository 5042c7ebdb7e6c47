// Package config holds the runtime settings of yaml-enc.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neox5/yamlenc/internal/node"
)

// DefaultDirs are the base directories tried, in order, when none is given.
var DefaultDirs = []string{
	"/etc/puppetlabs/code/yaml-enc",
	"/etc/puppetlabs/puppet/yaml-enc",
	"/etc/puppet/yaml-enc",
}

// ErrNotDirectory reports a required directory that is missing.
var ErrNotDirectory = errors.New("does not exist or is not a directory")

// Error reports a problem with the directory layout.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Mode selects what yaml-enc does.
type Mode string

const (
	// ModeClassify prints resolved nodes
	ModeClassify Mode = "classify"

	// ModeImport writes node documents read from standard input
	ModeImport Mode = "import"
)

// Settings holds everything needed for one run.
type Settings struct {
	// BaseDir is the root of the YAML tree. Detected when empty.
	BaseDir string

	// Node restricts the run to one node. Empty means all nodes.
	Node string

	Mode Mode

	// MetricsFile receives resolution metrics when set.
	MetricsFile string

	Debug bool
}

// Validate applies defaults and validates the settings, including the
// presence of the base and nodes directories.
func (s *Settings) Validate() error {
	// Apply defaults
	if s.BaseDir == "" {
		s.BaseDir = DetectBaseDir(DefaultDirs)
	}
	if s.Mode == "" {
		s.Mode = ModeClassify
	}

	switch s.Mode {
	case ModeClassify, ModeImport:
	default:
		return fmt.Errorf("invalid mode: %s (must be classify or import)", s.Mode)
	}

	if err := requireDir(s.BaseDir); err != nil {
		return err
	}
	return requireDir(filepath.Join(s.BaseDir, node.NodesDir))
}

// DetectBaseDir returns the first candidate that is a directory, or the
// first candidate when none exists.
func DetectBaseDir(candidates []string) string {
	for _, dir := range candidates {
		if isDir(dir) {
			return dir
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}

func requireDir(path string) error {
	if !isDir(path) {
		return &Error{Path: path, Err: ErrNotDirectory}
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
