package node

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCyclicInclude matches any *CycleError.
var ErrCyclicInclude = errors.New("cyclic include")

// CycleError reports a document that includes itself, directly or through
// other documents. Chain starts and ends with the repeated document.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic include: %s", strings.Join(e.Chain, " -> "))
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCyclicInclude
}

// resolveContext tracks the include chain for cycle detection and error messages.
// The first entry is the node document.
type resolveContext []string

func (ctx resolveContext) push(name string) resolveContext {
	return append(slices.Clip(ctx), name)
}

// cycle returns the cycle closed by name, or nil when name is not on the chain.
func (ctx resolveContext) cycle(name string) []string {
	i := slices.Index(ctx, name)
	if i < 0 {
		return nil
	}
	chain := slices.Clone(ctx[i:])
	return append(chain, name)
}

// wrap attaches the include chain to err.
func (ctx resolveContext) wrap(err error) error {
	return &contextError{stack: slices.Clone(ctx), err: err}
}

// contextError prints the include chain below the underlying error.
type contextError struct {
	stack []string
	err   error
}

func (e *contextError) Error() string {
	var b strings.Builder
	b.WriteString(e.err.Error())
	// Print stack innermost first (include → node)
	for i := len(e.stack) - 1; i >= 0; i-- {
		b.WriteString("\n  in ")
		if i == 0 {
			b.WriteString("node document ")
		} else {
			b.WriteString("include ")
		}
		fmt.Fprintf(&b, "%q", e.stack[i])
	}
	return b.String()
}

func (e *contextError) Unwrap() error {
	return e.err
}
