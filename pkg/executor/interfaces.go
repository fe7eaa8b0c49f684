package executor

import (
	"context"
	"strings"
)

// Executor knows how to run an interpreter against a script on the local host
// and report whether it succeeded.
type Executor interface {
	Run(ctx context.Context, inv Invocation) error
}

// Invocation is a program and its arguments, resolved by the caller.
type Invocation struct {
	Program string
	Args    []string
}

// String renders the invocation as a command line, e.g. "bash /tmp/x.sh".
func (i Invocation) String() string {
	return strings.Join(append([]string{i.Program}, i.Args...), " ")
}
