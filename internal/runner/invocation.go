package runner

import (
	"slices"
	"strings"
)

// Invocation is an immutable argv: program followed by its arguments.
type Invocation struct {
	argv []string
}

// Command builds an Invocation from argv. The slice is copied.
func Command(argv ...string) Invocation {
	return Invocation{argv: slices.Clone(argv)}
}

// Argv returns a copy of the arguments, program first.
func (i Invocation) Argv() []string {
	return slices.Clone(i.argv)
}

// Program returns argv[0], or "" for an empty invocation.
func (i Invocation) Program() string {
	if len(i.argv) == 0 {
		return ""
	}
	return i.argv[0]
}

// Empty reports whether there is nothing to run.
func (i Invocation) Empty() bool {
	return len(i.argv) == 0 || i.argv[0] == ""
}

// String joins the arguments with spaces, the same way a process table
// renders a command line.
func (i Invocation) String() string {
	return strings.Join(i.argv, " ")
}
