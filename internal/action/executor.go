package action

import "context"

// Executor performs the actual OS-level effect of an action (keystrokes,
// mouse, system calls). The core treats it as an opaque, possibly slow,
// possibly failing dependency; it is injected at mapper construction and
// test doubles substitute a recording stub.
type Executor interface {
	Execute(ctx context.Context, name string) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, name string) error

// Execute calls f(ctx, name).
func (f ExecutorFunc) Execute(ctx context.Context, name string) error {
	return f(ctx, name)
}
