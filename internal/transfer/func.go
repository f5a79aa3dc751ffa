package transfer

import "context"

// InvokerFunc adapts an ordinary function to the Invoker interface.
type InvokerFunc func(ctx context.Context, source, destination string, options []string) (Result, error)

// Run calls f(ctx, source, destination, options).
func (f InvokerFunc) Run(ctx context.Context, source, destination string, options []string) (Result, error) {
	return f(ctx, source, destination, options)
}
