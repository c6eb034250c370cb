package tool

import (
	"context"

	ai "github.com/spetersoncode/warden"
)

// Handler is a function that executes a tool call and returns a result.
// The context supports cancellation and timeout.
type Handler func(ctx context.Context, call ai.ToolCall) (string, error)

// TypedHandler is a function that executes a tool call with typed arguments.
type TypedHandler[T any] func(ctx context.Context, args T) (string, error)

// Registration holds a tool and its handler for fluent registration.
type Registration struct {
	Tool    ai.Tool
	Handler Handler
}

// Func creates a Registration whose parameter schema is generated from T.
//
//	type LookupArgs struct {
//	    Query string `json:"query" jsonschema:"description=Search query"`
//	}
//
//	reg := tool.Func("lookup", "Look something up",
//	    func(ctx context.Context, args LookupArgs) (string, error) {
//	        return lookup(args.Query), nil
//	    })
func Func[T any](name, description string, fn TypedHandler[T]) Registration {
	return Registration{
		Tool: ai.Tool{
			Name:        name,
			Description: description,
			Parameters:  ai.SchemaFor[T](),
		},
		Handler: func(ctx context.Context, call ai.ToolCall) (string, error) {
			var args T
			if err := call.DecodeArguments(&args); err != nil {
				return "", err
			}
			return fn(ctx, args)
		},
	}
}
