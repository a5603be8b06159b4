package scrub

import "context"

// Operation transforms the target columns of a frame. Implementations must
// not mutate the input frame: they return a new frame (sharing unaffected
// columns) or an error.
//
// ValidateParams is called once, when the rule set is bound to an engine, so
// parameter mistakes surface before any rule has run.
//
// Apply may report non-fatal Warnings (e.g. a zero-variance column left
// untouched by standardize); the executor attaches them to the rule's
// ExecutionEvent.
type Operation interface {
	ValidateParams(p Params) error
	Apply(ctx context.Context, f *Frame, cols []string, p Params) (*Frame, []Warning, error)
}

// Warning is a non-fatal condition raised by an operation.
type Warning struct {
	Code   string // e.g. "ZeroVariance"
	Column string
}

// OperationFunc adapts a bare function into an Operation with no declared
// parameter expectations.
type OperationFunc func(ctx context.Context, f *Frame, cols []string, p Params) (*Frame, []Warning, error)

func (fn OperationFunc) ValidateParams(Params) error { return nil }

func (fn OperationFunc) Apply(ctx context.Context, f *Frame, cols []string, p Params) (*Frame, []Warning, error) {
	return fn(ctx, f, cols, p)
}

// Registry maps operation names to implementations. Each engine owns a
// private registry seeded from the built-ins, so registering on one engine
// never affects another. Mutation is a setup-time activity: register
// everything before the engine starts serving Clean calls.
type Registry struct {
	ops map[string]Operation
}

// NewRegistry returns a registry pre-seeded with every built-in operation.
func NewRegistry() *Registry {
	r := &Registry{ops: make(map[string]Operation, len(builtins))}
	for name, op := range builtins {
		r.ops[name] = op
	}
	return r
}

// Register adds or overrides an operation. Later registrations for the same
// name win.
func (r *Registry) Register(name string, op Operation) {
	r.ops[name] = op
}

// RegisterFunc is Register for plain functions.
func (r *Registry) RegisterFunc(name string, fn OperationFunc) {
	r.ops[name] = fn
}

// Lookup returns the operation registered under name.
func (r *Registry) Lookup(name string) (Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// clone produces an independent copy for a new engine instance.
func (r *Registry) clone() *Registry {
	out := &Registry{ops: make(map[string]Operation, len(r.ops))}
	for name, op := range r.ops {
		out.ops[name] = op
	}
	return out
}

// builtins is the seed table for new registries. Engines never consult it
// directly, so registering on an engine cannot leak across instances.
var builtins = map[string]Operation{
	"drop_nulls":      dropNullsOp{},
	"fill_nulls":      fillNullsOp{},
	"drop_duplicates": dropDuplicatesOp{},
	"trim_whitespace": trimWhitespaceOp{},
	"lowercase":       lowercaseOp{},
	"uppercase":       uppercaseOp{},
	"replace":         replaceOp{},
	"cast_type":       castTypeOp{},
	"filter":          filterOp{},
	"remove_outliers": removeOutliersOp{},
	"standardize":     standardizeOp{},
}
