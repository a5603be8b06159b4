package scrub

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Store is the named-table persistence boundary used by CleanFromStorage.
// Implementations live outside this package (see pkg/store/sqlitestore).
type Store interface {
	Load(ctx context.Context, name string) (*Frame, error)
	Save(ctx context.Context, name string, f *Frame) error
}

// Engine applies an ordered rule set to frames, validating contracts on the
// way in and out. Rules, contracts, and the operation registry are fixed at
// construction; build a new engine to change them. A single engine may
// serve concurrent Clean calls on independent frames, provided Register is
// not called concurrently with them.
type Engine struct {
	rules    *RuleSet
	registry *Registry
	input    *Contract
	output   *Contract
	sink     Sink
	log      *zap.SugaredLogger
	store    Store
}

type Option func(*Engine)

func WithInputContract(c *Contract) Option  { return func(e *Engine) { e.input = c } }
func WithOutputContract(c *Contract) Option { return func(e *Engine) { e.output = c } }
func WithSink(s Sink) Option                { return func(e *Engine) { e.sink = s } }
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = l }
}
func WithStore(s Store) Option { return func(e *Engine) { e.store = s } }

// WithRegistry seeds the engine from a caller-prepared registry. The engine
// takes a private copy, so later mutation of reg does not reach it.
func WithRegistry(reg *Registry) Option {
	return func(e *Engine) { e.registry = reg.clone() }
}

// New builds an engine. Every rule's operation name and parameters are
// validated here, and contracts are compiled, so a returned engine cannot
// fail on configuration mid-pipeline.
func New(rules *RuleSet, opts ...Option) (*Engine, error) {
	if rules == nil {
		return nil, &ConfigError{Reason: "rule set is required"}
	}
	e := &Engine{
		rules:    rules,
		registry: NewRegistry(),
		sink:     NopSink{},
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, rule := range rules.Rules() {
		op, ok := e.registry.Lookup(rule.Operation)
		if !ok {
			return nil, &UnknownOperationError{Rule: rule.Name, Operation: rule.Operation}
		}
		if err := op.ValidateParams(rule.Parameters); err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("rule %q: %v", rule.Name, err)}
		}
	}
	if err := e.input.compile(); err != nil {
		return nil, err
	}
	if err := e.output.compile(); err != nil {
		return nil, err
	}
	return e, nil
}

// Register adds or overrides an operation on this engine's private
// registry. Setup-time only: do not call concurrently with Clean.
func (e *Engine) Register(name string, op Operation) {
	e.registry.Register(name, op)
}

// Clean runs the pipeline over f and returns the cleaned frame. The call is
// all-or-nothing: on any failure no frame is returned, and the event for
// the failing rule still reaches the sink.
func (e *Engine) Clean(ctx context.Context, f *Frame) (*Frame, error) {
	cur, err := validateContract(f, e.input, "input")
	if err != nil {
		return nil, err
	}
	for i, rule := range e.rules.Rules() {
		if rule.Disabled {
			continue
		}
		next, err := e.applyRule(ctx, cur, rule)
		if err != nil {
			return nil, &RuleExecutionError{RuleName: rule.Name, RuleIndex: i, Err: err}
		}
		cur = next
	}
	out, err := validateContract(cur, e.output, "output")
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) applyRule(ctx context.Context, cur *Frame, rule Rule) (*Frame, error) {
	ev := ExecutionEvent{
		RuleName:   rule.Name,
		Operation:  rule.Operation,
		RowsBefore: cur.Rows(),
	}
	start := time.Now()
	fail := func(err error) (*Frame, error) {
		ev.Duration = time.Since(start)
		ev.RowsAfter = ev.RowsBefore
		ev.Err = err
		e.sink.Emit(ev)
		return nil, err
	}

	cols, err := resolveColumns(rule.Columns, cur.Schema(), rule.Name)
	if err != nil {
		return fail(err)
	}
	ev.Columns = cols

	op, ok := e.registry.Lookup(rule.Operation)
	if !ok {
		return fail(&UnknownOperationError{Rule: rule.Name, Operation: rule.Operation})
	}

	out, warnings, err := op.Apply(ctx, cur, cols, rule.Parameters)
	if err != nil {
		return fail(err)
	}
	ev.Duration = time.Since(start)
	ev.RowsAfter = out.Rows()
	ev.Warnings = warnings
	e.sink.Emit(ev)
	e.log.Debugw("rule applied",
		"rule", rule.Name,
		"operation", rule.Operation,
		"columns", cols,
		"rows_before", ev.RowsBefore,
		"rows_after", ev.RowsAfter,
	)
	return out, nil
}

// CleanFromStorage loads source from the configured store, cleans it, and,
// when dest is non-empty, saves the result back under dest. Failure
// semantics are those of Clean: nothing is saved unless the whole pipeline
// succeeded.
func (e *Engine) CleanFromStorage(ctx context.Context, source, dest string) (*Frame, error) {
	if e.store == nil {
		return nil, errors.New("no store configured")
	}
	f, err := e.store.Load(ctx, source)
	if err != nil {
		return nil, errors.Wrapf(err, "load %q", source)
	}
	out, err := e.Clean(ctx, f)
	if err != nil {
		return nil, err
	}
	if dest != "" {
		if err := e.store.Save(ctx, dest, out); err != nil {
			return nil, errors.Wrapf(err, "save %q", dest)
		}
	}
	return out, nil
}
