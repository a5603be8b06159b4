package scrub

import (
	"fmt"
	"strings"
)

// ConfigError reports a malformed rule set, selector, or contract detected
// while the engine is being constructed. An engine is never returned
// alongside a ConfigError.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config: " + e.Reason }

// UnknownOperationError reports a rule referencing an operation name that is
// not present in the registry. Detected at engine construction.
type UnknownOperationError struct {
	Rule      string
	Operation string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("rule %q: unknown operation %q", e.Rule, e.Operation)
}

// UnknownColumnError reports an explicit selector naming a column that does
// not exist in the working schema at resolution time.
type UnknownColumnError struct {
	Rule   string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("rule %q: unknown column %q", e.Rule, e.Column)
}

// TypeMismatchError reports an operation applied to a column of an
// incompatible kind (e.g. trim_whitespace on an int column).
type TypeMismatchError struct {
	Column string
	Want   Kind
	Got    Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %q: expected %s, got %s", e.Column, e.Want, e.Got)
}

// TypeCoercionError reports a value that could not be converted during a
// strict cast.
type TypeCoercionError struct {
	Column string
	Target Kind
	Value  string
	Row    int
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("column %q row %d: cannot cast %q to %s", e.Column, e.Row, e.Value, e.Target)
}

// Violation is a single failed contract check.
type Violation struct {
	Column string
	Check  string // dtype | nullable | min | max | regex | isin | strict
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s[%s]: %s", v.Column, v.Check, v.Detail)
}

// ContractViolationError aggregates every contract check that failed during
// one validation phase.
type ContractViolationError struct {
	Phase      string // input | output
	Violations []Violation
}

func (e *ContractViolationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s contract: %d violation(s): %s", e.Phase, len(e.Violations), strings.Join(parts, "; "))
}

// RuleExecutionError wraps any failure raised while applying a rule,
// identifying the rule by name and execution index.
type RuleExecutionError struct {
	RuleName  string
	RuleIndex int
	Err       error
}

func (e *RuleExecutionError) Error() string {
	return fmt.Sprintf("rule %q (index %d): %v", e.RuleName, e.RuleIndex, e.Err)
}

func (e *RuleExecutionError) Unwrap() error { return e.Err }
