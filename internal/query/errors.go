// Package query implements the small SQL-like query language used by
// query subscriptions: a lexer and recursive-descent parser that
// produce a syntax tree, a compiler that resolves paths against store
// metadata and type-checks the result into a CompiledQuery, and an
// executor that evaluates a CompiledQuery against a snapshot of signal
// values.
//
// The outer shape (SELECT projection list, WHERE clause, BETWEEN, LAG,
// scalar subqueries) has no equivalent in any general-purpose expression
// evaluator in the example pack, so that part stays a small dedicated
// lexer/parser. The boolean expression core the WHERE clause and any
// comparison projection compile down to — AND/OR/NOT, comparisons, and
// BETWEEN — is instead compiled and run through github.com/expr-lang/expr,
// the same library the teacher's internal/tagger job classifier uses to
// compile and evaluate its own "Requirements"/"Rule" boolean expressions
// over a map of named values (classifyJob.go). vm.go builds one expr-lang
// program per compiled boolean subtree, with each leaf (a path, LAG, or
// literal) bound to a named environment variable and the cross-type
// numeric widening rules of compare.go exposed to it as the Cmp/Between
// builtins, since expr-lang has no native notion of our DataValue tagged
// union or its comparison semantics.
package query

import "errors"

// ErrUnknownField is returned by the compiler when a path does not
// resolve against store metadata.
var ErrUnknownField = errors.New("query: unknown field")

// ErrTypeError is returned by the compiler when operand types are
// incompatible (e.g. a numeric literal cannot be resolved against a
// Bool path).
var ErrTypeError = errors.New("query: incompatible operand types")

// ErrUnsupportedOperator is returned by the executor's comparison step
// when asked for an operator it does not implement.
var ErrUnsupportedOperator = errors.New("query: unsupported operator")

// ErrUnsupportedOperation is returned by the compiler for a structurally
// valid but semantically disallowed construct.
var ErrUnsupportedOperation = errors.New("query: unsupported operation")

// ErrParseError is returned by the parser for malformed query text.
var ErrParseError = errors.New("query: parse error")

// ErrCastError is returned by the executor when a runtime numeric
// comparison is not representable (see the widening rules in compare.go).
var ErrCastError = errors.New("query: numeric comparison not representable")
