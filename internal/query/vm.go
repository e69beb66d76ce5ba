package query

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

// isBoolCore reports whether e's Kind is one of the boolean-expression-core
// kinds compiled down to an expr-lang program by compileBoolCore, rather
// than a leaf evaluated directly by eval.
func isBoolCore(e *Expr) bool {
	switch e.Kind {
	case exprNot, exprLogical, exprCompare, exprBetween:
		return true
	default:
		return false
	}
}

// compileBoolCore compiles the boolean-core subtree rooted at root into a
// single expr-lang program, attaching it (plus the ordered leaf list its
// environment is built from each evaluation round) to root. Called once,
// at query-compile time, on cq.Selection and on every projection item
// whose root expression is itself boolean-core (e.g. `SELECT A > 5`).
func compileBoolCore(root *Expr) error {
	b := &boolCoreBuilder{}
	src := b.build(root)

	prog, err := expr.Compile(src, expr.Function("Cmp", cmpBuiltin), expr.Function("Between", betweenBuiltin))
	if err != nil {
		return fmt.Errorf("%w: compiling boolean expression core: %s", ErrUnsupportedOperation, err)
	}
	root.Prog = prog
	root.Leaves = b.leaves
	root.LeafNames = b.names
	return nil
}

// boolCoreBuilder walks a boolean-core subtree once, emitting expr-lang
// source text and collecting every leaf (path, LAG, or literal) it
// bottoms out at, each bound to a freshly minted environment variable
// name.
type boolCoreBuilder struct {
	leaves []*Expr
	names  []string
}

func (b *boolCoreBuilder) build(e *Expr) string {
	if !isBoolCore(e) {
		name := fmt.Sprintf("v%d", len(b.leaves))
		b.leaves = append(b.leaves, e)
		b.names = append(b.names, name)
		return name
	}

	switch e.Kind {
	case exprNot:
		return "!(" + b.build(e.Left) + ")"
	case exprLogical:
		op := "&&"
		if e.Op == "OR" {
			op = "||"
		}
		return "(" + b.build(e.Left) + ") " + op + " (" + b.build(e.Right) + ")"
	case exprCompare:
		return fmt.Sprintf("Cmp(%q, %s, %s)", e.Op, b.build(e.Left), b.build(e.Right))
	case exprBetween:
		return fmt.Sprintf("Between(%s, %s, %s, %t)", b.build(e.Left), b.build(e.Low), b.build(e.High), e.Not)
	default:
		// unreachable: isBoolCore only admits the four kinds above
		return "false"
	}
}

// runBoolProgram evaluates e's compiled expr-lang program against snap:
// every leaf is resolved with the ordinary eval (a path lookup, a LAG
// read, or a constant), bound into the program's environment by name,
// and Cmp/Between hand the actual comparison off to compare.go's numeric
// widening rules.
func runBoolProgram(e *Expr, snap Snapshot) (signal.DataValue, error) {
	env := make(map[string]any, len(e.Leaves))
	for i, leaf := range e.Leaves {
		v, err := eval(leaf, snap)
		if err != nil {
			return signal.DataValue{}, err
		}
		env[e.LeafNames[i]] = v
	}

	out, err := expr.Run(e.Prog, env)
	if err != nil {
		return signal.DataValue{}, err
	}
	b, ok := out.(bool)
	if !ok {
		return signal.DataValue{}, fmt.Errorf("%w: boolean expression core did not yield a Bool", ErrCastError)
	}
	return signal.NewBool(b), nil
}

// cmpBuiltin is exposed to compiled programs as Cmp(op, left, right): the
// same runtime comparison semantics compare.go implements for every
// operator in §4.3, including NotAvailable absorption and cross-numeric
// widening.
func cmpBuiltin(params ...any) (any, error) {
	op, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: Cmp: operator argument is not a string", ErrCastError)
	}
	left, ok := params[1].(signal.DataValue)
	if !ok {
		return nil, fmt.Errorf("%w: Cmp: left operand is not a DataValue", ErrCastError)
	}
	right, ok := params[2].(signal.DataValue)
	if !ok {
		return nil, fmt.Errorf("%w: Cmp: right operand is not a DataValue", ErrCastError)
	}
	return compareValues(op, left, right)
}

// betweenBuiltin is exposed to compiled programs as Between(x, low, high,
// not): x >= low && x <= high, inverted when not is true.
func betweenBuiltin(params ...any) (any, error) {
	x, ok := params[0].(signal.DataValue)
	if !ok {
		return nil, fmt.Errorf("%w: Between: x is not a DataValue", ErrCastError)
	}
	low, ok := params[1].(signal.DataValue)
	if !ok {
		return nil, fmt.Errorf("%w: Between: low is not a DataValue", ErrCastError)
	}
	high, ok := params[2].(signal.DataValue)
	if !ok {
		return nil, fmt.Errorf("%w: Between: high is not a DataValue", ErrCastError)
	}
	not, ok := params[3].(bool)
	if !ok {
		return nil, fmt.Errorf("%w: Between: not flag is not a bool", ErrCastError)
	}

	geLow, err := compareValues(">=", x, low)
	if err != nil {
		return nil, err
	}
	leHigh, err := compareValues("<=", x, high)
	if err != nil {
		return nil, err
	}
	result := geLow && leHigh
	if not {
		result = !result
	}
	return result, nil
}
