package query

import (
	"fmt"
	"strconv"

	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

// Compile parses sql and resolves it against store metadata, producing a
// typed, re-executable CompiledQuery. Unknown paths fail with
// ErrUnknownField; type mismatches fail with ErrTypeError.
func Compile(sql string, store MetadataLookup) (*CompiledQuery, error) {
	stmt, err := parse(sql)
	if err != nil {
		return nil, err
	}
	c := &compiling{store: store, inputSpec: make(map[string]struct{})}
	return c.compileSelect(stmt)
}

type compiling struct {
	store     MetadataLookup
	inputSpec map[string]struct{}
}

func (c *compiling) compileSelect(stmt *selectStmt) (*CompiledQuery, error) {
	cq := &CompiledQuery{}

	for i, item := range stmt.proj {
		if item.sub != nil {
			sub, err := c.compileSelect(item.sub)
			if err != nil {
				return nil, err
			}
			name := fmt.Sprintf("subquery_%d", i)
			cq.Projection = append(cq.Projection, ProjectionItem{Name: name, Subquery: sub})
			continue
		}

		expr, err := c.compileExpr(item.expr, nil)
		if err != nil {
			return nil, err
		}
		name := item.alias
		if name == "" {
			if item.expr.kind == nPath {
				name = item.expr.path
			} else {
				name = fmt.Sprintf("field_%d", i)
			}
		}
		if isBoolCore(expr) {
			if err := compileBoolCore(expr); err != nil {
				return nil, err
			}
		}
		cq.Projection = append(cq.Projection, ProjectionItem{Name: name, Expr: expr})
	}

	if stmt.where != nil {
		where, err := c.compileExpr(stmt.where, nil)
		if err != nil {
			return nil, err
		}
		if where.Type != signal.Bool {
			return nil, fmt.Errorf("%w: WHERE must evaluate to Bool, got %s", ErrTypeError, where.Type)
		}
		if err := compileBoolCore(where); err != nil {
			return nil, err
		}
		cq.Selection = where
	}

	cq.InputSpec = c.inputSpec
	return cq, nil
}

// compileExpr resolves n against store metadata. hint, when non-nil, is
// the DataType a sibling operand already settled on, used to resolve an
// untyped numeric literal.
func (c *compiling) compileExpr(n *node, hint *signal.DataType) (*Expr, error) {
	switch n.kind {
	case nBool:
		return &Expr{Kind: exprConst, Type: signal.Bool, Const: signal.NewBool(n.bval)}, nil

	case nString:
		return &Expr{Kind: exprConst, Type: signal.String, Const: signal.NewString(n.text)}, nil

	case nNumber:
		return c.compileNumber(n.text, hint)

	case nPath:
		meta, ok := c.store.Metadata(n.path)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, n.path)
		}
		c.inputSpec[n.path] = struct{}{}
		return &Expr{Kind: exprPath, Type: meta.DataType, Path: n.path}, nil

	case nLag:
		meta, ok := c.store.Metadata(n.path)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, n.path)
		}
		c.inputSpec[n.path] = struct{}{}
		return &Expr{Kind: exprLag, Type: meta.DataType, Path: n.path}, nil

	case nNot:
		x, err := c.compileExpr(n.left, nil)
		if err != nil {
			return nil, err
		}
		if x.Type != signal.Bool {
			return nil, fmt.Errorf("%w: NOT requires a Bool operand", ErrTypeError)
		}
		return &Expr{Kind: exprNot, Type: signal.Bool, Left: x}, nil

	case nBetween:
		return c.compileBetween(n)

	case nBinary:
		return c.compileBinary(n)

	default:
		return nil, fmt.Errorf("%w: unrecognised expression", ErrUnsupportedOperation)
	}
}

func (c *compiling) compileBinary(n *node) (*Expr, error) {
	if n.op == "AND" || n.op == "OR" {
		left, err := c.compileExpr(n.left, nil)
		if err != nil {
			return nil, err
		}
		right, err := c.compileExpr(n.right, nil)
		if err != nil {
			return nil, err
		}
		if left.Type != signal.Bool || right.Type != signal.Bool {
			return nil, fmt.Errorf("%w: %s requires Bool operands", ErrTypeError, n.op)
		}
		return &Expr{Kind: exprLogical, Type: signal.Bool, Op: n.op, Left: left, Right: right}, nil
	}

	// Comparison. Compile the left side first, then use its type as a
	// hint for resolving an untyped literal on the right (and vice versa
	// when the left side is itself a bare literal).
	left, right, err := c.compileOperandPair(n.left, n.right)
	if err != nil {
		return nil, err
	}
	if err := checkComparable(n.op, left.Type, right.Type); err != nil {
		return nil, err
	}
	return &Expr{Kind: exprCompare, Type: signal.Bool, Op: n.op, Left: left, Right: right}, nil
}

func (c *compiling) compileBetween(n *node) (*Expr, error) {
	x, err := c.compileExpr(n.left, nil)
	if err != nil {
		return nil, err
	}
	hint := x.Type
	low, err := c.compileExpr(n.low, &hint)
	if err != nil {
		return nil, err
	}
	high, err := c.compileExpr(n.high, &hint)
	if err != nil {
		return nil, err
	}
	if err := checkComparable("<=", x.Type, low.Type); err != nil {
		return nil, err
	}
	if err := checkComparable("<=", x.Type, high.Type); err != nil {
		return nil, err
	}
	return &Expr{Kind: exprBetween, Type: signal.Bool, Left: x, Low: low, High: high, Not: n.not}, nil
}

// compileOperandPair resolves two operands that may each be a bare
// numeric literal, a path, or another expression, letting whichever side
// resolves first hint the other's literal type.
func (c *compiling) compileOperandPair(a, b *node) (*Expr, *Expr, error) {
	aIsLit := a.kind == nNumber
	bIsLit := b.kind == nNumber

	if !aIsLit {
		left, err := c.compileExpr(a, nil)
		if err != nil {
			return nil, nil, err
		}
		hint := left.Type
		right, err := c.compileExpr(b, &hint)
		if err != nil {
			return nil, nil, err
		}
		return left, right, nil
	}
	if !bIsLit {
		right, err := c.compileExpr(b, nil)
		if err != nil {
			return nil, nil, err
		}
		hint := right.Type
		left, err := c.compileExpr(a, &hint)
		if err != nil {
			return nil, nil, err
		}
		return left, right, nil
	}

	// Both sides are bare literals: resolve with no hint (defaults to
	// i64, then u64, then f64) and let each stand on its own.
	left, err := c.compileExpr(a, nil)
	if err != nil {
		return nil, nil, err
	}
	right, err := c.compileExpr(b, nil)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// compileNumber resolves an untyped numeric literal against hint when
// given, else tries i64, then u64, then f64 in that order.
func (c *compiling) compileNumber(text string, hint *signal.DataType) (*Expr, error) {
	if hint != nil {
		switch *hint {
		case signal.Int32, signal.Int64, signal.Int8, signal.Int16:
			if v, err := strconv.ParseInt(text, 10, 64); err == nil {
				return &Expr{Kind: exprConst, Type: signal.Int64, Const: signal.DataValue{Kind: signal.Int64, I64: v}}, nil
			}
		case signal.Uint32, signal.Uint64, signal.Uint8, signal.Uint16:
			if v, err := strconv.ParseUint(text, 10, 64); err == nil {
				return &Expr{Kind: exprConst, Type: signal.Uint64, Const: signal.DataValue{Kind: signal.Uint64, U64: v}}, nil
			}
		case signal.Float, signal.Double:
			if v, err := strconv.ParseFloat(text, 64); err == nil {
				return &Expr{Kind: exprConst, Type: signal.Double, Const: signal.DataValue{Kind: signal.Double, F64: v}}, nil
			}
		}
		return nil, fmt.Errorf("%w: literal %q cannot be resolved against %s", ErrTypeError, text, *hint)
	}

	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return &Expr{Kind: exprConst, Type: signal.Int64, Const: signal.DataValue{Kind: signal.Int64, I64: v}}, nil
	}
	if v, err := strconv.ParseUint(text, 10, 64); err == nil {
		return &Expr{Kind: exprConst, Type: signal.Uint64, Const: signal.DataValue{Kind: signal.Uint64, U64: v}}, nil
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return &Expr{Kind: exprConst, Type: signal.Double, Const: signal.DataValue{Kind: signal.Double, F64: v}}, nil
	}
	return nil, fmt.Errorf("%w: %q is not a valid number literal", ErrParseError, text)
}

// checkComparable performs the compile-time half of the typing rules in
// §4.3: reject combinations that can never succeed at execution time,
// regardless of the runtime values involved.
func checkComparable(op string, left, right signal.DataType) error {
	if left == right {
		return nil
	}
	if isNumeric(left) && isNumeric(right) {
		return nil
	}
	return fmt.Errorf("%w: cannot compare %s with %s using %s", ErrTypeError, left, right, op)
}

func isNumeric(dt signal.DataType) bool {
	switch dt {
	case signal.Int8, signal.Int16, signal.Int32, signal.Int64,
		signal.Uint8, signal.Uint16, signal.Uint32, signal.Uint64,
		signal.Float, signal.Double:
		return true
	default:
		return false
	}
}
