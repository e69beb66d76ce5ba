package query

import (
	"fmt"

	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"

	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/log"
)

// PathValue is one path's current and previous value as seen by the
// executor for a single evaluation round.
type PathValue struct {
	Current  signal.DataValue
	Previous signal.DataValue
}

// Snapshot is the input a CompiledQuery is evaluated against: every path
// named in its InputSpec mapped to its current and previous value.
type Snapshot map[string]PathValue

// Column is one named result value of an executed query.
type Column struct {
	Name  string
	Value signal.DataValue
}

// Execute evaluates cq against snap. matched is false when the WHERE
// clause rejected the row (including when its evaluation failed, which
// is logged and treated as "condition not met"); row is nil in that
// case. A non-nil error means a projection item failed to evaluate, and
// the whole row is dropped.
func Execute(cq *CompiledQuery, snap Snapshot) (row []Column, matched bool, err error) {
	if cq.Selection != nil {
		v, evalErr := eval(cq.Selection, snap)
		if evalErr != nil {
			log.Warnf("query: WHERE evaluation failed, treating as no match: %v", evalErr)
			return nil, false, nil
		}
		if v.Kind != signal.Bool || !v.Bln {
			return nil, false, nil
		}
	}

	row, err = evalProjection(cq, snap)
	if err != nil {
		return nil, false, fmt.Errorf("query: projection failed: %w", err)
	}
	return row, true, nil
}

func evalProjection(cq *CompiledQuery, snap Snapshot) ([]Column, error) {
	row := make([]Column, 0, len(cq.Projection))
	for _, item := range cq.Projection {
		if item.Subquery != nil {
			subRow, subMatched, err := Execute(item.Subquery, snap)
			if err != nil {
				return nil, err
			}
			if !subMatched {
				for _, p := range item.Subquery.Projection {
					row = append(row, Column{Name: p.Name, Value: signal.Unavailable})
				}
				continue
			}
			row = append(row, subRow...)
			continue
		}

		v, err := eval(item.Expr, snap)
		if err != nil {
			return nil, err
		}
		row = append(row, Column{Name: item.Name, Value: v})
	}
	return row, nil
}

func eval(e *Expr, snap Snapshot) (signal.DataValue, error) {
	switch e.Kind {
	case exprConst:
		return e.Const, nil

	case exprPath:
		pv, ok := snap[e.Path]
		if !ok {
			return signal.Unavailable, nil
		}
		return pv.Current, nil

	case exprLag:
		pv, ok := snap[e.Path]
		if !ok || !pv.Previous.IsAvailable() {
			return signal.Unavailable, nil
		}
		return pv.Previous, nil

	case exprNot, exprLogical, exprCompare, exprBetween:
		// The boolean expression core (NOT/AND/OR, comparisons, BETWEEN)
		// is compiled to an expr-lang program by compileBoolCore at
		// query-compile time; see vm.go.
		return runBoolProgram(e, snap)

	default:
		return signal.DataValue{}, fmt.Errorf("%w: unrecognised expression kind", ErrUnsupportedOperation)
	}
}
