package query

import (
	"github.com/expr-lang/expr/vm"

	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

// exprKind distinguishes the variants of the typed expression tree the
// compiler produces. Like DataValue, Expr is a closed tagged struct
// rather than an interface hierarchy: the executor dispatches on Kind
// with an exhaustive switch.
type exprKind int

const (
	exprConst exprKind = iota
	exprPath
	exprLag
	exprCompare
	exprLogical
	exprNot
	exprBetween
)

// Expr is one node of a compiled query's expression tree.
type Expr struct {
	Kind exprKind
	Type signal.DataType // result type; Bool for comparisons, logicals, NOT and BETWEEN

	Const signal.DataValue // exprConst
	Path  string           // exprPath, exprLag

	Op          string // exprCompare ("=","<>","<","<=",">",">="), exprLogical ("AND","OR")
	Left, Right *Expr

	Not       bool // exprBetween only
	Low, High *Expr

	// Prog, Leaves and LeafNames are set by compileBoolCore on the root of
	// each boolean-core subtree (a node of kind exprNot, exprLogical,
	// exprCompare or exprBetween that is the WHERE expression or a
	// projection item); boolean-core nodes nested below such a root leave
	// them unset. Prog is the expr-lang program compiled from the whole
	// subtree, Leaves the non-core nodes (paths, LAG reads, literals) in
	// the order their values populate Prog's environment, and LeafNames
	// the matching environment variable names. eval dispatches these four
	// kinds straight to runBoolProgram instead of recursing node-by-node.
	Prog      *vm.Program
	Leaves    []*Expr
	LeafNames []string
}

// ProjectionItem is one column of a compiled query's SELECT list.
type ProjectionItem struct {
	Name     string
	Expr     *Expr          // nil when Subquery is set
	Subquery *CompiledQuery
}

// CompiledQuery is the output of Compile: a typed, store-resolved query
// ready for repeated execution against changing input snapshots.
type CompiledQuery struct {
	Selection  *Expr // nil if there was no WHERE clause
	Projection []ProjectionItem
	InputSpec  map[string]struct{} // every path whose value execution may read
}

// MetadataLookup resolves a signal path to its declared metadata. The
// entry store satisfies this interface.
type MetadataLookup interface {
	Metadata(path string) (signal.Metadata, bool)
}
