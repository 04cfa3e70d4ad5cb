package queryir

import "github.com/roach88/elementq/internal/ir"

// Query represents an assembled query.
//
// This is a sealed interface - only Select implements it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents one filter condition.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Operator names the comparison a predicate descriptor performs.
type Operator string

const (
	OpEquals   Operator = "equals"
	OpInSet    Operator = "in-set"
	OpNotInSet Operator = "not-in-set"
	OpRange    Operator = "range"
	OpPattern  Operator = "pattern-match"
	OpNull     Operator = "null"
	OpAnd      Operator = "and"
	OpOr       Operator = "or"
	OpNothing  Operator = "nothing"
)

// Table is a table reference with an optional alias.
type Table struct {
	Name  string
	Alias string
}

// Ref returns the name other clauses use to qualify this table's columns.
func (t Table) Ref() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// Column is one projected column. Expr is a qualified column reference such
// as "assets.kind"; As is the result column name and the key callers use in
// orderBy.
type Column struct {
	Expr string
	As   string
}

// JoinKind selects inner or left outer join semantics.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

// Join attaches Table to the query with an equi-join condition
// Field = Other, both qualified column references.
type Join struct {
	Kind  JoinKind
	Table Table
	Field string
	Other string
}

// Order is one ORDER BY term. When Fixed is non-empty the term orders rows
// by the position of Field's value in Fixed; rows whose value is absent sort
// last.
type Order struct {
	Field string
	Desc  bool
	Fixed []ir.IRValue
}

// Select represents the full query for one execution.
//
// Semantics:
//
//	SELECT <columns> FROM <from> <joins> WHERE <filter>
//	ORDER BY <order>, <from>.id LIMIT <limit> OFFSET <offset>
//
// A nil Filter means no filter. A nil Limit means unlimited.
type Select struct {
	From    Table
	Joins   []Join
	Columns []Column
	Filter  Predicate
	OrderBy []Order
	Limit   *int64
	Offset  int64
}

func (Select) queryNode() {}

// Equals represents field = value.
type Equals struct {
	Field string
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// In represents field IN (values). Values is never empty in a well-formed
// predicate; an empty set is expressed as Nothing.
type In struct {
	Field  string
	Values []ir.IRValue
}

func (In) predicateNode() {}

// NotIn represents field NOT IN (values).
type NotIn struct {
	Field  string
	Values []ir.IRValue
}

func (NotIn) predicateNode() {}

// Bound is one end of a Range.
type Bound struct {
	Value     ir.IRValue
	Inclusive bool
}

// Range represents a comparison against a lower bound, an upper bound or
// both. A nil bound is open.
type Range struct {
	Field string
	Lower *Bound
	Upper *Bound
}

func (Range) predicateNode() {}

// Match represents a wildcard match. Pattern uses '*' as the only wildcard;
// every other character matches literally.
type Match struct {
	Field   string
	Pattern string
	Negate  bool
}

func (Match) predicateNode() {}

// IsNull represents field IS NULL, or IS NOT NULL when Negate is set.
// Empty strings count as null.
type IsNull struct {
	Field  string
	Negate bool
}

func (IsNull) predicateNode() {}

// And represents a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction. An empty Or is always false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Nothing matches zero rows. Reason records which criterion produced it.
type Nothing struct {
	Reason string
}

func (Nothing) predicateNode() {}

// OperatorOf returns the operator of p.
func OperatorOf(p Predicate) Operator {
	switch p.(type) {
	case Equals:
		return OpEquals
	case In:
		return OpInSet
	case NotIn:
		return OpNotInSet
	case Range:
		return OpRange
	case Match:
		return OpPattern
	case IsNull:
		return OpNull
	case And:
		return OpAnd
	case Or:
		return OpOr
	case Nothing:
		return OpNothing
	default:
		return ""
	}
}

// MatchesNothing reports whether p can be proven to match zero rows without
// consulting storage: p is Nothing, an And containing such a predicate, or an
// Or whose every branch matches nothing.
func MatchesNothing(p Predicate) bool {
	switch pred := p.(type) {
	case Nothing:
		return true
	case And:
		for _, sub := range pred.Predicates {
			if MatchesNothing(sub) {
				return true
			}
		}
		return false
	case Or:
		for _, sub := range pred.Predicates {
			if !MatchesNothing(sub) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Conjoin combines predicates with AND, dropping nil entries.
// It returns nil for no predicates and the predicate itself for one.
func Conjoin(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
