package queryir

import (
	"fmt"

	"github.com/roach88/elementq/internal/ir"
)

// ValidationResult lists the structural problems found in a query.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems describes each malformed node.
	Problems []string
}

// Err returns the problems as a single error, or nil when the query is valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	if len(r.Problems) == 1 {
		return fmt.Errorf("malformed query: %s", r.Problems[0])
	}
	return fmt.Errorf("malformed query: %s (and %d more)", r.Problems[0], len(r.Problems)-1)
}

// Validate checks that a query is well formed before it reaches a backend.
//
// Rules:
//  1. From and every joined table are named, and joins name both columns
//  2. At least one column is projected and no result name repeats
//  3. Every predicate names its field
//  4. In/NotIn lists are non-empty (an empty set must be Nothing)
//  5. A Range has at least one bound, and bound values are scalar
//  6. Limit and Offset are not negative
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(query)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addProblem("nil query")
			return
		}
		v.validateSelect(*query)
	case nil:
		v.addProblem("nil query")
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if sel.From.Name == "" {
		v.addProblem("select has no FROM table")
	}
	for i, j := range sel.Joins {
		if j.Table.Name == "" {
			v.addProblem("join %d has no table", i)
		}
		if j.Field == "" || j.Other == "" {
			v.addProblem("join %d (%s) has no condition", i, j.Table.Ref())
		}
	}

	if len(sel.Columns) == 0 {
		v.addProblem("select projects no columns")
	}
	seen := make(map[string]bool, len(sel.Columns))
	for _, c := range sel.Columns {
		if c.Expr == "" {
			v.addProblem("column %q has no expression", c.As)
		}
		name := c.As
		if name == "" {
			name = c.Expr
		}
		if seen[name] {
			v.addProblem("duplicate column %q", name)
		}
		seen[name] = true
	}

	for _, o := range sel.OrderBy {
		if o.Field == "" {
			v.addProblem("order term has no field")
		}
	}
	if sel.Limit != nil && *sel.Limit < 0 {
		v.addProblem("negative limit %d", *sel.Limit)
	}
	if sel.Offset < 0 {
		v.addProblem("negative offset %d", sel.Offset)
	}

	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case Equals:
		v.requireField(pred.Field, OpEquals)
		v.requireScalar(pred.Field, pred.Value)
	case In:
		v.requireField(pred.Field, OpInSet)
		v.validateSet(pred.Field, OpInSet, pred.Values)
	case NotIn:
		v.requireField(pred.Field, OpNotInSet)
		v.validateSet(pred.Field, OpNotInSet, pred.Values)
	case Range:
		v.requireField(pred.Field, OpRange)
		if pred.Lower == nil && pred.Upper == nil {
			v.addProblem("range on %q has no bounds", pred.Field)
		}
		if pred.Lower != nil {
			v.requireScalar(pred.Field, pred.Lower.Value)
		}
		if pred.Upper != nil {
			v.requireScalar(pred.Field, pred.Upper.Value)
		}
	case Match:
		v.requireField(pred.Field, OpPattern)
	case IsNull:
		v.requireField(pred.Field, OpNull)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Or:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Nothing:
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) requireField(field string, op Operator) {
	if field == "" {
		v.addProblem("%s predicate has no field", op)
	}
}

func (v *validator) validateSet(field string, op Operator, values []ir.IRValue) {
	if len(values) == 0 {
		v.addProblem("%s on %q has an empty value list", op, field)
	}
	for _, val := range values {
		v.requireScalar(field, val)
	}
}

func (v *validator) requireScalar(field string, val ir.IRValue) {
	switch val.(type) {
	case ir.IRString, ir.IRInt, ir.IRBool:
	default:
		v.addProblem("%q compared to non-scalar value %T", field, val)
	}
}
