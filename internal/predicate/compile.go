package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/queryir"
)

// Filter is one compiled criterion.
type Filter struct {
	Criterion string
	Predicate queryir.Predicate
}

// String renders the filter for logs and explain output.
func (f Filter) String() string {
	return fmt.Sprintf("%s: %s", f.Criterion, queryir.Format(f.Predicate))
}

// termKind classifies one parsed param item before terms are grouped.
type termKind int

const (
	termEq termKind = iota
	termNe
	termRange
	termOther
)

type term struct {
	kind  termKind
	value ir.IRValue
	lower *queryir.Bound
	upper *queryir.Bound
	pred  queryir.Predicate
}

// Compile turns a criterion value into a predicate on def.Column.
//
// An explicitly empty list compiles to queryir.Nothing. An empty param
// string compiles to nil, meaning no filter. Errors are *criteria.Error
// with ErrCodeInvalidValue.
func Compile(def criteria.Definition, v criteria.Value) (queryir.Predicate, error) {
	if def.Column == "" {
		return nil, criteria.NewInvalidValueError(def.Name, "criterion does not filter a column")
	}
	if err := v.Err(); err != nil {
		ce := criteria.NewInvalidValueError(def.Name, "malformed value")
		ce.Err = err
		return nil, ce
	}

	switch def.Kind {
	case criteria.KindIDList, criteria.KindContainer, criteria.KindString, criteria.KindNumber, criteria.KindDate:
	default:
		return nil, criteria.NewInvalidValueError(def.Name, "%s criteria are not compiled to column filters", def.Kind)
	}

	c := compiler{def: def}

	switch v.Shape() {
	case criteria.ShapeExpr:
		terms, err := c.exprTerms(v)
		if err != nil {
			return nil, err
		}
		return c.assemble(glueAnd, terms, false)

	case criteria.ShapeList:
		if v.IsEmptyList() {
			return queryir.Nothing{Reason: def.Name}, nil
		}
		items := v.Items()
		g := glueOr
		if s, ok := items[0].(ir.IRString); ok {
			var rest []string
			g, rest = takeGlue([]string{string(s)})
			if len(rest) == 0 {
				items = items[1:]
			}
		}
		if len(items) == 0 {
			return queryir.Nothing{Reason: def.Name}, nil
		}
		terms, err := c.itemTerms(items)
		if err != nil {
			return nil, err
		}
		return c.assemble(g, terms, true)

	default:
		first := v.First()
		s, isString := first.(ir.IRString)
		if !isString {
			terms, err := c.itemTerms([]ir.IRValue{first})
			if err != nil {
				return nil, err
			}
			return c.assemble(glueOr, terms, false)
		}

		g, parts := takeGlue(splitParam(string(s)))
		if len(parts) == 0 {
			return nil, nil
		}
		items := make([]ir.IRValue, len(parts))
		for i, p := range parts {
			items[i] = ir.IRString(p)
		}
		terms, err := c.itemTerms(items)
		if err != nil {
			return nil, err
		}
		return c.assemble(g, terms, false)
	}
}

type compiler struct {
	def criteria.Definition
}

func (c compiler) field() string { return c.def.Column }

func (c compiler) invalid(format string, args ...any) error {
	return criteria.NewInvalidValueError(c.def.Name, format, args...)
}

func (c compiler) itemTerms(items []ir.IRValue) ([]term, error) {
	var terms []term
	for _, item := range items {
		t, err := c.parseItem(item)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// parseItem parses one list member or comma-separated piece.
func (c compiler) parseItem(item ir.IRValue) (term, error) {
	switch val := item.(type) {
	case ir.IRInt:
		if c.def.Kind == criteria.KindDate {
			return term{}, c.invalid("expected a date, got %d", int64(val))
		}
		if c.def.Kind == criteria.KindString {
			return term{kind: termEq, value: ir.IRString(strconv.FormatInt(int64(val), 10))}, nil
		}
		return term{kind: termEq, value: val}, nil
	case ir.IRBool:
		if c.def.Kind != criteria.KindString {
			return term{}, c.invalid("expected a %s, got %t", c.def.Kind, bool(val))
		}
		return term{kind: termEq, value: val}, nil
	case ir.IRString:
		return c.parseString(strings.TrimSpace(string(val)))
	default:
		return term{}, c.invalid("unsupported value %T", item)
	}
}

func (c compiler) parseString(s string) (term, error) {
	switch strings.ToLower(s) {
	case ":empty:", "not :notempty:":
		return term{kind: termOther, pred: queryir.IsNull{Field: c.field()}}, nil
	case ":notempty:", "not :empty:":
		return term{kind: termOther, pred: queryir.IsNull{Field: c.field(), Negate: true}}, nil
	}

	if c.def.Kind == criteria.KindDate {
		if t, ok, err := c.parseDateWords(s); ok || err != nil {
			return t, err
		}
	}

	op, operand := splitOp(s)
	if operand == "" {
		return term{}, c.invalid("operator %q has no operand", op)
	}

	switch c.def.Kind {
	case criteria.KindDate:
		return c.dateTerm(criteria.Op(op), operand)

	case criteria.KindString:
		if hasWildcard(operand) && (op == "=" || op == "!=") {
			return term{kind: termOther, pred: queryir.Match{
				Field:   c.field(),
				Pattern: ir.NormalizeString(unescape(operand)),
				Negate:  op == "!=",
			}}, nil
		}
		return c.opTerm(criteria.Op(op), ir.IRString(ir.NormalizeString(unescape(operand))))

	default:
		n, err := strconv.ParseInt(operand, 10, 64)
		if err != nil {
			return term{}, c.invalid("%q is not an integer", operand)
		}
		return c.opTerm(criteria.Op(op), ir.IRInt(n))
	}
}

// opTerm builds the term for a comparison against an already typed value.
func (c compiler) opTerm(op criteria.Op, v ir.IRValue) (term, error) {
	switch op {
	case criteria.OpEq:
		return term{kind: termEq, value: v}, nil
	case criteria.OpNe:
		return term{kind: termNe, value: v}, nil
	case criteria.OpLt:
		return term{kind: termRange, upper: &queryir.Bound{Value: v}}, nil
	case criteria.OpLte:
		return term{kind: termRange, upper: &queryir.Bound{Value: v, Inclusive: true}}, nil
	case criteria.OpGt:
		return term{kind: termRange, lower: &queryir.Bound{Value: v}}, nil
	case criteria.OpGte:
		return term{kind: termRange, lower: &queryir.Bound{Value: v, Inclusive: true}}, nil
	default:
		return term{}, c.invalid("unsupported operator %q", op)
	}
}

// exprTerms converts a typed expression value into terms.
func (c compiler) exprTerms(v criteria.Value) ([]term, error) {
	items := v.Items()

	if v.Op() == criteria.OpBetween {
		if len(items) != 2 {
			return nil, c.invalid("between needs two bounds")
		}
		lo, err := c.exprOperand(items[0])
		if err != nil {
			return nil, err
		}
		hi, err := c.exprOperand(items[1])
		if err != nil {
			return nil, err
		}
		return []term{{
			kind:  termRange,
			lower: &queryir.Bound{Value: lo, Inclusive: true},
			upper: &queryir.Bound{Value: hi},
		}}, nil
	}

	if len(items) != 1 {
		return nil, c.invalid("%s needs one operand", v.Op())
	}

	if c.def.Kind == criteria.KindDate {
		s, ok := items[0].(ir.IRString)
		if !ok {
			return nil, c.invalid("expected a date operand, got %T", items[0])
		}
		t, err := c.dateTerm(v.Op(), string(s))
		if err != nil {
			return nil, err
		}
		return []term{t}, nil
	}

	operand, err := c.exprOperand(items[0])
	if err != nil {
		return nil, err
	}
	t, err := c.opTerm(v.Op(), operand)
	if err != nil {
		return nil, err
	}
	return []term{t}, nil
}

func (c compiler) exprOperand(v ir.IRValue) (ir.IRValue, error) {
	switch c.def.Kind {
	case criteria.KindDate:
		s, ok := v.(ir.IRString)
		if !ok {
			return nil, c.invalid("expected a date operand, got %T", v)
		}
		d, err := parseDate(string(s))
		if err != nil {
			return nil, c.invalid("%v", err)
		}
		return ir.IRString(ir.FormatTime(d.t)), nil
	case criteria.KindString:
		if s, ok := v.(ir.IRString); ok {
			return ir.IRString(ir.NormalizeString(string(s))), nil
		}
		return v, nil
	default:
		if _, ok := v.(ir.IRInt); !ok {
			return nil, c.invalid("expected an integer operand, got %T", v)
		}
		return v, nil
	}
}

// assemble groups terms into a single predicate.
//
// Under OR, equalities collapse into one in-set; a lone equality stays an
// equals unless the value was a list. Under AND, inequalities collapse into
// one not-in-set and range bounds merge into one range.
func (c compiler) assemble(g glue, terms []term, list bool) (queryir.Predicate, error) {
	var eqs, nes []ir.IRValue
	var parts []queryir.Predicate
	var merged *queryir.Range

	for _, t := range terms {
		switch t.kind {
		case termEq:
			if g == glueOr {
				eqs = append(eqs, t.value)
			} else {
				parts = append(parts, queryir.Equals{Field: c.field(), Value: t.value})
			}
		case termNe:
			if g == glueAnd {
				nes = append(nes, t.value)
			} else {
				parts = append(parts, queryir.NotIn{Field: c.field(), Values: []ir.IRValue{t.value}})
			}
		case termRange:
			r := queryir.Range{Field: c.field(), Lower: t.lower, Upper: t.upper}
			if err := c.checkRange(r); err != nil {
				return nil, err
			}
			if g == glueOr {
				parts = append(parts, r)
				continue
			}
			if merged == nil {
				merged = &r
				continue
			}
			var err error
			if *merged, err = c.mergeRange(*merged, r); err != nil {
				return nil, err
			}
		default:
			parts = append(parts, t.pred)
		}
	}

	var out []queryir.Predicate
	switch {
	case len(eqs) == 0:
	case len(eqs) == 1 && !list:
		out = append(out, queryir.Equals{Field: c.field(), Value: eqs[0]})
	default:
		out = append(out, queryir.In{Field: c.field(), Values: eqs})
	}
	if len(nes) > 0 {
		out = append(out, queryir.NotIn{Field: c.field(), Values: nes})
	}
	if merged != nil {
		out = append(out, *merged)
	}
	out = append(out, parts...)

	switch {
	case len(out) == 1:
		return out[0], nil
	case g == glueAnd:
		return queryir.And{Predicates: out}, nil
	default:
		return queryir.Or{Predicates: out}, nil
	}
}

// mergeRange intersects two ranges on the same field.
func (c compiler) mergeRange(a, b queryir.Range) (queryir.Range, error) {
	lower, err := tighter(a.Lower, b.Lower, 1)
	if err != nil {
		return queryir.Range{}, c.invalid("%v", err)
	}
	upper, err := tighter(a.Upper, b.Upper, -1)
	if err != nil {
		return queryir.Range{}, c.invalid("%v", err)
	}
	r := queryir.Range{Field: a.Field, Lower: lower, Upper: upper}
	return r, c.checkRange(r)
}

// tighter returns the more restrictive of two bounds. dir is 1 for lower
// bounds (larger wins) and -1 for upper bounds (smaller wins).
func tighter(a, b *queryir.Bound, dir int) (*queryir.Bound, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}
	cmp, err := ir.Compare(a.Value, b.Value)
	if err != nil {
		return nil, err
	}
	switch {
	case cmp*dir > 0:
		return a, nil
	case cmp*dir < 0:
		return b, nil
	case !a.Inclusive:
		return a, nil
	default:
		return b, nil
	}
}

// checkRange rejects ranges whose bounds are reversed or exclude every value.
func (c compiler) checkRange(r queryir.Range) error {
	if r.Lower == nil || r.Upper == nil {
		return nil
	}
	cmp, err := ir.Compare(r.Lower.Value, r.Upper.Value)
	if err != nil {
		return c.invalid("%v", err)
	}
	if cmp > 0 || (cmp == 0 && !(r.Lower.Inclusive && r.Upper.Inclusive)) {
		return c.invalid("range bounds are reversed: %s", queryir.Format(r))
	}
	return nil
}

