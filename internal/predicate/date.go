package predicate

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/queryir"
)

const day = 24 * time.Hour

// dateLayouts are tried in order. The last one carries no time of day.
var dateLayouts = []string{
	time.RFC3339,
	ir.TimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

type parsedDate struct {
	t        time.Time
	dateOnly bool
}

// parseDate parses s in UTC unless it carries an offset.
func parseDate(s string) (parsedDate, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return parsedDate{t: t.UTC(), dateOnly: layout == time.DateOnly}, nil
		}
	}
	return parsedDate{}, fmt.Errorf("%q is not a date", s)
}

func dateValue(t time.Time) ir.IRValue {
	return ir.IRString(ir.FormatTime(t))
}

// parseDateWords handles "before X", "after X" and "between X and Y".
// ok is false when s uses none of them.
func (c compiler) parseDateWords(s string) (term, bool, error) {
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "before "):
		t, err := c.dateTerm(criteria.OpLt, s[len("before "):])
		return t, true, err

	case strings.HasPrefix(lower, "after "):
		t, err := c.dateTerm(criteria.OpGte, s[len("after "):])
		return t, true, err

	case strings.HasPrefix(lower, "between "):
		rest := s[len("between "):]
		idx := strings.Index(strings.ToLower(rest), " and ")
		if idx < 0 {
			return term{}, true, c.invalid("between needs \"and\": %q", s)
		}
		lo, err := parseDate(rest[:idx])
		if err != nil {
			return term{}, true, c.invalid("%v", err)
		}
		hi, err := parseDate(rest[idx+len(" and "):])
		if err != nil {
			return term{}, true, c.invalid("%v", err)
		}
		return term{
			kind:  termRange,
			lower: &queryir.Bound{Value: dateValue(lo.t), Inclusive: true},
			upper: &queryir.Bound{Value: dateValue(hi.t)},
		}, true, nil
	}

	return term{}, false, nil
}

// dateTerm builds the term for op applied to a date operand. A bare day
// covers all of that day: "= 2024-03-01" is [03-01, 03-02) and
// "<= 2024-03-01" is < 03-02.
func (c compiler) dateTerm(op criteria.Op, operand string) (term, error) {
	d, err := parseDate(operand)
	if err != nil {
		return term{}, c.invalid("%v", err)
	}

	start := dateValue(d.t)
	if !d.dateOnly {
		return c.opTerm(op, start)
	}

	next := dateValue(d.t.Add(day))
	switch op {
	case criteria.OpEq:
		return term{
			kind:  termRange,
			lower: &queryir.Bound{Value: start, Inclusive: true},
			upper: &queryir.Bound{Value: next},
		}, nil
	case criteria.OpNe:
		return term{kind: termOther, pred: queryir.Or{Predicates: []queryir.Predicate{
			queryir.Range{Field: c.field(), Upper: &queryir.Bound{Value: start}},
			queryir.Range{Field: c.field(), Lower: &queryir.Bound{Value: next, Inclusive: true}},
		}}}, nil
	case criteria.OpLte:
		return term{kind: termRange, upper: &queryir.Bound{Value: next}}, nil
	case criteria.OpGt:
		return term{kind: termRange, lower: &queryir.Bound{Value: next, Inclusive: true}}, nil
	default:
		return c.opTerm(op, start)
	}
}
