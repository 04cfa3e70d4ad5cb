package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/elementq/internal/ir"
)

// Format renders p as a compact, human-readable condition for logs and
// explain output, e.g. `assets.kind IN ("image", "video")`.
// It is not SQL and must never be executed.
func Format(p Predicate) string {
	if p == nil {
		return "TRUE"
	}

	switch pred := p.(type) {
	case Equals:
		return fmt.Sprintf("%s = %s", pred.Field, formatValue(pred.Value))
	case In:
		return fmt.Sprintf("%s IN (%s)", pred.Field, formatValues(pred.Values))
	case NotIn:
		return fmt.Sprintf("%s NOT IN (%s)", pred.Field, formatValues(pred.Values))
	case Range:
		return formatRange(pred)
	case Match:
		if pred.Negate {
			return fmt.Sprintf("%s NOT LIKE %q", pred.Field, pred.Pattern)
		}
		return fmt.Sprintf("%s LIKE %q", pred.Field, pred.Pattern)
	case IsNull:
		if pred.Negate {
			return pred.Field + " IS NOT EMPTY"
		}
		return pred.Field + " IS EMPTY"
	case And:
		return formatGroup(pred.Predicates, " AND ", "TRUE")
	case Or:
		return formatGroup(pred.Predicates, " OR ", "FALSE")
	case Nothing:
		if pred.Reason != "" {
			return "FALSE /* " + pred.Reason + " */"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("<%T>", p)
	}
}

func formatRange(r Range) string {
	var parts []string
	if r.Lower != nil {
		op := ">"
		if r.Lower.Inclusive {
			op = ">="
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", r.Field, op, formatValue(r.Lower.Value)))
	}
	if r.Upper != nil {
		op := "<"
		if r.Upper.Inclusive {
			op = "<="
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", r.Field, op, formatValue(r.Upper.Value)))
	}
	if len(parts) == 0 {
		return "TRUE"
	}
	return strings.Join(parts, " AND ")
}

func formatGroup(preds []Predicate, glue, empty string) string {
	if len(preds) == 0 {
		return empty
	}
	parts := make([]string, len(preds))
	for i, sub := range preds {
		s := Format(sub)
		switch sub.(type) {
		case And, Or:
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, glue)
}

func formatValues(vals []ir.IRValue) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatValue(v)
	}
	return strings.Join(parts, ", ")
}

func formatValue(v ir.IRValue) string {
	switch val := v.(type) {
	case ir.IRString:
		return fmt.Sprintf("%q", string(val))
	case ir.IRInt:
		return fmt.Sprintf("%d", int64(val))
	case ir.IRBool:
		if val {
			return "true"
		}
		return "false"
	case ir.IRNull, nil:
		return "null"
	default:
		data, err := ir.MarshalIRValue(v)
		if err != nil {
			return fmt.Sprintf("<%T>", v)
		}
		return string(data)
	}
}
