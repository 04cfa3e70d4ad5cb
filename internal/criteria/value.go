package criteria

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/elementq/internal/ir"
)

// Shape is the tag of a Value.
type Shape int

const (
	// ShapeList holds zero or more values with OR semantics. It is the zero
	// Shape, so the zero Value is the explicit empty list.
	ShapeList Shape = iota

	// ShapeScalar holds one value. Strings may carry param syntax.
	ShapeScalar

	// ShapeExpr holds a typed comparison built with Gte, Lt, Between and friends.
	ShapeExpr
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeList:
		return "list"
	case ShapeExpr:
		return "expr"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Op is the comparison of an expression value.
type Op string

const (
	OpEq      Op = "="
	OpNe      Op = "!="
	OpLt      Op = "<"
	OpLte     Op = "<="
	OpGt      Op = ">"
	OpGte     Op = ">="
	OpBetween Op = "between"
)

// Value is a tagged union of scalar, list and expression criterion values.
// The zero Value is an empty list.
type Value struct {
	shape Shape
	op    Op
	items []ir.IRValue
	err   error
}

// Scalar returns a single-value criterion.
func Scalar(v ir.IRValue) Value {
	return Value{shape: ShapeScalar, items: []ir.IRValue{v}}
}

// List returns a list criterion. List() is the explicit empty list.
func List(vs ...ir.IRValue) Value {
	return Value{shape: ShapeList, items: append([]ir.IRValue{}, vs...)}
}

// Int returns a scalar integer.
func Int(n int64) Value { return Scalar(ir.IRInt(n)) }

// Ints returns a list of integers.
func Ints(ns ...int64) Value {
	items := make([]ir.IRValue, len(ns))
	for i, n := range ns {
		items[i] = ir.IRInt(n)
	}
	return Value{shape: ShapeList, items: items}
}

// String returns a scalar string, which may carry param syntax such as
// ">= 100" or "not image".
func String(s string) Value { return Scalar(ir.IRString(s)) }

// Strings returns a list of strings.
func Strings(ss ...string) Value {
	items := make([]ir.IRValue, len(ss))
	for i, s := range ss {
		items[i] = ir.IRString(s)
	}
	return Value{shape: ShapeList, items: items}
}

// Bool returns a scalar boolean.
func Bool(b bool) Value { return Scalar(ir.IRBool(b)) }

// Time returns a scalar timestamp.
func Time(t time.Time) Value { return Scalar(ir.IRString(ir.FormatTime(t))) }

// Compare returns an expression value comparing against operand.
// operand accepts the same inputs as ir.FromGo.
func Compare(op Op, operand any) Value {
	v, err := scalarOperand(operand)
	if err != nil {
		return Value{shape: ShapeExpr, op: op, err: err}
	}
	return Value{shape: ShapeExpr, op: op, items: []ir.IRValue{v}}
}

// Gte matches values >= operand.
func Gte(operand any) Value { return Compare(OpGte, operand) }

// Gt matches values > operand.
func Gt(operand any) Value { return Compare(OpGt, operand) }

// Lte matches values <= operand.
func Lte(operand any) Value { return Compare(OpLte, operand) }

// Lt matches values < operand.
func Lt(operand any) Value { return Compare(OpLt, operand) }

// Ne matches values != operand.
func Ne(operand any) Value { return Compare(OpNe, operand) }

// Between matches lower <= value < upper.
func Between(lower, upper any) Value {
	lo, err := scalarOperand(lower)
	if err != nil {
		return Value{shape: ShapeExpr, op: OpBetween, err: err}
	}
	hi, err := scalarOperand(upper)
	if err != nil {
		return Value{shape: ShapeExpr, op: OpBetween, err: err}
	}
	return Value{shape: ShapeExpr, op: OpBetween, items: []ir.IRValue{lo, hi}}
}

func scalarOperand(operand any) (ir.IRValue, error) {
	v, err := ir.FromGo(operand)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case ir.IRString, ir.IRInt, ir.IRBool:
		return v, nil
	default:
		return nil, fmt.Errorf("comparison operand must be a scalar, got %T", operand)
	}
}

// Coerce converts a raw Go value into a Value.
//
//   - Value passes through
//   - strings, integers, booleans and time.Time become scalars
//   - slices become lists; an empty slice is the empty list
//
// Nested lists, maps and fractional floats are rejected.
func Coerce(raw any) (Value, error) {
	switch v := raw.(type) {
	case Value:
		return v, v.err
	case nil:
		return Value{}, fmt.Errorf("nil is not a criterion value")
	case time.Time:
		return Time(v), nil
	}

	irv, err := ir.FromGo(raw)
	if err != nil {
		return Value{}, err
	}

	switch val := irv.(type) {
	case ir.IRArray:
		for i, item := range val {
			switch item.(type) {
			case ir.IRString, ir.IRInt, ir.IRBool:
			default:
				return Value{}, fmt.Errorf("list item %d: %T is not a scalar", i, item)
			}
		}
		return List(val...), nil
	case ir.IRObject:
		return Value{}, fmt.Errorf("maps are not criterion values")
	case ir.IRNull:
		return Value{}, fmt.Errorf("null is not a criterion value")
	default:
		return Scalar(irv), nil
	}
}

// Shape returns the value's tag.
func (v Value) Shape() Shape { return v.shape }

// Op returns the comparison of an expression value.
func (v Value) Op() Op { return v.op }

// Items returns a copy of the held values: one for scalars, the list
// members for lists, the operands for expressions.
func (v Value) Items() []ir.IRValue {
	return append([]ir.IRValue{}, v.items...)
}

// First returns the first held value, or nil if there is none.
func (v Value) First() ir.IRValue {
	if len(v.items) == 0 {
		return nil
	}
	return v.items[0]
}

// IsEmptyList reports whether v is an explicitly empty list.
func (v Value) IsEmptyList() bool {
	return v.shape == ShapeList && len(v.items) == 0
}

// Err returns the construction error of an expression value.
func (v Value) Err() error { return v.err }

// asList returns v in list form. Scalars other than param strings become
// one-element lists.
func (v Value) asList() Value {
	if v.shape != ShapeScalar {
		return v
	}
	return Value{shape: ShapeList, items: v.items}
}

// ToIR renders v for fingerprinting and display.
func (v Value) ToIR() ir.IRValue {
	switch v.shape {
	case ShapeScalar:
		return v.First()
	case ShapeList:
		return ir.IRArray(v.Items())
	default:
		return ir.IRObject{
			"op":       ir.IRString(v.op),
			"operands": ir.IRArray(v.Items()),
		}
	}
}

// String renders v in param syntax, e.g. `["image", "video"]` or `>= 100`.
func (v Value) String() string {
	switch v.shape {
	case ShapeScalar:
		return formatItem(v.First())
	case ShapeList:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = formatItem(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		if v.op == OpBetween && len(v.items) == 2 {
			return fmt.Sprintf("between %s and %s", formatItem(v.items[0]), formatItem(v.items[1]))
		}
		return fmt.Sprintf("%s %s", v.op, formatItem(v.First()))
	}
}

func formatItem(v ir.IRValue) string {
	switch val := v.(type) {
	case ir.IRString:
		return fmt.Sprintf("%q", string(val))
	case nil:
		return "null"
	default:
		return fmt.Sprint(ir.ToGo(v))
	}
}
