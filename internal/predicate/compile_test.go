package predicate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/queryir"
)

var (
	kindDef     = criteria.Definition{Name: "kind", Kind: criteria.KindString, Column: "assets.kind"}
	filenameDef = criteria.Definition{Name: "filename", Kind: criteria.KindString, Column: "assets.filename"}
	widthDef    = criteria.Definition{Name: "width", Kind: criteria.KindNumber, Column: "assets.width"}
	idDef       = criteria.Definition{Name: "id", Kind: criteria.KindIDList, Column: "elements.id"}
	dateDef     = criteria.Definition{Name: "dateModified", Kind: criteria.KindDate, Column: "assets.dateModified"}
)

func str(vals ...string) []ir.IRValue {
	out := make([]ir.IRValue, len(vals))
	for i, v := range vals {
		out[i] = ir.IRString(v)
	}
	return out
}

func incl(v ir.IRValue) *queryir.Bound { return &queryir.Bound{Value: v, Inclusive: true} }
func excl(v ir.IRValue) *queryir.Bound { return &queryir.Bound{Value: v} }

func TestCompile_StringParams(t *testing.T) {
	tests := []struct {
		name  string
		def   criteria.Definition
		value criteria.Value
		want  queryir.Predicate
	}{
		{
			name:  "scalar is equals",
			def:   kindDef,
			value: criteria.String("image"),
			want:  queryir.Equals{Field: "assets.kind", Value: ir.IRString("image")},
		},
		{
			name:  "list is in-set",
			def:   kindDef,
			value: criteria.Strings("image", "video"),
			want:  queryir.In{Field: "assets.kind", Values: str("image", "video")},
		},
		{
			name:  "one-item list is still in-set",
			def:   kindDef,
			value: criteria.Strings("image"),
			want:  queryir.In{Field: "assets.kind", Values: str("image")},
		},
		{
			name:  "comma string is in-set",
			def:   kindDef,
			value: criteria.String("image, video"),
			want:  queryir.In{Field: "assets.kind", Values: str("image", "video")},
		},
		{
			name:  "not",
			def:   kindDef,
			value: criteria.String("not pdf"),
			want:  queryir.NotIn{Field: "assets.kind", Values: str("pdf")},
		},
		{
			name:  "and-glued nots collapse",
			def:   kindDef,
			value: criteria.String("and, not pdf, != zip"),
			want:  queryir.NotIn{Field: "assets.kind", Values: str("pdf", "zip")},
		},
		{
			name:  "mixed or",
			def:   kindDef,
			value: criteria.String("image, not pdf"),
			want: queryir.Or{Predicates: []queryir.Predicate{
				queryir.Equals{Field: "assets.kind", Value: ir.IRString("image")},
				queryir.NotIn{Field: "assets.kind", Values: str("pdf")},
			}},
		},
		{
			name:  "wildcard",
			def:   filenameDef,
			value: criteria.String("*.jpg"),
			want:  queryir.Match{Field: "assets.filename", Pattern: "*.jpg"},
		},
		{
			name:  "negated wildcard",
			def:   filenameDef,
			value: criteria.String("not *.tmp"),
			want:  queryir.Match{Field: "assets.filename", Pattern: "*.tmp", Negate: true},
		},
		{
			name:  "escaped comma",
			def:   filenameDef,
			value: criteria.String(`a\,b.txt`),
			want:  queryir.Equals{Field: "assets.filename", Value: ir.IRString("a,b.txt")},
		},
		{
			name:  "escaped star is literal",
			def:   filenameDef,
			value: criteria.String(`star\*.txt`),
			want:  queryir.Equals{Field: "assets.filename", Value: ir.IRString("star*.txt")},
		},
		{
			name:  "empty",
			def:   kindDef,
			value: criteria.String(":empty:"),
			want:  queryir.IsNull{Field: "assets.kind"},
		},
		{
			name:  "not empty",
			def:   kindDef,
			value: criteria.String("not :empty:"),
			want:  queryir.IsNull{Field: "assets.kind", Negate: true},
		},
		{
			name:  "decomposed filename normalized",
			def:   filenameDef,
			value: criteria.String("cafe\u0301.jpg"),
			want:  queryir.Equals{Field: "assets.filename", Value: ir.IRString("caf\u00e9.jpg")},
		},
		{
			name:  "list items are not split on commas",
			def:   filenameDef,
			value: criteria.Strings("a, b"),
			want:  queryir.In{Field: "assets.filename", Values: str("a, b")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.def, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_EmptyListMatchesNothing(t *testing.T) {
	got, err := Compile(kindDef, criteria.List())
	require.NoError(t, err)
	assert.Equal(t, queryir.Nothing{Reason: "kind"}, got)

	got, err = Compile(kindDef, criteria.Strings("and"))
	require.NoError(t, err)
	assert.Equal(t, queryir.Nothing{Reason: "kind"}, got, "a list holding only a connective is empty")
}

func TestCompile_EmptyStringIsNoFilter(t *testing.T) {
	got, err := Compile(kindDef, criteria.String(" , "))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCompile_NumberParams(t *testing.T) {
	tests := []struct {
		name  string
		value criteria.Value
		want  queryir.Predicate
	}{
		{
			name:  "expression",
			value: criteria.Gte(100),
			want:  queryir.Range{Field: "assets.width", Lower: incl(ir.IRInt(100))},
		},
		{
			name:  "param string",
			value: criteria.String(">= 100"),
			want:  queryir.Range{Field: "assets.width", Lower: incl(ir.IRInt(100))},
		},
		{
			name:  "and-glued bounds merge",
			value: criteria.String("and, >= 100, < 500"),
			want:  queryir.Range{Field: "assets.width", Lower: incl(ir.IRInt(100)), Upper: excl(ir.IRInt(500))},
		},
		{
			name:  "tighter bound wins",
			value: criteria.String("and, >= 100, > 100, <= 900, < 800"),
			want:  queryir.Range{Field: "assets.width", Lower: excl(ir.IRInt(100)), Upper: excl(ir.IRInt(800))},
		},
		{
			name:  "single point",
			value: criteria.String("and, >= 100, <= 100"),
			want:  queryir.Range{Field: "assets.width", Lower: incl(ir.IRInt(100)), Upper: incl(ir.IRInt(100))},
		},
		{
			name:  "or-glued bounds stay separate",
			value: criteria.String(">= 500, < 50"),
			want: queryir.Or{Predicates: []queryir.Predicate{
				queryir.Range{Field: "assets.width", Lower: incl(ir.IRInt(500))},
				queryir.Range{Field: "assets.width", Upper: excl(ir.IRInt(50))},
			}},
		},
		{
			name:  "between",
			value: criteria.Between(100, 500),
			want:  queryir.Range{Field: "assets.width", Lower: incl(ir.IRInt(100)), Upper: excl(ir.IRInt(500))},
		},
		{
			name:  "scalar int",
			value: criteria.Int(200),
			want:  queryir.Equals{Field: "assets.width", Value: ir.IRInt(200)},
		},
		{
			name:  "numeric strings become ints",
			value: criteria.String("200, 300"),
			want:  queryir.In{Field: "assets.width", Values: []ir.IRValue{ir.IRInt(200), ir.IRInt(300)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(widthDef, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		def   criteria.Definition
		value criteria.Value
	}{
		{"reversed and bounds", widthDef, criteria.String("and, > 500, < 100")},
		{"reversed between", widthDef, criteria.Between(500, 100)},
		{"empty exclusive range", widthDef, criteria.String("and, > 100, < 100")},
		{"not a number", widthDef, criteria.String("wide")},
		{"operator without operand", widthDef, criteria.String(">=")},
		{"bool for number", widthDef, criteria.Bool(true)},
		{"string operand for ids", idDef, criteria.Gte("x")},
		{"not a date", dateDef, criteria.String("yesterday")},
		{"int for date", dateDef, criteria.Int(5)},
		{"reversed date words", dateDef, criteria.String("between 2024-02-01 and 2024-01-01")},
		{"between without and", dateDef, criteria.String("between 2024-02-01")},
		{"no column", criteria.Definition{Name: "x", Kind: criteria.KindString}, criteria.String("a")},
		{"not a filter kind", criteria.Definition{Name: "x", Kind: criteria.KindBool, Column: "c"}, criteria.Bool(true)},
		{"broken expression", widthDef, criteria.Gte([]int{1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.def, tt.value)
			require.Error(t, err)
			assert.True(t, criteria.IsInvalidValue(err), "got %v", err)
		})
	}
}

func TestCompile_IDParams(t *testing.T) {
	got, err := Compile(idDef, criteria.Ints(3, 1))
	require.NoError(t, err)
	assert.Equal(t, queryir.In{Field: "elements.id", Values: []ir.IRValue{ir.IRInt(3), ir.IRInt(1)}}, got)

	got, err = Compile(idDef, criteria.String("not 4"))
	require.NoError(t, err)
	assert.Equal(t, queryir.NotIn{Field: "elements.id", Values: []ir.IRValue{ir.IRInt(4)}}, got)
}

func TestCompile_DateParams(t *testing.T) {
	s := func(v string) ir.IRValue { return ir.IRString(v) }

	tests := []struct {
		name  string
		value criteria.Value
		want  queryir.Predicate
	}{
		{
			name:  "bare day is the whole day",
			value: criteria.String("2024-03-01"),
			want:  queryir.Range{Field: "assets.dateModified", Lower: incl(s("2024-03-01 00:00:00")), Upper: excl(s("2024-03-02 00:00:00"))},
		},
		{
			name:  "before",
			value: criteria.String("before 2024-03-01"),
			want:  queryir.Range{Field: "assets.dateModified", Upper: excl(s("2024-03-01 00:00:00"))},
		},
		{
			name:  "after is inclusive",
			value: criteria.String("after 2024-03-01 12:00:00"),
			want:  queryir.Range{Field: "assets.dateModified", Lower: incl(s("2024-03-01 12:00:00"))},
		},
		{
			name:  "between",
			value: criteria.String("between 2024-01-01 and 2024-02-01"),
			want:  queryir.Range{Field: "assets.dateModified", Lower: incl(s("2024-01-01 00:00:00")), Upper: excl(s("2024-02-01 00:00:00"))},
		},
		{
			name:  "lte bare day includes that day",
			value: criteria.String("<= 2024-03-01"),
			want:  queryir.Range{Field: "assets.dateModified", Upper: excl(s("2024-03-02 00:00:00"))},
		},
		{
			name:  "gt bare day starts the next day",
			value: criteria.String("> 2024-03-01"),
			want:  queryir.Range{Field: "assets.dateModified", Lower: incl(s("2024-03-02 00:00:00"))},
		},
		{
			name:  "offsets convert to UTC",
			value: criteria.String("2024-03-01T10:00:00+02:00"),
			want:  queryir.Equals{Field: "assets.dateModified", Value: s("2024-03-01 08:00:00")},
		},
		{
			name:  "not a day",
			value: criteria.String("not 2024-03-01"),
			want: queryir.Or{Predicates: []queryir.Predicate{
				queryir.Range{Field: "assets.dateModified", Upper: excl(s("2024-03-01 00:00:00"))},
				queryir.Range{Field: "assets.dateModified", Lower: incl(s("2024-03-02 00:00:00"))},
			}},
		},
		{
			name:  "time expression",
			value: criteria.Gte(time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)),
			want:  queryir.Range{Field: "assets.dateModified", Lower: incl(s("2024-01-15 09:30:00"))},
		},
		{
			name:  "time scalar",
			value: criteria.Time(time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)),
			want:  queryir.Equals{Field: "assets.dateModified", Value: s("2024-01-15 09:30:00")},
		},
		{
			name:  "and-glued words merge",
			value: criteria.String("and, after 2024-01-01, before 2024-06-01"),
			want:  queryir.Range{Field: "assets.dateModified", Lower: incl(s("2024-01-01 00:00:00")), Upper: excl(s("2024-06-01 00:00:00"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(dateDef, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_Deterministic(t *testing.T) {
	v := criteria.String("and, >= 100, < 500, not 250")

	a, err := Compile(widthDef, v)
	require.NoError(t, err)
	b, err := Compile(widthDef, v)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, `assets.width NOT IN (250) AND assets.width >= 100 AND assets.width < 500`, queryir.Format(a))
}

func TestFilter_String(t *testing.T) {
	f := Filter{Criterion: "kind", Predicate: queryir.In{Field: "assets.kind", Values: str("image")}}
	assert.Equal(t, `kind: assets.kind IN ("image")`, f.String())
}
