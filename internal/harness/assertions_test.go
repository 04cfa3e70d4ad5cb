package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elementq/internal/elementq"
)

func int64p(n int64) *int64 { return &n }
func boolp(b bool) *bool    { return &b }

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     "ids",
		Expected: "[1 2]",
		Actual:   "[2]",
		Criteria: map[string]any{"width": ">= 100", "kind": "image"},
	}

	assert.Equal(t, "Assertion failed: ids\n"+
		"  Expected: [1 2]\n"+
		"  Actual: [2]\n"+
		"\nCriteria:\n"+
		"  kind = image\n"+
		"  width = >= 100\n", err.Error())
}

func TestEvaluate(t *testing.T) {
	ok := func() *Result {
		r := NewResult()
		r.IDs = []int64{1, 2}
		r.Count = 2
		r.Explanation = &elementq.Explanation{Conditions: []string{"kind: assets.kind = \"image\""}}
		return r
	}

	tests := []struct {
		name     string
		expect   Expect
		result   func() *Result
		first    *int64
		wantType []string
	}{
		{
			name:   "all match",
			expect: Expect{IDs: []int64{1, 2}, Count: int64p(2), First: int64p(1), ShortCircuit: boolp(false)},
			result: ok,
			first:  int64p(1),
		},
		{
			name:     "ids differ",
			expect:   Expect{IDs: []int64{2, 1}},
			result:   ok,
			wantType: []string{"ids"},
		},
		{
			name:     "count and first differ",
			expect:   Expect{Count: int64p(5), First: int64p(9)},
			result:   ok,
			first:    int64p(1),
			wantType: []string{"count", "first"},
		},
		{
			name:   "first zero means none",
			expect: Expect{First: int64p(0)},
			result: ok,
		},
		{
			name:     "first zero but got one",
			expect:   Expect{First: int64p(0)},
			result:   ok,
			first:    int64p(1),
			wantType: []string{"first"},
		},
		{
			name:     "missing condition",
			expect:   Expect{Conditions: []string{"width: assets.width > 1"}},
			result:   ok,
			wantType: []string{"conditions"},
		},
		{
			name:     "short circuit differs",
			expect:   Expect{ShortCircuit: boolp(true)},
			result:   ok,
			wantType: []string{"shortCircuit"},
		},
		{
			name:     "expected error but succeeded",
			expect:   Expect{Error: ErrInvalidValue},
			result:   ok,
			wantType: []string{"error"},
		},
		{
			name:   "unexpected error skips result checks",
			expect: Expect{IDs: []int64{1, 2}, Count: int64p(2)},
			result: func() *Result {
				r := NewResult()
				r.Err = errors.New("disk on fire")
				return r
			},
			wantType: []string{"error"},
		},
		{
			name:   "wrong error kind",
			expect: Expect{Error: ErrInvalidValue},
			result: func() *Result {
				r := NewResult()
				r.Err = errors.New("nope")
				r.ErrorKind = ErrUnknownCriterion
				return r
			},
			wantType: []string{"error"},
		},
		{
			name:   "expected error kind",
			expect: Expect{Error: ErrUnknownCriterion},
			result: func() *Result {
				r := NewResult()
				r.Err = errors.New("nope")
				r.ErrorKind = ErrUnknownCriterion
				return r
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scenario{Name: "t", Expect: tt.expect}
			r := tt.result()
			var got []string
			for _, err := range checks(s, r, tt.first) {
				if err == nil {
					continue
				}
				var ae *AssertionError
				require.ErrorAs(t, err, &ae)
				got = append(got, ae.Type)
			}
			assert.Equal(t, tt.wantType, got)

			evaluate(s, r, tt.first)
			assert.Equal(t, len(tt.wantType) == 0, r.Pass)
			assert.Len(t, r.Errors, len(tt.wantType))
		})
	}
}
