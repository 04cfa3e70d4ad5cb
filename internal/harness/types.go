package harness

import (
	"github.com/roach88/elementq/internal/elementq"
)

// Result is the outcome of one scenario execution.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool `json:"pass"`

	// Errors holds one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	IDs         []int64               `json:"ids"`
	Count       int64                 `json:"count"`
	Explanation *elementq.Explanation `json:"explanation,omitempty"`

	// Err is the error the query failed with, if any. ErrorKind is its
	// classification, empty when the error matches no known kind.
	Err       error  `json:"-"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		IDs:    []int64{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
