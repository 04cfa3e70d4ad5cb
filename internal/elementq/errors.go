package elementq

import (
	"errors"
	"fmt"

	"github.com/roach88/elementq/internal/criteria"
)

// Stage names a step of one execution.
type Stage string

const (
	StageUnprepared         Stage = "unprepared"
	StagePredicatesCompiled Stage = "predicates-compiled"
	StageJoined             Stage = "joined"
	StageExecuted           Stage = "executed"
	StageMaterialized       Stage = "materialized"
)

// ErrorCode categorizes execution errors. Configuration errors use
// criteria.ErrorCode.
type ErrorCode string

const (
	// ErrCodeExecutionFailure indicates storage rejected or failed the query.
	ErrCodeExecutionFailure ErrorCode = "EXECUTION_FAILURE"

	// ErrCodeMaterializationFailure indicates a row could not be mapped to its entity.
	ErrCodeMaterializationFailure ErrorCode = "MATERIALIZATION_FAILURE"
)

// QueryError is returned when an execution fails after its criteria were
// accepted.
type QueryError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Stage is the stage the execution was in when it failed.
	Stage Stage

	// ElementType is the element subtype being queried.
	ElementType string

	// Err is the underlying error, unmodified.
	Err error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s query failed at %s: %v", e.Code, e.ElementType, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsExecutionFailure returns true if err is a storage failure.
// Uses errors.As to handle wrapped errors.
func IsExecutionFailure(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == ErrCodeExecutionFailure
	}
	return false
}

// IsMaterializationFailure returns true if err is a row mapping failure.
// Uses errors.As to handle wrapped errors.
func IsMaterializationFailure(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == ErrCodeMaterializationFailure
	}
	return false
}

// IsUnknownCriterion returns true if err reports an unrecognized criterion.
func IsUnknownCriterion(err error) bool {
	return criteria.IsUnknownCriterion(err)
}

// IsInvalidCriterionValue returns true if err reports a value that cannot
// be normalized.
func IsInvalidCriterionValue(err error) bool {
	return criteria.IsInvalidValue(err)
}
