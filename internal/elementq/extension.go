package elementq

import (
	"context"

	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/predicate"
	"github.com/roach88/elementq/internal/queryir"
)

// Extension describes one element subtype to the generic query core.
type Extension[T any] interface {
	// ElementType is the elements.type value of the subtype.
	ElementType() string

	// Joins attaches the subtype table (1:1 on elements.id) and any tables
	// its projection needs.
	Joins() []queryir.Join

	// Columns is the subtype projection. Result names must match T's db tags.
	Columns() []queryir.Column

	// Criteria declares the subtype criteria. Criteria of kinds IDList,
	// String, Number and Date with a Column are compiled by the core; the
	// extension compiles the rest in Resolve.
	Criteria() []criteria.Definition

	// Resolve compiles the criteria that need collaborators. It runs once
	// per execution.
	Resolve(ctx context.Context, snap criteria.Snapshot) ([]predicate.Filter, error)

	// Populate eager-loads auxiliary data for a materialized batch.
	// Errors are reported but do not invalidate the batch.
	Populate(ctx context.Context, snap criteria.Snapshot, items []*T) error
}

// Element base table and criteria.
const (
	ElementsTable = "elements"

	CriterionID          = "id"
	CriterionUID         = "uid"
	CriterionStatus      = "status"
	CriterionArchived    = "archived"
	CriterionDateCreated = "dateCreated"
	CriterionDateUpdated = "dateUpdated"
	CriterionFixedOrder  = "fixedOrder"
	CriterionOrderBy     = "orderBy"
	CriterionLimit       = "limit"
	CriterionOffset      = "offset"
)

// Element statuses accepted by the status criterion.
const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
	StatusArchived = "archived"
)

// BaseCriteria are the criteria every element query accepts.
func BaseCriteria() []criteria.Definition {
	return []criteria.Definition{
		{Name: CriterionID, Kind: criteria.KindIDList, Column: "elements.id"},
		{Name: CriterionUID, Kind: criteria.KindString, Column: "elements.uid"},
		{Name: CriterionStatus, Kind: criteria.KindStatus},
		{Name: CriterionArchived, Kind: criteria.KindBool, Column: "elements.archived"},
		{Name: CriterionDateCreated, Kind: criteria.KindDate, Column: "elements.dateCreated"},
		{Name: CriterionDateUpdated, Kind: criteria.KindDate, Column: "elements.dateUpdated"},
		{Name: CriterionFixedOrder, Kind: criteria.KindFixedOrder},
		{Name: CriterionOrderBy, Kind: criteria.KindOrder},
		{Name: CriterionLimit, Kind: criteria.KindInt},
		{Name: CriterionOffset, Kind: criteria.KindInt},
	}
}

// BaseColumns is the element projection shared by every subtype.
func BaseColumns() []queryir.Column {
	return []queryir.Column{
		{Expr: "elements.id", As: "id"},
		{Expr: "elements.uid", As: "uid"},
		{Expr: "elements.type", As: "type"},
		{Expr: "elements.enabled", As: "enabled"},
		{Expr: "elements.archived", As: "archived"},
		{Expr: "elements.dateCreated", As: "dateCreated"},
		{Expr: "elements.dateUpdated", As: "dateUpdated"},
	}
}
