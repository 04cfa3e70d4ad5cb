package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/store"
)

// FieldLayoutField places a field on a tab of a field layout. A field
// appears at most once per layout.
type FieldLayoutField struct {
	ID        int64 `db:"id" json:"id" validate:"gte=0"`
	LayoutID  int64 `db:"layoutId" json:"layout_id" validate:"required"`
	TabID     int64 `db:"tabId" json:"tab_id" validate:"required"`
	FieldID   int64 `db:"fieldId" json:"field_id" validate:"required"`
	Required  bool  `db:"required" json:"required"`
	SortOrder int64 `db:"sortOrder" json:"sort_order" validate:"gte=0"`
}

// NewFieldLayoutField wraps a stored placement.
func NewFieldLayoutField(f ir.FieldLayoutField) FieldLayoutField {
	return FieldLayoutField(f)
}

// Validate checks the struct rules and that the field is not already on
// the layout.
func (f FieldLayoutField) Validate(ctx context.Context, l Lookup) error {
	fields, err := checkStruct(f)
	if err != nil {
		return err
	}

	if f.LayoutID != 0 && f.FieldID != 0 {
		other, err := l.FieldLayoutFieldByPair(ctx, f.LayoutID, f.FieldID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		case other.ID != f.ID:
			fields = append(fields, FieldError{
				Field: "layoutId",
				Rule:  "unique",
				Param: fmt.Sprintf("%d/%d", f.LayoutID, f.FieldID),
			})
		}
	}
	return invalid("field layout field", fields)
}

// Create validates and stores a new placement.
func (f FieldLayoutField) Create(ctx context.Context, s Store) (FieldLayoutField, error) {
	if err := f.Validate(ctx, s); err != nil {
		return f, err
	}
	row := ir.FieldLayoutField(f)
	if err := s.CreateFieldLayoutField(ctx, &row); err != nil {
		return f, err
	}
	return NewFieldLayoutField(row), nil
}

// Layout returns the layout the field is placed on.
func (f FieldLayoutField) Layout(ctx context.Context, l Lookup) (*ir.FieldLayout, error) {
	return hasOne(ctx, f.LayoutID, l.FieldLayoutByID)
}

// Tab returns the tab the field is placed on.
func (f FieldLayoutField) Tab(ctx context.Context, l Lookup) (*ir.FieldLayoutTab, error) {
	return hasOne(ctx, f.TabID, l.FieldLayoutTabByID)
}

// Field returns the placed field.
func (f FieldLayoutField) Field(ctx context.Context, l Lookup) (*ir.Field, error) {
	return hasOne(ctx, f.FieldID, l.FieldByID)
}
