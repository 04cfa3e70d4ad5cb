package records

import (
	"context"
	"errors"

	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/store"
)

// Lookup reads the rows records refer to. *store.Store implements it.
type Lookup interface {
	FieldLayoutByID(ctx context.Context, id int64) (ir.FieldLayout, error)
	FieldLayoutTabByID(ctx context.Context, id int64) (ir.FieldLayoutTab, error)
	FieldByID(ctx context.Context, id int64) (ir.Field, error)
	FieldsByGroup(ctx context.Context, groupID int64) ([]ir.Field, error)
	FieldGroupByName(ctx context.Context, name string) (ir.FieldGroup, error)
	FieldLayoutFieldByPair(ctx context.Context, layoutID, fieldID int64) (ir.FieldLayoutField, error)
}

// Writer persists records. *store.Store implements it.
type Writer interface {
	CreateFieldGroup(ctx context.Context, g *ir.FieldGroup) error
	UpdateFieldGroup(ctx context.Context, g *ir.FieldGroup) error
	CreateFieldLayoutField(ctx context.Context, f *ir.FieldLayoutField) error
}

// Store is a Lookup that can also write.
type Store interface {
	Lookup
	Writer
}

var _ Store = (*store.Store)(nil)

// hasOne loads a related row, mapping a missing row to nil.
func hasOne[T any](ctx context.Context, id int64, load func(context.Context, int64) (T, error)) (*T, error) {
	row, err := load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
