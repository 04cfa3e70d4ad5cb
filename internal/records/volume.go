package records

import (
	"context"

	"github.com/roach88/elementq/internal/ir"
)

// Volume is an asset volume record.
type Volume struct {
	ir.Volume
}

// FieldLayout returns the volume's field layout, or nil if it has none.
func (v Volume) FieldLayout(ctx context.Context, l Lookup) (*ir.FieldLayout, error) {
	if v.FieldLayoutID == nil {
		return nil, nil
	}
	return hasOne(ctx, *v.FieldLayoutID, l.FieldLayoutByID)
}
