package records

import (
	"context"
	"errors"
	"strings"

	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/store"
)

// FieldGroup is a named group of custom fields. Names are unique.
type FieldGroup struct {
	ID   int64  `db:"id" json:"id" validate:"gte=0"`
	Name string `db:"name" json:"name" validate:"required,max=255"`
}

// NewFieldGroup wraps a stored field group.
func NewFieldGroup(g ir.FieldGroup) FieldGroup {
	return FieldGroup{ID: g.ID, Name: g.Name}
}

// String returns the group name.
func (g FieldGroup) String() string {
	return g.Name
}

// Validate checks the struct rules and that no other group has the name.
func (g FieldGroup) Validate(ctx context.Context, l Lookup) error {
	fields, err := checkStruct(g)
	if err != nil {
		return err
	}

	if name := strings.TrimSpace(g.Name); name != "" {
		other, err := l.FieldGroupByName(ctx, name)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return err
		case other.ID != g.ID:
			fields = append(fields, FieldError{Field: "name", Rule: "unique", Param: name})
		}
	}
	return invalid("field group", fields)
}

// Save validates g and creates or updates it, returning the stored group.
func (g FieldGroup) Save(ctx context.Context, s Store) (FieldGroup, error) {
	g.Name = strings.TrimSpace(g.Name)
	if err := g.Validate(ctx, s); err != nil {
		return g, err
	}

	row := ir.FieldGroup{ID: g.ID, Name: g.Name}
	var err error
	if g.ID == 0 {
		err = s.CreateFieldGroup(ctx, &row)
	} else {
		err = s.UpdateFieldGroup(ctx, &row)
	}
	if err != nil {
		return g, err
	}
	return NewFieldGroup(row), nil
}

// Fields returns the fields in the group.
func (g FieldGroup) Fields(ctx context.Context, l Lookup) ([]ir.Field, error) {
	return l.FieldsByGroup(ctx, g.ID)
}
