package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/elementq/internal/ir"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// get scans a single row into dest, mapping sql.ErrNoRows to ErrNotFound.
func (s *Store) get(ctx context.Context, dest any, what string, query string, args ...any) error {
	err := s.db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	return nil
}

// VolumeByID returns the volume with the given id.
func (s *Store) VolumeByID(ctx context.Context, id int64) (ir.Volume, error) {
	var v ir.Volume
	err := s.get(ctx, &v, fmt.Sprintf("volume %d", id), `
		SELECT id, uid, name, handle, type, fieldLayoutId, sortOrder
		FROM volumes
		WHERE id = ?
	`, id)
	return v, err
}

// VolumeByHandle returns the volume with the given handle.
func (s *Store) VolumeByHandle(ctx context.Context, handle string) (ir.Volume, error) {
	var v ir.Volume
	err := s.get(ctx, &v, fmt.Sprintf("volume %q", handle), `
		SELECT id, uid, name, handle, type, fieldLayoutId, sortOrder
		FROM volumes
		WHERE handle = ?
	`, handle)
	return v, err
}

// FolderByID returns the folder with the given id.
func (s *Store) FolderByID(ctx context.Context, id int64) (ir.Folder, error) {
	var f ir.Folder
	err := s.get(ctx, &f, fmt.Sprintf("folder %d", id), `
		SELECT id, parentId, volumeId, name, path
		FROM volumefolders
		WHERE id = ?
	`, id)
	return f, err
}

// FieldLayoutByID returns the field layout with the given id.
func (s *Store) FieldLayoutByID(ctx context.Context, id int64) (ir.FieldLayout, error) {
	var l ir.FieldLayout
	err := s.get(ctx, &l, fmt.Sprintf("field layout %d", id), `
		SELECT id, type FROM fieldlayouts WHERE id = ?
	`, id)
	return l, err
}

// FieldLayoutTabByID returns the field layout tab with the given id.
func (s *Store) FieldLayoutTabByID(ctx context.Context, id int64) (ir.FieldLayoutTab, error) {
	var t ir.FieldLayoutTab
	err := s.get(ctx, &t, fmt.Sprintf("field layout tab %d", id), `
		SELECT id, layoutId, name, sortOrder FROM fieldlayouttabs WHERE id = ?
	`, id)
	return t, err
}

// FieldByID returns the field with the given id.
func (s *Store) FieldByID(ctx context.Context, id int64) (ir.Field, error) {
	var f ir.Field
	err := s.get(ctx, &f, fmt.Sprintf("field %d", id), `
		SELECT id, groupId, name, handle, type FROM fields WHERE id = ?
	`, id)
	return f, err
}

// FieldGroupByID returns the field group with the given id.
func (s *Store) FieldGroupByID(ctx context.Context, id int64) (ir.FieldGroup, error) {
	var g ir.FieldGroup
	err := s.get(ctx, &g, fmt.Sprintf("field group %d", id), `
		SELECT id, name FROM fieldgroups WHERE id = ?
	`, id)
	return g, err
}

// FieldGroupByName returns the field group with the given name.
func (s *Store) FieldGroupByName(ctx context.Context, name string) (ir.FieldGroup, error) {
	var g ir.FieldGroup
	err := s.get(ctx, &g, fmt.Sprintf("field group %q", name), `
		SELECT id, name FROM fieldgroups WHERE name = ?
	`, name)
	return g, err
}

// FieldGroups returns every field group ordered by name.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) FieldGroups(ctx context.Context) ([]ir.FieldGroup, error) {
	groups := []ir.FieldGroup{}
	err := s.db.SelectContext(ctx, &groups, `
		SELECT id, name FROM fieldgroups
		ORDER BY name COLLATE BINARY ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read field groups: %w", err)
	}
	return groups, nil
}

// FieldsByGroup returns the fields in a group ordered by name.
//
// Returns an empty slice (not nil) if the group has no fields.
func (s *Store) FieldsByGroup(ctx context.Context, groupID int64) ([]ir.Field, error) {
	fields := []ir.Field{}
	err := s.db.SelectContext(ctx, &fields, `
		SELECT id, groupId, name, handle, type FROM fields
		WHERE groupId = ?
		ORDER BY name COLLATE BINARY ASC, id ASC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("read fields of group %d: %w", groupID, err)
	}
	return fields, nil
}

// FieldLayoutFieldByPair returns the placement of a field on a layout.
func (s *Store) FieldLayoutFieldByPair(ctx context.Context, layoutID, fieldID int64) (ir.FieldLayoutField, error) {
	var f ir.FieldLayoutField
	err := s.get(ctx, &f, fmt.Sprintf("layout field %d/%d", layoutID, fieldID), `
		SELECT id, layoutId, tabId, fieldId, required, sortOrder
		FROM fieldlayoutfields
		WHERE layoutId = ? AND fieldId = ?
	`, layoutID, fieldID)
	return f, err
}

// FieldLayoutFields returns the fields placed on a layout in tab and sort
// order.
func (s *Store) FieldLayoutFields(ctx context.Context, layoutID int64) ([]ir.FieldLayoutField, error) {
	fields := []ir.FieldLayoutField{}
	err := s.db.SelectContext(ctx, &fields, `
		SELECT f.id, f.layoutId, f.tabId, f.fieldId, f.required, f.sortOrder
		FROM fieldlayoutfields f
		JOIN fieldlayouttabs t ON t.id = f.tabId
		WHERE f.layoutId = ?
		ORDER BY t.sortOrder ASC, f.sortOrder ASC, f.id ASC
	`, layoutID)
	if err != nil {
		return nil, fmt.Errorf("read fields of layout %d: %w", layoutID, err)
	}
	return fields, nil
}
