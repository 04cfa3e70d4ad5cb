package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/elementq/internal/ir"
)

// Writes exist to seed stores for the CLI and tests. Each Create method
// fills in the row's ID (and UID where the table has one) on success. A
// non-zero ID is inserted as given.

// CreateVolume inserts a volume. An empty UID is generated.
func (s *Store) CreateVolume(ctx context.Context, v *ir.Volume) error {
	return insertVolume(ctx, s.db, v, s.newUID)
}

// CreateFolder inserts a volume folder.
func (s *Store) CreateFolder(ctx context.Context, f *ir.Folder) error {
	return insertFolder(ctx, s.db, f)
}

// CreateAsset inserts the element row and the asset row of a in one
// transaction. An empty UID is generated and zero creation and update
// dates are set from the store clock.
func (s *Store) CreateAsset(ctx context.Context, a *ir.Asset) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		return insertAsset(ctx, tx, a, s.newUID, s.now)
	})
}

// CreateFieldLayout inserts a field layout.
func (s *Store) CreateFieldLayout(ctx context.Context, l *ir.FieldLayout) error {
	return insertFieldLayout(ctx, s.db, l)
}

// CreateFieldLayoutTab inserts a tab into a field layout.
func (s *Store) CreateFieldLayoutTab(ctx context.Context, t *ir.FieldLayoutTab) error {
	return insertFieldLayoutTab(ctx, s.db, t)
}

// CreateFieldGroup inserts a field group. Names are unique.
func (s *Store) CreateFieldGroup(ctx context.Context, g *ir.FieldGroup) error {
	return insertFieldGroup(ctx, s.db, g)
}

// UpdateFieldGroup renames a field group.
func (s *Store) UpdateFieldGroup(ctx context.Context, g *ir.FieldGroup) error {
	res, err := s.db.ExecContext(ctx, `UPDATE fieldgroups SET name = ? WHERE id = ?`, g.Name, g.ID)
	if err != nil {
		return fmt.Errorf("update field group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update field group: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update field group %d: %w", g.ID, ErrNotFound)
	}
	return nil
}

// CreateField inserts a field definition.
func (s *Store) CreateField(ctx context.Context, f *ir.Field) error {
	return insertField(ctx, s.db, f)
}

// CreateFieldLayoutField places a field on a layout tab.
// (LayoutID, FieldID) is unique.
func (s *Store) CreateFieldLayoutField(ctx context.Context, f *ir.FieldLayoutField) error {
	return insertFieldLayoutField(ctx, s.db, f)
}

// CreateTransform inserts a transform definition.
func (s *Store) CreateTransform(ctx context.Context, t *ir.Transform) error {
	return insertTransform(ctx, s.db, t)
}

// CreateTransformIndex records a generated transform of an asset.
func (s *Store) CreateTransformIndex(ctx context.Context, idx *ir.TransformIndex) error {
	return insertTransformIndex(ctx, s.db, idx)
}

func insertVolume(ctx context.Context, e sqlx.ExtContext, v *ir.Volume, newUID func() string) error {
	if v.UID == "" {
		v.UID = newUID()
	}
	id, err := insert(ctx, e, `
		INSERT INTO volumes (id, uid, name, handle, type, fieldLayoutId, sortOrder)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rowID(v.ID), v.UID, v.Name, v.Handle, v.Type, v.FieldLayoutID, v.SortOrder)
	if err != nil {
		return fmt.Errorf("write volume %q: %w", v.Handle, err)
	}
	v.ID = id
	return nil
}

func insertFolder(ctx context.Context, e sqlx.ExtContext, f *ir.Folder) error {
	id, err := insert(ctx, e, `
		INSERT INTO volumefolders (id, parentId, volumeId, name, path)
		VALUES (?, ?, ?, ?, ?)
	`, rowID(f.ID), f.ParentID, f.VolumeID, f.Name, f.Path)
	if err != nil {
		return fmt.Errorf("write folder %q: %w", f.Name, err)
	}
	f.ID = id
	return nil
}

func insertAsset(ctx context.Context, e sqlx.ExtContext, a *ir.Asset, newUID func() string, now func() time.Time) error {
	if a.UID == "" {
		a.UID = newUID()
	}
	a.Type = ir.ElementTypeAsset
	if a.DateCreated.IsZero() {
		a.DateCreated = now()
	}
	if a.DateUpdated.IsZero() {
		a.DateUpdated = a.DateCreated
	}
	a.DateCreated = a.DateCreated.UTC().Truncate(time.Second)
	a.DateUpdated = a.DateUpdated.UTC().Truncate(time.Second)

	id, err := insert(ctx, e, `
		INSERT INTO elements (id, uid, type, enabled, archived, dateCreated, dateUpdated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rowID(a.ID), a.UID, a.Type, a.Enabled, a.Archived,
		ir.FormatTime(a.DateCreated), ir.FormatTime(a.DateUpdated))
	if err != nil {
		return fmt.Errorf("write element %q: %w", a.Filename, err)
	}
	a.ID = id

	var modified any
	if a.DateModified != nil {
		t := a.DateModified.UTC().Truncate(time.Second)
		a.DateModified = &t
		modified = ir.FormatTime(t)
	}

	_, err = e.ExecContext(ctx, `
		INSERT INTO assets (id, volumeId, folderId, filename, kind, width, height, size, dateModified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.VolumeID, a.FolderID, ir.NormalizeString(a.Filename), a.Kind,
		a.Width, a.Height, a.Size, modified)
	if err != nil {
		return fmt.Errorf("write asset %q: %w", a.Filename, err)
	}
	return nil
}

func insertFieldLayout(ctx context.Context, e sqlx.ExtContext, l *ir.FieldLayout) error {
	id, err := insert(ctx, e, `INSERT INTO fieldlayouts (id, type) VALUES (?, ?)`, rowID(l.ID), l.Type)
	if err != nil {
		return fmt.Errorf("write field layout: %w", err)
	}
	l.ID = id
	return nil
}

func insertFieldLayoutTab(ctx context.Context, e sqlx.ExtContext, t *ir.FieldLayoutTab) error {
	id, err := insert(ctx, e, `
		INSERT INTO fieldlayouttabs (id, layoutId, name, sortOrder)
		VALUES (?, ?, ?, ?)
	`, rowID(t.ID), t.LayoutID, t.Name, t.SortOrder)
	if err != nil {
		return fmt.Errorf("write field layout tab %q: %w", t.Name, err)
	}
	t.ID = id
	return nil
}

func insertFieldGroup(ctx context.Context, e sqlx.ExtContext, g *ir.FieldGroup) error {
	id, err := insert(ctx, e, `INSERT INTO fieldgroups (id, name) VALUES (?, ?)`, rowID(g.ID), g.Name)
	if err != nil {
		return fmt.Errorf("write field group %q: %w", g.Name, err)
	}
	g.ID = id
	return nil
}

func insertField(ctx context.Context, e sqlx.ExtContext, f *ir.Field) error {
	id, err := insert(ctx, e, `
		INSERT INTO fields (id, groupId, name, handle, type)
		VALUES (?, ?, ?, ?, ?)
	`, rowID(f.ID), f.GroupID, f.Name, f.Handle, f.Type)
	if err != nil {
		return fmt.Errorf("write field %q: %w", f.Handle, err)
	}
	f.ID = id
	return nil
}

func insertFieldLayoutField(ctx context.Context, e sqlx.ExtContext, f *ir.FieldLayoutField) error {
	id, err := insert(ctx, e, `
		INSERT INTO fieldlayoutfields (id, layoutId, tabId, fieldId, required, sortOrder)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rowID(f.ID), f.LayoutID, f.TabID, f.FieldID, f.Required, f.SortOrder)
	if err != nil {
		return fmt.Errorf("write layout field %d/%d: %w", f.LayoutID, f.FieldID, err)
	}
	f.ID = id
	return nil
}

func insertTransform(ctx context.Context, e sqlx.ExtContext, t *ir.Transform) error {
	mode := t.Mode
	if mode == "" {
		mode = "crop"
		t.Mode = mode
	}
	id, err := insert(ctx, e, `
		INSERT INTO assettransforms (id, name, handle, mode, width, height)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rowID(t.ID), t.Name, t.Handle, mode, t.Width, t.Height)
	if err != nil {
		return fmt.Errorf("write transform %q: %w", t.Handle, err)
	}
	t.ID = id
	return nil
}

func insertTransformIndex(ctx context.Context, e sqlx.ExtContext, idx *ir.TransformIndex) error {
	id, err := insert(ctx, e, `
		INSERT INTO assettransformindex (id, assetId, transform, filename, format, fileExists)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rowID(idx.ID), idx.AssetID, idx.Transform, idx.Filename, idx.Format, idx.FileExists)
	if err != nil {
		return fmt.Errorf("write transform index %d/%s: %w", idx.AssetID, idx.Transform, err)
	}
	idx.ID = id
	return nil
}

func insert(ctx context.Context, e sqlx.ExtContext, query string, args ...any) (int64, error) {
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// rowID leaves zero ids to SQLite.
func rowID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
