package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/roach88/elementq/internal/ir"
)

// Fixture is a YAML description of store contents. Rows refer to each
// other by id, volume handle, transform handle and field handle.
//
//	volumes:
//	  - {id: 1, handle: photos, name: Photos}
//	folders:
//	  - {id: 1, volume: photos, name: Photos}
//	  - {id: 2, parent: 1, volume: photos, name: Trips, path: trips/}
//	assets:
//	  - {id: 10, volume: photos, folder: 2, filename: beach.jpg, kind: image, width: 200}
type Fixture struct {
	FieldLayouts     []FixtureLayout         `yaml:"fieldLayouts"`
	FieldGroups      []FixtureFieldGroup     `yaml:"fieldGroups"`
	Volumes          []FixtureVolume         `yaml:"volumes"`
	Folders          []FixtureFolder         `yaml:"folders"`
	Assets           []FixtureAsset          `yaml:"assets"`
	Transforms       []FixtureTransform      `yaml:"transforms"`
	TransformIndexes []FixtureTransformIndex `yaml:"transformIndexes"`
}

// FixtureLayout is a field layout with its tabs.
type FixtureLayout struct {
	ID   int64        `yaml:"id"`
	Type string       `yaml:"type"`
	Tabs []FixtureTab `yaml:"tabs"`
}

// FixtureTab is a layout tab listing the handles of its fields.
type FixtureTab struct {
	Name   string            `yaml:"name"`
	Fields []FixtureTabField `yaml:"fields"`
}

// FixtureTabField places a field on a tab.
type FixtureTabField struct {
	Handle   string `yaml:"handle"`
	Required bool   `yaml:"required"`
}

// FixtureFieldGroup is a field group with its fields.
type FixtureFieldGroup struct {
	ID     int64          `yaml:"id"`
	Name   string         `yaml:"name"`
	Fields []FixtureField `yaml:"fields"`
}

// FixtureField is a field definition.
type FixtureField struct {
	ID     int64  `yaml:"id"`
	Name   string `yaml:"name"`
	Handle string `yaml:"handle"`
	Type   string `yaml:"type"`
}

// FixtureVolume is a volume.
type FixtureVolume struct {
	ID          int64  `yaml:"id"`
	UID         string `yaml:"uid"`
	Name        string `yaml:"name"`
	Handle      string `yaml:"handle"`
	Type        string `yaml:"type"`
	FieldLayout *int64 `yaml:"fieldLayout"`
}

// FixtureFolder is a volume folder.
type FixtureFolder struct {
	ID     int64  `yaml:"id"`
	Parent *int64 `yaml:"parent"`
	Volume string `yaml:"volume"`
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
}

// FixtureAsset is an asset and its element row. Enabled defaults to true.
type FixtureAsset struct {
	ID           int64      `yaml:"id"`
	UID          string     `yaml:"uid"`
	Volume       string     `yaml:"volume"`
	Folder       int64      `yaml:"folder"`
	Filename     string     `yaml:"filename"`
	Kind         string     `yaml:"kind"`
	Width        *int64     `yaml:"width"`
	Height       *int64     `yaml:"height"`
	Size         *int64     `yaml:"size"`
	Enabled      *bool      `yaml:"enabled"`
	Archived     bool       `yaml:"archived"`
	DateCreated  *time.Time `yaml:"dateCreated"`
	DateUpdated  *time.Time `yaml:"dateUpdated"`
	DateModified *time.Time `yaml:"dateModified"`
}

// FixtureTransform is a transform definition.
type FixtureTransform struct {
	Handle string `yaml:"handle"`
	Name   string `yaml:"name"`
	Mode   string `yaml:"mode"`
	Width  *int64 `yaml:"width"`
	Height *int64 `yaml:"height"`
}

// FixtureTransformIndex is a generated transform of an asset.
type FixtureTransformIndex struct {
	Asset      int64  `yaml:"asset"`
	Transform  string `yaml:"transform"`
	Filename   string `yaml:"filename"`
	Format     string `yaml:"format"`
	FileExists bool   `yaml:"fileExists"`
}

// ParseFixture decodes a fixture, rejecting unknown keys.
func ParseFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// LoadFixtureFile reads and loads a fixture file.
func (s *Store) LoadFixtureFile(ctx context.Context, path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer file.Close()

	f, err := ParseFixture(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.LoadFixture(ctx, f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// LoadFixture writes every row of f in one transaction. Either the whole
// fixture is loaded or nothing is.
func (s *Store) LoadFixture(ctx context.Context, f *Fixture) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		l := fixtureLoader{
			ctx:     ctx,
			tx:      tx,
			store:   s,
			volumes: make(map[string]int64),
			fields:  make(map[string]int64),
		}
		return l.load(f)
	})
}

type fixtureLoader struct {
	ctx     context.Context
	tx      *sqlx.Tx
	store   *Store
	volumes map[string]int64
	fields  map[string]int64
}

func (l *fixtureLoader) load(f *Fixture) error {
	for _, g := range f.FieldGroups {
		if err := l.fieldGroup(g); err != nil {
			return err
		}
	}
	for _, fl := range f.FieldLayouts {
		if err := l.fieldLayout(fl); err != nil {
			return err
		}
	}
	for _, v := range f.Volumes {
		vol := ir.Volume{
			ID:            v.ID,
			UID:           v.UID,
			Name:          v.Name,
			Handle:        v.Handle,
			Type:          v.Type,
			FieldLayoutID: v.FieldLayout,
		}
		if vol.Type == "" {
			vol.Type = "local"
		}
		if vol.Name == "" {
			vol.Name = v.Handle
		}
		if err := insertVolume(l.ctx, l.tx, &vol, l.store.newUID); err != nil {
			return err
		}
		l.volumes[vol.Handle] = vol.ID
	}
	for _, fo := range f.Folders {
		folder := ir.Folder{ID: fo.ID, ParentID: fo.Parent, Name: fo.Name, Path: fo.Path}
		if fo.Volume != "" {
			id, err := l.volume(fo.Volume)
			if err != nil {
				return fmt.Errorf("folder %q: %w", fo.Name, err)
			}
			folder.VolumeID = &id
		}
		if err := insertFolder(l.ctx, l.tx, &folder); err != nil {
			return err
		}
	}
	for _, a := range f.Assets {
		if err := l.asset(a); err != nil {
			return err
		}
	}
	for _, t := range f.Transforms {
		tr := ir.Transform{Name: t.Name, Handle: t.Handle, Mode: t.Mode, Width: t.Width, Height: t.Height}
		if tr.Name == "" {
			tr.Name = t.Handle
		}
		if err := insertTransform(l.ctx, l.tx, &tr); err != nil {
			return err
		}
	}
	for _, t := range f.TransformIndexes {
		idx := ir.TransformIndex{
			AssetID:    t.Asset,
			Transform:  t.Transform,
			Filename:   t.Filename,
			Format:     t.Format,
			FileExists: t.FileExists,
		}
		if err := insertTransformIndex(l.ctx, l.tx, &idx); err != nil {
			return err
		}
	}
	return nil
}

func (l *fixtureLoader) fieldGroup(g FixtureFieldGroup) error {
	group := ir.FieldGroup{ID: g.ID, Name: g.Name}
	if err := insertFieldGroup(l.ctx, l.tx, &group); err != nil {
		return err
	}
	for _, f := range g.Fields {
		field := ir.Field{ID: f.ID, GroupID: &group.ID, Name: f.Name, Handle: f.Handle, Type: f.Type}
		if field.Name == "" {
			field.Name = f.Handle
		}
		if field.Type == "" {
			field.Type = "plainText"
		}
		if err := insertField(l.ctx, l.tx, &field); err != nil {
			return err
		}
		l.fields[field.Handle] = field.ID
	}
	return nil
}

func (l *fixtureLoader) fieldLayout(fl FixtureLayout) error {
	layout := ir.FieldLayout{ID: fl.ID, Type: fl.Type}
	if err := insertFieldLayout(l.ctx, l.tx, &layout); err != nil {
		return err
	}
	for i, t := range fl.Tabs {
		tab := ir.FieldLayoutTab{LayoutID: layout.ID, Name: t.Name, SortOrder: int64(i + 1)}
		if err := insertFieldLayoutTab(l.ctx, l.tx, &tab); err != nil {
			return err
		}
		for j, tf := range t.Fields {
			fieldID, ok := l.fields[tf.Handle]
			if !ok {
				return fmt.Errorf("layout %d tab %q: unknown field %q", layout.ID, t.Name, tf.Handle)
			}
			placed := ir.FieldLayoutField{
				LayoutID:  layout.ID,
				TabID:     tab.ID,
				FieldID:   fieldID,
				Required:  tf.Required,
				SortOrder: int64(j + 1),
			}
			if err := insertFieldLayoutField(l.ctx, l.tx, &placed); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *fixtureLoader) asset(a FixtureAsset) error {
	volumeID, err := l.volume(a.Volume)
	if err != nil {
		return fmt.Errorf("asset %q: %w", a.Filename, err)
	}

	asset := ir.Asset{
		Element: ir.Element{
			ID:       a.ID,
			UID:      a.UID,
			Enabled:  a.Enabled == nil || *a.Enabled,
			Archived: a.Archived,
		},
		VolumeID:     volumeID,
		FolderID:     a.Folder,
		Filename:     a.Filename,
		Kind:         a.Kind,
		Width:        a.Width,
		Height:       a.Height,
		Size:         a.Size,
		DateModified: a.DateModified,
	}
	if a.DateCreated != nil {
		asset.DateCreated = *a.DateCreated
	}
	if a.DateUpdated != nil {
		asset.DateUpdated = *a.DateUpdated
	}
	return insertAsset(l.ctx, l.tx, &asset, l.store.newUID, l.store.now)
}

func (l *fixtureLoader) volume(handle string) (int64, error) {
	id, ok := l.volumes[handle]
	if !ok {
		return 0, fmt.Errorf("unknown volume %q", handle)
	}
	return id, nil
}
