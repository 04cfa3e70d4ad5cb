package ir

import "time"

// Element is the shared part of every content item, stored in the
// elements table.
type Element struct {
	ID          int64     `db:"id" json:"id"`
	UID         string    `db:"uid" json:"uid"`
	Type        string    `db:"type" json:"type"`
	Enabled     bool      `db:"enabled" json:"enabled"`
	Archived    bool      `db:"archived" json:"archived"`
	DateCreated time.Time `db:"dateCreated" json:"date_created"`
	DateUpdated time.Time `db:"dateUpdated" json:"date_updated"`
}

// ElementTypeAsset is the elements.type value for assets.
const ElementTypeAsset = "asset"

// Asset is an element stored in a volume folder.
// Width and Height are nil for files that have no pixel dimensions.
type Asset struct {
	Element
	VolumeID     int64      `db:"volumeId" json:"volume_id"`
	FolderID     int64      `db:"folderId" json:"folder_id"`
	Filename     string     `db:"filename" json:"filename"`
	Kind         string     `db:"kind" json:"kind"`
	Width        *int64     `db:"width" json:"width,omitempty"`
	Height       *int64     `db:"height" json:"height,omitempty"`
	Size         *int64     `db:"size" json:"size,omitempty"`
	DateModified *time.Time `db:"dateModified" json:"date_modified,omitempty"`
	FolderPath   string     `db:"folderPath" json:"folder_path"`

	// Transforms holds eager-loaded transform indexes keyed by transform handle.
	Transforms map[string]TransformIndex `db:"-" json:"transforms,omitempty"`
}

// Volume is an asset storage location.
type Volume struct {
	ID            int64  `db:"id" json:"id"`
	UID           string `db:"uid" json:"uid"`
	Name          string `db:"name" json:"name"`
	Handle        string `db:"handle" json:"handle"`
	Type          string `db:"type" json:"type"`
	FieldLayoutID *int64 `db:"fieldLayoutId" json:"field_layout_id,omitempty"`
	SortOrder     int64  `db:"sortOrder" json:"sort_order"`
}

// Folder is a node in a volume's folder tree. Root folders have no parent.
type Folder struct {
	ID       int64  `db:"id" json:"id"`
	ParentID *int64 `db:"parentId" json:"parent_id,omitempty"`
	VolumeID *int64 `db:"volumeId" json:"volume_id,omitempty"`
	Name     string `db:"name" json:"name"`
	Path     string `db:"path" json:"path"`
}

// FieldLayout groups tabs of fields for an element source.
type FieldLayout struct {
	ID   int64  `db:"id" json:"id"`
	Type string `db:"type" json:"type"`
}

// FieldLayoutTab is a named tab within a field layout.
type FieldLayoutTab struct {
	ID        int64  `db:"id" json:"id"`
	LayoutID  int64  `db:"layoutId" json:"layout_id"`
	Name      string `db:"name" json:"name"`
	SortOrder int64  `db:"sortOrder" json:"sort_order"`
}

// Field is a custom field definition.
type Field struct {
	ID      int64  `db:"id" json:"id"`
	GroupID *int64 `db:"groupId" json:"group_id,omitempty"`
	Name    string `db:"name" json:"name"`
	Handle  string `db:"handle" json:"handle"`
	Type    string `db:"type" json:"type"`
}

// FieldGroup is a named group of fields.
type FieldGroup struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// FieldLayoutField places a field on a layout tab.
// (LayoutID, FieldID) is unique.
type FieldLayoutField struct {
	ID        int64 `db:"id" json:"id"`
	LayoutID  int64 `db:"layoutId" json:"layout_id"`
	TabID     int64 `db:"tabId" json:"tab_id"`
	FieldID   int64 `db:"fieldId" json:"field_id"`
	Required  bool  `db:"required" json:"required"`
	SortOrder int64 `db:"sortOrder" json:"sort_order"`
}

// Transform is a named image transform definition.
type Transform struct {
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Handle string `db:"handle" json:"handle"`
	Mode   string `db:"mode" json:"mode"`
	Width  *int64 `db:"width" json:"width,omitempty"`
	Height *int64 `db:"height" json:"height,omitempty"`
}

// TransformIndex records a generated (or pending) transform of one asset.
type TransformIndex struct {
	ID         int64  `db:"id" json:"id"`
	AssetID    int64  `db:"assetId" json:"asset_id"`
	Transform  string `db:"transform" json:"transform"`
	Filename   string `db:"filename" json:"filename"`
	Format     string `db:"format" json:"format"`
	FileExists bool   `db:"fileExists" json:"file_exists"`
}
