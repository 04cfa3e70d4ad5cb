package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/elementq/internal/ir"
)

// VolumeResolver looks volumes up by handle.
type VolumeResolver struct {
	s *Store
}

// Volumes returns the volume handle resolver.
func (s *Store) Volumes() VolumeResolver {
	return VolumeResolver{s: s}
}

// IDsByHandle returns the ids of the volumes with the given handles, in id
// order. Unknown handles are skipped; no handles yields no ids.
func (r VolumeResolver) IDsByHandle(ctx context.Context, handles []string) ([]int64, error) {
	ids := []int64{}
	if len(handles) == 0 {
		return ids, nil
	}

	query, args, err := sqlx.In(`
		SELECT id FROM volumes
		WHERE handle IN (?)
		ORDER BY id ASC
	`, handles)
	if err != nil {
		return nil, fmt.Errorf("build volume lookup: %w", err)
	}

	if err := r.s.db.SelectContext(ctx, &ids, r.s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query volumes: %w", err)
	}
	return ids, nil
}

// FolderResolver walks the volume folder tree.
type FolderResolver struct {
	s *Store
}

// Folders returns the folder tree resolver.
func (s *Store) Folders() FolderResolver {
	return FolderResolver{s: s}
}

// Descendants returns the given folders and every folder below them, as
// the tree stands now. Ids that name no folder are dropped.
func (r FolderResolver) Descendants(ctx context.Context, ids []int64) ([]int64, error) {
	out := []int64{}
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		WITH RECURSIVE tree(id) AS (
			SELECT id FROM volumefolders WHERE id IN (?)
			UNION
			SELECT f.id FROM volumefolders f JOIN tree t ON f.parentId = t.id
		)
		SELECT id FROM tree
		ORDER BY id ASC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("build folder walk: %w", err)
	}

	if err := r.s.db.SelectContext(ctx, &out, r.s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("walk folders: %w", err)
	}
	return out, nil
}

// PrefetchTransforms attaches the transform indexes named by handles to
// every asset in the batch with one query. Every asset gets a non-nil
// Transforms map. Handles with no transform definition are reported after
// the known ones are attached.
func (s *Store) PrefetchTransforms(ctx context.Context, assets []*ir.Asset, handles []string) error {
	if len(assets) == 0 || len(handles) == 0 {
		return nil
	}

	byID := make(map[int64]*ir.Asset, len(assets))
	ids := make([]int64, 0, len(assets))
	for _, a := range assets {
		a.Transforms = make(map[string]ir.TransformIndex)
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	query, args, err := sqlx.In(`
		SELECT id, assetId, transform, filename, format, fileExists
		FROM assettransformindex
		WHERE assetId IN (?) AND transform IN (?)
		ORDER BY assetId ASC, transform COLLATE BINARY ASC, id ASC
	`, ids, handles)
	if err != nil {
		return fmt.Errorf("build transform prefetch: %w", err)
	}

	var indexes []ir.TransformIndex
	if err := s.db.SelectContext(ctx, &indexes, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("prefetch transforms: %w", err)
	}
	for _, idx := range indexes {
		if a, ok := byID[idx.AssetID]; ok {
			a.Transforms[idx.Transform] = idx
		}
	}

	known, err := s.transformHandles(ctx, handles)
	if err != nil {
		return err
	}
	var unknown []string
	for _, h := range handles {
		if !slices.Contains(known, h) {
			unknown = append(unknown, h)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown transforms: %v", unknown)
	}
	return nil
}

func (s *Store) transformHandles(ctx context.Context, handles []string) ([]string, error) {
	query, args, err := sqlx.In(`SELECT handle FROM assettransforms WHERE handle IN (?)`, handles)
	if err != nil {
		return nil, fmt.Errorf("build transform lookup: %w", err)
	}
	var known []string
	if err := s.db.SelectContext(ctx, &known, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query transforms: %w", err)
	}
	return known, nil
}
