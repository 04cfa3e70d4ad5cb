package predicate

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/queryir"
)

// HierarchyResolver expands container ids to themselves plus every
// descendant, as of the time of the call.
type HierarchyResolver interface {
	Descendants(ctx context.Context, ids []int64) ([]int64, error)
}

// HandleResolver looks up the ids of records by handle. No matches is an
// empty result, not an error.
type HandleResolver interface {
	IDsByHandle(ctx context.Context, handles []string) ([]int64, error)
}

// InSet returns the predicate field IN (ids). An empty id set matches
// nothing; reason names the criterion that produced it.
func InSet(field, reason string, ids []int64) queryir.Predicate {
	if len(ids) == 0 {
		return queryir.Nothing{Reason: reason}
	}
	values := make([]ir.IRValue, len(ids))
	for i, id := range ids {
		values[i] = ir.IRInt(id)
	}
	return queryir.In{Field: field, Values: values}
}

// IDs extracts a plain id list from v. ok is false when v is a param
// string, an expression or holds anything but integers.
func IDs(v criteria.Value) (ids []int64, ok bool) {
	if v.Shape() != criteria.ShapeList {
		return nil, false
	}
	for _, item := range v.Items() {
		n, isInt := item.(ir.IRInt)
		if !isInt {
			return nil, false
		}
		ids = append(ids, int64(n))
	}
	return ids, true
}

// Names extracts a list of strings from v.
func Names(v criteria.Value) ([]string, bool) {
	if v.Shape() != criteria.ShapeList {
		return nil, false
	}
	names := make([]string, 0, len(v.Items()))
	for _, item := range v.Items() {
		s, isString := item.(ir.IRString)
		if !isString {
			return nil, false
		}
		names = append(names, string(s))
	}
	return names, true
}

// ResolveHandles compiles a handle criterion into a predicate on column by
// looking the handles up through r. Zero matches yields Nothing.
func ResolveHandles(ctx context.Context, r HandleResolver, def criteria.Definition, column string, v criteria.Value) (queryir.Predicate, error) {
	handles, ok := Names(v)
	if !ok {
		return nil, criteria.NewInvalidValueError(def.Name, "expected a list of handles, got %s", v)
	}
	if len(handles) == 0 {
		return queryir.Nothing{Reason: def.Name}, nil
	}

	ids, err := r.IDsByHandle(ctx, handles)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", def.Name, err)
	}
	return InSet(column, def.Name, ids), nil
}

// ExpandContainers compiles a container criterion. With includeDescendants
// and a plain id list, the ids are expanded through r first; otherwise the
// value compiles like any id criterion.
func ExpandContainers(ctx context.Context, r HierarchyResolver, def criteria.Definition, v criteria.Value, includeDescendants bool) (queryir.Predicate, error) {
	ids, ok := IDs(v)
	if !includeDescendants || !ok {
		return Compile(def, v)
	}
	if len(ids) == 0 {
		return queryir.Nothing{Reason: def.Name}, nil
	}

	expanded, err := r.Descendants(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", def.Name, err)
	}
	expanded = slices.Clone(expanded)
	slices.Sort(expanded)
	return InSet(def.Column, def.Name, slices.Compact(expanded)), nil
}
