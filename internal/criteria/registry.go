package criteria

import (
	"fmt"
	"slices"
)

// Kind selects how a criterion's value is validated and compiled.
type Kind int

const (
	// KindIDList is a set of integer ids, or an id param string such as "not 4".
	KindIDList Kind = iota

	// KindString is a string param: exact values, lists, wildcards, :empty:.
	KindString

	// KindNumber is an integer param: exact values, lists and comparisons.
	KindNumber

	// KindDate is a date param: timestamps, day strings and comparisons.
	KindDate

	// KindBool is a plain boolean flag.
	KindBool

	// KindHandle is a list of handles resolved to ids when the query runs.
	KindHandle

	// KindContainer is a set of container ids, optionally expanded to descendants.
	KindContainer

	// KindStatus is a list of element statuses.
	KindStatus

	// KindTransforms is a list of transform handles to eager-load.
	KindTransforms

	// KindOrder is an order expression such as "filename desc, id".
	KindOrder

	// KindInt is a non-negative integer such as limit or offset.
	KindInt

	// KindFixedOrder is a flag that orders results by the id criterion's list.
	KindFixedOrder
)

var kindNames = map[Kind]string{
	KindIDList:     "id-list",
	KindString:     "string",
	KindNumber:     "number",
	KindDate:       "date",
	KindBool:       "bool",
	KindHandle:     "handle",
	KindContainer:  "container",
	KindStatus:     "status",
	KindTransforms: "transforms",
	KindOrder:      "order",
	KindInt:        "int",
	KindFixedOrder: "fixed-order",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// listKind reports whether a single value of this kind is stored in list form.
func (k Kind) listKind() bool {
	switch k {
	case KindIDList, KindHandle, KindContainer, KindStatus, KindTransforms:
		return true
	default:
		return false
	}
}

// Definition declares one criterion a query recognizes.
type Definition struct {
	// Name is the criterion name callers use.
	Name string

	// Kind selects validation and compilation.
	Kind Kind

	// Column is the qualified column the criterion filters, if any.
	Column string

	// AliasOf names the canonical criterion when this one is a deprecated
	// alias. Aliases carry no Kind or Column of their own.
	AliasOf string
}

// Deprecated reports whether the definition is an alias.
func (d Definition) Deprecated() bool {
	return d.AliasOf != ""
}

// Registry is a closed set of criterion definitions.
type Registry struct {
	defs  map[string]Definition
	names []string
}

// NewRegistry builds a registry. Names must be unique and every alias must
// point at a canonical (non-alias) definition.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("criterion definition has no name")
		}
		if _, dup := r.defs[d.Name]; dup {
			return nil, fmt.Errorf("criterion %q defined twice", d.Name)
		}
		r.defs[d.Name] = d
		r.names = append(r.names, d.Name)
	}

	for _, d := range defs {
		if !d.Deprecated() {
			continue
		}
		target, ok := r.defs[d.AliasOf]
		if !ok {
			return nil, fmt.Errorf("alias %q points at unknown criterion %q", d.Name, d.AliasOf)
		}
		if target.Deprecated() {
			return nil, fmt.Errorf("alias %q points at another alias %q", d.Name, d.AliasOf)
		}
	}

	slices.Sort(r.names)
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error. It is meant for
// package-level registries built from literals.
func MustRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Extend returns a new registry holding r's definitions plus defs.
func (r *Registry) Extend(defs ...Definition) (*Registry, error) {
	all := make([]Definition, 0, len(r.defs)+len(defs))
	for _, name := range r.names {
		all = append(all, r.defs[name])
	}
	return NewRegistry(append(all, defs...)...)
}

// Lookup returns the definition registered under name, alias or not.
func (r *Registry) Lookup(name string) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Canonical resolves name to its canonical definition. aliased is true when
// name is a deprecated alias.
func (r *Registry) Canonical(name string) (def Definition, aliased bool, ok bool) {
	d, ok := r.defs[name]
	if !ok {
		return Definition{}, false, false
	}
	if d.Deprecated() {
		return r.defs[d.AliasOf], true, true
	}
	return d, false, true
}

// Names returns every registered name, aliases included, sorted.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}
