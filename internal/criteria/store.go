package criteria

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/elementq/internal/ir"
)

// Deprecator receives a notice each time a deprecated alias is used.
type Deprecator interface {
	Deprecated(alias, canonical string)
}

// DeprecatorFunc adapts a function to the Deprecator interface.
type DeprecatorFunc func(alias, canonical string)

// Deprecated calls f(alias, canonical).
func (f DeprecatorFunc) Deprecated(alias, canonical string) { f(alias, canonical) }

// SlogDeprecator logs alias use as a warning.
type SlogDeprecator struct {
	Logger *slog.Logger
}

// Deprecated implements Deprecator.
func (d SlogDeprecator) Deprecated(alias, canonical string) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("deprecated criterion", "criterion", alias, "use", canonical)
}

// Store holds the criteria set on one query builder.
type Store struct {
	registry   *Registry
	values     map[string]Value
	deprecator Deprecator
	version    uint64
}

// NewStore creates an empty store over registry. A nil deprecator logs
// through slog.Default.
func NewStore(registry *Registry, deprecator Deprecator) *Store {
	if deprecator == nil {
		deprecator = SlogDeprecator{}
	}
	return &Store{
		registry:   registry,
		values:     make(map[string]Value),
		deprecator: deprecator,
	}
}

// Registry returns the definitions this store accepts.
func (s *Store) Registry() *Registry {
	return s.registry
}

// Set validates raw and stores it under the canonical name for name.
// Setting nil unsets the criterion.
//
// Returns an *Error with ErrCodeUnknownCriterion for names outside the
// registry and ErrCodeInvalidValue for values of the wrong shape.
func (s *Store) Set(name string, raw any) error {
	def, aliased, ok := s.registry.Canonical(name)
	if !ok {
		return NewUnknownCriterionError(name)
	}
	if aliased {
		s.deprecator.Deprecated(name, def.Name)
	}

	if raw == nil {
		s.Unset(def.Name)
		return nil
	}

	v, err := Coerce(raw)
	if err != nil {
		ce := NewInvalidValueError(name, "cannot use %T as a criterion value", raw)
		ce.Err = err
		return ce
	}

	v, err = normalize(def, v)
	if err != nil {
		ce := NewInvalidValueError(name, "%s", err.Error())
		return ce
	}

	s.values[def.Name] = v
	s.version++
	return nil
}

// Unset removes a criterion. Aliases resolve to their canonical name.
func (s *Store) Unset(name string) {
	def, _, ok := s.registry.Canonical(name)
	if !ok {
		return
	}
	if _, set := s.values[def.Name]; set {
		delete(s.values, def.Name)
		s.version++
	}
}

// Get returns the value of a set criterion.
func (s *Store) Get(name string) (Value, bool) {
	def, _, ok := s.registry.Canonical(name)
	if !ok {
		return Value{}, false
	}
	v, ok := s.values[def.Name]
	return v, ok
}

// Has reports whether a criterion is set. An empty list counts as set.
func (s *Store) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Version increases on every change to the store.
func (s *Store) Version() uint64 {
	return s.version
}

// Snapshot returns an immutable copy of the current criteria.
func (s *Store) Snapshot() Snapshot {
	values := make(map[string]Value, len(s.values))
	names := make([]string, 0, len(s.values))
	for name, v := range s.values {
		values[name] = v
		names = append(names, name)
	}
	slices.Sort(names)

	return Snapshot{
		registry: s.registry,
		values:   values,
		names:    names,
		version:  s.version,
	}
}

// Snapshot is the set of criteria one execution works from.
type Snapshot struct {
	registry *Registry
	values   map[string]Value
	names    []string
	version  uint64
}

// Get returns the value of a set criterion by canonical name.
func (s Snapshot) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Has reports whether a criterion is set.
func (s Snapshot) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Bool returns the value of a boolean criterion, false when unset.
func (s Snapshot) Bool(name string) bool {
	v, ok := s.values[name]
	if !ok {
		return false
	}
	b, _ := v.First().(ir.IRBool)
	return bool(b)
}

// Names returns the canonical names of set criteria, sorted.
func (s Snapshot) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of set criteria.
func (s Snapshot) Len() int {
	return len(s.names)
}

// Definition returns the canonical definition of a set criterion.
func (s Snapshot) Definition(name string) (Definition, bool) {
	if s.registry == nil {
		return Definition{}, false
	}
	def, _, ok := s.registry.Canonical(name)
	return def, ok
}

// Version is the store version the snapshot was taken at.
func (s Snapshot) Version() uint64 {
	return s.version
}

// ToIR returns the criteria as an object keyed by canonical name.
func (s Snapshot) ToIR() ir.IRObject {
	obj := make(ir.IRObject, len(s.values))
	for name, v := range s.values {
		obj[name] = v.ToIR()
	}
	return obj
}

// Fingerprint returns a stable hash of the set criteria.
func (s Snapshot) Fingerprint() (string, error) {
	return ir.CriteriaFingerprint(s.ToIR())
}

// normalize checks v against the definition's kind and converts it into the
// form the compiler expects.
func normalize(def Definition, v Value) (Value, error) {
	switch def.Kind {
	case KindBool, KindFixedOrder:
		if v.shape != ShapeScalar {
			return Value{}, fmt.Errorf("expects a boolean, got a %s", v.shape)
		}
		if _, ok := v.First().(ir.IRBool); !ok {
			return Value{}, fmt.Errorf("expects a boolean, got %s", v)
		}
		return v, nil

	case KindInt:
		if v.shape != ShapeScalar {
			return Value{}, fmt.Errorf("expects an integer, got a %s", v.shape)
		}
		n, ok := v.First().(ir.IRInt)
		if !ok {
			return Value{}, fmt.Errorf("expects an integer, got %s", v)
		}
		if n < 0 {
			return Value{}, fmt.Errorf("must not be negative, got %d", n)
		}
		return v, nil

	case KindOrder:
		if v.shape == ShapeExpr {
			return Value{}, fmt.Errorf("expects an order expression, got a comparison")
		}
		if err := requireStrings(v); err != nil {
			return Value{}, err
		}
		return v, nil

	case KindIDList, KindContainer:
		if v.shape == ShapeExpr {
			if _, ok := v.First().(ir.IRInt); !ok {
				return Value{}, fmt.Errorf("comparison operand must be an integer")
			}
			return v, nil
		}
		for _, item := range v.items {
			switch item.(type) {
			case ir.IRInt, ir.IRString:
			default:
				return Value{}, fmt.Errorf("expects ids, got %s", v)
			}
		}
		if _, isParam := v.First().(ir.IRString); v.shape == ShapeScalar && isParam {
			return v, nil
		}
		return v.asList(), nil

	case KindHandle, KindStatus, KindTransforms:
		if v.shape == ShapeExpr {
			return Value{}, fmt.Errorf("expects a list of names, got a comparison")
		}
		if err := requireStrings(v); err != nil {
			return Value{}, err
		}
		if v.shape == ShapeScalar {
			name, ok := v.First().(ir.IRString)
			if !ok {
				return Value{}, fmt.Errorf("expects a name, got %s", v)
			}
			return splitNames(string(name)), nil
		}
		return v, nil

	case KindNumber:
		if v.shape == ShapeExpr {
			for _, item := range v.items {
				if _, ok := item.(ir.IRInt); !ok {
					return Value{}, fmt.Errorf("comparison operand must be an integer")
				}
			}
		}
		return v, nil

	default:
		return v, nil
	}
}

func requireStrings(v Value) error {
	for _, item := range v.items {
		if _, ok := item.(ir.IRString); !ok {
			return fmt.Errorf("expects strings, got %s", v)
		}
	}
	return nil
}

// splitNames turns "a, b" into the list ["a", "b"].
func splitNames(s string) Value {
	var items []ir.IRValue
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, ir.IRString(ir.NormalizeString(part)))
		}
	}
	return List(items...)
}
