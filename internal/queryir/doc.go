// Package queryir provides the backend-agnostic representation of an
// assembled element query: the tables it joins, the columns it projects, the
// predicate descriptors it filters by and its ordering and paging.
//
// ARCHITECTURE:
//
// queryir sits between the predicate compiler and the SQL backend:
//
//	[criteria] → [predicate compiler] → [queryir.Select] → [querysql] → SQLite
//
// Nothing in this package knows about SQL syntax. Every operand is an
// ir.IRValue and is bound as a parameter by the backend, never interpolated.
//
// PREDICATE DESCRIPTORS:
//
// Each compiled criterion becomes one Predicate. The operator of a
// predicate is one of:
//   - equals: Equals{Field, Value}
//   - in-set: In{Field, Values}
//   - not-in-set: NotIn{Field, Values}
//   - range: Range{Field, Lower, Upper} with explicit inclusivity per bound
//   - pattern-match: Match{Field, Pattern}
//
// plus the structural forms IsNull, And, Or and Nothing. Nothing matches
// zero rows; a query whose top-level filter contains Nothing is never sent
// to storage.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package can implement them, which keeps type switches
// in backends exhaustive.
//
//	switch p := pred.(type) {
//	case In:
//	    // field IN (...)
//	case Range:
//	    // field >= ? AND field < ?
//	default:
//	    // unreachable for well-formed input
//	}
package queryir
