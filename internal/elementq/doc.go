// Package elementq is the generic element query core.
//
// A Query[T] owns a criteria.Store, an Extension[T] that describes one
// element subtype and the collaborators it runs against. Nothing touches
// storage until an execution method is called. Each execution walks the
// same stages:
//
//	Unprepared → PredicatesCompiled → Joined → Executed → Materialized
//
// PredicatesCompiled turns every set criterion into a predicate.Filter.
// Filters that need collaborators (handle lookups, folder trees) are
// resolved by the extension on every execution; the rest are memoized until
// a criterion changes. If any filter can match nothing the execution stops
// there and returns an empty result without calling the Backend.
//
// Joined builds the queryir.Select. Executed runs it. Materialized scans
// rows into *T and hands the batch to the extension for eager loading.
// A failure in any stage aborts the execution with a *QueryError naming that
// stage; nothing partially materialized is returned.
//
// Query is not safe for concurrent use.
package elementq
