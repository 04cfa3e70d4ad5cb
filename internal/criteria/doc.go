// Package criteria holds the named filter values a caller sets on an element
// query before it runs.
//
// Every query type declares a closed Registry of Definitions. Store.Set
// rejects names outside the registry immediately, forwards deprecated aliases
// to their canonical name and reports each alias use to a Deprecator.
//
// A criterion that was never set is absent from the Store. A criterion set to
// an empty list is present and means "match nothing". Callers must keep the
// two apart; Has and Value.IsEmptyList exist for that.
//
// Store is not safe for concurrent use. Snapshot returns an immutable copy
// that one execution works from.
package criteria
