// Package records holds the validated models around element storage:
// volumes, field groups and field layout placements, with their one-to-one
// lookups.
//
// Struct rules are declared with validator tags; rules that need the
// database (uniqueness) go through the Lookup interface.
package records
