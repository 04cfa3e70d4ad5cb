// Package predicate compiles criterion values into queryir predicate
// descriptors.
//
// String values use the param grammar shared by every criterion:
//
//	"image"                  equals
//	"image, video"           in-set (comma lists are OR by default)
//	"not pdf", "!= pdf"      not-in-set
//	">= 100", "< 500"        range
//	"and, >= 100, < 500"     one range with both bounds
//	"*.jpg", "not *.tmp"     pattern-match
//	":empty:", ":notempty:"  null tests
//
// Date values additionally accept "before X", "after X" and
// "between X and Y". A day without a time ("2024-03-01") stands for the
// whole day. Every form normalizes to a single Range with explicit bounds.
//
// Criteria that need collaborators (handle lookups, folder expansion) are
// resolved with Resolve* helpers when a query runs, never when it is built.
package predicate
