// Package store provides the SQLite element store.
//
// The store holds elements and their asset rows together with the volumes,
// folder tree, field layouts and transforms around them. It serves three
// roles for element queries:
//   - Backend: runs assembled queries compiled by querysql, every operand bound
//   - Resolvers: volume handles to ids, folders to their subtrees
//   - Transform prefetcher: one query per materialized batch
//
// # Critical Patterns
//
// Deterministic results: every assembled query ends its ORDER BY with
// elements.id, and resolver queries order by id.
//
// Timestamps: written as UTC text in ir.TimeLayout and declared DATETIME,
// so both drivers scan them back into time.Time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The driver is github.com/mattn/go-sqlite3 ("sqlite3") by default;
// modernc.org/sqlite ("sqlite") builds without cgo.
package store
