// Package ir provides the value model and row types shared by every other
// internal package of elementq.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Criterion values are IRValue types (no floats: sizes, widths and ids are int64)
//   - Timestamps travel through the query layer as UTC text in TimeLayout so
//     that range predicates compare the same representation the store writes
//   - Row types carry `db` tags for sqlx struct scanning and `json` tags for CLI output
package ir
