// Package harness runs query scenarios: a fixture, a criteria set and the
// results the criteria must produce.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: large_images
//	description: "Images at least 100px wide, widest first"
//	fixture: ../fixtures/assets.yaml
//	criteria:
//	  kind: image
//	  width: ">= 100"
//	  orderBy: width desc
//	expect:
//	  ids: [5, 1, 2, 3]
//	  count: 4
//	  conditions:
//	    - "width: assets.width >= 100"
//
// The fixture path is resolved against the scenario file's directory.
// Criteria are applied in name order, the same way saved queries are.
//
// # Expectations
//
//   - ids: exact id list in result order
//   - count: the query's Count
//   - first: id of the first result, or 0 for none
//   - conditions: each entry must appear in the explained conditions
//   - shortCircuit: whether storage is skipped
//   - error: the error kind the query must fail with (unknown_criterion,
//     invalid_value, execution_failure, materialization_failure)
//
// Every scenario runs against a fresh store in a temp directory with a
// deterministic clock and UID sequence, so explained SQL and results are
// stable across runs and can be compared against golden files.
package harness
