// Package harness runs scenario files against cadcad spaces.
//
// A scenario names a directory of CUE space definitions and a list of steps.
// Each step creates a point, measures a distance, projects a point or
// applies an operation, and may state the outcome it expects. Every
// validated point a step produces is recorded in a fresh in-memory store.
//
// # Scenario Format
//
//	name: position_points
//	description: Positions are validated and stored
//	specs: ../specs
//	run_token: test-run-001
//	steps:
//	  - create: Position
//	    data: {x: 1.0, y: 2.0}
//	  - create: Position
//	    data: {x: 500.0, y: 2.0}
//	    expect: {error: constraint_violation, constraint: inside}
//	  - distance: euclidean
//	    space: Position
//	    a: {x: 0.0, y: 0.0}
//	    b: {x: 3.0, y: 4.0}
//	    expect: {value: 5.0}
//	assertions:
//	  - type: stored_count
//	    space: Position
//	    count: 1
//
// YAML numbers keep their kind: 1 is an int and 1.0 is a float.
//
// # Assertion Types
//
//   - stored_count: number of recorded points, for one space or all
//   - outcome_count: number of steps that ended with the given outcome
//
// # Deterministic Testing
//
// Scenarios run with a fixed run token and a fresh store, so the trace
// written by RunWithGolden is identical across runs.
package harness
