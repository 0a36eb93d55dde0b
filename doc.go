// Package shapes is structural pattern matching for Go values.
//
// Patterns (package 'match') describe the shape of a value: arrays
// with rests, hashes with declared keys, alternatives, pins, and
// finds.  Matching binds variables.  Package 'core' builds cases on
// patterns: ordered clauses with guards and handlers, plus a
// single-pattern destructuring operator.  Cases can be written as
// YAML, stored, and served (see 'storage', 'service', and
// 'cmd/shapes').
package shapes
