// Package exchange defines the execution record that flows through a route.
//
// An Exchange carries a body and a headers map. It is immutable: every
// With* method returns a new Exchange with copied headers, so a stage can
// never observe another stage's in-place mutation. Exchanges derived from
// one another keep the same ID, which correlates all stages of one traversal.
package exchange
