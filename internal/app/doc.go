// Package app provides the application service layer.
//
// Orchestrates use cases: reporting items, submitting and scoring claims, and
// the finder's review decisions. Every state transition on an item and its
// claims runs inside an item-scoped transaction from the domain.ItemTransactor.
// Events are published after commit and never affect the outcome of a call.
package app
