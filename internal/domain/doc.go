// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (item.go, claim.go, errors.go, events.go, etc.)
// with shared types and the ports the application layer depends on. No infrastructure code,
// only contracts and the pure status rules every store must agree on.
package domain
