// Package mock provides test doubles for the ai interfaces.
//
// The default embedder behavior is deterministic: the same text always maps
// to the same unit vector, so nearest-neighbor assertions are stable across
// runs. Behavior can be overridden per test via the exported function fields.
package mock
