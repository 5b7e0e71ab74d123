// Package identity derives content-based identity keys for pattern
// occurrences.
//
// Two occurrences with the same key refer to the same underlying signal
// regardless of the name a detector attached to them; two occurrences with
// different keys are always distinct signals even when their names happen to
// match. This is the foundation of naming-consistency scoring: a detector
// that names the same signal differently across runs is caught by comparing
// keys, not names.
package identity
