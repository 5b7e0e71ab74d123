// Package verifier re-checks claimed pattern occurrences against the raw
// evidence bundles they were extracted from. A claimed pattern that cannot
// be found in its own evidence counts as a false positive.
//
// Matching is deliberately permissive: each pattern type has a dedicated
// matcher, the type is inferred from the location text when the record
// carried none, and patterns that fit no matcher fall back to a substring
// search over the serialized bundle. Verification never fails a batch;
// internal matcher faults are recorded as unverified with a reason.
package verifier
