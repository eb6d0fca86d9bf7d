// Package council implements consensus answering over several independent,
// unreliable text-generation backends. One Answer call runs three strictly
// sequential rounds:
//
//  1. Independent answers: the same deterministic prompt goes to every
//     backend concurrently; failures and timeouts are dropped silently
//  2. Peer ranking: the surviving answers are anonymized ("Response A",
//     "Response B", ...) and every backend critiques and ranks them
//  3. Synthesis: a single aggregator backend sees the de-anonymized answers
//     plus all rankings and produces the final text
//
// The fallback ladder never raises: zero round-1 answers yields
// ProvenanceNoneAvailable, exactly one skips rounds 2-3 entirely
// (ProvenanceSingleBackend), and an aggregator failure substitutes the
// round-1 answer of the first configured backend that succeeded
// (ProvenanceBestRankedFallback).
//
// Anonymization exists to keep a backend from recognizing or favoring its
// own round-1 answer; the label mapping is request-scoped and never leaves
// the round-2 prompt.
package council
