// Package intent classifies free-form operational questions into structured
// commands. The package focuses on three concerns:
//
//  1. A flat, hand-ordered pattern library (Rule) evaluated first-match-wins
//  2. Multilingual, typo-tolerant date and month extraction (Hebrew + English)
//  3. A read-only Engine safe for arbitrary concurrent Resolve calls
//
// Design principles:
//   - Rule order is the contract: specific rules (policy, manager, explicit
//     ranges) are listed ahead of generic keyword fallbacks so they are never
//     swallowed by them
//   - No rule ever returns an error; a rule that matches textually but cannot
//     extract its required parameters is treated as non-matching and evaluation
//     continues with the next rule
//   - "Current date" is an injected clock, not ambient state, so resolution
//     is reproducible in tests
package intent
