// Package core provides the foundational domain types shared by every
// orchestration mode in ensemble. It defines:
//
//   - Entries (immutable, sender-tagged transcript units)
//   - Transcript (the append-only causal log of one run)
//   - ResultEntry (the output unit handed to result sinks)
//   - Brief (the shared topic / context every participant works from)
//   - Events and Observers (structured notifications emitted while a run progresses)
//
// The package intentionally keeps generation, prompt composition and
// persistence out of scope so that higher layers can depend on it without
// cycles.
package core
