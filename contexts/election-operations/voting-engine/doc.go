// Package votingengine implements the election lifecycle and voting
// transaction engine inside the election-operations context.
//
// The module owns the time-driven election status machine, the atomic ballot
// commit protocol with its one-ballot-per-voter guarantee, and results
// finalization (ranks and winner flags) once an election closes. Receipts and
// lifecycle transitions flow to external broadcasters through outbox-backed
// workers. Business rules live in application/domain layers; infrastructure
// stays behind ports and adapters.
package votingengine
