// Package scoring implements the claim matching engine.
//
// The Scorer compares a claim's evidence (answers, lost location, lost time) with the item and its
// verification questions and produces a composite confidence in [0,100]. Pure computation, no I/O.
// The score is advisory: it is shown to the finder and never approves or rejects a claim by itself.
package scoring
