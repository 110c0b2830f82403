// Package security implements the per-user security-method state machine:
// which authentication factors (password, PIN, pattern, TOTP, biometric,
// security questions) are active for a user, how each one is proven, and how
// a lost factor is re-established through a short-lived reset token.
//
// The engine holds no in-process mutable state. Every operation reads the
// user's config document from the store, applies one transition, and writes
// it back; the store is the only serialization point. Two concurrent updates
// to the same user resolve by last write wins, which can race benignly on
// the shared updatedAt stamp. Concurrent reset-token issuance is tolerated
// because only the most recently persisted token ever validates.
//
// Password, PIN, and pattern values arrive pre-hashed from the client; the
// engine only hashes reset tokens and the replacement values written by the
// reset flow. Comparison goes through an injected hash.Hasher so the digest
// scheme stays a deployment choice.
//
// Verification failures carry no escalating consequence here. Lockout and
// rate limiting are left to the deployment in front of this service.
package security
