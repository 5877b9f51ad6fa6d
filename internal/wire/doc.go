// Package wire defines the records exchanged with the server and the
// persisted client state, together with their binary codec.
//
// Records are encoded as deterministic CBOR (core deterministic encoding
// with integer keys). Determinism matters beyond interoperability: the
// canonical unsigned bytes that signatures cover are produced by the same
// encoder, so two clients always agree on what was signed.
//
// Signature rules:
//
//   - UserInfo is signed by the user identity key over all fields except
//     the signature itself.
//   - A topic key's signature binds signature key ‖ encryption key to the
//     user identity key.
//   - A Topic is signed by the creator's topic signing key; the creator is
//     always member 0.
//   - A Message is signed by the sender's topic signing key over all fields
//     except the signature. Chain index and output are server-assigned and
//     live outside the signed record.
package wire
