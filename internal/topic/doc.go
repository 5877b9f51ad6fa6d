// Package topic implements per-user topic keys and per-topic state.
//
// A topic key is a signing/encryption key pair owned by one user. Its
// public bundle is signed by the user identity key and published through
// the server; the private halves fan out to the user's other devices
// encrypted to their prekeys. A topic key is consumed exactly once, either
// by creating a topic or by being admitted into one.
//
// A Topic holds the member list, the symmetric message key, the local
// private topic key halves, and the hash-chain position. Every verified
// update folds into the chain output
//
//	H(i) = SHA-256(H(i-1) ‖ signature(i)), H(0) = topic id
//
// so a courier-induced gap, reordering or substitution is detected the
// moment the fold disagrees with the server-assigned output.
package topic
