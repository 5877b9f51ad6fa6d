// Package crypto exposes the primitives used by the Rendezvous client.
//
// Contents
//
//   - Ed25519 signing keys from 32-byte seeds (GenerateSigningKey, Sign,
//     Verify, PublicOf)
//   - X25519 key generation, clamping and Diffie–Hellman
//     (GenerateAgreementKey, PublicAgreementKey, DH)
//   - Asymmetric encrypt-to-public with an HKDF-derived session key
//     (EncryptTo, DecryptFrom)
//   - AES-256-GCM seal/open in split and combined forms (Seal, SealWithNonce,
//     Open, OpenCombined)
//   - SHA-256, random byte strings and protocol ids, best-effort wiping,
//     short public-key fingerprints
//
// # Notes
//
// Functions that consume randomness take an explicit io.Reader; callers hold
// one source (usually crypto/rand.Reader) and thread it through. Key material
// is returned in the fixed-size array types of internal/keys to avoid
// accidental reallocation.
package crypto
