// Package keys defines typed wrappers for the four asymmetric key roles of
// the Rendezvous protocol. All keys are 32 raw bytes; the types are plain
// arrays so they are comparable and usable as map keys.
package keys

import "encoding/base64"

// Length is the raw byte length of every key in the protocol.
const Length = 32

// SigningPublic is an Ed25519 public key. The public
// half of a user identity key doubles as the stable user identifier.
type SigningPublic [Length]byte

// Slice returns the key as a []byte.
func (p SigningPublic) Slice() []byte { return p[:] }

// Base64 returns the standard base64 form used in request headers.
func (p SigningPublic) Base64() string { return base64.StdEncoding.EncodeToString(p[:]) }

// SigningPrivate is the 32-byte seed of an Ed25519 signing key.
type SigningPrivate [Length]byte

// Slice returns the key as a []byte.
func (k SigningPrivate) Slice() []byte { return k[:] }

// AgreementPublic is a Curve25519 key-agreement (X25519) public key.
type AgreementPublic [Length]byte

// Slice returns the key as a []byte.
func (p AgreementPublic) Slice() []byte { return p[:] }

// AgreementPrivate is a clamped X25519 private key.
type AgreementPrivate [Length]byte

// Slice returns the key as a []byte.
func (k AgreementPrivate) Slice() []byte { return k[:] }

// SigningPublicFromBytes copies b into a SigningPublic.
// It reports false if b is not exactly Length bytes.
func SigningPublicFromBytes(b []byte) (SigningPublic, bool) {
	var p SigningPublic
	if len(b) != Length {
		return p, false
	}
	copy(p[:], b)
	return p, true
}

// AgreementPublicFromBytes copies b into an AgreementPublic.
// It reports false if b is not exactly Length bytes.
func AgreementPublicFromBytes(b []byte) (AgreementPublic, bool) {
	var p AgreementPublic
	if len(b) != Length {
		return p, false
	}
	copy(p[:], b)
	return p, true
}
