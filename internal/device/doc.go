// Package device implements the client core of the Rendezvous protocol.
//
// A Device owns the user and device identity keys, the prekey store, the
// pool of unconsumed topic keys, the topic map and the latest UserInfo. It
// orchestrates prekey upload, topic key fan-out to the user's other
// devices, topic creation, the send path and the receive pipeline.
//
// Every public operation and every handler invocation is serialized by one
// mutex, so handlers observe a consistent device and must not call back
// into the Device. The server is treated as an untrusted courier
// throughout: everything it returns is verified against the key hierarchy
// before it touches local state.
//
// Known limitation: the topic message key is not rotated when a member is
// removed, so a past member keeps the ability to read new updates it can
// still obtain.
package device
