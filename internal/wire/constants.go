package wire

// Protocol constants. Byte lengths are checked on every decode path; the
// server is an untrusted courier and its output is validated like any
// other attacker-controlled input.
const (
	// AuthTokenLength is the length of admin and device auth tokens.
	AuthTokenLength = 16

	// TopicIDLength is the length of a random topic id.
	TopicIDLength = 12

	// MessageIDLength is the length of a message or file id, which doubles
	// as the AES-GCM nonce for the file content.
	MessageIDLength = 12

	// MessageKeyLength is the length of the symmetric per-topic key.
	MessageKeyLength = 32

	// PinMax bounds registration pins to [0, PinMax).
	PinMax = 100000

	// PinRetries is the number of registration attempts per pin.
	PinRetries = 3

	// PinExpiryWindow is the pin validity window in seconds.
	PinExpiryWindow = 60 * 60 * 32 * 7

	// MaxNameLength bounds user names.
	MaxNameLength = 32

	// MaxAppIDLength bounds application identifiers.
	MaxAppIDLength = 10

	// MaxMetadataLength bounds the plaintext metadata of an update.
	MaxMetadataLength = 100
)
