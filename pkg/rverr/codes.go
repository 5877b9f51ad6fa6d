package rverr

// Kind classifies a failure. The numeric values are wire-stable: kinds at
// 400 and above round-trip as HTTP status codes with the server.
type Kind int

const (
	// NoResponse covers transport failures and cancellation.
	NoResponse Kind = 0

	// Unknown is the catch-all for unclassified failures.
	Unknown Kind = 1

	// NoDataInResponse means a response body was expected but absent.
	NoDataInResponse Kind = 2

	// InvalidServerData means a response decoded but is semantically invalid.
	InvalidServerData Kind = 3

	// SerializationFailed is a local encoding error.
	SerializationFailed Kind = 4

	// InvalidFile means a downloaded file failed its hash or GCM check.
	InvalidFile Kind = 5

	// NoPermissionToWrite means an observer attempted to send.
	NoPermissionToWrite Kind = 6

	// InvalidRequest covers failed local preconditions and server rejections.
	InvalidRequest Kind = 400

	// AuthenticationFailed signals a rejected auth token or pin.
	AuthenticationFailed Kind = 401

	// InvalidSignature signals a failed signature verification.
	InvalidSignature Kind = 406

	// ResourceAlreadyExists signals a conflicting create.
	ResourceAlreadyExists Kind = 409

	// RequestOutdated signals stale UserInfo or topic data.
	RequestOutdated Kind = 410

	// InvalidTopicKeyUpload signals a rejected topic-key bundle.
	InvalidTopicKeyUpload Kind = 412

	// InternalServerError mirrors HTTP 500.
	InternalServerError Kind = 500
)

func (k Kind) String() string {
	switch k {
	case NoResponse:
		return "no response"
	case Unknown:
		return "unknown"
	case NoDataInResponse:
		return "no data in response"
	case InvalidServerData:
		return "invalid server data"
	case SerializationFailed:
		return "serialization failed"
	case InvalidFile:
		return "invalid file"
	case NoPermissionToWrite:
		return "no permission to write"
	case InvalidRequest:
		return "invalid request"
	case AuthenticationFailed:
		return "authentication failed"
	case InvalidSignature:
		return "invalid signature"
	case ResourceAlreadyExists:
		return "resource already exists"
	case RequestOutdated:
		return "request outdated"
	case InvalidTopicKeyUpload:
		return "invalid topic key upload"
	case InternalServerError:
		return "internal server error"
	default:
		return "unknown"
	}
}

// FromStatus maps an HTTP status code to a Kind. 2xx maps to no error and
// must be handled by the caller before consulting this table.
func FromStatus(status int) Kind {
	switch status {
	case 400, 401, 406, 409, 410, 412, 500:
		return Kind(status)
	default:
		return Unknown
	}
}
