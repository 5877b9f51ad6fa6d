package server

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// Ping checks server reachability. No authentication.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "ping", nil, nil)
	return err
}

// Register posts a registration bundle and returns the device auth token.
func (c *Client) Register(ctx context.Context, bundle *wire.RegistrationBundle) ([]byte, error) {
	body, err := wire.Marshal(bundle)
	if err != nil {
		return nil, rverr.Wrap(rverr.SerializationFailed, "encode registration", err)
	}
	token, err := c.do(ctx, http.MethodPost, "user/register", nil, body)
	if err != nil {
		return nil, err
	}
	if len(token) != wire.AuthTokenLength {
		return nil, rverr.Newf(rverr.InvalidServerData, "auth token has length %d", len(token))
	}
	return token, nil
}

// UploadPrekeys publishes fresh signed prekeys for this device.
func (c *Client) UploadPrekeys(ctx context.Context, auth Auth, req *wire.PrekeyUploadRequest) error {
	return c.post(ctx, "device/prekeys", auth.headers(), req, nil)
}

// DownloadPrekeys fetches count prekeys for every other device of the user.
func (c *Client) DownloadPrekeys(ctx context.Context, auth Auth, count int, app string) (*wire.DevicePrekeyBundle, error) {
	h := auth.headers()
	h["count"] = countHeader(count)
	h["app"] = app
	var bundle wire.DevicePrekeyBundle
	if err := c.get(ctx, "user/prekeys", h, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// UploadTopicKeys publishes a batch of topic keys and their distribution
// messages.
func (c *Client) UploadTopicKeys(ctx context.Context, auth Auth, bundle *wire.TopicKeyBundle) error {
	return c.post(ctx, "user/topickeys", auth.headers(), bundle, nil)
}

// DownloadTopicKey fetches one unconsumed topic key of the receiver.
func (c *Client) DownloadTopicKey(ctx context.Context, auth Auth, receiver keys.SigningPublic, app string) (*wire.TopicKeyPublic, error) {
	h := auth.headers()
	h["receiver"] = receiver.Base64()
	h["app"] = app
	var key wire.TopicKeyPublic
	if err := c.get(ctx, "user/topickey", h, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// DownloadTopicKeys fetches one topic key per requested user.
func (c *Client) DownloadTopicKeys(ctx context.Context, auth Auth, req *wire.TopicKeyRequest) (*wire.TopicKeyResponse, error) {
	var resp wire.TopicKeyResponse
	if err := c.post(ctx, "users/topickey", auth.headers(), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTopic posts a signed topic record.
func (c *Client) CreateTopic(ctx context.Context, auth Auth, t *wire.Topic) error {
	return c.post(ctx, "topic/create", auth.headers(), t, nil)
}

// UploadMessage posts a signed message and returns the authoritative chain
// state.
func (c *Client) UploadMessage(ctx context.Context, auth Auth, upload *wire.MessageUpload) (*wire.ChainState, error) {
	var state wire.ChainState
	if err := c.post(ctx, "topic/message", auth.headers(), upload, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// DownloadMessages fetches the pending download envelope for this device.
func (c *Client) DownloadMessages(ctx context.Context, auth Auth) (*wire.DeviceDownload, error) {
	var download wire.DeviceDownload
	if err := c.get(ctx, "device/messages", auth.headers(), &download); err != nil {
		return nil, err
	}
	return &download, nil
}

// DownloadFile fetches a file ciphertext by topic and file id.
func (c *Client) DownloadFile(ctx context.Context, auth Auth, topicID, fileID []byte) ([]byte, error) {
	path := "files/" + base64.RawURLEncoding.EncodeToString(topicID) +
		"/" + base64.RawURLEncoding.EncodeToString(fileID)
	data, err := c.do(ctx, http.MethodGet, path, auth.headers(), nil)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, rverr.New(rverr.NoDataInResponse, "file body absent")
	}
	return data, nil
}

// UserInfo fetches the authoritative user info record.
func (c *Client) UserInfo(ctx context.Context, auth Auth) (*wire.UserInfo, error) {
	var info wire.UserInfo
	if err := c.get(ctx, "user/info", auth.headers(), &info); err != nil {
		return nil, err
	}
	return &info, nil
}
