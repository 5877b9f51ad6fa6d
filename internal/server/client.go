// Package server talks to the Rendezvous server. The server is an
// untrusted courier: this package only frames requests and classifies
// failures, all verification happens in the callers.
package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/christophhagen/RendezvousClient/internal/keys"
	"github.com/christophhagen/RendezvousClient/internal/logger"
	"github.com/christophhagen/RendezvousClient/internal/wire"
	"github.com/christophhagen/RendezvousClient/pkg/rverr"
)

// Auth carries the device authentication headers.
type Auth struct {
	User   keys.SigningPublic
	Device keys.SigningPublic
	Token  []byte
}

func (a Auth) headers() map[string]string {
	return map[string]string{
		"auth":   base64.StdEncoding.EncodeToString(a.Token),
		"user":   a.User.Base64(),
		"device": a.Device.Base64(),
	}
}

// Client is a stateless request framer over a base URL.
type Client struct {
	base string
	http *http.Client
	log  *logger.Logger
}

// New creates a client for the given base URL. A nil httpClient falls back
// to http.DefaultClient.
func New(base string, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: base, http: httpClient, log: log}
}

// do performs one request and returns the response body. Transport
// failures and cancellation map to NoResponse; non-200 statuses map to
// their taxonomy kinds.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+path, reader)
	if err != nil {
		return nil, rverr.Wrap(rverr.InvalidRequest, "build request", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("request-id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, rverr.Wrap(rverr.NoResponse, "request "+path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "id", requestID)

	if resp.StatusCode != http.StatusOK {
		return nil, rverr.Newf(rverr.FromStatus(resp.StatusCode), "%s %s: status %d", method, path, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rverr.Wrap(rverr.NoResponse, "read response", err)
	}
	return data, nil
}

// get performs a GET and decodes the body into out when out is non-nil.
func (c *Client) get(ctx context.Context, path string, headers map[string]string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, headers, nil)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// post encodes in (when non-nil), performs a POST, and decodes the body
// into out when out is non-nil.
func (c *Client) post(ctx context.Context, path string, headers map[string]string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = wire.Marshal(in)
		if err != nil {
			return rverr.Wrap(rverr.SerializationFailed, "encode request", err)
		}
	}
	data, err := c.do(ctx, http.MethodPost, path, headers, body)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func decode(data []byte, out any) error {
	if out == nil {
		return nil
	}
	if len(data) == 0 {
		return rverr.New(rverr.NoDataInResponse, "expected response body")
	}
	if err := wire.Unmarshal(data, out); err != nil {
		return rverr.Wrap(rverr.InvalidServerData, "decode response", err)
	}
	return nil
}

func countHeader(n int) string { return strconv.Itoa(n) }
