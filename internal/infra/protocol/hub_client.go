package protocol

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"plume/config"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/service"
	"plume/internal/errors"
)

// webSubClient implements the domain HubClient interface over HTTP.
type webSubClient struct {
	client *http.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewHubClient is the constructor for webSubClient.
func NewHubClient(cfg *config.Config, logger *slog.Logger) service.HubClient {
	return &webSubClient{
		client: &http.Client{Timeout: cfg.WebSub.DeliveryTimeout},
		cfg:    cfg,
		logger: logger,
	}
}

// VerifyIntent runs the subscriber verification handshake. The subscriber
// must echo the challenge with a 2xx status; anything else denies the
// request.
func (c *webSubClient) VerifyIntent(ctx context.Context, callback, mode, topic, challenge string, leaseSeconds int) error {
	callbackURL, err := url.Parse(callback)
	if err != nil {
		return domainerrors.ErrInvalidRequest.WrapMessage("invalid callback URL")
	}

	query := callbackURL.Query()
	query.Set("hub.mode", mode)
	query.Set("hub.topic", topic)
	query.Set("hub.challenge", challenge)
	if leaseSeconds > 0 {
		query.Set("hub.lease_seconds", strconv.Itoa(leaseSeconds))
	}
	callbackURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, callbackURL.String(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to build verification request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domainerrors.ErrVerificationFailed.WrapMessage(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domainerrors.ErrVerificationFailed.WrapMessage(fmt.Sprintf("callback returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(len(challenge))+64))
	if err != nil {
		return domainerrors.ErrVerificationFailed.WrapMessage(err.Error())
	}

	if string(bytes.TrimSpace(body)) != challenge {
		return domainerrors.ErrVerificationFailed.WrapMessage("challenge mismatch")
	}

	return nil
}

// Deliver posts the topic payload to the callback. A non-empty secret signs
// the exact payload bytes with HMAC-SHA256 in X-Hub-Signature.
func (c *webSubClient) Deliver(ctx context.Context, callback, topic string, payload []byte, contentType, secret string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callback, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to build delivery request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Link", fmt.Sprintf(`<%s/websub>; rel="hub", <%s>; rel="self"`, c.cfg.Site.BaseURL, topic))
	if secret != "" {
		req.Header.Set("X-Hub-Signature", SignPayload(secret, payload))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domainerrors.ErrTransport.WrapMessage(err.Error())
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domainerrors.ErrTransport.WrapMessage(fmt.Sprintf("callback returned %d", resp.StatusCode))
	}

	return nil
}

// SignPayload computes the X-Hub-Signature header value for a payload.
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)

	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
