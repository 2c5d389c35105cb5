// Package restdb talks to the hosted backend over its versioned REST API.
// Every repository call goes through Client.do, which attaches the stored
// bearer token and folds transport and HTTP failures into tagged APIErrors.
package restdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/storage/kv"
)

const apiPrefix = "/api/v1"

type Client struct {
	base   string
	http   *http.Client
	tokens kv.Store
	logger core.Logger
}

func NewClient(conf *core.Config, tokens kv.Store, logger core.Logger) *Client {
	return &Client{
		base:   conf.APIBaseURL(),
		http:   &http.Client{Timeout: conf.API.Timeout},
		tokens: tokens,
		logger: logger,
	}
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do performs one API call. The bearer token is re-read from the key-value
// store on every request so a refreshed login takes effect immediately.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	u := c.base + apiPrefix + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, err := c.tokens.Get(ctx, kv.KeyAuthToken); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return core.NewAPIError(core.KindTransport, 0, "backend unreachable", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return core.NewAPIError(core.KindTransport, 0, "reading response", err)
	}

	var env envelope
	if len(resBody) > 0 {
		if err = json.Unmarshal(resBody, &env); err != nil && res.StatusCode < 400 {
			return core.NewAPIError(core.KindServer, res.StatusCode, "malformed response", err)
		}
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return core.NewAPIError(core.KindAuthRequired, res.StatusCode, messageOr(env, "authentication required"), nil)
	case res.StatusCode == http.StatusNotFound:
		return core.NewAPIError(core.KindNotFound, res.StatusCode, messageOr(env, "resource not found"), nil)
	case res.StatusCode >= 400:
		return core.NewAPIError(core.KindServer, res.StatusCode, messageOr(env, fmt.Sprintf("backend error (%d)", res.StatusCode)), nil)
	}

	if !env.Success && env.Message != "" {
		return core.NewAPIError(core.KindServer, res.StatusCode, env.Message, nil)
	}
	if out != nil && len(env.Data) > 0 {
		if err = json.Unmarshal(env.Data, out); err != nil {
			return core.NewAPIError(core.KindServer, res.StatusCode, "malformed response payload", err)
		}
	}
	return nil
}

func messageOr(env envelope, fallback string) string {
	if env.Message != "" {
		return env.Message
	}
	return fallback
}

// mapNotFound rewrites 404s into the entity's sentinel so service-layer
// handling is uniform across backends.
func mapNotFound(err, sentinel error) error {
	if core.ErrorIsKind(err, core.KindNotFound) {
		return sentinel
	}
	return err
}
