package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rent-admin/pkg/logger"
	"rent-admin/prometheus"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TokenSource supplies the bearer token for outgoing requests and forgets it
// when the rental API rejects it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Client is a typed client for the rental REST API
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
}

// envelope is the common response wrapper of the rental API
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data"`
	Errors  []FieldError        `json:"errors"`
}

// NewClient creates a new rental API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// WithTokens returns a copy of the client that authenticates with ts
func (c *Client) WithTokens(ts TokenSource) *Client {
	clone := *c
	clone.Tokens = ts
	return &clone
}

// do performs one request and returns the raw response body of a 2xx answer
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in interface{}) (body []byte, err error) {
	done := prometheus.TrackGatewayCall(op)
	defer func() { done(err) }()

	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s request", op)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s request", op)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.Tokens != nil {
		token, err := c.Tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := logger.FromContext(ctx)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Error("Gateway request failed", zap.String("operation", op), zap.Error(err))
		return nil, errors.Wrapf(err, "%s", op)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", op)
	}

	if resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode, Operation: op}
		var env envelope
		if err := json.Unmarshal(body, &env); err == nil {
			apiErr.Message = env.Message
			apiErr.Errors = env.Errors
		}
		if resp.StatusCode == http.StatusUnauthorized && c.Tokens != nil {
			if err := c.Tokens.Clear(ctx); err != nil {
				log.Warn("Failed to clear rejected token", zap.Error(err))
			}
		}
		log.Warn("Gateway returned an error status",
			zap.String("operation", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	log.Debug("Gateway request completed",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))
	return body, nil
}

// decodeData unmarshals the envelope's data field into out
func decodeData(body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Wrap(err, "decode response envelope")
	}
	if len(env.Data) == 0 {
		return errors.New("response has no data")
	}
	return errors.Wrap(json.Unmarshal(env.Data, out), "decode response data")
}

// getOne performs a request and decodes data.<key> into a T
func getOne[T any](ctx context.Context, c *Client, op, method, path, key string, in interface{}) (*T, error) {
	body, err := c.do(ctx, op, method, path, nil, in)
	if err != nil {
		return nil, err
	}
	var fields map[string]jsoniter.RawMessage
	if err := decodeData(body, &fields); err != nil {
		return nil, errors.Wrapf(err, "%s", op)
	}
	raw, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("%s: response has no %q field", op, key)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrapf(err, "%s: decode %s", op, key)
	}
	return &out, nil
}

// listQuery builds page/limit parameters plus the non-empty filters
func listQuery(page, limit int, filters map[string]string) url.Values {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(limit))
	for k, v := range filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}
