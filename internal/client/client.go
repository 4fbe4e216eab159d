// Package client talks to the backend REST API under /api/v1. Every call
// unwraps the {code,message,data} envelope and reports failures as
// *RemoteError.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
)

// Config configures a Client. Token may be empty before login.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	http *resty.Client
	cfg  Config
}

// New builds a client. With a token, requests carry it as a bearer
// credential through an oauth2 static token source.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	var rc *resty.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		rc = resty.NewWithClient(oauth2.NewClient(context.Background(), ts))
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{http: rc, cfg: cfg}
}

// WithToken returns a client for the same backend authenticated as token.
func (c *Client) WithToken(token string) *Client {
	cfg := c.cfg
	cfg.Token = token
	return New(cfg)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Details string          `json:"details"`
	Data    json.RawMessage `json:"data"`
}

type listData[T any] struct {
	List []T `json:"list"`
}

// call performs one request and decodes the envelope data into out, which
// may be nil.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	defer func(start time.Time) { observeCall(op, start, err) }(time.Now())

	req := c.http.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return &RemoteError{Op: op, Message: "backend unreachable", Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(resp.Body(), &env)

	if resp.IsError() || (decodeErr == nil && env.Code != 0) {
		return remoteFailure(op, resp, env, decodeErr)
	}
	if decodeErr != nil {
		return &RemoteError{Op: op, Status: resp.StatusCode(), Message: "malformed response", Err: decodeErr}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &RemoteError{Op: op, Status: resp.StatusCode(), Message: "malformed response data", Err: err}
	}
	return nil
}

func remoteFailure(op string, resp *resty.Response, env envelope, decodeErr error) *RemoteError {
	re := &RemoteError{Op: op, Status: resp.StatusCode()}
	if decodeErr == nil && env.Message != "" {
		re.Code = env.Code
		re.Message = env.Message
		if env.Details != "" {
			re.Message += ": " + env.Details
		}
		return re
	}
	re.Message = http.StatusText(resp.StatusCode())
	if re.Message == "" {
		re.Message = "request failed"
	}
	return re
}
