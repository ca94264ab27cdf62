// Base API client for the Muzee backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/muzee/internal/session"
	"github.com/desertthunder/muzee/internal/shared"
)

const (
	DefaultBaseURL = "https://muzee.nirush.me"

	connectPath = "/oauth2/connect"
	healthPath  = "/health"
)

// BeforeSend is the pre-send hook. It may add headers to or transform req before dispatch.
type BeforeSend func(ctx context.Context, req *Request)

// AfterReceive is the post-receive hook. It sees every outcome that is not a 401 and returns what the caller gets.
type AfterReceive func(ctx context.Context, out *Outcome) *Outcome

// ClientOptions configures a [Client]. Zero values get defaults.
type ClientOptions struct {
	HTTPClient   *http.Client
	Session      *session.Session
	Navigator    Navigator
	Logger       *log.Logger
	BeforeSend   BeforeSend
	AfterReceive AfterReceive
}

// Client dispatches requests to the backend, attaching the session token, and starts the login redirect on a 401.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	session      *session.Session
	navigator    Navigator
	logger       *log.Logger
	beforeSend   BeforeSend
	afterReceive AfterReceive
}

// NewClient creates a new [Client] for the backend at baseURL.
func NewClient(baseURL string, opts ClientOptions) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Session == nil {
		opts.Session = session.New(session.NewMemoryStore(), "")
	}
	if opts.Navigator == nil {
		opts.Navigator = NewBrowserNavigator("/")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   opts.HTTPClient,
		session:      opts.Session,
		navigator:    opts.Navigator,
		logger:       opts.Logger,
		beforeSend:   opts.BeforeSend,
		afterReceive: opts.AfterReceive,
	}
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string { return c.baseURL }

// Session returns the session context the client reads the token from.
func (c *Client) Session() *session.Session { return c.session }

// Navigator returns the navigator used for redirects.
func (c *Client) Navigator() Navigator { return c.navigator }

// Request describes a single call. It is built per call and never persisted.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// RequestOption customizes a [Request] built by [Client.Get] or [Client.Post].
type RequestOption func(*Request)

// WithHeader sets an extra request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) { r.Header.Set(key, value) }
}

// WithBody sets a raw request body. [Client.Post] only uses it when its body argument is nil.
func WithBody(body []byte) RequestOption {
	return func(r *Request) { r.Body = body }
}

func newRequest(method, path string, opts []RequestOption) *Request {
	req := &Request{Method: method, Path: path, Header: http.Header{}}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

// Get performs a GET through the pre-send hook.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) *Outcome {
	return c.send(ctx, newRequest(http.MethodGet, path, opts))
}

// Post performs a POST through the pre-send hook.
//
// body is JSON-encoded unless it is nil, a string, []byte or [json.RawMessage], which are sent as-is.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) *Outcome {
	req := newRequest(http.MethodPost, path, opts)

	switch b := body.(type) {
	case nil:
	case string:
		req.Body = []byte(b)
	case []byte:
		req.Body = b
	case json.RawMessage:
		req.Body = b
		setDefault(req.Header, "Content-Type", "application/json")
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return c.receive(ctx, networkFailure(fmt.Errorf("%w: failed to encode body: %v", shared.ErrInvalidInput, err)))
		}
		req.Body = data
		setDefault(req.Header, "Content-Type", "application/json")
	}

	return c.send(ctx, req)
}

func (c *Client) send(ctx context.Context, req *Request) *Outcome {
	if c.beforeSend != nil {
		c.beforeSend(ctx, req)
	}
	return c.Dispatch(ctx, req)
}

// Dispatch sends req exactly once and normalizes the result into an [Outcome]. It never returns nil.
//
// A 401 stores the current path under after_path, raises the session's disabled flag and, if this call raised
// it, navigates to the redirect_url served by /oauth2/connect. Other results go through the post-receive hook.
func (c *Client) Dispatch(ctx context.Context, req *Request) *Outcome {
	path := NormalizePath(req.Path)
	logger := shared.WithLogger(c.logger, "request_id", shared.GenerateID(), "method", req.Method, "path", path)

	header := req.Header.Clone()
	if header == nil {
		header = http.Header{}
	}

	token, err := c.session.Token(ctx)
	if err != nil {
		logger.Warn("failed to read session token", "error", err)
	}
	if token != "" {
		setDefault(header, "Authorization", token)
	}
	header.Set("Accept", "application/json")

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+path, body)
	if err != nil {
		return c.receive(ctx, networkFailure(fmt.Errorf("failed to create request: %w", err)))
	}
	httpReq.Header = header

	logger.Debug("dispatching request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Warn("request failed", "error", err)
		return c.receive(ctx, networkFailure(fmt.Errorf("request failed: %w", err)))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return c.unauthorized(ctx, logger)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("failed to read response", "error", err)
		return c.receive(ctx, networkFailure(fmt.Errorf("failed to read response: %w", err)))
	}

	logger.Debug("response received", "status", resp.StatusCode, "bytes", len(data))

	return c.receive(ctx, &Outcome{Kind: Success, Response: newResponse(resp, data)})
}

func (c *Client) receive(ctx context.Context, out *Outcome) *Outcome {
	if c.afterReceive == nil {
		return out
	}
	if res := c.afterReceive(ctx, out); res != nil {
		return res
	}
	return out
}

func (c *Client) unauthorized(ctx context.Context, logger *log.Logger) *Outcome {
	logger.Info("401 unauthorized")

	if err := c.session.SetAfterPath(ctx, c.navigator.Path()); err != nil {
		logger.Warn("failed to store after_path", "error", err)
	}

	if !c.session.Disable() {
		logger.Debug("login redirect already in progress")
		return &Outcome{Kind: Unauthorized}
	}

	url, err := c.connectURL(ctx)
	if err != nil {
		logger.Error("failed to fetch login redirect", "error", err)
		return &Outcome{Kind: Unauthorized, Err: err}
	}

	if err := c.navigator.Navigate(ctx, url); err != nil {
		logger.Error("failed to navigate to login", "url", url, "error", err)
		return &Outcome{Kind: Unauthorized, Err: fmt.Errorf("%w: %v", shared.ErrRedirectFailed, err)}
	}

	logger.Info("redirected to login", "url", url)
	return &Outcome{Kind: Unauthorized}
}

type connectResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// connectURL fetches the login redirect target from /oauth2/connect.
func (c *Client) connectURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+connectPath, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrRedirectFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrRedirectFailed, err)
	}
	defer resp.Body.Close()

	var js connectResponse
	if err := json.NewDecoder(resp.Body).Decode(&js); err != nil {
		return "", fmt.Errorf("%w: %v: %v", shared.ErrRedirectFailed, shared.ErrInvalidResponse, err)
	}
	if js.RedirectURL == "" {
		return "", fmt.Errorf("%w: empty redirect_url", shared.ErrRedirectFailed)
	}
	return js.RedirectURL, nil
}

func newResponse(resp *http.Response, body []byte) *Response {
	r := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		r.IsJSON = true
		r.JSONData = jsonData
	}
	return r
}

// NormalizePath returns path with a leading "/".
func NormalizePath(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

func setDefault(h http.Header, key, value string) {
	if h.Get(key) == "" {
		h.Set(key, value)
	}
}
