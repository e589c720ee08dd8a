// Package questrade implements a client for the Questrade retail brokerage
// REST API: refresh-token authentication with automatic session renewal, and
// read-only account queries (accounts, balances, positions, activities,
// executions).
//
// A single Client is safe for concurrent use. The session is mutex-guarded
// and token refreshes are serialized, so any number of concurrent calls that
// observe an expired token trigger exactly one refresh exchange.
package questrade

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/maplelane/questrade-go/internal/httpclient"
)

// apiVersion is the REST API version segment of every authenticated path.
const apiVersion = "v1"

// Client talks to the Questrade API on behalf of a single user session.
type Client struct {
	logger *zap.Logger
	http   *http.Client
	exec   *httpclient.Executor

	mu        sync.Mutex
	session   *Session
	onRefresh func(Session)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient sets the underlying HTTP client used for both the token
// endpoint and API calls.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithSession seeds a previously persisted session, skipping the initial
// Authenticate call when the access token is still valid.
func WithSession(s Session) Option {
	return func(c *Client) { c.session = &s }
}

// OnSessionRefresh registers fn to be invoked after every successful token
// exchange. Questrade invalidates the old refresh token on each exchange, so
// embedding programs must persist Session.RefreshToken from this hook if they
// want to survive a restart. fn is called with the session mutex held and
// must not call back into the client.
func OnSessionRefresh(fn func(Session)) Option {
	return func(c *Client) { c.onRefresh = fn }
}

// New constructs an unauthenticated client. Call Authenticate before issuing
// account queries.
func New(opts ...Option) *Client {
	c := &Client{
		logger: zap.NewNop(),
		http:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.exec = httpclient.New(c.logger, c.http, "questrade", c.apiError)
	return c
}

// apiError maps non-2xx API responses to typed errors. 401/403 additionally
// expires the held session so the next call refreshes with the rotated token.
func (c *Client) apiError(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.expireSession()
		return &APIError{Kind: KindUnauthorized, Status: status, Message: "access token rejected"}
	case http.StatusNotFound:
		return &APIError{Kind: KindNotFound, Status: status, Message: "resource not found"}
	default:
		msg := strings.TrimSpace(string(bytes.ToValidUTF8(body, nil)))
		if len(msg) > 256 {
			msg = msg[:256]
		}
		return &APIError{Kind: KindTransport, Status: status, Message: msg}
	}
}

// getJSON issues an authenticated GET against {api_server}/v1/{path} and
// decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	sess, err := c.ensureSession(ctx)
	if err != nil {
		return err
	}

	u := sess.APIServer + "/" + apiVersion + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &APIError{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)

	if err := c.exec.DoJSON(req, out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return err
		}
		if errors.Is(err, httpclient.ErrDecode) {
			return &APIError{Kind: KindDecode, Err: err}
		}
		return &APIError{Kind: KindTransport, Err: err}
	}
	return nil
}

// Accounts lists all accounts associated with the authenticated user, in the
// order returned by the provider.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var resp struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.getJSON(ctx, "accounts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// AccountBalances retrieves per-currency and combined balances for the given
// account number, including the start-of-day sets.
func (c *Client) AccountBalances(ctx context.Context, number string) (*AccountBalances, error) {
	var resp AccountBalances
	if err := c.getJSON(ctx, "accounts/"+number+"/balances", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Positions retrieves the open positions in the given account.
func (c *Client) Positions(ctx context.Context, number string) ([]Position, error) {
	var resp struct {
		Positions []Position `json:"positions"`
	}
	if err := c.getJSON(ctx, "accounts/"+number+"/positions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Positions, nil
}

// Activities retrieves account activity (trades, dividends, cash movements)
// within the [start, end] range. The provider caps the range at 31 days.
func (c *Client) Activities(ctx context.Context, number string, start, end time.Time) ([]Activity, error) {
	q := url.Values{}
	q.Set("startTime", start.Format(time.RFC3339))
	q.Set("endTime", end.Format(time.RFC3339))

	var resp struct {
		Activities []Activity `json:"activities"`
	}
	if err := c.getJSON(ctx, "accounts/"+number+"/activities", q, &resp); err != nil {
		return nil, err
	}
	return resp.Activities, nil
}

// Executions retrieves fills for the given account. Zero start/end times are
// omitted, in which case the provider defaults to the current day.
func (c *Client) Executions(ctx context.Context, number string, start, end time.Time) ([]Execution, error) {
	q := url.Values{}
	if !start.IsZero() {
		q.Set("startTime", start.Format(time.RFC3339))
	}
	if !end.IsZero() {
		q.Set("endTime", end.Format(time.RFC3339))
	}

	var resp struct {
		Executions []Execution `json:"executions"`
	}
	if err := c.getJSON(ctx, "accounts/"+number+"/executions", q, &resp); err != nil {
		return nil, err
	}
	return resp.Executions, nil
}

// ServerTime retrieves the provider's current server time.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	var resp struct {
		Time time.Time `json:"time"`
	}
	if err := c.getJSON(ctx, "time", nil, &resp); err != nil {
		return time.Time{}, err
	}
	return resp.Time, nil
}
