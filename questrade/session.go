package questrade

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/maplelane/questrade-go/internal/metrics"
)

const (
	// loginURL is the production OAuth2 token endpoint.
	loginURL = "https://login.questrade.com/oauth2/token"

	// practiceLoginURL is the token endpoint for practice accounts.
	practiceLoginURL = "https://practicelogin.questrade.com/oauth2/token"
)

// Session is the authenticated state held by the client: the access token and
// its expiry, the per-user API server root, and the current refresh token.
// Questrade rotates the refresh token on every exchange, so the one held here
// is the only one that will work for the next refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	APIServer    string
	ExpiresAt    time.Time
	Practice     bool
}

// Valid reports whether the access token can still be used for API calls.
func (s Session) Valid() bool {
	return s.AccessToken != "" && time.Now().Before(s.ExpiresAt)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	APIServer    string `json:"api_server"`
}

// Authenticate exchanges a refresh token at the provider token endpoint and
// installs the resulting session, discarding any prior one. The exchange
// consumes the supplied token: on success the session holds its replacement,
// and on failure the caller must obtain a fresh token out-of-band. The
// exchange is never retried here.
func (c *Client) Authenticate(ctx context.Context, refreshToken string, practice bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.exchange(ctx, refreshToken, practice)
	if err != nil {
		return err
	}
	c.setSessionLocked(sess)
	return nil
}

// Session returns a copy of the current session, if one is held. Callers that
// persist the rotated refresh token should prefer the OnSessionRefresh hook.
func (c *Client) Session() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// ensureSession returns a usable session, performing at most one refresh
// exchange if the held token has expired. The mutex is held across the
// exchange so that concurrent expired observers cannot fire duplicate
// exchanges and consume the single-use refresh token mid-flight.
func (c *Client) ensureSession(ctx context.Context) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return Session{}, &AuthError{Reason: "not authenticated"}
	}
	if c.session.Valid() {
		return *c.session, nil
	}

	sess, err := c.exchange(ctx, c.session.RefreshToken, c.session.Practice)
	if err != nil {
		// The refresh token may already have been consumed by the failed
		// exchange. Drop the session so callers fail fast until a new
		// token is supplied via Authenticate.
		c.session = nil
		return Session{}, err
	}
	c.setSessionLocked(sess)
	return sess, nil
}

// expireSession marks the held access token unusable while keeping the
// rotated refresh token, so the next call performs exactly one refresh.
// Called when the server rejects a request with 401/403.
func (c *Client) expireSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.ExpiresAt = time.Time{}
	}
}

func (c *Client) setSessionLocked(s Session) {
	c.session = &s
	if c.onRefresh != nil {
		c.onRefresh(s)
	}
}

// exchange posts the refresh token to the token endpoint. Callers must hold
// c.mu. Cancelling ctx mid-exchange risks losing the replacement refresh
// token, which is why the session is torn down when the exchange fails.
func (c *Client) exchange(ctx context.Context, refreshToken string, practice bool) (Session, error) {
	endpoint := loginURL
	if practice {
		endpoint = practiceLoginURL
	}

	q := url.Values{}
	q.Set("grant_type", "refresh_token")
	q.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Session{}, &AuthError{Reason: "build token request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.ContentLength = 0

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.IncTokenExchange("transport_error")
		c.logger.Warn("questrade.token_exchange_failed", zap.Error(err))
		return Session{}, &AuthError{Reason: "token endpoint unreachable", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		metrics.IncTokenExchange("rejected")
		c.logger.Warn("questrade.token_exchange_rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return Session{}, &AuthError{Reason: "token endpoint returned " + resp.Status}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		metrics.IncTokenExchange("decode_error")
		return Session{}, &AuthError{Reason: "malformed token response", Err: err}
	}
	if tr.AccessToken == "" || tr.RefreshToken == "" || tr.APIServer == "" {
		metrics.IncTokenExchange("incomplete")
		return Session{}, &AuthError{Reason: "token response missing fields"}
	}

	sess := Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		APIServer:    strings.TrimSuffix(tr.APIServer, "/"),
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
		Practice:     practice,
	}

	metrics.IncTokenExchange("ok")
	c.logger.Info("questrade.token_refreshed",
		zap.Time("expires_at", sess.ExpiresAt),
		zap.String("api_server", sess.APIServer),
		zap.Bool("practice", practice))

	return sess, nil
}
