package authsdk

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokengate/pkg/httpx"
	"github.com/go-resty/resty/v2"
)

const DefaultTimeout = 30 * time.Second

// Paths are the service endpoints the client talks to.
type Paths struct {
	Login     string
	Refresh   string
	Logout    string
	Protected string
}

func DefaultPaths() Paths {
	return Paths{
		Login:     "/jwt/tokens",
		Refresh:   "/api/auth/refresh",
		Logout:    "/jwt/logout",
		Protected: "/api/protected",
	}
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.rest.SetTimeout(d)
		}
	}
}

func WithPaths(p Paths) Option {
	return func(c *Client) { c.paths = p }
}

// WithInsecureTLS disables certificate verification. Meant for talking to
// a development server with a self-signed certificate.
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.rest.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec
	}
}

// WithLogger logs every completed call at debug level and transport
// failures at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.rest.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			level := slog.LevelDebug
			if resp.StatusCode() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(resp.Request.Context(), level, "http call completed",
				slog.String("method", resp.Request.Method),
				slog.String("url", resp.Request.URL),
				slog.Int("status", resp.StatusCode()),
				slog.Duration("duration", resp.Time()),
			)
			return nil
		})
		c.rest.OnError(func(req *resty.Request, err error) {
			logger.Log(req.Context(), slog.LevelWarn, "http call failed",
				slog.String("method", req.Method),
				slog.String("url", req.URL),
				slog.Any("error", err),
			)
		})
	}
}

// Client calls the service endpoints without holding any state. Use
// NewSession for a stateful, self-refreshing session.
type Client struct {
	rest  *resty.Client
	paths Paths
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		rest: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetTimeout(DefaultTimeout),
		paths: DefaultPaths(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) NewSession() *Session {
	return &Session{client: c}
}

// Login exchanges Basic credentials for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBasicAuth(username, password).
		Post(c.paths.Login)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("login: %w", err)
	}
	return decodeTokens(resp)
}

// Refresh presents refreshToken and returns a new access token. The
// response carries a refresh token only if the server rotated it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Authorization", httpx.BearerPrefix+refreshToken).
		SetHeader("Content-Type", "application/json").
		SetBody("{}").
		Post(c.paths.Refresh)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("refresh: %w", err)
	}
	return decodeTokens(resp)
}

// Logout revokes the family of token.
func (c *Client) Logout(ctx context.Context, token string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Authorization", httpx.BearerPrefix+token).
		Post(c.paths.Logout)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if !resp.IsSuccess() {
		return parseErrorResponse(resp.StatusCode(), resp.Body())
	}
	return nil
}

// Protected fetches the protected resource with accessToken.
func (c *Client) Protected(ctx context.Context, accessToken string) (ProtectedResponse, error) {
	var out ProtectedResponse
	err := c.getJSON(ctx, c.paths.Protected, accessToken, &out)
	return out, err
}

func (c *Client) Liveness(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.getJSON(ctx, "/livez", "", &out)
	return out, err
}

func (c *Client) Readiness(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.getJSON(ctx, "/readyz", "", &out)
	return out, err
}

func (c *Client) JWKS(ctx context.Context) (JWKSResponse, error) {
	var out JWKSResponse
	err := c.getJSON(ctx, "/.well-known/jwks.json", "", &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, path, bearer string, target any) error {
	req := c.rest.R().SetContext(ctx)
	if bearer != "" {
		req.SetHeader("Authorization", httpx.BearerPrefix+bearer)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return parseErrorResponse(resp.StatusCode(), resp.Body())
	}
	if err := json.Unmarshal(resp.Body(), target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func decodeTokens(resp *resty.Response) (TokenResponse, error) {
	if !resp.IsSuccess() {
		return TokenResponse{}, parseErrorResponse(resp.StatusCode(), resp.Body())
	}

	var out TokenResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return TokenResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.AccessToken == "" {
		return TokenResponse{}, fmt.Errorf("%w: access_token missing", ErrMalformedResponse)
	}
	return out, nil
}
