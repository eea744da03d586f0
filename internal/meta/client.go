package meta

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ignite/meta-audience-relay/internal/config"
	"github.com/ignite/meta-audience-relay/internal/metrics"
	"github.com/ignite/meta-audience-relay/internal/pkg/httptimeout"
)

// Operation names used for metrics and error context.
const (
	opCreateAudience = "create_audience"
	opAddUsers       = "add_users"
	opInsights       = "insights"
)

// Client is the Meta Graph API client
type Client struct {
	baseURL    string
	apiVersion string
	accountID  string
	httpClient httptimeout.HTTPDoer
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a new Graph API client. The access token is attached to
// every request as an OAuth2 bearer credential.
func NewClient(cfg config.MetaConfig) *Client {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	authed := &http.Client{
		Transport: &oauth2.Transport{Source: tokenSource, Base: http.DefaultTransport},
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion: cfg.APIVersion,
		accountID:  cfg.AccountID(),
		httpClient: httptimeout.NewClient(authed, cfg.Timeout()),
		breaker:    newBreaker("meta-graph-api"),
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httptimeout.HTTPDoer) {
	c.httpClient = client
}

// CreateCustomAudience creates an empty customer-file audience under the ad
// account and returns its id.
func (c *Client) CreateCustomAudience(ctx context.Context, name, description string) (string, error) {
	req := CreateAudienceRequest{
		Name:               name,
		Subtype:            SubtypeCustom,
		Description:        description,
		CustomerFileSource: CustomerFileUserProvided,
	}

	respBody, err := c.doRequest(ctx, opCreateAudience, http.MethodPost, c.accountPath("customaudiences"), nil, req)
	if err != nil {
		return "", err
	}

	var resp CreateAudienceResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to parse create audience response: %w", err)
	}
	if resp.ID == "" {
		return "", errors.New("create audience response did not include an id")
	}
	return resp.ID, nil
}

// AddUsers appends one batch of hashed rows to an existing audience.
func (c *Client) AddUsers(ctx context.Context, audienceID string, payload UsersPayload) (*AddUsersResponse, error) {
	path := fmt.Sprintf("/%s/%s/users", c.apiVersion, url.PathEscape(audienceID))

	respBody, err := c.doRequest(ctx, opAddUsers, http.MethodPost, path, nil, AddUsersRequest{Payload: payload})
	if err != nil {
		return nil, err
	}

	var resp AddUsersResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse add users response: %w", err)
	}
	return &resp, nil
}

// GetCampaignInsights runs an insights query against the ad account and
// returns the platform's JSON body untouched.
func (c *Client) GetCampaignInsights(ctx context.Context, q InsightsQuery) ([]byte, error) {
	level := q.Level
	if level == "" {
		level = DefaultInsightsLevel
	}
	fields := q.Fields
	if len(fields) == 0 {
		fields = DefaultInsightsFields
	}
	timeRange, err := json.Marshal(TimeRange{Since: q.Since, Until: q.Until})
	if err != nil {
		return nil, fmt.Errorf("failed to encode time range: %w", err)
	}

	params := url.Values{}
	params.Set("level", level)
	params.Set("fields", strings.Join(fields, ","))
	params.Set("time_range", string(timeRange))

	return c.doRequest(ctx, opInsights, http.MethodGet, c.accountPath("insights"), params, nil)
}

func (c *Client) accountPath(edge string) string {
	return fmt.Sprintf("/%s/act_%s/%s", c.apiVersion, c.accountID, edge)
}

// doRequest performs one rate-limited, breaker-guarded Graph API call and
// returns the raw success body.
func (c *Client) doRequest(ctx context.Context, operation, method, path string, params url.Values, body interface{}) ([]byte, error) {
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("meta %s: rate limiter: %w", operation, err)
		}
	}

	respBody, err := c.breaker.Execute(func() ([]byte, error) {
		return c.send(ctx, method, path, params, body)
	})
	metrics.GraphRequestDuration.WithLabelValues(operation, outcome(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, fmt.Errorf("meta %s: %w", operation, err)
	}
	return respBody, nil
}

func (c *Client) send(ctx context.Context, method, path string, params url.Values, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}
	// The Graph API sometimes reports failures in a 2xx body.
	if apiErr := embeddedAPIError(resp.StatusCode, respBody); apiErr != nil {
		return nil, apiErr
	}
	return respBody, nil
}

func embeddedAPIError(status int, body []byte) *APIError {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || !bytes.Contains(trimmed, []byte(`"error"`)) {
		return nil
	}
	var env errorEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil || env.Error == nil {
		return nil
	}
	env.Error.StatusCode = status
	return env.Error
}

func parseAPIError(status int, body []byte) *APIError {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		env.Error.StatusCode = status
		return env.Error
	}
	return &APIError{StatusCode: status, Message: fmt.Sprintf("Meta API error (status %d): %s", status, truncate(string(body), 200))}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func outcome(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.Is(err, httptimeout.ErrTimeout):
		return "timeout"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		return "transport_error"
	}
}
