package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/netx"
)

// DefaultTimeout bounds every request when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Doer sends a request. *http.Client and *AuthorizedClient satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type HTTPClient struct {
	baseURL string
	doer    Doer
}

// NewHTTPClient returns a client for the API at baseURL. A nil doer means a
// plain http.Client with DefaultTimeout; pass an *AuthorizedClient to reach
// the endpoints that need a session.
func NewHTTPClient(baseURL string, doer Doer) *HTTPClient {
	if doer == nil {
		doer = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPClient{baseURL: baseURL, doer: doer}
}

func (c *HTTPClient) GetChallenge(ctx context.Context, did string) (*ChallengeResponse, error) {
	var out ChallengeResponse
	path := "/auth/challenge?did=" + url.QueryEscape(did)
	if err := c.DoJSON(WithoutAuth(ctx), http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	if out.Challenge == "" {
		return nil, fmt.Errorf("get challenge: %w: empty challenge", ErrProtocol)
	}
	if out.DID != "" && out.DID != did {
		return nil, fmt.Errorf("get challenge: %w: challenge issued for %s", ErrProtocol, out.DID)
	}
	return &out, nil
}

func (c *HTTPClient) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	var out VerifyResponse
	if err := c.DoJSON(WithoutAuth(ctx), http.MethodPost, "/auth/verify", req, &out); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("verify: %w: missing access_token", ErrProtocol)
	}
	if out.TokenType != "" && !strings.EqualFold(out.TokenType, "bearer") {
		return nil, fmt.Errorf("verify: %w: token type %q", ErrProtocol, out.TokenType)
	}
	if out.ExpiresIn != nil && (*out.ExpiresIn <= 0 || *out.ExpiresIn > MaxExpiresIn) {
		return nil, fmt.Errorf("verify: %w: expires_in %d", ErrProtocol, *out.ExpiresIn)
	}
	return &out, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*UserInfo, error) {
	var out UserInfo
	if err := c.DoJSON(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	if out.DID == "" {
		return nil, fmt.Errorf("%w: user info without did", ErrProtocol)
	}
	return &out, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.DoJSON(WithoutAuth(ctx), http.MethodGet, "/health", nil, nil)
}

func (c *HTTPClient) SubmitCampaign(ctx context.Context, req CampaignRequest) (*CampaignResponse, error) {
	var out CampaignResponse
	if err := c.DoJSON(ctx, http.MethodPost, "/campaigns", req, &out); err != nil {
		return nil, fmt.Errorf("submit campaign: %w", err)
	}
	if out.JobID == "" {
		out.JobID = out.CampaignID
	}
	if out.JobID == "" {
		return nil, fmt.Errorf("submit campaign: %w: missing job_id", ErrProtocol)
	}
	return &out, nil
}

func (c *HTTPClient) ListCampaigns(ctx context.Context) ([]CampaignResponse, error) {
	var out struct {
		Campaigns []CampaignResponse `json:"campaigns"`
	}
	if err := c.DoJSON(ctx, http.MethodGet, "/campaigns", nil, &out); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return out.Campaigns, nil
}

// DoJSON sends in (if not nil) as a JSON body and decodes a 2xx answer into
// out (if not nil). Any other status becomes an *APIError.
func (c *HTTPClient) DoJSON(ctx context.Context, method, path string, in, out any) error {
	target, err := netx.JoinURL(c.baseURL, path)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}
	defer netx.DrainAndClose(resp)

	if !netx.IsSuccess(resp.StatusCode) {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return apiErr
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(raw, &body) != nil || len(body.Detail) == 0 {
		return apiErr
	}

	var text string
	if json.Unmarshal(body.Detail, &text) == nil {
		apiErr.Detail = text
		return apiErr
	}

	// Validation failures list one entry per field.
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(body.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		apiErr.Detail = strings.Join(msgs, "; ")
	}
	return apiErr
}
