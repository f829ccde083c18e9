package spotify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

// Transport issues one POST against the partner endpoint and returns the
// raw response body. Retry and backoff live below this interface; callers
// only ever see the final outcome.
type Transport interface {
	Post(ctx context.Context, endpoint string, params url.Values, authenticate bool) ([]byte, error)
}

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// PartnerTransport talks to the partner API with browser-like headers and
// retryablehttp's exponential backoff.
type PartnerTransport struct {
	client      *retryablehttp.Client
	bearerToken string
}

// NewPartnerTransport builds a transport that retries failed requests up
// to retries times before reporting the error.
func NewPartnerTransport(bearerToken string, retries int) *PartnerTransport {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.HTTPClient.Timeout = 30 * time.Second
	client.Logger = nil
	return &PartnerTransport{client: client, bearerToken: bearerToken}
}

func (t *PartnerTransport) Post(ctx context.Context, endpoint string, params url.Values, authenticate bool) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build partner request: %w", err)
	}

	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("App-Platform", "WebPlayer")
	if authenticate && t.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.bearerToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("partner request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read partner response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		log.Warnf("Partner API returned %s for %s", resp.Status, params.Get("operationName"))
		return nil, fmt.Errorf("partner API returned %s", resp.Status)
	}

	return body, nil
}
