package trust

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	fetchTimeout = 30 * time.Second
	userAgent    = "dockstrap/1.0"

	// maxKeySize bounds the response read. Signing keys are a few
	// kilobytes; anything approaching this limit is not a key.
	maxKeySize = 1 << 20
)

// Fetcher retrieves key material over HTTPS. A failed fetch is never
// retried; the run reports the failure and can be re-invoked as a
// whole, since provisioning is idempotent.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher with a conservative timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// Fetch retrieves url in a single attempt. Transport errors, non-200
// statuses, and empty bodies all come back as *TrustFetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "https://") {
		return nil, &TrustFetchError{URL: url, Cause: fmt.Errorf("key source must use https")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TrustFetchError{URL: url, Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TrustFetchError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TrustFetchError{URL: url, Cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySize))
	if err != nil {
		return nil, &TrustFetchError{URL: url, Cause: fmt.Errorf("read response: %w", err)}
	}
	if len(data) == 0 {
		return nil, &TrustFetchError{URL: url, Cause: fmt.Errorf("empty response body")}
	}

	return data, nil
}
