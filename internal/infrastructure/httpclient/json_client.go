package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"wallet_sync/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	maxResponseBytes = 4 << 20
	maxErrorBody     = 512
)

// New returns an *http.Client tuned for small JSON APIs. Per-call deadlines come
// from the request context; timeout is only the outer safety net.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	}
}

// GetJSON performs a GET bound to ctx and decodes a 2xx body into out.
// Every failure is returned as *entity.FetchError tagged with op.
func GetJSON(ctx context.Context, client *http.Client, op, requestURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return &entity.FetchError{Op: op, URL: requestURL, Err: err}
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &entity.FetchError{Op: op, URL: requestURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &entity.FetchError{Op: op, URL: requestURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &entity.FetchError{Op: op, URL: requestURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &entity.FetchError{Op: op, URL: requestURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// IsCancellation reports whether err comes from a cancelled or timed out context.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
