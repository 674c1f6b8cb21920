package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-crud-api/pkg/apierror"
)

const maxExternalBody = 1 << 20

// ExternalAPIService fetches the configured upstream URL as text.
type ExternalAPIService struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

func NewExternalAPIService(url string, timeout time.Duration) *ExternalAPIService {
	return &ExternalAPIService{
		client:  &http.Client{Timeout: timeout},
		url:     strings.TrimSpace(url),
		timeout: timeout,
	}
}

func (s *ExternalAPIService) Timeout() time.Duration {
	return s.timeout
}

func (s *ExternalAPIService) Call(ctx context.Context) (string, error) {
	if s.url == "" {
		return "", apierror.New("NOT_CONFIGURED", "external api is not configured", "", http.StatusServiceUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", apierror.Wrap(err, "NOT_CONFIGURED", "external api url is invalid", http.StatusServiceUnavailable)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", upstreamError(fmt.Errorf("call external api: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExternalBody))
	if err != nil {
		return "", upstreamError(fmt.Errorf("read external api response: %w", err))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", upstreamError(fmt.Errorf("external api returned %d", resp.StatusCode))
	}

	return string(body), nil
}

func upstreamError(cause error) error {
	return apierror.Wrap(cause, "BAD_GATEWAY", "external api request failed", http.StatusBadGateway)
}
