package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"infinite-experiment/flighttracker/internal/constants"
	"infinite-experiment/flighttracker/internal/models/dtos"
)

// maxErrorBody caps how much of a failed response body is kept in ProviderError.Details
const maxErrorBody = 512

// StateProvider is the narrow contract the feed service depends on
type StateProvider interface {
	FetchStates(ctx context.Context) (*dtos.StateSnapshot, int, error)
}

// OpenSkyProvider fetches global state vectors from the OpenSky Network REST API
type OpenSkyProvider struct {
	BaseURL  string
	Username string
	Password string
	Client   *http.Client
}

var _ StateProvider = (*OpenSkyProvider)(nil)

// NewOpenSkyProvider creates a provider. Empty credentials mean anonymous access.
func NewOpenSkyProvider(baseURL, username, password string, timeout time.Duration) *OpenSkyProvider {
	if baseURL == "" {
		baseURL = constants.DefaultOpenSkyBaseURL
	}
	return &OpenSkyProvider{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetProviderType returns the provider type identifier
func (p *OpenSkyProvider) GetProviderType() string {
	return "opensky_network"
}

// FetchStates performs exactly one GET /states/all round trip.
// Any status other than 200 is a failure; there is no retry.
func (p *OpenSkyProvider) FetchStates(ctx context.Context) (*dtos.StateSnapshot, int, error) {
	endpoint := "/states/all"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+endpoint, nil)
	if err != nil {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	if p.Username != "" || p.Password != "" {
		req.SetBasicAuth(p.Username, p.Password)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, resp.StatusCode, p.buildHTTPError(resp.StatusCode, endpoint, string(body))
	}

	var snapshot dtos.StateSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, resp.StatusCode, &ProviderError{
			Code:       constants.ErrCodeInvalidDataFormat,
			Message:    "Failed to decode response",
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	return &snapshot, resp.StatusCode, nil
}

// buildHTTPError creates appropriate error based on status code
func (p *OpenSkyProvider) buildHTTPError(statusCode int, endpoint string, body string) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ProviderError{
			Code:       constants.ErrCodeInvalidCredentials,
			Message:    fmt.Sprintf("Authentication failed for endpoint %s", endpoint),
			Details:    body,
			StatusCode: statusCode,
		}
	case http.StatusTooManyRequests:
		return &ProviderError{
			Code:       constants.ErrCodeRateLimited,
			Message:    constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Details:    body,
			StatusCode: statusCode,
		}
	default:
		return &ProviderError{
			Code:       constants.ErrCodeFetchFailed,
			Message:    fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
			Details:    body,
			StatusCode: statusCode,
		}
	}
}
