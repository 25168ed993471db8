package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"infinite-experiment/flighttracker/internal/constants"
)

const statesBody = `{
  "time": 1700000000,
  "states": [
    ["4ca7b5", "BA123   ", "United Kingdom", 1700000000, 1700000000, -20.5, 51.2, 10668.0, false, 240.3, 270.1, 0.0, null, 10900.0, "1234", false, 0]
  ]
}`

func newTestProvider(url string) *OpenSkyProvider {
	return &OpenSkyProvider{
		BaseURL:  url,
		Username: "user",
		Password: "secret",
		Client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func TestOpenSkyProvider_FetchStates_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.URL.Path != "/states/all" {
			t.Errorf("Expected path /states/all, got %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "user" || pass != "secret" {
			t.Errorf("Expected basic auth user/secret, got %q/%q (ok=%v)", user, pass, ok)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(statesBody))
	}))
	defer server.Close()

	snapshot, status, err := newTestProvider(server.URL).FetchStates(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if snapshot.Time != 1700000000 {
		t.Errorf("Expected time 1700000000, got %d", snapshot.Time)
	}
	if len(snapshot.States) != 1 {
		t.Fatalf("Expected 1 state, got %d", len(snapshot.States))
	}
	vector, ok := snapshot.States[0].([]any)
	if !ok {
		t.Fatalf("Expected state array, got %T", snapshot.States[0])
	}
	if vector[1] != "BA123   " {
		t.Errorf("Expected untrimmed callsign, got %q", vector[1])
	}
}

func TestOpenSkyProvider_FetchStates_NonArrayStateKept(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"time":1700000000,"states":[` +
			`["400a1b","BA123 ","United Kingdom",1700000000,1700000000,-0.1,51.5,10668.0,false,240.5,271.0,0.0,null,10900.0,"1234",false,0],` +
			`{"bad":true}]}`))
	}))
	defer server.Close()

	snapshot, status, err := newTestProvider(server.URL).FetchStates(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if len(snapshot.States) != 2 {
		t.Fatalf("Expected 2 states, got %d", len(snapshot.States))
	}
	if _, ok := snapshot.States[1].(map[string]any); !ok {
		t.Errorf("Expected object state passed through, got %T", snapshot.States[1])
	}
}

func TestOpenSkyProvider_FetchStates_NoStatesField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"time": 1700000000, "states": null}`))
	}))
	defer server.Close()

	snapshot, _, err := newTestProvider(server.URL).FetchStates(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if snapshot.States != nil {
		t.Errorf("Expected nil states, got %v", snapshot.States)
	}
}

func TestOpenSkyProvider_FetchStates_Anonymous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); ok {
			t.Error("Expected no basic auth header for anonymous access")
		}
		w.Write([]byte(`{"time": 1}`))
	}))
	defer server.Close()

	provider := NewOpenSkyProvider(server.URL, "", "", time.Second)
	if _, _, err := provider.FetchStates(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestOpenSkyProvider_FetchStates_StatusCodes(t *testing.T) {
	cases := []struct {
		status int
		code   string
	}{
		{http.StatusUnauthorized, constants.ErrCodeInvalidCredentials},
		{http.StatusTooManyRequests, constants.ErrCodeRateLimited},
		{http.StatusInternalServerError, constants.ErrCodeFetchFailed},
		{http.StatusNoContent, constants.ErrCodeFetchFailed},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		snapshot, status, err := newTestProvider(server.URL).FetchStates(context.Background())
		server.Close()

		if snapshot != nil {
			t.Errorf("status %d: expected nil snapshot", tc.status)
		}
		if status != tc.status {
			t.Errorf("Expected status %d, got %d", tc.status, status)
		}
		var perr *ProviderError
		if !errors.As(err, &perr) {
			t.Fatalf("status %d: expected ProviderError, got %v", tc.status, err)
		}
		if perr.Code != tc.code {
			t.Errorf("status %d: expected code %s, got %s", tc.status, tc.code, perr.Code)
		}
	}
}

func TestOpenSkyProvider_FetchStates_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"states": [`))
	}))
	defer server.Close()

	_, _, err := newTestProvider(server.URL).FetchStates(context.Background())
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Code != constants.ErrCodeInvalidDataFormat {
		t.Fatalf("Expected INVALID_DATA_FORMAT error, got %v", err)
	}
}

func TestOpenSkyProvider_FetchStates_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, status, err := newTestProvider(url).FetchStates(context.Background())
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Code != constants.ErrCodeNetworkError {
		t.Fatalf("Expected NETWORK_ERROR, got %v", err)
	}
	if status != 0 {
		t.Errorf("Expected status 0, got %d", status)
	}
}
