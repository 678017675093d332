package kai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// aiServiceID is the Kai entry in the Storage API service index.
const aiServiceID = "ai"

// storageIndex is the subset of the Storage API index response the
// client needs for service discovery.
type storageIndex struct {
	Services []storageService `json:"services"`
}

type storageService struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// DiscoverBaseURL resolves the Kai backend URL for a project from its
// Storage API service index, so callers never hardcode per-stack URLs.
func DiscoverBaseURL(ctx context.Context, httpClient *http.Client, token, storageURL string) (string, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	indexURL := strings.TrimSuffix(storageURL, "/") + "/v2/storage?exclude=componentDetails"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-StorageApi-Token", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", &ConnectionError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", classifyResponse(resp.StatusCode, respBody)
	}

	var index storageIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return "", fmt.Errorf("decode service index: %w", err)
	}

	for _, svc := range index.Services {
		if svc.ID == aiServiceID && svc.URL != "" {
			return svc.URL, nil
		}
	}
	return "", fmt.Errorf("service %q not found in storage API index at %s", aiServiceID, storageURL)
}

// NewFromStorageAPI constructs a client whose base URL is discovered
// from the project's Storage API service index. Options apply after
// discovery, so WithBaseURL still wins if given.
func NewFromStorageAPI(ctx context.Context, token, storageURL string, opts ...Option) (*Client, error) {
	baseURL, err := DiscoverBaseURL(ctx, nil, token, storageURL)
	if err != nil {
		return nil, err
	}

	merged := append([]Option{WithBaseURL(baseURL)}, opts...)
	return NewClient(token, storageURL, merged...), nil
}
