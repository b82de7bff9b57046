package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
)

// APIClient reads the status API over HTTP, for watchers running outside
// the server process.
type APIClient struct {
	base   string
	client *http.Client
}

func NewAPIClient(base string) *APIClient {
	return &APIClient{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// StatusFetch binds one session id into a fetch function for a
// SessionWatcher.
func (c *APIClient) StatusFetch(sessionID string) StatusFetch {
	return func(ctx context.Context) (*model.SessionStatus, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/webhook-status/"+sessionID, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch status: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("status api http %d", resp.StatusCode)
		}

		var rec model.SessionStatus
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode status: %w", err)
		}
		return &rec, nil
	}
}
