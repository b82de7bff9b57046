package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fortunto2/superduperai-landing-sub000/internal/config"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/ports/adapter"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/metrics"
)

// Compile-time assurance this client satisfies the port
var _ adapter.VideoGenerator = (*Client)(nil)

// Client talks to the video generation provider's REST API.
// Authorization: Bearer <token>; all calls are bounded by the caller's
// context plus a hard client timeout.
type Client struct {
	base   string
	token  string
	client *http.Client
}

func NewClient(cfg *config.GenerationConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		token:  cfg.Token,
		client: &http.Client{Timeout: timeout},
	}
}

type generateResponse struct {
	ID string `json:"id"`
}

// GenerateVideo submits a generation job and returns the provider's file id.
func (c *Client) GenerateVideo(ctx context.Context, genReq model.GenerationRequest) (string, error) {
	start := time.Now()
	id, err := c.generateVideo(ctx, genReq)
	metrics.ObserveGenerationCall("generate", time.Since(start).Milliseconds(), err == nil)
	return id, err
}

func (c *Client) generateVideo(ctx context.Context, genReq model.GenerationRequest) (string, error) {
	if genReq.References == nil {
		genReq.References = []string{}
	}
	body, err := json.Marshal(genReq)
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/v1/file/generate-video", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: http %d: %s", domain.ErrGenerationFailed, resp.StatusCode, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: provider returned no id", domain.ErrGenerationFailed)
	}
	return out.ID, nil
}

// GetFile fetches current status for a generation job.
func (c *Client) GetFile(ctx context.Context, fileID string) (*model.GenerationFile, error) {
	start := time.Now()
	f, err := c.getFile(ctx, fileID)
	metrics.ObserveGenerationCall("get_file", time.Since(start).Milliseconds(), err == nil)
	return f, err
}

func (c *Client) getFile(ctx context.Context, fileID string) (*model.GenerationFile, error) {
	if fileID == "" {
		return nil, domain.ErrInvalidArgument
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/v1/file/"+fileID, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("file status http %d", resp.StatusCode)
	}

	var f model.GenerationFile
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode file status: %w", err)
	}
	if f.ID == "" {
		f.ID = fileID
	}
	return &f, nil
}
