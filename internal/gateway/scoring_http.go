package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tsix-platform/session-service/internal/models"
)

// ScoringClient calls the external scoring service's submit endpoint. The
// scoring service is the authority on grades; this client only carries the
// payload and decodes the verdict.
type ScoringClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewScoringClient(baseURL string, timeout time.Duration) *ScoringClient {
	return &ScoringClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *ScoringClient) SubmitTest(ctx context.Context, req *models.SubmitTestRequest) (*models.SubmitTestResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/candidate/submit-test", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build submission request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("submit test: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		payload, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(payload, &errResp) == nil && errResp.Message != "" {
			return nil, fmt.Errorf("scoring service rejected submission: %s", errResp.Message)
		}
		return nil, fmt.Errorf("scoring service returned status %d", resp.StatusCode)
	}

	var result models.SubmitTestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode submission result: %w", err)
	}
	return &result, nil
}
