package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// FraudScreen produces a risk verdict for a validated request. The orchestrator
// never invokes a processor for a blocked verdict.
type FraudScreen interface {
	Assess(ctx context.Context, input AssessRequest) (*AssessResult, error)
}

type httpFraudScreen struct {
	baseURL string
	client  *http.Client
}

func NewHTTPFraudScreen(baseURL string) FraudScreen {
	return &httpFraudScreen{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (f *httpFraudScreen) Assess(ctx context.Context, input AssessRequest) (*AssessResult, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/assess", f.baseURL), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fraud screen returned status %d", resp.StatusCode)
	}

	var result AssessResult
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
