package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// SettlementEngine moves captured funds to the merchant account. Only the
// instant path goes through here; scheduled settlement is a descriptor computed
// by the initiator.
type SettlementEngine interface {
	SettleInstant(ctx context.Context, input SettleRequest) (*SettlementResult, error)
}

type httpSettlementEngine struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSettlementEngine(baseURL string) SettlementEngine {
	return &httpSettlementEngine{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

func (s *httpSettlementEngine) SettleInstant(ctx context.Context, input SettleRequest) (*SettlementResult, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/settlements/instant", s.baseURL), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("settlement engine returned status %d", resp.StatusCode)
	}

	var result SettlementResult
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
