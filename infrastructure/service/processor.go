package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// Processor is an external payment-method-specific execution backend (card
// network, mobile money rail, bank transfer network).
type Processor interface {
	Type() string
	Process(ctx context.Context, input ProcessRequest) (*ProcessResult, error)
}

type httpProcessor struct {
	processorType string
	baseURL       string
	client        *http.Client
}

func NewHTTPProcessor(processorType, baseURL string) Processor {
	return &httpProcessor{
		processorType: processorType,
		baseURL:       baseURL,
		client:        &http.Client{},
	}
}

func (p *httpProcessor) Type() string {
	return p.processorType
}

func (p *httpProcessor) Process(ctx context.Context, input ProcessRequest) (*ProcessResult, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/process", p.baseURL), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, ErrUnprocessableEntity
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("processor %s returned status %d", p.processorType, resp.StatusCode)
	}

	var result ProcessResult
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
