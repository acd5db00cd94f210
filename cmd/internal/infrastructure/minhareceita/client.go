package minhareceita

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gestaoacoes/cmd/internal/domain/entity"
	"net/http"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
)

const defaultBaseURL = "https://minhareceita.org/"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return NewClientWithURL(defaultBaseURL)
}

// NewClientWithURL points the client at another registry mirror.
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) GetByCNPJ(ctx context.Context, cnpj string) (*entity.CNPJRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+cnpj, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("minhareceita failed with status code: %d", resp.StatusCode)
	}

	var company companyResponse
	if err := json.NewDecoder(resp.Body).Decode(&company); err != nil {
		return nil, err
	}
	return company.ToDomain(), nil
}
