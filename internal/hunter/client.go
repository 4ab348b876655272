// Package hunter is a thin client for the Hunter.io v2 API: domain search
// per company and email finder per job title.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.hunter.io"

// DomainSearchResult is the resolved company domain plus the raw provider
// payload, stored verbatim on the company row.
type DomainSearchResult struct {
	Domain  string
	Pattern string
	Raw     json.RawMessage
}

// EmailFinderResult is one resolved person with Hunter's confidence score.
type EmailFinderResult struct {
	FirstName string
	LastName  string
	Email     string
	Score     int
}

// Client calls the Hunter.io API.
type Client struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewClient builds a Hunter client with a bounded request timeout.
func NewClient(client *http.Client, apiKey string) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{client: client, apiKey: apiKey, baseURL: defaultBaseURL}
}

// DomainSearch resolves a company name to its email domain. A company
// Hunter does not know yields (nil, nil).
func (c *Client) DomainSearch(ctx context.Context, company string) (*DomainSearchResult, error) {
	params := url.Values{}
	params.Set("company", company)
	params.Set("api_key", c.apiKey)

	body, err := c.get(ctx, "/v2/domain-search", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Domain  string `json:"domain"`
			Pattern string `json:"pattern"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode domain search response: %w", err)
	}
	if resp.Data.Domain == "" {
		return nil, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("extract domain search payload: %w", err)
	}

	return &DomainSearchResult{
		Domain:  resp.Data.Domain,
		Pattern: resp.Data.Pattern,
		Raw:     envelope.Data,
	}, nil
}

// FindEmail looks up a person holding the given position at the domain.
// (nil, nil) means Hunter found nobody.
func (c *Client) FindEmail(ctx context.Context, domain, company, position string) (*EmailFinderResult, error) {
	params := url.Values{}
	params.Set("domain", domain)
	params.Set("company", company)
	params.Set("position", position)
	params.Set("api_key", c.apiKey)

	body, err := c.get(ctx, "/v2/email-finder", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Email     string `json:"email"`
			Score     int    `json:"score"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode email finder response: %w", err)
	}
	if resp.Data.Email == "" {
		return nil, nil
	}

	return &EmailFinderResult{
		FirstName: resp.Data.FirstName,
		LastName:  resp.Data.LastName,
		Email:     resp.Data.Email,
		Score:     resp.Data.Score,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create hunter request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hunter request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read hunter response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("hunter error: status %d", resp.StatusCode)
	}
	return body, nil
}
