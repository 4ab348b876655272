// Package apollo is a thin client for the Apollo.io v1 API: organization
// search per company name and people search per organization.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.apollo.io"

// Titles targeted by people search. Finance decision makers only.
var targetTitles = []string{
	"Finance Director",
	"FP&A Manager",
	"Financial Analyst",
	"Controller",
	"CFO",
	"VP Finance",
}

// Organization is the best Apollo match for a company name, with the raw
// payload preserved for opaque storage.
type Organization struct {
	ID        string
	Name      string
	Website   string
	LinkedIn  string
	Industry  string
	Employees int
	Phone     string
	Raw       json.RawMessage
}

// Person is one Apollo people-search hit.
type Person struct {
	FirstName     string
	LastName      string
	Email         string
	Title         string
	LinkedIn      string
	EmailVerified bool
}

// Client calls the Apollo.io API.
type Client struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// NewClient builds an Apollo client with a bounded request timeout.
func NewClient(client *http.Client, apiKey string) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{client: client, apiKey: apiKey, baseURL: defaultBaseURL}
}

// SearchOrganization finds the closest organization for the company name.
// (nil, nil) means Apollo returned no match.
func (c *Client) SearchOrganization(ctx context.Context, company string) (*Organization, error) {
	payload := map[string]any{
		"api_key":             c.apiKey,
		"q_organization_name": company,
	}
	body, err := c.post(ctx, "/v1/mixed_companies/search", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Organizations []struct {
			ID             string `json:"id"`
			Name           string `json:"name"`
			WebsiteURL     string `json:"website_url"`
			LinkedInURL    string `json:"linkedin_url"`
			Industry       string `json:"industry"`
			EstimatedCount int    `json:"estimated_num_employees"`
			Phone          string `json:"phone"`
		} `json:"organizations"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode organization search response: %w", err)
	}
	if len(resp.Organizations) == 0 {
		return nil, nil
	}

	var envelope struct {
		Organizations []json.RawMessage `json:"organizations"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("extract organization payload: %w", err)
	}

	org := resp.Organizations[0]
	return &Organization{
		ID:        org.ID,
		Name:      org.Name,
		Website:   org.WebsiteURL,
		LinkedIn:  org.LinkedInURL,
		Industry:  org.Industry,
		Employees: org.EstimatedCount,
		Phone:     org.Phone,
		Raw:       envelope.Organizations[0],
	}, nil
}

// SearchPeople lists finance contacts at the organization.
func (c *Client) SearchPeople(ctx context.Context, organizationID string) ([]Person, error) {
	payload := map[string]any{
		"api_key":          c.apiKey,
		"organization_ids": []string{organizationID},
		"person_titles":    targetTitles,
		"per_page":         10,
	}
	body, err := c.post(ctx, "/v1/mixed_people/search", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		People []struct {
			FirstName     string `json:"first_name"`
			LastName      string `json:"last_name"`
			Email         string `json:"email"`
			Title         string `json:"title"`
			LinkedInURL   string `json:"linkedin_url"`
			EmailVerified bool   `json:"email_verified"`
		} `json:"people"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode people search response: %w", err)
	}

	people := make([]Person, 0, len(resp.People))
	for _, p := range resp.People {
		people = append(people, Person{
			FirstName:     p.FirstName,
			LastName:      p.LastName,
			Email:         p.Email,
			Title:         p.Title,
			LinkedIn:      p.LinkedInURL,
			EmailVerified: p.EmailVerified,
		})
	}
	return people, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal apollo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create apollo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apollo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read apollo response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("apollo error: status %d", resp.StatusCode)
	}
	return body, nil
}
