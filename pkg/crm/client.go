// Package crm talks to the external lead-management service. The quote
// flow only needs lead intake and a status read-back; everything else
// lives on the CRM side.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// LeadRequest is the intake payload sent when a quote session reaches
// the summary step for the first time.
type LeadRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Zip          string `json:"zip"`
	CustomerType string `json:"customer_type,omitempty"`
	Timeline     string `json:"timeline,omitempty"`
	Source       string `json:"source,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type Lead struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// CreateLead registers the contact with the CRM and returns the
// assigned lead id. The id is opaque; callers only store it.
func (c *Client) CreateLead(ctx context.Context, req LeadRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		"POST",
		fmt.Sprintf("%s/api/leads", c.baseURL),
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var lead Lead
	if err := json.NewDecoder(resp.Body).Decode(&lead); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	c.logger.Info("lead created", zap.String("lead_id", lead.ID))
	return lead.ID, nil
}

// GetLead fetches the current CRM view of a lead.
func (c *Client) GetLead(ctx context.Context, leadID string) (*Lead, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET",
		fmt.Sprintf("%s/api/leads/%s", c.baseURL, leadID),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var lead Lead
	if err := json.NewDecoder(resp.Body).Decode(&lead); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &lead, nil
}
