// Package pay is the boundary to the payment gateway: initialize a charge,
// get back an authorization URL plus a reference, and later verify that
// reference. Gateway internals stay on the other side of this interface.
package pay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"camposocial/config"

	"github.com/infinitybotlist/eureka/jsonimpl"
)

type Gateway interface {
	Initialize(ctx context.Context, amount float64, email string) (authURL string, reference string, err error)
	Verify(ctx context.Context, reference string) (paid bool, err error)
}

type Client struct {
	cfg  config.Payments
	http *http.Client
}

func New(cfg config.Payments) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
	}
}

type initRequest struct {
	// Amount is in the gateway's minor unit
	Amount int64  `json:"amount"`
	Email  string `json:"email"`
}

type initResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Status string `json:"status"`
	} `json:"data"`
}

func (c *Client) Initialize(ctx context.Context, amount float64, email string) (string, string, error) {
	payload, err := jsonimpl.Marshal(initRequest{
		Amount: int64(amount * 100),
		Email:  email,
	})

	if err != nil {
		return "", "", fmt.Errorf("pay: marshal init request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/transaction/initialize", strings.NewReader(string(payload)))

	if err != nil {
		return "", "", fmt.Errorf("pay: build init request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)

	resp, err := c.http.Do(req)

	if err != nil {
		return "", "", fmt.Errorf("pay: initialize: %w", err)
	}

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)

	if err != nil {
		return "", "", fmt.Errorf("pay: read init response: %w", err)
	}

	var body initResponse
	if err := jsonimpl.Unmarshal(raw, &body); err != nil {
		return "", "", fmt.Errorf("pay: decode init response: %w", err)
	}

	if !body.Status {
		return "", "", fmt.Errorf("pay: gateway rejected initialize (status %d)", resp.StatusCode)
	}

	return body.Data.AuthorizationURL, body.Data.Reference, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/transaction/verify/"+reference, nil)

	if err != nil {
		return false, fmt.Errorf("pay: build verify request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)

	resp, err := c.http.Do(req)

	if err != nil {
		return false, fmt.Errorf("pay: verify %s: %w", reference, err)
	}

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)

	if err != nil {
		return false, fmt.Errorf("pay: read verify response: %w", err)
	}

	var body verifyResponse
	if err := jsonimpl.Unmarshal(raw, &body); err != nil {
		return false, fmt.Errorf("pay: decode verify response: %w", err)
	}

	return body.Status && body.Data.Status == "success", nil
}
