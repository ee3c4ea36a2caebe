// Package ledger talks to the external token ledger. The ledger is opaque
// from this service's perspective: it holds balances, executes transfers and
// records signed agreements, returning a proof hash for each write.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Ledger is the surface the settlement pipeline depends on.
type Ledger interface {
	// BalanceOf returns the token balance of an address.
	BalanceOf(ctx context.Context, address string) (float64, error)
	// Transfer moves tokens between addresses, signed by the sender's key,
	// and returns the transaction proof hash.
	Transfer(ctx context.Context, from, to string, amount float64, signingKey string) (string, error)
	// RecordAgreement writes an append-only record binding a matching to
	// both parties' addresses and returns the proof hash.
	RecordAgreement(ctx context.Context, matchingID, elderlyAddress, nurseAddress string) (string, error)
}

// Client is the HTTP implementation of Ledger against the ledger gateway.
type Client struct {
	http *resty.Client
}

// NewClient builds a ledger client with a bounded per-call timeout.
// A timed-out call is reported as a plain failure to the caller.
func NewClient(baseURL string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient}
}

type balanceResponse struct {
	Address string  `json:"address"`
	Balance float64 `json:"balance"`
}

type transferRequest struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Amount     float64 `json:"amount"`
	SigningKey string  `json:"signing_key"`
}

type agreementRequest struct {
	MatchingID     string `json:"matching_id"`
	ElderlyAddress string `json:"elderly_address"`
	NurseAddress   string `json:"nurse_address"`
}

type receiptResponse struct {
	Hash  string `json:"hash"`
	Error string `json:"error,omitempty"`
}

func (c *Client) BalanceOf(ctx context.Context, address string) (float64, error) {
	var out balanceResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/accounts/" + address + "/balance")
	if err != nil {
		return 0, fmt.Errorf("ledger: balance call failed: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("ledger: balance call returned %s", resp.Status())
	}
	return out.Balance, nil
}

func (c *Client) Transfer(ctx context.Context, from, to string, amount float64, signingKey string) (string, error) {
	var out receiptResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(transferRequest{From: from, To: to, Amount: amount, SigningKey: signingKey}).
		SetResult(&out).
		Post("/transfers")
	if err != nil {
		return "", fmt.Errorf("ledger: transfer call failed: %w", err)
	}
	if resp.IsError() || out.Hash == "" {
		return "", fmt.Errorf("ledger: transfer rejected: %s %s", resp.Status(), out.Error)
	}
	return out.Hash, nil
}

func (c *Client) RecordAgreement(ctx context.Context, matchingID, elderlyAddress, nurseAddress string) (string, error) {
	var out receiptResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(agreementRequest{MatchingID: matchingID, ElderlyAddress: elderlyAddress, NurseAddress: nurseAddress}).
		SetResult(&out).
		Post("/agreements")
	if err != nil {
		return "", fmt.Errorf("ledger: agreement call failed: %w", err)
	}
	if resp.IsError() || out.Hash == "" {
		return "", fmt.Errorf("ledger: agreement rejected: %s %s", resp.Status(), out.Error)
	}
	return out.Hash, nil
}
