// Package custody talks to the custodial wallet gateway that actually moves
// user funds. The gateway is a remote, fallible collaborator: calls are
// wrapped in retry-with-backoff and callers treat failures as non-fatal.
package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type Client struct {
	base       string
	apiKey     string
	hc         *http.Client
	maxRetries int
	baseDelay  time.Duration
}

func NewClient(base, apiKey string) *Client {
	return &Client{
		base:       base,
		apiKey:     apiKey,
		hc:         &http.Client{Timeout: 5 * time.Second},
		maxRetries: 3,
		baseDelay:  200 * time.Millisecond,
	}
}

type settlementReq struct {
	LoanID string `json:"loan_id"`
	Seq    int    `json:"seq"`
	Amount string `json:"amount"`
}

type settlementResp struct {
	Reference string `json:"reference"`
}

// SettlementRef registers a paid installment with the gateway and returns
// its settlement reference.
func (c *Client) SettlementRef(ctx context.Context, loanID string, seq int, amount decimal.Decimal) (string, error) {
	payload, err := json.Marshal(settlementReq{LoanID: loanID, Seq: seq, Amount: amount.String()})
	if err != nil {
		return "", err
	}

	var ref string
	err = withRetry(ctx, c.maxRetries, c.baseDelay, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/settlements", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("custody gateway: status %d", resp.StatusCode)
		}
		var out settlementResp
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return err
		}
		if out.Reference == "" {
			return fmt.Errorf("custody gateway: empty reference")
		}
		ref = out.Reference
		return nil
	})
	return ref, err
}

func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
