// Package notifier is the client for the outbound mailer service. Delivery is
// best effort: the mailer runs its own retry queue, this client reports a
// single success or failure per attempt.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-purchases/config"
)

type BuyerReceipt struct {
	ContactEmail string `json:"contact_email"`
	EventID      string `json:"event_id"`
	PurchaseID   uint64 `json:"purchase_id"`
	PhotoCount   int    `json:"photo_count"`
	GrossCents   int64  `json:"gross_cents"`
	Currency     string `json:"currency"`
}

type PayoutNotice struct {
	PhotographerID string `json:"photographer_id"`
	EventID        string `json:"event_id"`
	PurchaseID     uint64 `json:"purchase_id"`
	PhotoCount     int    `json:"photo_count"`
	SellerCents    int64  `json:"seller_cents"`
	Currency       string `json:"currency"`
}

type MailerClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewMailerClient(cfg config.MailerConfig) *MailerClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &MailerClient{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *MailerClient) SendBuyerReceipt(ctx context.Context, receipt *BuyerReceipt) error {
	return c.post(ctx, "/emails/purchase-receipt", receipt)
}

func (c *MailerClient) SendPayoutNotice(ctx context.Context, notice *PayoutNotice) error {
	return c.post(ctx, "/emails/payout-notice", notice)
}

func (c *MailerClient) post(ctx context.Context, path string, payload any) error {
	if c.baseURL == "" {
		return errors.New("mailer base url is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mailer returned status=%d path=%s", resp.StatusCode, path)
	}

	return nil
}
