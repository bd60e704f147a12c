package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const stripeAPIBase = "https://api.stripe.com"

type StripeConfig struct {
	SecretKey                 string
	WebhookSecret             string
	SignatureToleranceSeconds int64
	HTTPTimeout               time.Duration
	APIBase                   string
}

type StripeProvider struct {
	cfg    StripeConfig
	client *http.Client
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.SignatureToleranceSeconds <= 0 {
		cfg.SignatureToleranceSeconds = 300
	}
	if strings.TrimSpace(cfg.APIBase) == "" {
		cfg.APIBase = stripeAPIBase
	}

	return &StripeProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *StripeProvider) Name() string {
	return "stripe"
}

func (p *StripeProvider) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(p.cfg.SecretKey) == "" {
		return nil, errors.New("stripe secret key is not configured")
	}

	body, err := p.getJSON(ctx, "/v1/checkout/sessions/"+url.PathEscape(strings.TrimSpace(sessionID)))
	if err != nil {
		return nil, err
	}

	var payload stripeCheckoutSession
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	return payload.toSession(), nil
}

func (p *StripeProvider) ListPaidSessions(ctx context.Context, since time.Time, limit int) ([]*Session, error) {
	if strings.TrimSpace(p.cfg.SecretKey) == "" {
		return nil, errors.New("stripe secret key is not configured")
	}
	if limit <= 0 {
		limit = 100
	}

	values := url.Values{}
	values.Set("status", "complete")
	values.Set("created[gte]", strconv.FormatInt(since.Unix(), 10))
	values.Set("limit", strconv.Itoa(limit))

	body, err := p.getJSON(ctx, "/v1/checkout/sessions?"+values.Encode())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []stripeCheckoutSession `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	sessions := make([]*Session, 0, len(payload.Data))
	for _, item := range payload.Data {
		session := item.toSession()
		if !session.Paid {
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

func (p *StripeProvider) VerifyAndParseWebhook(_ context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	if strings.TrimSpace(p.cfg.WebhookSecret) == "" {
		return nil, errors.New("stripe webhook secret is not configured")
	}
	if !verifyStripeSignature(payload, signature, p.cfg.WebhookSecret, p.cfg.SignatureToleranceSeconds) {
		return nil, errors.New("invalid stripe signature")
	}

	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID string `json:"id"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}

	result := &WebhookEvent{
		EventID:   strings.TrimSpace(event.ID),
		EventType: strings.TrimSpace(event.Type),
		SessionID: strings.TrimSpace(event.Data.Object.ID),
	}

	switch result.EventType {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		result.Completed = true
	}

	return result, nil
}

func (p *StripeProvider) getJSON(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.APIBase+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSessionNotFound
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status=%d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("stripe request failed: path=%s status=%d body=%s", path, resp.StatusCode, string(body))
	}

	return body, nil
}

type stripeCheckoutSession struct {
	ID            string      `json:"id"`
	AmountTotal   int64       `json:"amount_total"`
	Currency      string      `json:"currency"`
	PaymentStatus string      `json:"payment_status"`
	PaymentIntent interface{} `json:"payment_intent"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

func (s *stripeCheckoutSession) toSession() *Session {
	metadata := s.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	return &Session{
		ID:             strings.TrimSpace(s.ID),
		Paid:           s.PaymentStatus == "paid" || s.PaymentStatus == "no_payment_required",
		AmountCents:    s.AmountTotal,
		Currency:       strings.ToUpper(strings.TrimSpace(s.Currency)),
		TransactionRef: parseStringish(s.PaymentIntent),
		CustomerEmail:  strings.TrimSpace(s.CustomerDetails.Email),
		Metadata:       metadata,
	}
}

func verifyStripeSignature(payload []byte, signatureHeader string, webhookSecret string, toleranceSeconds int64) bool {
	signatureHeader = strings.TrimSpace(signatureHeader)
	if signatureHeader == "" || strings.TrimSpace(webhookSecret) == "" {
		return false
	}

	parts := strings.Split(signatureHeader, ",")
	var ts string
	v1 := make([]string, 0, 1)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "t=") {
			ts = strings.TrimSpace(strings.TrimPrefix(part, "t="))
		}
		if strings.HasPrefix(part, "v1=") {
			v1 = append(v1, strings.TrimSpace(strings.TrimPrefix(part, "v1=")))
		}
	}
	if ts == "" || len(v1) == 0 {
		return false
	}

	tsUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	now := time.Now().Unix()
	if now-tsUnix > toleranceSeconds || tsUnix-now > toleranceSeconds {
		return false
	}

	signedPayload := []byte(ts + "." + string(payload))
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	_, _ = mac.Write(signedPayload)
	expected := mac.Sum(nil)

	for _, sig := range v1 {
		candidate, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(candidate, expected) {
			return true
		}
	}

	return false
}

func parseStringish(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]interface{}:
		if raw, ok := t["id"]; ok {
			if s, ok := raw.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
