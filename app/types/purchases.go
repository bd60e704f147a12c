package types

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Purchase struct {
	Id             uint64   `json:"id"`
	SessionId      string   `json:"session_id"`
	TransactionRef string   `json:"transaction_ref"`
	Provider       string   `json:"provider"`
	BuyerId        string   `json:"buyer_id,omitempty"`
	EventId        string   `json:"event_id"`
	PhotographerId string   `json:"photographer_id"`
	GrossCents     int64    `json:"gross_cents"`
	PlatformCents  int64    `json:"platform_cents"`
	SellerCents    int64    `json:"seller_cents"`
	Currency       string   `json:"currency"`
	Status         string   `json:"status"`
	ContactEmail   string   `json:"contact_email,omitempty"`
	PhotoIds       []string `json:"photo_ids,omitempty"`
	CompletedAt    string   `json:"completed_at"`
	CreatedAt      string   `json:"created_at"`
}

type PurchaseEnvelopeResponse struct {
	Purchase *Purchase `json:"purchase"`
}

type ListPurchasesResponse struct {
	Purchases []*Purchase `json:"purchases"`
}

type ConfirmCheckoutRequest struct {
	Provider  string `json:"provider"`
	SessionId string `json:"session_id"`
}

func NewConfirmCheckoutRequestFromContext(ctx echo.Context) (*ConfirmCheckoutRequest, error) {
	var body ConfirmCheckoutRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Provider = strings.ToLower(strings.TrimSpace(body.Provider))
	if body.Provider == "" {
		body.Provider = "stripe"
	}
	body.SessionId = strings.TrimSpace(body.SessionId)

	return &body, nil
}

func (r *ConfirmCheckoutRequest) Validate() error {
	if r.SessionId == "" {
		return errors.New("session_id is required")
	}
	return nil
}

type ConfirmCheckoutResponse struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	PurchaseId    uint64 `json:"purchase_id,omitempty"`
	AlreadyExists bool   `json:"already_exists"`
}

type GetPurchaseRequest struct {
	Id uint64
}

func NewGetPurchaseRequestFromContext(ctx echo.Context) (*GetPurchaseRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetPurchaseRequest{Id: id}, nil
}

func (r *GetPurchaseRequest) Validate() error {
	if r.Id == 0 {
		return errors.New("invalid purchase id")
	}
	return nil
}

type ListPurchasesRequest struct {
	EventId        string
	PhotographerId string
	BuyerId        string
	Limit          int32
	Offset         int32
}

func NewListPurchasesRequestFromContext(ctx echo.Context) (*ListPurchasesRequest, error) {
	req := &ListPurchasesRequest{
		EventId:        strings.TrimSpace(ctx.QueryParam("event_id")),
		PhotographerId: strings.TrimSpace(ctx.QueryParam("photographer_id")),
		BuyerId:        strings.TrimSpace(ctx.QueryParam("buyer_id")),
		Limit:          100,
		Offset:         0,
	}

	if limitRaw := strings.TrimSpace(ctx.QueryParam("limit")); limitRaw != "" {
		limit, err := strconv.ParseInt(limitRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Limit = int32(limit)
	}

	if offsetRaw := strings.TrimSpace(ctx.QueryParam("offset")); offsetRaw != "" {
		offset, err := strconv.ParseInt(offsetRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Offset = int32(offset)
	}

	return req, nil
}

func (r *ListPurchasesRequest) Validate() error {
	if r.Limit == 0 {
		r.Limit = 100
	}
	if r.Limit <= 0 || r.Limit > 500 {
		return errors.New("limit must be between 1 and 500")
	}
	if r.Offset < 0 {
		return errors.New("offset must be >= 0")
	}
	return nil
}

type WebhookRequest struct {
	Provider  string
	Signature string
	Payload   []byte
}

func NewWebhookRequestFromContext(ctx echo.Context) (*WebhookRequest, error) {
	signature := strings.TrimSpace(ctx.Request().Header.Get("Stripe-Signature"))
	if signature == "" {
		signature = strings.TrimSpace(ctx.Request().Header.Get("X-Provider-Signature"))
	}

	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, err
	}

	return &WebhookRequest{
		Provider:  strings.ToLower(strings.TrimSpace(ctx.Param("provider"))),
		Signature: signature,
		Payload:   payload,
	}, nil
}

func (r *WebhookRequest) Validate() error {
	if r.Provider == "" {
		return errors.New("provider is required")
	}
	if r.Signature == "" {
		return errors.New("provider signature is required")
	}
	if len(r.Payload) == 0 {
		return errors.New("payload is required")
	}
	return nil
}
