package service

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrSessionNotFound     = errors.New("checkout session not found")
	ErrInvalidMetadata     = errors.New("checkout session metadata is invalid")
	ErrUpstreamUnavailable = errors.New("payment processor unavailable")
	ErrStorageUnavailable  = errors.New("purchase store unavailable")
	ErrPurchaseNotFound    = errors.New("purchase not found")
	ErrProviderUnsupported = errors.New("provider is not supported")
	ErrWebhookRejected     = errors.New("webhook rejected")
)
