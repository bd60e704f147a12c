package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-purchases/app/factory"
	"github.com/vibast-solutions/ms-go-purchases/app/mapper"
	"github.com/vibast-solutions/ms-go-purchases/app/repository"
	"github.com/vibast-solutions/ms-go-purchases/app/service"
	"github.com/vibast-solutions/ms-go-purchases/app/types"
)

type FulfillmentController struct {
	fulfillmentService *service.FulfillmentService
	logger             logrus.FieldLogger
}

func NewFulfillmentController(fulfillmentService *service.FulfillmentService) *FulfillmentController {
	return &FulfillmentController{
		fulfillmentService: fulfillmentService,
		logger:             factory.NewModuleLogger("purchases-controller"),
	}
}

func (c *FulfillmentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// HandleProviderWebhook is completion path A. The processor retries
// deliveries, so transient failures answer 5xx to provoke a retry, while
// signature failures and permanently bad sessions answer 4xx to stop it.
func (c *FulfillmentController) HandleProviderWebhook(ctx echo.Context) error {
	req, err := types.NewWebhookRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.fulfillmentService.HandleWebhook(ctx.Request().Context(), req.Provider, req.Payload, req.Signature)
	if err != nil {
		logger := factory.LoggerWithContext(c.logger, ctx)
		switch {
		case errors.Is(err, service.ErrWebhookRejected), errors.Is(err, service.ErrProviderUnsupported):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidMetadata), errors.Is(err, service.ErrSessionNotFound):
			logger.WithError(err).Error("Webhook fulfillment failed permanently")
			return c.writeError(ctx, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrUpstreamUnavailable), errors.Is(err, service.ErrStorageUnavailable):
			logger.WithError(err).Warn("Webhook fulfillment failed transiently")
			return c.writeError(ctx, http.StatusServiceUnavailable, err.Error())
		default:
			logger.WithError(err).Error("Handle provider webhook failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	if result == nil {
		return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Event ignored"})
	}
	if result.Outcome == service.OutcomeDeferred {
		return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Session not paid yet"})
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Purchase fulfilled"})
}

// ConfirmCheckout is completion path B: the buyer's browser lands back from
// the processor redirect carrying the session identifier and asks for the
// purchase to be finalized. Racing the webhook is expected and safe.
func (c *FulfillmentController) ConfirmCheckout(ctx echo.Context) error {
	req, err := types.NewConfirmCheckoutRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.fulfillmentService.Fulfill(ctx.Request().Context(), req.Provider, req.SessionId)
	if err != nil {
		logger := factory.LoggerWithContext(c.logger, ctx)
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrProviderUnsupported):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSessionNotFound):
			return c.writeError(ctx, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidMetadata):
			logger.WithError(err).Error("Checkout confirmation failed permanently")
			return c.writeError(ctx, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrUpstreamUnavailable), errors.Is(err, service.ErrStorageUnavailable):
			logger.WithError(err).Warn("Checkout confirmation failed transiently")
			return c.writeError(ctx, http.StatusServiceUnavailable, err.Error())
		default:
			logger.WithError(err).Error("Confirm checkout failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	if result.Outcome == service.OutcomeDeferred {
		// Not an error: the client is expected to poll until settlement.
		return ctx.JSON(http.StatusAccepted, &types.ConfirmCheckoutResponse{
			Success: false,
			Status:  "processing",
		})
	}

	return ctx.JSON(http.StatusOK, &types.ConfirmCheckoutResponse{
		Success:       true,
		Status:        string(result.Outcome),
		PurchaseId:    result.Purchase.ID,
		AlreadyExists: result.Outcome == service.OutcomeAlreadyExists,
	})
}

func (c *FulfillmentController) GetPurchase(ctx echo.Context) error {
	req, err := types.NewGetPurchaseRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	purchase, items, err := c.fulfillmentService.GetPurchase(ctx.Request().Context(), req.Id)
	if err != nil {
		if errors.Is(err, service.ErrPurchaseNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "purchase not found")
		}
		c.logger.WithError(err).Error("Get purchase failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.PurchaseEnvelopeResponse{Purchase: mapper.PurchaseToResponse(purchase, items)})
}

func (c *FulfillmentController) ListPurchases(ctx echo.Context) error {
	req, err := types.NewListPurchasesRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.fulfillmentService.ListPurchases(ctx.Request().Context(), repository.PurchaseFilter{
		EventID:        req.EventId,
		PhotographerID: req.PhotographerId,
		BuyerID:        req.BuyerId,
		Limit:          req.Limit,
		Offset:         req.Offset,
	})
	if err != nil {
		c.logger.WithError(err).Error("List purchases failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ListPurchasesResponse{Purchases: mapper.PurchasesToResponse(items)})
}

func (c *FulfillmentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
