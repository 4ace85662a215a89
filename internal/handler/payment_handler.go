package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/eventhub/booking-platform/internal/dto"
	"github.com/eventhub/booking-platform/internal/service"
	"github.com/labstack/echo/v4"
)

// signatureHeader carries the gateway's webhook signature.
const signatureHeader = "Stripe-Signature"

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/bookings/:id/pay", h.PayBooking)
	e.POST("/api/v1/book-and-pay", h.BookAndPay)
	e.GET("/api/v1/payments/:id", h.GetPayment)
	e.POST("/api/v1/payments/:transaction_id/confirm", h.ConfirmPayment)
	e.POST("/api/v1/payments/:transaction_id/cancel", h.CancelPayment)
	e.POST("/webhooks/payment", h.HandleWebhook)
}

func (h *PaymentHandler) PayBooking(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	result, err := h.svc.CreateIntent(c.Request().Context(), uint(bookingID))
	if err != nil {
		return paymentErrorToHTTP(err)
	}

	return c.JSON(http.StatusCreated, dto.ToPaymentIntentResponse(result))
}

func (h *PaymentHandler) BookAndPay(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EventID == 0 || req.UserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id and user_id are required")
	}

	result, err := h.svc.BookAndPay(c.Request().Context(), req.ToInput())
	if err != nil {
		return paymentErrorToHTTP(err)
	}

	return c.JSON(http.StatusCreated, dto.ToPaymentIntentResponse(result))
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment id")
	}

	payment, err := h.svc.GetPayment(c.Request().Context(), uint(id))
	if err != nil {
		return paymentErrorToHTTP(err)
	}

	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *PaymentHandler) ConfirmPayment(c echo.Context) error {
	payment, err := h.svc.ConfirmPayment(c.Request().Context(), c.Param("transaction_id"))
	if err != nil {
		return paymentErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

func (h *PaymentHandler) CancelPayment(c echo.Context) error {
	payment, err := h.svc.CancelPayment(c.Request().Context(), c.Param("transaction_id"))
	if err != nil {
		return paymentErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// HandleWebhook passes the raw body through: the gateway verifies the
// signature against the exact bytes the provider signed.
func (h *PaymentHandler) HandleWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	signature := c.Request().Header.Get(signatureHeader)
	if signature == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing signature header")
	}

	if err := h.svc.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		return paymentErrorToHTTP(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

func paymentErrorToHTTP(err error) error {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInsufficientTickets):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrVersionConflict),
		errors.Is(err, service.ErrBookingConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrGateway):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
