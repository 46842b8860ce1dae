package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	discountdomain "github.com/dwikikusuma/storefront/internal/discount/domain"
)

// httpStatusFromError maps a service error to (status, code, client message).
func httpStatusFromError(err error) (int, string, string) {
	var de *discountdomain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case discountdomain.KindInput:
			return http.StatusBadRequest, "INVALID_ARGUMENT", de.Reason
		case discountdomain.KindRejected:
			return http.StatusUnprocessableEntity, "DISCOUNT_REJECTED", de.Reason
		default:
			return http.StatusBadGateway, "UNAVAILABLE", de.Reason
		}
	}

	switch {
	case errors.Is(err, cartdomain.ErrInvalidInput),
		errors.Is(err, cartdomain.ErrInvalidQuantity),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, checkoutapp.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()
	case errors.Is(err, cartdomain.ErrItemNotFound),
		errors.Is(err, catalogapp.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, cartdomain.ErrOutOfStock),
		errors.Is(err, checkoutapp.ErrEmptyCart):
		return http.StatusConflict, "FAILED_PRECONDITION", err.Error()
	case errors.Is(err, checkoutapp.ErrPaymentRejected):
		return http.StatusPaymentRequired, "PAYMENT_REJECTED", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "UNAVAILABLE", "upstream timed out"
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

// errorResponder renders the last error a handler recorded with c.Error.
func errorResponder(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		if last.IsType(gin.ErrorTypeBind) {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ARGUMENT", "error": last.Error()})
			return
		}

		status, code, msg := httpStatusFromError(last.Err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", slog.String("route", c.FullPath()), slog.Any("err", last.Err))
		}
		c.JSON(status, gin.H{"code": code, "error": msg})
	}
}
