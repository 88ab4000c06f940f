package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/locale"
	"github.com/flicky/storefront-api/internal/logging"
	"github.com/flicky/storefront-api/internal/payment"
	"github.com/flicky/storefront-api/internal/service"
)

// statusFor maps a service error to an HTTP status. Orders and cart lines
// the caller does not own are reported as missing, never as forbidden.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrCartItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrStripeDisabled),
		errors.Is(err, service.ErrOrderIDRequired),
		errors.Is(err, service.ErrPaymentIntentIDRequired),
		errors.Is(err, service.ErrOrderAlreadyPaid),
		errors.Is(err, payment.ErrProcessor),
		errors.Is(err, payment.ErrInvalidWebhook):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func requestLocale(c *gin.Context) locale.Locale {
	return locale.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
}
