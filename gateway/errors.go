package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/example/homecook/pkg/api"
	"github.com/example/homecook/pkg/auth"
	"github.com/gin-gonic/gin"
)

// writeError maps endpoint and auth errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	var (
		ae *auth.Error
		be *api.BackendError
	)
	switch {
	case errors.Is(err, api.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, api.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, api.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, api.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, api.ErrPaymentDeclined):
		status = http.StatusPaymentRequired
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.As(err, &be):
		status = http.StatusBadGateway
		if be.OrphanedOrderID != "" {
			status = http.StatusConflict
			body["orphaned_order_id"] = be.OrphanedOrderID
		}
	case errors.As(err, &ae):
		status = authStatus(ae.Code)
		body["code"] = string(ae.Code)
	}

	c.JSON(status, body)
}

func authStatus(code auth.Code) int {
	switch code {
	case auth.CodeInvalidInput, auth.CodeUnknownProvider:
		return http.StatusBadRequest
	case auth.CodeInvalidCredentials, auth.CodeInvalidSession:
		return http.StatusUnauthorized
	case auth.CodeEmailNotConfirmed:
		return http.StatusForbidden
	case auth.CodeEmailTaken:
		return http.StatusConflict
	}
	return http.StatusBadGateway
}
