package delivery

import (
	"errors"
	"net/http"

	"shop_service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto the failure envelope. Errors outside the domain
// taxonomy are logged and answered with fallback.
func writeError(c *gin.Context, log logrus.FieldLogger, err error, fallback string) {
	kind := domain.KindOf(err)
	status := statusFor(kind)

	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		log.Warnf("Handler Error: %v (requested %d, available %d)", err, stockErr.Requested, stockErr.Available)
		FailResponse(c, status, stockErr.Error())
		return
	}

	var domainErr *domain.Error
	if errors.As(err, &domainErr) && kind != domain.KindUnknown {
		if status >= http.StatusInternalServerError {
			log.Errorf("Handler Error: %v", err)
		} else {
			log.Warnf("Handler Error: Mapped %s error '%s' to HTTP Status %d", kind, domainErr.Message, status)
		}
		FailResponse(c, status, domainErr.Message, domainErr.Fields...)
		return
	}

	log.Errorf("Handler Error: Unexpected error: %v", err)
	FailResponse(c, http.StatusInternalServerError, fallback)
}
