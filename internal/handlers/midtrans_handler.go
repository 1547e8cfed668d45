package handlers

import (
	"errors"
	"io"
	"net/http"

	"kasir_pos/internal/repository"
	"kasir_pos/internal/services"
	"kasir_pos/pkg/midtrans"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MidtransHandler struct {
	saleService services.SaleService
}

func NewMidtransHandler(saleService services.SaleService) *MidtransHandler {
	return &MidtransHandler{saleService: saleService}
}

// HandleNotification receives the gateway's payment notification webhook.
// Signature failures are security events and get a 403 with no state
// change; an unknown order is acknowledged with 200 so the gateway stops
// redelivering it.
func (h *MidtransHandler) HandleNotification(c *gin.Context) {
	rawPayload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	err = h.saleService.HandleGatewayCallback(rawPayload)
	if err != nil {
		switch {
		case errors.Is(err, midtrans.ErrInvalidSignature):
			logrus.WithField("remote_addr", c.ClientIP()).
				Warn("gateway notification with invalid signature rejected")
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
		case errors.Is(err, midtrans.ErrMalformedPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		case errors.Is(err, repository.ErrSaleNotFound):
			logrus.Warn("gateway notification for unknown order acknowledged")
			c.JSON(http.StatusOK, gin.H{"status": "unknown order"})
		default:
			logrus.WithError(err).Error("failed to process gateway notification")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
