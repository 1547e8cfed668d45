package handlers

import (
	"errors"
	"net/http"
	"time"

	"kasir_pos/internal/repository"
	"kasir_pos/internal/services"
	"kasir_pos/pkg/midtrans"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type SaleHandler struct {
	saleService services.SaleService
}

func NewSaleHandler(saleService services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

func (h *SaleHandler) SubmitSale(c *gin.Context) {
	var req services.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.saleService.ProcessSale(req)
	if err != nil {
		respondSaleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"invoice_number": result.Sale.InvoiceNumber,
		"status":         result.Sale.Status,
		"subtotal":       result.Sale.Subtotal,
		"tax_amount":     result.Sale.TaxAmount,
		"service_fee":    result.Sale.ServiceFee,
		"total":          result.Sale.Total,
		"snap_token":     result.SnapToken,
		"redirect_url":   result.RedirectURL,
	})
}

func (h *SaleHandler) ConfirmCashPayment(c *gin.Context) {
	invoice := c.Param("invoice")

	sale, err := h.saleService.ConfirmCashPayment(invoice)
	if err != nil {
		respondSaleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice_number": sale.InvoiceNumber, "status": sale.Status})
}

func (h *SaleHandler) CancelSale(c *gin.Context) {
	invoice := c.Param("invoice")

	sale, err := h.saleService.CancelSale(invoice)
	if err != nil {
		respondSaleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice_number": sale.InvoiceNumber, "status": sale.Status})
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	invoice := c.Param("invoice")

	sale, err := h.saleService.GetByInvoiceNumber(invoice)
	if err != nil {
		respondSaleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) ListSales(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.DefaultQuery("start", time.Now().Format("2006-01-02")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date"})
		return
	}
	end, err := time.Parse("2006-01-02", c.DefaultQuery("end", time.Now().Format("2006-01-02")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date"})
		return
	}

	sales, err := h.saleService.GetSalesByDateRange(start, end.Add(24*time.Hour))
	if err != nil {
		respondSaleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// respondSaleError maps the error taxonomy to HTTP responses: validation
// and business conflicts get structured 4xx messages, gateway failures get
// 502 and are retryable, everything else gets a generic 500 with an opaque
// reference for support lookup.
func respondSaleError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var stockErr *services.InsufficientStockError
	var tableErr *services.TableOccupiedError
	var gatewayErr *midtrans.GatewayError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      "insufficient stock",
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.As(err, &tableErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":    "table already occupied",
			"table_id": tableErr.TableID,
		})
	case errors.Is(err, services.ErrSaleNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": "sale is not pending"})
	case errors.Is(err, repository.ErrSaleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
	case errors.Is(err, repository.ErrTableNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
	case errors.As(err, &gatewayErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "payment gateway unavailable, please retry",
			"retryable": true,
		})
	default:
		ref := uuid.NewString()
		logrus.WithField("ref", ref).WithError(err).Error("sale request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "internal error",
			"reference": ref,
		})
	}
}
