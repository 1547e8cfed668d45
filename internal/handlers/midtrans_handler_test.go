package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kasir_pos/internal/handlers"
	"kasir_pos/internal/models"
	"kasir_pos/internal/repository"
	"kasir_pos/internal/services"
	"kasir_pos/pkg/midtrans"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubSaleService struct {
	callbackErr error
	lastPayload []byte
	processErr  error
	listStart   time.Time
	listEnd     time.Time
}

func (s *stubSaleService) ProcessSale(req services.SaleRequest) (*services.SaleResult, error) {
	if s.processErr != nil {
		return nil, s.processErr
	}
	return &services.SaleResult{Sale: &models.Sale{}}, nil
}
func (s *stubSaleService) ConfirmCashPayment(invoice string) (*models.Sale, error) { return nil, nil }
func (s *stubSaleService) CancelSale(invoice string) (*models.Sale, error)         { return nil, nil }
func (s *stubSaleService) HandleGatewayCallback(rawPayload []byte) error {
	s.lastPayload = rawPayload
	return s.callbackErr
}
func (s *stubSaleService) GetByInvoiceNumber(invoice string) (*models.Sale, error) { return nil, nil }
func (s *stubSaleService) GetSalesByDateRange(start, end time.Time) ([]models.Sale, error) {
	s.listStart = start
	s.listEnd = end
	return nil, nil
}

func postNotification(t *testing.T, svc services.SaleService, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler := handlers.NewMidtransHandler(svc)
	router.POST("/api/payments/midtrans/notification", handler.HandleNotification)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/payments/midtrans/notification", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)
	return w
}

func TestHandleNotification_OK(t *testing.T) {
	svc := &stubSaleService{}
	w := postNotification(t, svc, `{"order_id":"INV1","transaction_status":"settlement"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, svc.lastPayload)
}

func TestHandleNotification_InvalidSignature(t *testing.T) {
	svc := &stubSaleService{callbackErr: midtrans.ErrInvalidSignature}
	w := postNotification(t, svc, `{"order_id":"INV1"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandleNotification_MalformedPayload(t *testing.T) {
	svc := &stubSaleService{callbackErr: midtrans.ErrMalformedPayload}
	w := postNotification(t, svc, `not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleNotification_UnknownOrderAcknowledged(t *testing.T) {
	// 200 so the gateway stops redelivering a notification we can never match.
	svc := &stubSaleService{callbackErr: repository.ErrSaleNotFound}
	w := postNotification(t, svc, `{"order_id":"INV-GONE","transaction_status":"settlement"}`)

	assert.Equal(t, http.StatusOK, w.Code)
}
