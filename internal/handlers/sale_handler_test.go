package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kasir_pos/internal/handlers"
	"kasir_pos/internal/repository"
	"kasir_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSaleRouter(svc services.SaleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := handlers.NewSaleHandler(svc)
	router.POST("/api/sales", handler.SubmitSale)
	router.GET("/api/sales", handler.ListSales)
	return router
}

func TestSubmitSale_UnknownTable(t *testing.T) {
	svc := &stubSaleService{processErr: repository.ErrTableNotFound}
	router := newSaleRouter(svc)

	body := `{"cashier_id":1,"items":[{"product_id":1,"quantity":1}],"payment_method":"cash","order_type":"dine_in","table_id":99}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "table not found")
}

func TestListSales_DayRangeExclusiveUpperBound(t *testing.T) {
	svc := &stubSaleService{}
	router := newSaleRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/sales?start=2026-08-01&end=2026-08-02", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	// The repository treats the upper bound as exclusive, so a day range
	// ends at the midnight after the requested end date and a sale created
	// exactly then is not included.
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), svc.listStart)
	assert.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), svc.listEnd)
}
