package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kasir_pos/internal/models"
	"kasir_pos/internal/repository"
	"kasir_pos/pkg/midtrans"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PaymentGateway is the narrow interface over the payment provider.
// *midtrans.Client satisfies it.
type PaymentGateway interface {
	CreateTransaction(req midtrans.CreateTransactionRequest) (*midtrans.CreateTransactionResponse, error)
	ParseNotification(rawPayload []byte) (*midtrans.Notification, error)
}

// NotificationDeduper short-circuits redelivered webhooks. The sale status
// guard below remains the source of truth; this only avoids repeated work.
type NotificationDeduper interface {
	ClaimNotification(invoiceNumber, transactionStatus string, ttl time.Duration) (bool, error)
	ReleaseNotification(invoiceNumber, transactionStatus string) error
}

// GatewayFailurePolicy controls what happens to the persisted sale row when
// the gateway create call fails after stock and table were already reserved.
type GatewayFailurePolicy string

const (
	// FailurePolicyCancel keeps the row as cancelled for audit (default).
	FailurePolicyCancel GatewayFailurePolicy = "cancel"
	// FailurePolicyDelete removes the row entirely.
	FailurePolicyDelete GatewayFailurePolicy = "delete"
)

type SaleItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type SaleRequest struct {
	CashierID     uint                 `json:"cashier_id"`
	Items         []SaleItemRequest    `json:"items"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	OrderType     models.OrderType     `json:"order_type"`
	CustomerID    *uint                `json:"customer_id"`
	TableID       *uint                `json:"table_id"`
}

type SaleResult struct {
	Sale        *models.Sale `json:"sale"`
	SnapToken   string       `json:"snap_token,omitempty"`
	RedirectURL string       `json:"redirect_url,omitempty"`
}

type SaleService interface {
	// ProcessSale runs the whole sale attempt: validate, reserve stock,
	// price, claim table, persist, and branch on payment method. Any
	// failure after the first reservation rolls every mutation back.
	ProcessSale(req SaleRequest) (*SaleResult, error)
	// ConfirmCashPayment settles a pending cash sale at the register.
	ConfirmCashPayment(invoiceNumber string) (*models.Sale, error)
	// CancelSale cancels a pending sale, restocking and freeing the table.
	CancelSale(invoiceNumber string) (*models.Sale, error)
	// HandleGatewayCallback reconciles a gateway webhook into sale state.
	HandleGatewayCallback(rawPayload []byte) error
	GetByInvoiceNumber(invoiceNumber string) (*models.Sale, error)
	GetSalesByDateRange(startDate, endDate time.Time) ([]models.Sale, error)
}

type saleService struct {
	saleRepo      repository.SaleRepository
	productRepo   repository.ProductRepository
	customerRepo  repository.CustomerRepository
	inventory     InventoryService
	tables        TableService
	settings      SettingsService
	gateway       PaymentGateway
	notifier      NotificationService
	deduper       NotificationDeduper
	failurePolicy GatewayFailurePolicy
	finishURL     string
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	inventory InventoryService,
	tables TableService,
	settings SettingsService,
	gateway PaymentGateway,
	notifier NotificationService,
	deduper NotificationDeduper,
	failurePolicy GatewayFailurePolicy,
	finishURL string,
) SaleService {
	if failurePolicy == "" {
		failurePolicy = FailurePolicyCancel
	}
	return &saleService{
		saleRepo:      saleRepo,
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		inventory:     inventory,
		tables:        tables,
		settings:      settings,
		gateway:       gateway,
		notifier:      notifier,
		deduper:       deduper,
		failurePolicy: failurePolicy,
		finishURL:     finishURL,
	}
}

func generateInvoiceNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV%s%s", time.Now().Format("20060102"), suffix)
}

func (s *saleService) ProcessSale(req SaleRequest) (*SaleResult, error) {
	// Step 1: validation, no side effects yet.
	products, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	stockLines := make([]repository.StockLine, 0, len(req.Items))
	for _, item := range req.Items {
		stockLines = append(stockLines, repository.StockLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	// Step 2: all-or-nothing stock reservation.
	if err := s.inventory.ReserveAll(stockLines); err != nil {
		return nil, err
	}

	// Step 3: price with the current settings snapshot.
	snapshot, err := s.settings.Snapshot()
	if err != nil {
		s.rollbackStock(stockLines)
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	applyServiceFee := req.OrderType == models.OrderDineIn
	priceLines := make([]PriceLine, 0, len(req.Items))
	for _, item := range req.Items {
		product := products[item.ProductID]
		priceLines = append(priceLines, PriceLine{
			UnitPrice: product.EffectiveUnitPrice(),
			UnitCost:  product.UnitCost,
			Quantity:  item.Quantity,
		})
	}
	totals := ComputeTotals(priceLines, snapshot.TaxPercent, snapshot.ServiceFee, applyServiceFee)

	// Step 4: claim the table for dine-in orders.
	tableClaimed := false
	if req.OrderType == models.OrderDineIn && req.TableID != nil {
		if err := s.tables.Claim(*req.TableID); err != nil {
			s.rollbackStock(stockLines)
			return nil, err
		}
		tableClaimed = true
	}

	// Step 5: persist the sale and its items atomically. Stock is held
	// from this point for both payment paths; cancellation or expiry
	// restocks exactly once, guarded by StockCommitted.
	sale := &models.Sale{
		InvoiceNumber:  generateInvoiceNumber(),
		CashierID:      req.CashierID,
		CustomerID:     req.CustomerID,
		PaymentMethod:  string(req.PaymentMethod),
		OrderType:      string(req.OrderType),
		Status:         string(models.SalePending),
		Subtotal:       totals.Subtotal,
		TaxPercent:     snapshot.TaxPercent,
		TaxAmount:      totals.TaxAmount,
		ServiceFee:     totals.ServiceFee,
		Total:          totals.Total,
		Profit:         totals.Profit,
		StockCommitted: true,
	}
	if tableClaimed {
		sale.TableID = req.TableID
	}
	for i, item := range req.Items {
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: priceLines[i].UnitPrice,
			UnitCost:  priceLines[i].UnitCost,
			Subtotal:  priceLines[i].UnitPrice * float64(item.Quantity),
		})
	}

	if err := s.saleRepo.Create(sale); err != nil {
		s.rollbackTable(sale)
		s.rollbackStock(stockLines)
		return nil, fmt.Errorf("failed to persist sale: %w", err)
	}

	// Step 6: branch on payment method.
	switch req.PaymentMethod {
	case models.PaymentCash:
		s.notify(sale, func(phone string) { s.notifier.NotifyPendingCash(sale, phone) })
		return &SaleResult{Sale: sale}, nil
	case models.PaymentGateway:
		return s.createGatewayTransaction(sale, stockLines)
	default:
		// validate() already rejected anything else
		return nil, newValidationError("unsupported payment method %q", req.PaymentMethod)
	}
}

func (s *saleService) validate(req SaleRequest) (map[uint]*models.Product, error) {
	if len(req.Items) == 0 {
		return nil, &ValidationError{Message: ErrEmptyCart.Error()}
	}
	switch req.PaymentMethod {
	case models.PaymentCash, models.PaymentGateway:
	default:
		return nil, newValidationError("unsupported payment method %q", req.PaymentMethod)
	}
	switch req.OrderType {
	case models.OrderDineIn, models.OrderTakeAway, models.OrderDelivery:
	default:
		return nil, newValidationError("unsupported order type %q", req.OrderType)
	}

	seen := make(map[uint]bool, len(req.Items))
	ids := make([]uint, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, newValidationError("quantity for product %d must be positive", item.ProductID)
		}
		if seen[item.ProductID] {
			return nil, newValidationError("product %d appears more than once in the cart", item.ProductID)
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	found, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	products := make(map[uint]*models.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			return nil, newValidationError("product %d not found", id)
		}
		if !product.IsActive {
			return nil, newValidationError("product %q is not available", product.Name)
		}
	}
	return products, nil
}

func (s *saleService) createGatewayTransaction(sale *models.Sale, stockLines []repository.StockLine) (*SaleResult, error) {
	customer := s.lookupCustomer(sale)

	items := make([]midtrans.ItemDetail, 0, len(sale.Items)+2)
	for _, item := range sale.Items {
		items = append(items, midtrans.ItemDetail{
			ID:       fmt.Sprintf("P-%d", item.ProductID),
			Name:     fmt.Sprintf("Produk %d", item.ProductID),
			Price:    int64(item.UnitPrice),
			Quantity: item.Quantity,
		})
	}
	// Tax and service fee go in as separate line items.
	if sale.TaxAmount > 0 {
		items = append(items, midtrans.ItemDetail{
			ID: "TAX", Name: "Pajak", Price: int64(sale.TaxAmount), Quantity: 1,
		})
	}
	if sale.ServiceFee > 0 {
		items = append(items, midtrans.ItemDetail{
			ID: "FEE", Name: "Biaya layanan", Price: int64(sale.ServiceFee), Quantity: 1,
		})
	}

	// Midtrans rejects payloads where gross_amount differs from the item
	// sum, so the gross is derived from the breakdown itself.
	var gross int64
	for _, item := range items {
		gross += item.Price * int64(item.Quantity)
	}

	gatewayReq := midtrans.CreateTransactionRequest{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:     sale.InvoiceNumber,
			GrossAmount: gross,
		},
		ItemDetails: items,
	}
	if customer != nil {
		gatewayReq.CustomerDetails = &midtrans.CustomerDetails{
			FirstName: customer.Name,
			Email:     customer.Email,
			Phone:     customer.PhoneNumber,
		}
	}
	if s.finishURL != "" {
		gatewayReq.Callbacks = &midtrans.Callbacks{Finish: s.finishURL}
	}

	resp, err := s.gateway.CreateTransaction(gatewayReq)
	if err != nil {
		s.rollbackGatewayFailure(sale, stockLines)
		return nil, fmt.Errorf("payment gateway rejected transaction: %w", err)
	}

	sale.SnapToken = resp.Token
	sale.RedirectURL = resp.RedirectURL
	if err := s.saleRepo.UpdateGatewayToken(sale.ID, resp.Token, resp.RedirectURL); err != nil {
		return nil, fmt.Errorf("failed to store gateway token: %w", err)
	}

	s.notify(sale, func(phone string) { s.notifier.NotifyPendingGateway(sale, phone) })
	return &SaleResult{Sale: sale, SnapToken: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// rollbackGatewayFailure undoes the whole attempt after a failed gateway
// call: table freed, stock restored, and the sale row either kept as
// cancelled for audit or deleted, per the configured policy.
func (s *saleService) rollbackGatewayFailure(sale *models.Sale, stockLines []repository.StockLine) {
	s.rollbackTable(sale)
	s.rollbackStock(stockLines)

	switch s.failurePolicy {
	case FailurePolicyDelete:
		if err := s.saleRepo.Delete(sale.ID); err != nil {
			logrus.WithField("invoice", sale.InvoiceNumber).WithError(err).
				Error("failed to delete sale after gateway failure")
		}
	default:
		sale.Status = string(models.SaleCancelled)
		sale.StockCommitted = false
		if _, err := s.saleRepo.TransitionStatus(sale.ID, string(models.SaleCancelled),
			map[string]interface{}{"stock_committed": false}); err != nil {
			logrus.WithField("invoice", sale.InvoiceNumber).WithError(err).
				Error("failed to cancel sale after gateway failure")
		}
	}
}

func (s *saleService) rollbackStock(stockLines []repository.StockLine) {
	if err := s.inventory.ReleaseAll(stockLines); err != nil {
		logrus.WithError(err).Error("failed to release reserved stock during rollback")
	}
}

func (s *saleService) rollbackTable(sale *models.Sale) {
	if sale.TableID == nil {
		return
	}
	if err := s.tables.Release(*sale.TableID); err != nil {
		logrus.WithFields(logrus.Fields{
			"invoice": sale.InvoiceNumber,
			"table":   *sale.TableID,
		}).WithError(err).Error("failed to release table during rollback")
	}
}

func (s *saleService) ConfirmCashPayment(invoiceNumber string) (*models.Sale, error) {
	sale, err := s.saleRepo.GetByInvoiceNumber(invoiceNumber)
	if err != nil {
		return nil, err
	}
	if sale.Status != string(models.SalePending) {
		return nil, ErrSaleNotPending
	}
	if sale.PaymentMethod != string(models.PaymentCash) {
		return nil, newValidationError("sale %s is not a cash sale", invoiceNumber)
	}

	now := time.Now()
	applied, err := s.saleRepo.TransitionStatus(sale.ID, string(models.SalePaid),
		map[string]interface{}{"paid_at": now})
	if err != nil {
		return nil, fmt.Errorf("failed to settle sale: %w", err)
	}
	if !applied {
		return nil, ErrSaleNotPending
	}
	sale.Status = string(models.SalePaid)
	sale.PaidAt = &now

	s.releaseTableAfterSettlement(sale)
	s.notify(sale, func(phone string) { s.notifier.NotifyPaid(sale, phone) })
	return sale, nil
}

func (s *saleService) CancelSale(invoiceNumber string) (*models.Sale, error) {
	sale, err := s.saleRepo.GetByInvoiceNumber(invoiceNumber)
	if err != nil {
		return nil, err
	}
	if sale.Status != string(models.SalePending) {
		return nil, ErrSaleNotPending
	}
	applied, err := s.applyTerminalState(sale, models.SaleCancelled)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrSaleNotPending
	}
	return sale, nil
}

func (s *saleService) HandleGatewayCallback(rawPayload []byte) error {
	notification, err := s.gateway.ParseNotification(rawPayload)
	if err != nil {
		return err
	}

	// Fast-path dedup of redelivered notifications.
	if s.deduper != nil {
		fresh, err := s.deduper.ClaimNotification(notification.OrderID, notification.TransactionStatus, 24*time.Hour)
		if err != nil {
			logrus.WithError(err).Warn("notification dedup unavailable, continuing with status guard")
		} else if !fresh {
			logrus.WithFields(logrus.Fields{
				"invoice": notification.OrderID,
				"status":  notification.TransactionStatus,
			}).Info("duplicate gateway notification ignored")
			return nil
		}
	}

	if err := s.reconcile(notification); err != nil {
		// Free the dedup claim so a gateway retry can reprocess.
		if s.deduper != nil {
			if derr := s.deduper.ReleaseNotification(notification.OrderID, notification.TransactionStatus); derr != nil {
				logrus.WithError(derr).Warn("failed to release notification dedup claim")
			}
		}
		return err
	}
	return nil
}

func (s *saleService) reconcile(n *midtrans.Notification) error {
	sale, err := s.saleRepo.GetByInvoiceNumber(n.OrderID)
	if err != nil {
		return err
	}

	target := midtrans.MapStatus(n.TransactionStatus, n.FraudStatus)
	log := logrus.WithFields(logrus.Fields{
		"invoice": sale.InvoiceNumber,
		"from":    sale.Status,
		"to":      string(target),
	})

	// Fast path for redelivered webhooks. The conditional transitions
	// below are the real guard: two deliveries with different statuses
	// both pass this read, but only one can move the row.
	if models.SaleStatus(sale.Status).IsTerminal() {
		log.Info("gateway notification for settled sale ignored")
		return nil
	}

	switch target {
	case midtrans.StatePaid:
		now := time.Now()
		applied, err := s.saleRepo.TransitionStatus(sale.ID, string(models.SalePaid),
			map[string]interface{}{
				"paid_at":        now,
				"gateway_txn_id": n.TransactionID,
			})
		if err != nil {
			return fmt.Errorf("failed to mark sale paid: %w", err)
		}
		if !applied {
			log.Info("sale already settled, notification ignored")
			return nil
		}
		sale.Status = string(models.SalePaid)
		sale.PaidAt = &now
		sale.GatewayTxnID = n.TransactionID
		s.releaseTableAfterSettlement(sale)
		s.notify(sale, func(phone string) { s.notifier.NotifyPaid(sale, phone) })
		log.Info("sale settled by gateway")
		return nil

	case midtrans.StateChallenge:
		applied, err := s.saleRepo.TransitionStatus(sale.ID, string(models.SaleChallenge),
			map[string]interface{}{"gateway_txn_id": n.TransactionID})
		if err != nil {
			return fmt.Errorf("failed to mark sale challenged: %w", err)
		}
		if applied {
			log.Warn("gateway flagged sale for fraud review")
		}
		return nil

	case midtrans.StateCancelled:
		_, err := s.applyTerminalState(sale, models.SaleCancelled)
		return err

	case midtrans.StateExpired:
		_, err := s.applyTerminalState(sale, models.SaleExpired)
		return err

	case midtrans.StatePending:
		return nil

	default:
		log.WithField("gateway_status", n.TransactionStatus).Warn("unknown gateway transaction state")
		return nil
	}
}

// applyTerminalState moves a live sale to cancelled/expired. The
// conditional transition is the commit point: exactly one caller can move
// the row out of a live status, so the restock below runs at most once and
// never against a sale another delivery already settled.
func (s *saleService) applyTerminalState(sale *models.Sale, target models.SaleStatus) (bool, error) {
	restock := sale.StockCommitted

	applied, err := s.saleRepo.TransitionStatus(sale.ID, string(target),
		map[string]interface{}{"stock_committed": false})
	if err != nil {
		return false, fmt.Errorf("failed to update sale status: %w", err)
	}
	if !applied {
		return false, nil
	}
	sale.Status = string(target)
	sale.StockCommitted = false

	if restock {
		lines := make([]repository.StockLine, 0, len(sale.Items))
		for _, item := range sale.Items {
			lines = append(lines, repository.StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		if err := s.inventory.ReleaseAll(lines); err != nil {
			logrus.WithField("invoice", sale.InvoiceNumber).WithError(err).
				Error("failed to restock after cancellation")
		}
	}
	s.releaseTableAfterSettlement(sale)
	return true, nil
}

func (s *saleService) releaseTableAfterSettlement(sale *models.Sale) {
	if sale.TableID == nil {
		return
	}
	if err := s.tables.Release(*sale.TableID); err != nil {
		logrus.WithFields(logrus.Fields{
			"invoice": sale.InvoiceNumber,
			"table":   *sale.TableID,
		}).WithError(err).Error("failed to release table after settlement")
	}
}

func (s *saleService) lookupCustomer(sale *models.Sale) *models.Customer {
	if sale.CustomerID == nil {
		return nil
	}
	customer, err := s.customerRepo.GetByID(*sale.CustomerID)
	if err != nil {
		if !errors.Is(err, repository.ErrCustomerNotFound) {
			logrus.WithError(err).Warn("failed to load customer")
		}
		return nil
	}
	return customer
}

func (s *saleService) notify(sale *models.Sale, send func(phone string)) {
	customer := s.lookupCustomer(sale)
	if customer == nil || customer.PhoneNumber == "" {
		return
	}
	send(customer.PhoneNumber)
}

func (s *saleService) GetByInvoiceNumber(invoiceNumber string) (*models.Sale, error) {
	return s.saleRepo.GetByInvoiceNumber(invoiceNumber)
}

func (s *saleService) GetSalesByDateRange(startDate, endDate time.Time) ([]models.Sale, error) {
	return s.saleRepo.GetByDateRange(startDate, endDate)
}
