package services_test

import (
	"encoding/json"
	"sync"
	"time"

	"kasir_pos/internal/models"
	"kasir_pos/internal/repository"
	"kasir_pos/pkg/midtrans"
)

// --- product repository ---

type mockProductRepository struct {
	mu       sync.Mutex
	products map[uint]*models.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uint]*models.Product)}
}

func (m *mockProductRepository) add(p *models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *mockProductRepository) stockOf(id uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *mockProductRepository) Create(p *models.Product) error {
	m.add(p)
	return nil
}

func (m *mockProductRepository) GetByID(id uint) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProductRepository) GetByIDs(ids []uint) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) GetAll() ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductRepository) GetActive() ([]models.Product, error) {
	all, _ := m.GetAll()
	var out []models.Product
	for _, p := range all {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) Update(p *models.Product) error {
	m.add(p)
	return nil
}

func (m *mockProductRepository) Delete(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) ReserveStock(lines []repository.StockLine) (uint, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range lines {
		p, ok := m.products[line.ProductID]
		if !ok {
			return line.ProductID, 0, repository.ErrProductNotFound
		}
		if p.Stock < line.Quantity {
			return line.ProductID, p.Stock, repository.ErrInsufficientStock
		}
	}
	for _, line := range lines {
		m.products[line.ProductID].Stock -= line.Quantity
	}
	return 0, 0, nil
}

func (m *mockProductRepository) ReleaseStock(lines []repository.StockLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range lines {
		if p, ok := m.products[line.ProductID]; ok {
			p.Stock += line.Quantity
		}
	}
	return nil
}

// --- table repository ---

type mockTableRepository struct {
	mu     sync.Mutex
	tables map[uint]*models.DiningTable
}

func newMockTableRepository() *mockTableRepository {
	return &mockTableRepository{tables: make(map[uint]*models.DiningTable)}
}

func (m *mockTableRepository) add(t *models.DiningTable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.ID] = t
}

func (m *mockTableRepository) statusOf(id uint) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[id].Status
}

func (m *mockTableRepository) Create(t *models.DiningTable) error {
	m.add(t)
	return nil
}

func (m *mockTableRepository) GetByID(id uint) (*models.DiningTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, repository.ErrTableNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockTableRepository) GetAll() ([]models.DiningTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DiningTable
	for _, t := range m.tables {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockTableRepository) Update(t *models.DiningTable) error {
	m.add(t)
	return nil
}

func (m *mockTableRepository) Delete(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, id)
	return nil
}

func (m *mockTableRepository) Claim(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return repository.ErrTableNotFound
	}
	if t.Status != string(models.TableAvailable) {
		return repository.ErrTableOccupied
	}
	t.Status = string(models.TableOccupied)
	return nil
}

func (m *mockTableRepository) Release(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok {
		return repository.ErrTableNotFound
	}
	t.Status = string(models.TableAvailable)
	return nil
}

// --- sale repository ---

type mockSaleRepository struct {
	mu     sync.Mutex
	nextID uint
	sales  map[string]*models.Sale

	// afterGet runs once after the next GetByInvoiceNumber, outside the
	// lock, so a test can stage a competing update between a read and the
	// write that follows it.
	afterGet func()
}

func newMockSaleRepository() *mockSaleRepository {
	return &mockSaleRepository{nextID: 1, sales: make(map[string]*models.Sale)}
}

func (m *mockSaleRepository) Create(sale *models.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sale.ID = m.nextID
	m.nextID++
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
	}
	copied := *sale
	m.sales[sale.InvoiceNumber] = &copied
	return nil
}

func (m *mockSaleRepository) GetByID(id uint) (*models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repository.ErrSaleNotFound
}

func (m *mockSaleRepository) GetByInvoiceNumber(invoice string) (*models.Sale, error) {
	m.mu.Lock()
	s, ok := m.sales[invoice]
	var copied models.Sale
	if ok {
		copied = *s
	}
	hook := m.afterGet
	m.afterGet = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, repository.ErrSaleNotFound
	}
	return &copied, nil
}

func (m *mockSaleRepository) GetByDateRange(start, end time.Time) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Sale
	for _, s := range m.sales {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSaleRepository) GetByCashier(cashierID uint) ([]models.Sale, error) {
	return nil, nil
}

func (m *mockSaleRepository) Update(sale *models.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *sale
	m.sales[sale.InvoiceNumber] = &copied
	return nil
}

func (m *mockSaleRepository) TransitionStatus(id uint, target string, updates map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.ID != id {
			continue
		}
		switch s.Status {
		case string(models.SalePending), string(models.SaleChallenge):
		default:
			return false, nil
		}
		s.Status = target
		for column, value := range updates {
			switch column {
			case "paid_at":
				paidAt := value.(time.Time)
				s.PaidAt = &paidAt
			case "gateway_txn_id":
				s.GatewayTxnID = value.(string)
			case "stock_committed":
				s.StockCommitted = value.(bool)
			}
		}
		return true, nil
	}
	return false, repository.ErrSaleNotFound
}

func (m *mockSaleRepository) UpdateGatewayToken(id uint, token, redirectURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.ID == id {
			s.SnapToken = token
			s.RedirectURL = redirectURL
			return nil
		}
	}
	return repository.ErrSaleNotFound
}

func (m *mockSaleRepository) Delete(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for invoice, s := range m.sales {
		if s.ID == id {
			delete(m.sales, invoice)
			return nil
		}
	}
	return repository.ErrSaleNotFound
}

func (m *mockSaleRepository) GetAll() ([]models.Sale, error) {
	return m.GetByDateRange(time.Time{}, time.Time{})
}

func (m *mockSaleRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sales)
}

// --- customer repository ---

type mockCustomerRepository struct {
	customers map[uint]*models.Customer
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{customers: make(map[uint]*models.Customer)}
}

func (m *mockCustomerRepository) Create(c *models.Customer) error {
	m.customers[c.ID] = c
	return nil
}

func (m *mockCustomerRepository) GetByID(id uint) (*models.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return c, nil
}

func (m *mockCustomerRepository) GetByPhoneNumber(phone string) (*models.Customer, error) {
	for _, c := range m.customers {
		if c.PhoneNumber == phone {
			return c, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (m *mockCustomerRepository) GetAll() ([]models.Customer, error) { return nil, nil }
func (m *mockCustomerRepository) Update(c *models.Customer) error    { return nil }
func (m *mockCustomerRepository) Delete(id uint) error               { return nil }

// --- settings repository ---

type mockSettingsRepository struct {
	settings models.StoreSettings
}

func (m *mockSettingsRepository) Get() (*models.StoreSettings, error) {
	copied := m.settings
	return &copied, nil
}

func (m *mockSettingsRepository) Update(s *models.StoreSettings) error {
	m.settings = *s
	return nil
}

// --- payment gateway ---

type mockGateway struct {
	createErr   error
	createCalls int
	lastRequest midtrans.CreateTransactionRequest
}

func (m *mockGateway) CreateTransaction(req midtrans.CreateTransactionRequest) (*midtrans.CreateTransactionResponse, error) {
	m.createCalls++
	m.lastRequest = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &midtrans.CreateTransactionResponse{
		Token:       "snap-token-123",
		RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token-123",
	}, nil
}

// ParseNotification decodes the payload without real signature math; a
// payload carrying signature_key "bad" simulates a forged notification.
func (m *mockGateway) ParseNotification(rawPayload []byte) (*midtrans.Notification, error) {
	var n midtrans.Notification
	if err := json.Unmarshal(rawPayload, &n); err != nil {
		return nil, midtrans.ErrMalformedPayload
	}
	if n.OrderID == "" || n.TransactionStatus == "" {
		return nil, midtrans.ErrMalformedPayload
	}
	if n.SignatureKey == "bad" {
		return nil, midtrans.ErrInvalidSignature
	}
	return &n, nil
}

// --- notifications ---

type mockNotifier struct {
	pendingCash    int
	pendingGateway int
	paid           int
}

func (m *mockNotifier) NotifyPendingCash(sale *models.Sale, phone string)    { m.pendingCash++ }
func (m *mockNotifier) NotifyPendingGateway(sale *models.Sale, phone string) { m.pendingGateway++ }
func (m *mockNotifier) NotifyPaid(sale *models.Sale, phone string)           { m.paid++ }

// --- webhook dedup ---

type mockDeduper struct {
	claims map[string]bool
}

func newMockDeduper() *mockDeduper {
	return &mockDeduper{claims: make(map[string]bool)}
}

func (m *mockDeduper) ClaimNotification(invoice, status string, ttl time.Duration) (bool, error) {
	key := invoice + ":" + status
	if m.claims[key] {
		return false, nil
	}
	m.claims[key] = true
	return true, nil
}

func (m *mockDeduper) ReleaseNotification(invoice, status string) error {
	delete(m.claims, invoice+":"+status)
	return nil
}
