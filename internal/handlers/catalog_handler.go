package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"kasir_pos/internal/models"
	"kasir_pos/internal/repository"
	"kasir_pos/internal/services"

	"github.com/gin-gonic/gin"
)

// CatalogHandler is the back-office boundary: product and table management
// plus settings. Sale-time stock mutation never goes through here.
type CatalogHandler struct {
	productRepo     repository.ProductRepository
	tableService    services.TableService
	settingsService services.SettingsService
}

func NewCatalogHandler(
	productRepo repository.ProductRepository,
	tableService services.TableService,
	settingsService services.SettingsService,
) *CatalogHandler {
	return &CatalogHandler{
		productRepo:     productRepo,
		tableService:    tableService,
		settingsService: settingsService,
	}
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.productRepo.GetActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if product.Name == "" || product.UnitPrice < 0 || product.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product"})
		return
	}
	if err := h.productRepo.Create(&product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	product, err := h.productRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	if err := c.ShouldBindJSON(product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	product.ID = uint(id)

	if err := h.productRepo.Update(product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) ListTables(c *gin.Context) {
	tables, err := h.tableService.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tables"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (h *CatalogHandler) CreateTable(c *gin.Context) {
	var table models.DiningTable
	if err := c.ShouldBindJSON(&table); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	table.Status = string(models.TableAvailable)
	if err := h.tableService.Create(&table); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
		return
	}
	c.JSON(http.StatusCreated, table)
}

// ReleaseTable lets staff free a table manually, e.g. after a walk-out.
func (h *CatalogHandler) ReleaseTable(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid table id"})
		return
	}
	if err := h.tableService.Release(uint(id)); err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release table"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "released"})
}

func (h *CatalogHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *CatalogHandler) UpdateSettings(c *gin.Context) {
	var settings models.StoreSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if settings.TaxPercent < 0 || settings.TaxPercent > 100 || settings.ServiceFee < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings"})
		return
	}

	current, err := h.settingsService.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	current.TaxPercent = settings.TaxPercent
	current.ServiceFee = settings.ServiceFee

	if err := h.settingsService.Update(current); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, current)
}
