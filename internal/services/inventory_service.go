package services

import (
	"errors"
	"kasir_pos/internal/repository"
)

// InventoryService is the only path through which product stock is mutated,
// so the locking discipline stays in one place.
type InventoryService interface {
	// ReserveAll decrements stock for all lines or none of them. On a
	// shortage it returns *InsufficientStockError naming the failing
	// product and the quantity still available.
	ReserveAll(lines []repository.StockLine) error
	// ReleaseAll is the compensating increment for a prior ReserveAll.
	// Call at most once per reservation being undone.
	ReleaseAll(lines []repository.StockLine) error
}

type inventoryService struct {
	productRepo repository.ProductRepository
}

func NewInventoryService(productRepo repository.ProductRepository) InventoryService {
	return &inventoryService{productRepo: productRepo}
}

func (s *inventoryService) ReserveAll(lines []repository.StockLine) error {
	failedID, available, err := s.productRepo.ReserveStock(lines)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			requested := 0
			for _, line := range lines {
				if line.ProductID == failedID {
					requested = line.Quantity
					break
				}
			}
			return &InsufficientStockError{
				ProductID: failedID,
				Requested: requested,
				Available: available,
			}
		}
		if errors.Is(err, repository.ErrProductNotFound) {
			return newValidationError("product %d not found", failedID)
		}
		return err
	}
	return nil
}

func (s *inventoryService) ReleaseAll(lines []repository.StockLine) error {
	return s.productRepo.ReleaseStock(lines)
}
