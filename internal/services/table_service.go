package services

import (
	"errors"
	"kasir_pos/internal/models"
	"kasir_pos/internal/repository"
)

// TableService owns the dining table occupancy state machine:
// available -> occupied on claim, occupied -> available on release.
type TableService interface {
	Claim(tableID uint) error
	// Release is idempotent; releasing an already available table succeeds.
	Release(tableID uint) error
	GetByID(tableID uint) (*models.DiningTable, error)
	GetAll() ([]models.DiningTable, error)
	Create(table *models.DiningTable) error
	Delete(tableID uint) error
}

type tableService struct {
	tableRepo repository.TableRepository
}

func NewTableService(tableRepo repository.TableRepository) TableService {
	return &tableService{tableRepo: tableRepo}
}

func (s *tableService) Claim(tableID uint) error {
	err := s.tableRepo.Claim(tableID)
	if err != nil {
		if errors.Is(err, repository.ErrTableOccupied) {
			return &TableOccupiedError{TableID: tableID}
		}
		return err
	}
	return nil
}

func (s *tableService) Release(tableID uint) error {
	return s.tableRepo.Release(tableID)
}

func (s *tableService) GetByID(tableID uint) (*models.DiningTable, error) {
	return s.tableRepo.GetByID(tableID)
}

func (s *tableService) GetAll() ([]models.DiningTable, error) {
	return s.tableRepo.GetAll()
}

func (s *tableService) Create(table *models.DiningTable) error {
	return s.tableRepo.Create(table)
}

func (s *tableService) Delete(tableID uint) error {
	return s.tableRepo.Delete(tableID)
}
