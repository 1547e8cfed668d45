package models

import (
	"time"
)

type DiningTable struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"unique;not null"`
	Status    string    `json:"status" gorm:"default:'available'"` // available, occupied
	Capacity  int       `json:"capacity" gorm:"default:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
)
