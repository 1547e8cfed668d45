package services_test

import (
	"testing"

	"kasir_pos/internal/models"
	"kasir_pos/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableClaim_OnlyOneWinner(t *testing.T) {
	tables := newMockTableRepository()
	tables.add(&models.DiningTable{ID: 1, Name: "T1", Status: string(models.TableAvailable)})
	svc := services.NewTableService(tables)

	require.NoError(t, svc.Claim(1))

	err := svc.Claim(1)
	var occupiedErr *services.TableOccupiedError
	require.ErrorAs(t, err, &occupiedErr)
	assert.Equal(t, uint(1), occupiedErr.TableID)
}

func TestTableRelease_Idempotent(t *testing.T) {
	tables := newMockTableRepository()
	tables.add(&models.DiningTable{ID: 1, Name: "T1", Status: string(models.TableAvailable)})
	svc := services.NewTableService(tables)

	require.NoError(t, svc.Claim(1))
	require.NoError(t, svc.Release(1))
	// Releasing an already available table stays an error-free no-op.
	require.NoError(t, svc.Release(1))
	assert.Equal(t, string(models.TableAvailable), tables.statusOf(1))
}
