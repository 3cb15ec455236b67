package services

import (
	"context"
	"testing"

	"strata-portal/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildingService_DeleteRefusesWithProperties(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewBuildingService(db, testConfig())

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "properties" WHERE building_id = \$1`).
		WithArgs(1).
		WillReturnRows(countRows(3))

	assert.ErrorIs(t, svc.DeleteBuilding(context.Background(), 1), ErrBuildingNotEmpty)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestBuildingService_DeleteMissing(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewBuildingService(db, testConfig())

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "properties"`).WillReturnRows(countRows(0))
	dbMock.ExpectExec(`DELETE FROM "buildings" WHERE "buildings"."id" = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, svc.DeleteBuilding(context.Background(), 8), ErrBuildingNotFound)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestBuildingService_CreatePropertyDefaultsEntitlement(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewBuildingService(db, testConfig())

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "buildings" WHERE id = \$1`).WillReturnRows(countRows(1))
	dbMock.ExpectQuery(`INSERT INTO "properties"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))

	property := &models.Property{UnitNumber: "12", BuildingID: 1}
	require.NoError(t, svc.CreateProperty(context.Background(), property))

	assert.Equal(t, uint(31), property.ID)
	assert.Equal(t, 1, property.UnitEntitlement)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestBuildingService_CreatePropertyUnknownBuilding(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewBuildingService(db, testConfig())

	dbMock.ExpectQuery(`SELECT count\(\*\) FROM "buildings"`).WillReturnRows(countRows(0))

	err := svc.CreateProperty(context.Background(), &models.Property{UnitNumber: "1", BuildingID: 5})
	assert.ErrorIs(t, err, ErrBuildingNotFound)
}

func TestBuildingService_DeletePropertyUnlinksResidents(t *testing.T) {
	db, dbMock := setupMockDB(t)
	svc := NewBuildingService(db, testConfig())

	dbMock.ExpectBegin()
	dbMock.ExpectExec(`UPDATE "users" SET "property_id"=\$1,"updated_at"=\$2 WHERE property_id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	dbMock.ExpectExec(`DELETE FROM "properties" WHERE "properties"."id" = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	require.NoError(t, svc.DeleteProperty(context.Background(), 6))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
