package repositories_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	repositories "pcstore/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func inventoryRow(componentID string, quantity int, price string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "component_id", "quantity", "price", "updated_at"}).
		AddRow("inv-1", componentID, quantity, price, time.Now())
}

func TestFindByComponentID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormInventoryRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "inventories"`)).
		WillReturnRows(inventoryRow("comp-1", 7, "199.99"))

	inv, err := repo.FindByComponentID(context.Background(), "comp-1")
	assert.NoError(t, err)
	assert.Equal(t, "comp-1", inv.ComponentID)
	assert.Equal(t, 7, inv.Quantity)
}

func TestFindByComponentID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormInventoryRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "inventories"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	inv, err := repo.FindByComponentID(context.Background(), "ghost")
	assert.Nil(t, inv)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAdjustQuantity_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormInventoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "inventories" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "inventories"`)).
		WillReturnRows(inventoryRow("comp-1", 3, "199.99"))

	quantity, err := repo.AdjustQuantity(context.Background(), "comp-1", -2)
	assert.NoError(t, err)
	assert.Equal(t, 3, quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustQuantity_InsufficientStock(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormInventoryRepository(gormDB)

	// The guarded update matches no row, but the row exists.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "inventories" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "inventories"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := repo.AdjustQuantity(context.Background(), "comp-1", -5)
	assert.ErrorIs(t, err, repositories.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustQuantity_MissingRow(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormInventoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "inventories" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "inventories"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := repo.AdjustQuantity(context.Background(), "ghost", -1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUpdatePrice_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormInventoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "inventories" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdatePrice(context.Background(), "comp-1", decimal.RequireFromString("249.99"))
	assert.NoError(t, err)
}

func TestUpdatePrice_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormInventoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "inventories" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdatePrice(context.Background(), "ghost", decimal.RequireFromString("249.99"))
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDeleteByComponentID(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repositories.NewGormInventoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "inventories"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteByComponentID(context.Background(), "comp-1")
	assert.NoError(t, err)
}
