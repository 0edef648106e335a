package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSale(shopID string) *models.SaleRecord {
	return &models.SaleRecord{
		ID:           uuid.New(),
		CustomerName: "Abebe",
		Phone:        "0911234567",
		Amount:       decimal.NewFromFloat(250.50),
		IsCredit:     true,
		PaidAmount:   decimal.Zero,
		Timestamp:    time.Now().UTC().Truncate(time.Second),
		ShopID:       shopID,
	}
}

func TestSQLiteStore_CreateAndGetSale(t *testing.T) {
	s := newTestStore(t)

	sale := testSale("shop-1")
	require.NoError(t, s.CreateSale(sale))

	fetched, err := s.GetSale(sale.ID)
	require.NoError(t, err)

	assert.Equal(t, sale.CustomerName, fetched.CustomerName)
	assert.Equal(t, sale.Phone, fetched.Phone)
	assert.True(t, fetched.Amount.Equal(sale.Amount), "amount = %s", fetched.Amount)
	assert.True(t, fetched.IsCredit)
	assert.True(t, fetched.PaidAmount.IsZero())
	assert.Equal(t, sale.ShopID, fetched.ShopID)
}

func TestSQLiteStore_GetSaleNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSale(uuid.New())
	require.Error(t, err)
	assert.Equal(t, "sale not found", err.Error())
}

func TestSQLiteStore_UpdateSalePaidAmount(t *testing.T) {
	s := newTestStore(t)

	sale := testSale("shop-1")
	require.NoError(t, s.CreateSale(sale))

	require.NoError(t, s.UpdateSalePaidAmount(sale.ID, decimal.NewFromInt(150)))

	fetched, err := s.GetSale(sale.ID)
	require.NoError(t, err)
	assert.True(t, fetched.PaidAmount.Equal(decimal.NewFromInt(150)))

	err = s.UpdateSalePaidAmount(uuid.New(), decimal.NewFromInt(1))
	require.Error(t, err)
	assert.Equal(t, "sale not found", err.Error())
}

func TestSQLiteStore_DeleteSale(t *testing.T) {
	s := newTestStore(t)

	sale := testSale("shop-1")
	require.NoError(t, s.CreateSale(sale))
	require.NoError(t, s.DeleteSale(sale.ID))

	_, err := s.GetSale(sale.ID)
	assert.Error(t, err)

	err = s.DeleteSale(sale.ID)
	require.Error(t, err)
	assert.Equal(t, "sale not found", err.Error())
}

func TestSQLiteStore_GetSalesForShopScopedAndOrdered(t *testing.T) {
	s := newTestStore(t)

	older := testSale("shop-1")
	older.Timestamp = time.Now().UTC().Add(-48 * time.Hour)
	newer := testSale("shop-1")
	foreign := testSale("shop-2")

	require.NoError(t, s.CreateSale(older))
	require.NoError(t, s.CreateSale(newer))
	require.NoError(t, s.CreateSale(foreign))

	sales, err := s.GetSalesForShop("shop-1")
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, newer.ID, sales[0].ID, "newest first")
	assert.Equal(t, older.ID, sales[1].ID)
}

func TestSQLiteStore_MalformedAmountCoercesToZero(t *testing.T) {
	s := newTestStore(t)

	// Simulate a pre-validation row written by an old client.
	_, err := s.db.Exec(
		`INSERT INTO sales (id, customer_name, phone, amount, is_credit, paid_amount, timestamp, shop_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), "Abebe", "", "not-a-number", true, "garbage", time.Now(), "shop-1",
	)
	require.NoError(t, err)

	sales, err := s.GetSalesForShop("shop-1")
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.True(t, sales[0].Amount.IsZero())
	assert.True(t, sales[0].PaidAmount.IsZero())
}

func TestSQLiteStore_GetShopIDs(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateSale(testSale("shop-b")))
	require.NoError(t, s.CreateSale(testSale("shop-a")))
	require.NoError(t, s.CreateSale(testSale("shop-a")))

	ids, err := s.GetShopIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"shop-a", "shop-b"}, ids)
}

func TestSQLiteStore_ProductRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p := &models.Product{
		ID:           uuid.New(),
		Name:         "Sugar 1kg",
		SKU:          "SG-001",
		CostPrice:    decimal.NewFromFloat(85.5),
		SellPrice:    decimal.NewFromInt(100),
		Stock:        12,
		ReorderLevel: 5,
		Category:     "Food",
		ShopID:       "shop-1",
	}
	require.NoError(t, s.CreateProduct(p))

	fetched, err := s.GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, fetched.Name)
	assert.True(t, fetched.CostPrice.Equal(p.CostPrice))
	assert.Equal(t, 12, fetched.Stock)

	fetched.Stock = 20
	require.NoError(t, s.UpdateProduct(fetched))
	updated, err := s.GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Stock)

	require.NoError(t, s.DeleteProduct(p.ID))
	_, err = s.GetProduct(p.ID)
	require.Error(t, err)
	assert.Equal(t, "product not found", err.Error())
}

func TestSQLiteStore_ProductsOrderedByName(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"coffee", "Berbere", "Sugar"} {
		require.NoError(t, s.CreateProduct(&models.Product{
			ID:        uuid.New(),
			Name:      name,
			SellPrice: decimal.NewFromInt(10),
			CostPrice: decimal.Zero,
			ShopID:    "shop-1",
		}))
	}

	products, err := s.GetProductsForShop("shop-1")
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Berbere", products[0].Name)
	assert.Equal(t, "coffee", products[1].Name)
	assert.Equal(t, "Sugar", products[2].Name)
}

func TestSQLiteStore_Settings(t *testing.T) {
	s := newTestStore(t)

	// Unsaved shop gets an empty profile, not an error.
	settings, err := s.GetSettings("shop-1")
	require.NoError(t, err)
	assert.Equal(t, "shop-1", settings.ShopID)
	assert.Empty(t, settings.ShopName)

	settings.ShopName = "Habesha Market"
	settings.Telebirr = "0911234567"
	require.NoError(t, s.SaveSettings(settings))

	settings.ShopName = "Habesha Market 2"
	require.NoError(t, s.SaveSettings(settings), "save is an upsert")

	fetched, err := s.GetSettings("shop-1")
	require.NoError(t, err)
	assert.Equal(t, "Habesha Market 2", fetched.ShopName)
	assert.Equal(t, "0911234567", fetched.Telebirr)
}
