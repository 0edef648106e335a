package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore manages the database connection and operations for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore and initializes the database.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// Manually enable foreign keys and WAL mode
	_, err = db.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	_, err = db.Exec("PRAGMA journal_mode = WAL;")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the database tables if they don't already exist and adds new columns if necessary.
// We use TEXT for decimal fields in SQLite to ensure no precision is lost.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		customer_name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		is_credit INTEGER NOT NULL DEFAULT 0,
		paid_amount TEXT NOT NULL DEFAULT '0',
		timestamp DATETIME NOT NULL,
		shop_id TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sales_shop ON sales(shop_id);
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		sku TEXT NOT NULL DEFAULT '',
		cost_price TEXT NOT NULL DEFAULT '0',
		sell_price TEXT NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0,
		reorder_level INTEGER NOT NULL DEFAULT 5,
		category TEXT NOT NULL DEFAULT '',
		shop_id TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_products_shop ON products(shop_id);
	CREATE TABLE IF NOT EXISTS settings (
		shop_id TEXT PRIMARY KEY,
		shop_name TEXT NOT NULL DEFAULT '',
		owner_phone TEXT NOT NULL DEFAULT '',
		telebirr TEXT NOT NULL DEFAULT '',
		cbe_account TEXT NOT NULL DEFAULT '',
		other_account TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	if err != nil {
		return err
	}

	// Columns added after the first release. ALTER TABLE ADD COLUMN is
	// idempotent enough for our purposes: duplicates are ignored.
	columns := map[string][]string{
		"sales":    {"phone TEXT NOT NULL DEFAULT ''", "paid_amount TEXT NOT NULL DEFAULT '0'"},
		"products": {"category TEXT NOT NULL DEFAULT ''", "reorder_level INTEGER NOT NULL DEFAULT 5"},
	}

	for table, cols := range columns {
		for _, col := range cols {
			_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, col))
			if err != nil && !isDuplicateColumnError(err) {
				return fmt.Errorf("failed to add column %s to %s: %w", col, table, err)
			}
		}
	}

	return nil
}

// isDuplicateColumnError checks if the error indicates a duplicate column.
func isDuplicateColumnError(err error) bool {
	if err == nil {
		return false
	}
	return len(err.Error()) >= 21 && err.Error()[:21] == "duplicate column name"
}

// parseAmount converts a TEXT decimal column to a decimal. Malformed
// values scan as zero rather than failing the whole query; the data may
// predate validation and availability wins over strictness here.
func parseAmount(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CreateSale inserts a new sale record into the database.
func (s *SQLiteStore) CreateSale(sale *models.SaleRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO sales (id, customer_name, phone, amount, is_credit, paid_amount, timestamp, shop_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID.String(), sale.CustomerName, sale.Phone, sale.Amount.String(), sale.IsCredit, sale.PaidAmount.String(), sale.Timestamp, sale.ShopID,
	)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	return nil
}

// GetSale retrieves a sale record by its ID.
func (s *SQLiteStore) GetSale(id uuid.UUID) (*models.SaleRecord, error) {
	row := s.db.QueryRow(`SELECT id, customer_name, phone, amount, is_credit, paid_amount, timestamp, shop_id FROM sales WHERE id = ?`, id.String())
	sale, err := scanSale(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sale not found")
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return sale, nil
}

// UpdateSalePaidAmount sets the cumulative paid amount on a sale record.
func (s *SQLiteStore) UpdateSalePaidAmount(id uuid.UUID, paidAmount decimal.Decimal) error {
	result, err := s.db.Exec(`UPDATE sales SET paid_amount = ? WHERE id = ?`, paidAmount.String(), id.String())
	if err != nil {
		return fmt.Errorf("failed to update paid amount: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("sale not found")
	}
	return nil
}

// DeleteSale removes a sale record from the database.
func (s *SQLiteStore) DeleteSale(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM sales WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("sale not found")
	}
	return nil
}

// GetSalesForShop retrieves all sale records for a shop, newest first.
func (s *SQLiteStore) GetSalesForShop(shopID string) ([]*models.SaleRecord, error) {
	rows, err := s.db.Query(`SELECT id, customer_name, phone, amount, is_credit, paid_amount, timestamp, shop_id FROM sales WHERE shop_id = ? ORDER BY timestamp DESC`, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales for shop %s: %w", shopID, err)
	}
	defer rows.Close()

	var sales []*models.SaleRecord
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return sales, nil
}

// GetShopIDs lists every shop that has recorded at least one sale.
func (s *SQLiteStore) GetShopIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT shop_id FROM sales ORDER BY shop_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan shop id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return ids, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSale(row rowScanner) (*models.SaleRecord, error) {
	var sale models.SaleRecord
	var idStr, amountStr, paidStr string
	var timestamp time.Time
	if err := row.Scan(&idStr, &sale.CustomerName, &sale.Phone, &amountStr, &sale.IsCredit, &paidStr, &timestamp, &sale.ShopID); err != nil {
		return nil, err
	}
	sale.ID = uuid.MustParse(idStr)
	sale.Amount = parseAmount(amountStr)
	sale.PaidAmount = parseAmount(paidStr)
	sale.Timestamp = timestamp
	return &sale, nil
}

// CreateProduct inserts a new product into the database.
func (s *SQLiteStore) CreateProduct(product *models.Product) error {
	_, err := s.db.Exec(
		`INSERT INTO products (id, name, sku, cost_price, sell_price, stock, reorder_level, category, shop_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID.String(), product.Name, product.SKU, product.CostPrice.String(), product.SellPrice.String(), product.Stock, product.ReorderLevel, product.Category, product.ShopID,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by its ID.
func (s *SQLiteStore) GetProduct(id uuid.UUID) (*models.Product, error) {
	row := s.db.QueryRow(`SELECT id, name, sku, cost_price, sell_price, stock, reorder_level, category, shop_id FROM products WHERE id = ?`, id.String())
	product, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// UpdateProduct updates an existing product in the database.
func (s *SQLiteStore) UpdateProduct(product *models.Product) error {
	result, err := s.db.Exec(
		`UPDATE products SET name = ?, sku = ?, cost_price = ?, sell_price = ?, stock = ?, reorder_level = ?, category = ? WHERE id = ?`,
		product.Name, product.SKU, product.CostPrice.String(), product.SellPrice.String(), product.Stock, product.ReorderLevel, product.Category, product.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// DeleteProduct removes a product from the database.
func (s *SQLiteStore) DeleteProduct(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM products WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product not found")
	}
	return nil
}

// GetProductsForShop retrieves all products for a shop ordered by name.
func (s *SQLiteStore) GetProductsForShop(shopID string) ([]*models.Product, error) {
	rows, err := s.db.Query(`SELECT id, name, sku, cost_price, sell_price, stock, reorder_level, category, shop_id FROM products WHERE shop_id = ? ORDER BY name COLLATE NOCASE ASC`, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to get products for shop %s: %w", shopID, err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return products, nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var product models.Product
	var idStr, costStr, sellStr string
	if err := row.Scan(&idStr, &product.Name, &product.SKU, &costStr, &sellStr, &product.Stock, &product.ReorderLevel, &product.Category, &product.ShopID); err != nil {
		return nil, err
	}
	product.ID = uuid.MustParse(idStr)
	product.CostPrice = parseAmount(costStr)
	product.SellPrice = parseAmount(sellStr)
	return &product, nil
}

// GetSettings retrieves the settings row for a shop. A shop that has never
// saved settings gets an empty profile back, not an error.
func (s *SQLiteStore) GetSettings(shopID string) (*models.ShopSettings, error) {
	var settings models.ShopSettings
	row := s.db.QueryRow(`SELECT shop_id, shop_name, owner_phone, telebirr, cbe_account, other_account FROM settings WHERE shop_id = ?`, shopID)
	err := row.Scan(&settings.ShopID, &settings.ShopName, &settings.OwnerPhone, &settings.Telebirr, &settings.CBEAccount, &settings.OtherAccount)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.ShopSettings{ShopID: shopID}, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings inserts or replaces the settings row for a shop.
func (s *SQLiteStore) SaveSettings(settings *models.ShopSettings) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (shop_id, shop_name, owner_phone, telebirr, cbe_account, other_account)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(shop_id) DO UPDATE SET shop_name = excluded.shop_name, owner_phone = excluded.owner_phone, telebirr = excluded.telebirr, cbe_account = excluded.cbe_account, other_account = excluded.other_account`,
		settings.ShopID, settings.ShopName, settings.OwnerPhone, settings.Telebirr, settings.CBEAccount, settings.OtherAccount,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
