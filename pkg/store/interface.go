package store

import (
	"github.com/google/uuid"
	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/shopspring/decimal"
)

// Storage defines the interface for database operations related to sales,
// products and shop settings.
type Storage interface {
	CreateSale(sale *models.SaleRecord) error
	GetSale(id uuid.UUID) (*models.SaleRecord, error)
	UpdateSalePaidAmount(id uuid.UUID, paidAmount decimal.Decimal) error
	DeleteSale(id uuid.UUID) error
	GetSalesForShop(shopID string) ([]*models.SaleRecord, error)
	GetShopIDs() ([]string, error)

	CreateProduct(product *models.Product) error
	GetProduct(id uuid.UUID) (*models.Product, error)
	UpdateProduct(product *models.Product) error
	DeleteProduct(id uuid.UUID) error
	GetProductsForShop(shopID string) ([]*models.Product, error)

	GetSettings(shopID string) (*models.ShopSettings, error)
	SaveSettings(settings *models.ShopSettings) error

	Close() error
}
