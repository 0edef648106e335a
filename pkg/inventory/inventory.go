// Package inventory manages the shop's product catalog and stock levels.
package inventory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/shophabesha/shophabesha/pkg/store"
	"github.com/shopspring/decimal"
)

// DefaultReorderLevel applies when a product is created without one.
const DefaultReorderLevel = 5

// Stock adjustment operations.
const (
	StockAdd    = "add"
	StockRemove = "remove"
)

// Service handles the business logic for products and stock.
type Service struct {
	storage store.Storage
}

// NewService creates a new inventory Service.
func NewService(s store.Storage) *Service {
	return &Service{storage: s}
}

// AddProduct validates and stores a new product for a shop.
func (s *Service) AddProduct(p *models.Product) (*models.Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if !p.SellPrice.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("sell price must be positive")
	}
	if p.ReorderLevel <= 0 {
		p.ReorderLevel = DefaultReorderLevel
	}
	if p.Stock < 0 {
		p.Stock = 0
	}

	p.ID = uuid.New()
	if err := s.storage.CreateProduct(p); err != nil {
		return nil, fmt.Errorf("failed to store product: %w", err)
	}
	return p, nil
}

// UpdateProduct replaces a product's editable fields.
func (s *Service) UpdateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if !p.SellPrice.GreaterThan(decimal.Zero) {
		return fmt.Errorf("sell price must be positive")
	}
	return s.storage.UpdateProduct(p)
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(id uuid.UUID) error {
	return s.storage.DeleteProduct(id)
}

// AdjustStock adds or removes stock on a product. Removal never takes the
// count below zero; removing more than is on hand empties the shelf.
func (s *Service) AdjustStock(id uuid.UUID, op string, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	product, err := s.storage.GetProduct(id)
	if err != nil {
		return nil, err
	}

	switch op {
	case StockAdd:
		product.Stock += quantity
	case StockRemove:
		product.Stock -= quantity
		if product.Stock < 0 {
			product.Stock = 0
		}
	default:
		return nil, fmt.Errorf("unknown stock operation %q", op)
	}

	if err := s.storage.UpdateProduct(product); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	return product, nil
}

// Search lists a shop's products whose name or SKU contains the term,
// case-insensitive. An empty term lists everything.
func (s *Service) Search(shopID, term string) ([]*models.Product, error) {
	products, err := s.storage.GetProductsForShop(shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	if strings.TrimSpace(term) == "" {
		return products, nil
	}

	needle := strings.ToLower(term)
	var matched []*models.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.SKU), needle) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Summary is the inventory header roll-up.
type Summary struct {
	ProductCount  int             `json:"product_count"`
	LowStockCount int             `json:"low_stock_count"`
	TotalValue    decimal.Decimal `json:"total_value"` // stock valued at cost price
}

// Summarize computes the shop's inventory roll-up.
func (s *Service) Summarize(shopID string) (*Summary, error) {
	products, err := s.storage.GetProductsForShop(shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	summary := &Summary{TotalValue: decimal.Zero}
	for _, p := range products {
		summary.ProductCount++
		if p.LowStock() {
			summary.LowStockCount++
		}
		summary.TotalValue = summary.TotalValue.Add(p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return summary, nil
}
