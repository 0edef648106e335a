package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/shophabesha/shophabesha/pkg/store"
	"github.com/shopspring/decimal"
)

// Notifier surfaces user-facing events (payment recorded, critical
// debtors found). It is injected so the ledger never reaches for ambient
// global state to show a message.
type Notifier interface {
	Notify(kind, message string)
}

// Notification kinds.
const (
	NotifySuccess = "success"
	NotifyWarning = "warning"
	NotifyError   = "error"
)

type noopNotifier struct{}

func (noopNotifier) Notify(kind, message string) {}

// Service handles the business logic for sales, payments and the credit
// ledger.
type Service struct {
	storage  store.Storage
	feed     *Feed
	notifier Notifier
}

// NewService creates a new Service with a given Storage implementation.
// A nil notifier is replaced with a no-op.
func NewService(s store.Storage, n Notifier) *Service {
	if n == nil {
		n = noopNotifier{}
	}
	return &Service{
		storage:  s,
		feed:     NewFeed(),
		notifier: n,
	}
}

// Feed exposes the snapshot feed for consumers that want to recompute on
// every change.
func (s *Service) Feed() *Feed {
	return s.feed
}

// RecordSale stores a new cash or credit sale for a shop.
func (s *Service) RecordSale(shopID, customerName, phone string, amount decimal.Decimal, isCredit bool) (*models.SaleRecord, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, fmt.Errorf("customer name is required")
	}
	if !amount.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("amount must be positive")
	}

	sale := &models.SaleRecord{
		ID:           uuid.New(),
		CustomerName: customerName,
		Phone:        phone,
		Amount:       amount,
		IsCredit:     isCredit,
		PaidAmount:   decimal.Zero,
		Timestamp:    time.Now(),
		ShopID:       shopID,
	}

	if err := s.storage.CreateSale(sale); err != nil {
		return nil, fmt.Errorf("failed to store sale: %w", err)
	}

	s.publish(shopID)
	return sale, nil
}

// RecordPayment adds a repayment to a credit sale's cumulative paid
// amount and returns the updated record. Payments against cash sales are
// rejected; there is nothing to pay off.
func (s *Service) RecordPayment(id uuid.UUID, amount decimal.Decimal) (*models.SaleRecord, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("amount must be positive")
	}

	sale, err := s.storage.GetSale(id)
	if err != nil {
		return nil, err
	}
	if !sale.IsCredit {
		return nil, fmt.Errorf("sale is not a credit sale")
	}

	sale.PaidAmount = sale.PaidAmount.Add(amount)
	if err := s.storage.UpdateSalePaidAmount(sale.ID, sale.PaidAmount); err != nil {
		return nil, fmt.Errorf("failed to update paid amount: %w", err)
	}

	if sale.PaidAmount.GreaterThanOrEqual(sale.Amount) {
		s.notifier.Notify(NotifySuccess, fmt.Sprintf("%s settled a credit of %s", sale.CustomerName, sale.Amount.StringFixed(2)))
	}

	s.publish(sale.ShopID)
	return sale, nil
}

// DeleteSale removes a sale record.
func (s *Service) DeleteSale(id uuid.UUID) error {
	sale, err := s.storage.GetSale(id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteSale(id); err != nil {
		return err
	}
	s.publish(sale.ShopID)
	return nil
}

// Sales lists a shop's sale records, newest first.
func (s *Service) Sales(shopID string) ([]*models.SaleRecord, error) {
	return s.storage.GetSalesForShop(shopID)
}

// Credit sort orders accepted by Credits.
const (
	SortOverdue = "overdue"
	SortName    = "name"
)

// Credits aggregates and classifies the shop's outstanding credit ledger
// as of now. sortBy selects the ordering; anything other than SortName
// sorts oldest debt first.
func (s *Service) Credits(shopID string, now time.Time, sortBy string) ([]*CustomerLedgerEntry, error) {
	records, err := s.storage.GetSalesForShop(shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	entries := AggregateCredits(records, shopID)
	ClassifyAll(entries, now)
	if sortBy == SortName {
		SortByName(entries)
	} else {
		SortByDaysOverdue(entries)
	}
	return entries, nil
}

// Dashboard bundles everything the dashboard screen renders.
type Dashboard struct {
	KPIs        KPISet         `json:"kpis"`
	Chart7d     []DayBucket    `json:"chart_7d"`
	Chart30d    []DayBucket    `json:"chart_30d"`
	Activity    []ActivityItem `json:"activity"`
	RecordCount int            `json:"record_count"`
}

// Dashboard computes the KPI roll-up, chart buckets and activity feed for
// a shop at a given moment.
func (s *Service) Dashboard(shopID string, now time.Time) (*Dashboard, error) {
	records, err := s.storage.GetSalesForShop(shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	return &Dashboard{
		KPIs:        ComputeKPIs(records, shopID, now),
		Chart7d:     DailyBuckets(records, shopID, 7, now),
		Chart30d:    DailyBuckets(records, shopID, 30, now),
		Activity:    ActivityFeed(records, shopID, 10),
		RecordCount: len(records),
	}, nil
}

// ScanOverdue recomputes the ledger and reports through the notifier when
// any debtor has crossed the critical threshold. Intended to run
// periodically from a background goroutine.
func (s *Service) ScanOverdue(shopID string, now time.Time) error {
	entries, err := s.Credits(shopID, now, SortOverdue)
	if err != nil {
		return err
	}

	critical := 0
	for _, e := range entries {
		if e.IsCritical {
			critical++
		}
	}
	if critical > 0 {
		s.notifier.Notify(NotifyWarning, fmt.Sprintf("%d debtor(s) over %d days overdue", critical, CriticalAfterDays))
	}
	return nil
}

// publish reloads the shop's full record set and hands it to the feed.
// Delivery is best effort: a failed reload drops the notification rather
// than failing the mutation that triggered it.
func (s *Service) publish(shopID string) {
	records, err := s.storage.GetSalesForShop(shopID)
	if err != nil {
		return
	}
	s.feed.Publish(Snapshot{ShopID: shopID, Records: records})
}
