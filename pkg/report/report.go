// Package report computes range-filtered sales statistics and exports
// them as CSV or XLSX.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shophabesha/shophabesha/pkg/ledger"
	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/shopspring/decimal"
)

// Range names accepted by the reports endpoint.
const (
	Range7d  = "7d"
	Range30d = "30d"
	Range90d = "90d"
	RangeAll = "all"
)

// rangeDays maps a range name to its trailing window. RangeAll has no
// cutoff.
func rangeDays(name string) (int, bool) {
	switch name {
	case Range7d:
		return 7, true
	case Range30d:
		return 30, true
	case Range90d:
		return 90, true
	default:
		return 0, false
	}
}

// FilterRange keeps records whose timestamp falls within the trailing
// window ending at now. The cutoff is exact (N×24h back), not a calendar
// boundary, matching how the reports screen has always filtered.
func FilterRange(records []*models.SaleRecord, rangeName string, now time.Time) []*models.SaleRecord {
	days, bounded := rangeDays(rangeName)
	if !bounded {
		return records
	}
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	var filtered []*models.SaleRecord
	for _, r := range records {
		if r != nil && !r.Timestamp.Before(cutoff) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Stats is the report summary over one filtered range.
type Stats struct {
	TotalSales       decimal.Decimal `json:"total_sales"`
	CashSales        decimal.Decimal `json:"cash_sales"`
	CreditSales      decimal.Decimal `json:"credit_sales"`
	Collected        decimal.Decimal `json:"collected"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	UniqueCustomers  int             `json:"unique_customers"`
	AvgSale          decimal.Decimal `json:"avg_sale"`
	TransactionCount int             `json:"transaction_count"`
}

// ComputeStats rolls up the summary figures for an already range-filtered
// record set. Outstanding is CreditSales minus Collected, unclamped, so
// inconsistent upstream data stays visible.
func ComputeStats(records []*models.SaleRecord) Stats {
	stats := Stats{
		TotalSales:  decimal.Zero,
		CashSales:   decimal.Zero,
		CreditSales: decimal.Zero,
		Collected:   decimal.Zero,
		AvgSale:     decimal.Zero,
	}

	customers := make(map[string]struct{})
	for _, r := range records {
		if r == nil {
			continue
		}
		stats.TotalSales = stats.TotalSales.Add(r.Amount)
		if r.IsCredit {
			stats.CreditSales = stats.CreditSales.Add(r.Amount)
			stats.Collected = stats.Collected.Add(r.PaidAmount)
		} else {
			stats.CashSales = stats.CashSales.Add(r.Amount)
		}
		customers[strings.TrimSpace(r.CustomerName)] = struct{}{}
		stats.TransactionCount++
	}

	stats.Outstanding = stats.CreditSales.Sub(stats.Collected)
	stats.UniqueCustomers = len(customers)
	if stats.TransactionCount > 0 {
		stats.AvgSale = stats.TotalSales.Div(decimal.NewFromInt(int64(stats.TransactionCount)))
	}
	return stats
}

// MixSlice is one slice of the cash-vs-credit payment mix.
type MixSlice struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// PaymentMix splits the range total into cash and credit slices.
func PaymentMix(stats Stats) []MixSlice {
	return []MixSlice{
		{Name: "Cash", Value: stats.CashSales},
		{Name: "Credit", Value: stats.CreditSales},
	}
}

// CustomerTotal is one row of the top-customers list.
type CustomerTotal struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// TopCustomers ranks customers by total revenue in the range, largest
// first, up to limit. Names are trimmed before grouping, like the credit
// ledger does.
func TopCustomers(records []*models.SaleRecord, limit int) []CustomerTotal {
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, r := range records {
		if r == nil {
			continue
		}
		name := strings.TrimSpace(r.CustomerName)
		if _, ok := totals[name]; !ok {
			order = append(order, name)
		}
		totals[name] = totals[name].Add(r.Amount)
	}

	ranked := make([]CustomerTotal, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, CustomerTotal{Name: name, Amount: totals[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.GreaterThan(ranked[j].Amount)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// DailySales buckets the filtered range for charting: a week gets a bar
// per day, a month gets thirty, wider ranges collapse to fourteen.
func DailySales(records []*models.SaleRecord, shopID, rangeName string, now time.Time) []ledger.DayBucket {
	days := 14
	if rangeName == Range7d {
		days = 7
	} else if rangeName == Range30d {
		days = 30
	}
	return ledger.DailyBuckets(records, shopID, days, now)
}
