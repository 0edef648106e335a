package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/shopspring/decimal"
)

// Aging thresholds, in whole calendar days. Both comparisons are strict:
// a credit exactly OverdueAfterDays old is not yet overdue.
const (
	OverdueAfterDays  = 7
	CriticalAfterDays = 30
)

// CustomerLedgerEntry is the aggregated credit position of one customer.
// Entries are recomputed from scratch on every pass over the sale set and
// never persisted; the classification fields are only meaningful for the
// "now" they were computed against.
type CustomerLedgerEntry struct {
	Name             string               `json:"name"`
	Phone            string               `json:"phone,omitempty"`
	TotalCredit      decimal.Decimal      `json:"total_credit"`
	TotalPaid        decimal.Decimal      `json:"total_paid"`
	Remaining        decimal.Decimal      `json:"remaining_balance"`
	OldestCreditDate time.Time            `json:"oldest_credit_date"`
	DaysOverdue      int                  `json:"days_overdue"`
	IsOverdue        bool                 `json:"is_overdue"`
	IsCritical       bool                 `json:"is_critical"`
	IsPaid           bool                 `json:"is_paid"`
	Records          []*models.SaleRecord `json:"records"`
}

// RemainingBalance is TotalCredit minus TotalPaid. Negative when a
// customer has overpaid; that is upstream data the aggregator does not
// clamp.
func (e *CustomerLedgerEntry) RemainingBalance() decimal.Decimal {
	return e.TotalCredit.Sub(e.TotalPaid)
}

// AggregateCredits groups a shop's credit sales into per-customer ledger
// entries. Only records matching shopID with IsCredit set contribute.
// Customers whose credits are fully paid off are dropped entirely.
//
// Grouping is by exact trimmed name, case-sensitive. Two people sharing a
// name merge into one entry and a typo splits one person in two; the rest
// of the product has no customer identity beyond the name string, so the
// ledger cannot do better.
//
// The returned slice preserves first-encounter order and the function is
// pure: safe to call on every snapshot without accumulated state.
func AggregateCredits(records []*models.SaleRecord, shopID string) []*CustomerLedgerEntry {
	byName := make(map[string]*CustomerLedgerEntry)
	var order []string

	for _, r := range records {
		if r == nil || r.ShopID != shopID || !r.IsCredit {
			continue
		}
		name := strings.TrimSpace(r.CustomerName)
		entry, ok := byName[name]
		if !ok {
			entry = &CustomerLedgerEntry{
				Name:             name,
				TotalCredit:      decimal.Zero,
				TotalPaid:        decimal.Zero,
				OldestCreditDate: r.Timestamp,
			}
			byName[name] = entry
			order = append(order, name)
		}
		entry.TotalCredit = entry.TotalCredit.Add(r.Amount)
		entry.TotalPaid = entry.TotalPaid.Add(r.PaidAmount)
		if entry.Phone == "" && r.Phone != "" {
			entry.Phone = r.Phone
		}
		if r.Timestamp.Before(entry.OldestCreditDate) {
			entry.OldestCreditDate = r.Timestamp
		}
		entry.Records = append(entry.Records, r)
	}

	var entries []*CustomerLedgerEntry
	for _, name := range order {
		entry := byName[name]
		if entry.TotalCredit.GreaterThan(entry.TotalPaid) {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Classify fills in the aging fields of an entry relative to now.
// Overdue status requires an outstanding balance: an overpaid or settled
// entry is "paid" no matter how old its credits are.
func (e *CustomerLedgerEntry) Classify(now time.Time) {
	e.Remaining = e.RemainingBalance()
	e.DaysOverdue = DaysBetween(e.OldestCreditDate, now)
	outstanding := e.Remaining.GreaterThan(decimal.Zero)
	e.IsOverdue = e.DaysOverdue > OverdueAfterDays && outstanding
	e.IsCritical = e.DaysOverdue > CriticalAfterDays && outstanding
	e.IsPaid = !outstanding
}

// ClassifyAll classifies every entry against the same now.
func ClassifyAll(entries []*CustomerLedgerEntry, now time.Time) {
	for _, e := range entries {
		e.Classify(now)
	}
}

// DaysBetween counts the calendar-day boundaries crossed between from and
// to, in to's location. A sale at 23:59 is one day old at 00:01.
func DaysBetween(from, to time.Time) int {
	a := startOfDay(from.In(to.Location()))
	b := startOfDay(to)
	// Rounding absorbs the odd hour a DST transition adds or removes.
	return int((b.Sub(a) + 12*time.Hour) / (24 * time.Hour))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SortByDaysOverdue orders entries oldest debt first. The sort is stable
// so equally aged customers keep their first-encounter order.
func SortByDaysOverdue(entries []*CustomerLedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysOverdue > entries[j].DaysOverdue
	})
}

// SortByName orders entries alphabetically by customer name.
func SortByName(entries []*CustomerLedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}

// TopDebtor returns the entry with the greatest remaining balance among
// those still owing, or nil when everyone is settled. Ties keep the first
// entry encountered.
func TopDebtor(entries []*CustomerLedgerEntry) *CustomerLedgerEntry {
	var top *CustomerLedgerEntry
	for _, e := range entries {
		balance := e.RemainingBalance()
		if !balance.GreaterThan(decimal.Zero) {
			continue
		}
		if top == nil || balance.GreaterThan(top.RemainingBalance()) {
			top = e
		}
	}
	return top
}
