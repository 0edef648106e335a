package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShop = "shop-1"

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func sale(name, phone string, amount float64, credit bool, paid float64, daysAgo int) *models.SaleRecord {
	return &models.SaleRecord{
		ID:           uuid.New(),
		CustomerName: name,
		Phone:        phone,
		Amount:       decimal.NewFromFloat(amount),
		IsCredit:     credit,
		PaidAmount:   decimal.NewFromFloat(paid),
		Timestamp:    testNow.AddDate(0, 0, -daysAgo),
		ShopID:       testShop,
	}
}

func TestAggregateFiltersShopAndCredit(t *testing.T) {
	other := sale("Abebe", "", 100, true, 0, 1)
	other.ShopID = "shop-2"

	records := []*models.SaleRecord{
		sale("Abebe", "", 200, true, 0, 1),
		sale("Abebe", "", 999, false, 0, 1), // cash, must not count
		other,                               // different shop
	}

	entries := AggregateCredits(records, testShop)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].TotalCredit.Equal(decimal.NewFromInt(200)),
		"cash and foreign-shop sales leaked into total: %s", entries[0].TotalCredit)
	assert.Len(t, entries[0].Records, 1)
}

func TestAggregateGroupsByTrimmedName(t *testing.T) {
	records := []*models.SaleRecord{
		sale("  Abebe ", "", 200, true, 0, 1),
		sale("Abebe", "", 300, true, 0, 2),
		sale("abebe", "", 50, true, 0, 1), // case-sensitive: separate customer
	}

	entries := AggregateCredits(records, testShop)
	require.Len(t, entries, 2)
	assert.Equal(t, "Abebe", entries[0].Name)
	assert.True(t, entries[0].TotalCredit.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "abebe", entries[1].Name)
}

func TestAggregateDropsSettledCustomers(t *testing.T) {
	records := []*models.SaleRecord{
		sale("Kebede", "", 100, true, 100, 3), // fully paid
		sale("Almaz", "", 100, true, 120, 3),  // overpaid
		sale("Abebe", "", 100, true, 40, 3),   // outstanding
	}

	entries := AggregateCredits(records, testShop)
	require.Len(t, entries, 1)
	assert.Equal(t, "Abebe", entries[0].Name)
}

func TestAggregatePhoneAndOldestDate(t *testing.T) {
	records := []*models.SaleRecord{
		sale("Abebe", "", 100, true, 0, 2),
		sale("Abebe", "0911234567", 100, true, 0, 10),
		sale("Abebe", "0922222222", 100, true, 0, 5),
	}

	entries := AggregateCredits(records, testShop)
	require.Len(t, entries, 1)
	assert.Equal(t, "0911234567", entries[0].Phone, "phone should be first non-empty in input order")
	assert.True(t, entries[0].OldestCreditDate.Equal(testNow.AddDate(0, 0, -10)))
}

func TestAggregateEmptyNameIsValidGroup(t *testing.T) {
	records := []*models.SaleRecord{
		sale("   ", "", 80, true, 0, 1),
		sale("", "", 20, true, 0, 2),
	}

	entries := AggregateCredits(records, testShop)
	require.Len(t, entries, 1)
	assert.Equal(t, "", entries[0].Name)
	assert.True(t, entries[0].TotalCredit.Equal(decimal.NewFromInt(100)))
}

func TestAggregateIsPure(t *testing.T) {
	records := []*models.SaleRecord{
		sale("Abebe", "", 200, true, 50, 10),
		sale("Kebede", "", 300, true, 0, 3),
	}

	first := AggregateCredits(records, testShop)
	second := AggregateCredits(records, testShop)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.True(t, first[i].TotalCredit.Equal(second[i].TotalCredit))
		assert.True(t, first[i].TotalPaid.Equal(second[i].TotalPaid))
	}
}

func TestAbebeScenario(t *testing.T) {
	records := []*models.SaleRecord{
		sale("Abebe", "0911234567", 200, true, 150, 10),
		sale("Abebe", "", 300, true, 0, 4),
	}

	entries := AggregateCredits(records, testShop)
	require.Len(t, entries, 1)

	e := entries[0]
	e.Classify(testNow)

	assert.True(t, e.TotalCredit.Equal(decimal.NewFromInt(500)), "totalCredit = %s", e.TotalCredit)
	assert.True(t, e.TotalPaid.Equal(decimal.NewFromInt(150)), "totalPaid = %s", e.TotalPaid)
	assert.True(t, e.Remaining.Equal(decimal.NewFromInt(350)), "remaining = %s", e.Remaining)
	assert.Equal(t, 10, e.DaysOverdue)
	assert.True(t, e.IsOverdue)
	assert.False(t, e.IsCritical)
	assert.False(t, e.IsPaid)
}

func TestClassifyThresholdBoundaries(t *testing.T) {
	cases := []struct {
		daysAgo  int
		overdue  bool
		critical bool
	}{
		{7, false, false},
		{8, true, false},
		{30, true, false},
		{31, true, true},
	}

	for _, tc := range cases {
		entry := &CustomerLedgerEntry{
			Name:             "Abebe",
			TotalCredit:      decimal.NewFromInt(100),
			TotalPaid:        decimal.Zero,
			OldestCreditDate: testNow.AddDate(0, 0, -tc.daysAgo),
		}
		entry.Classify(testNow)

		assert.Equal(t, tc.daysAgo, entry.DaysOverdue)
		assert.Equal(t, tc.overdue, entry.IsOverdue, "daysAgo=%d", tc.daysAgo)
		assert.Equal(t, tc.critical, entry.IsCritical, "daysAgo=%d", tc.daysAgo)
	}
}

func TestClassifyCountsCalendarDays(t *testing.T) {
	// A sale just before midnight is one day old a few minutes later.
	now := time.Date(2024, 5, 15, 0, 1, 0, 0, time.UTC)
	entry := &CustomerLedgerEntry{
		Name:             "Abebe",
		TotalCredit:      decimal.NewFromInt(100),
		TotalPaid:        decimal.Zero,
		OldestCreditDate: time.Date(2024, 5, 14, 23, 59, 0, 0, time.UTC),
	}
	entry.Classify(now)
	assert.Equal(t, 1, entry.DaysOverdue)
}

func TestClassifyOverpaidIsPaidNeverOverdue(t *testing.T) {
	entry := &CustomerLedgerEntry{
		Name:             "Almaz",
		TotalCredit:      decimal.NewFromInt(100),
		TotalPaid:        decimal.NewFromInt(150),
		OldestCreditDate: testNow.AddDate(0, 0, -90),
	}
	entry.Classify(testNow)

	assert.True(t, entry.IsPaid)
	assert.False(t, entry.IsOverdue)
	assert.False(t, entry.IsCritical)
	assert.True(t, entry.Remaining.Equal(decimal.NewFromInt(-50)))
}

func TestTopDebtorTieKeepsFirstEncountered(t *testing.T) {
	records := []*models.SaleRecord{
		sale("Abebe", "", 300, true, 0, 1),
		sale("Kebede", "", 300, true, 0, 2),
		sale("Almaz", "", 200, true, 0, 3),
	}

	entries := AggregateCredits(records, testShop)
	top := TopDebtor(entries)
	require.NotNil(t, top)
	assert.Equal(t, "Abebe", top.Name)
}

func TestTopDebtorNilWhenAllSettled(t *testing.T) {
	assert.Nil(t, TopDebtor(nil))

	entries := []*CustomerLedgerEntry{
		{Name: "Kebede", TotalCredit: decimal.NewFromInt(100), TotalPaid: decimal.NewFromInt(100)},
	}
	assert.Nil(t, TopDebtor(entries))
}

func TestSortByDaysOverdue(t *testing.T) {
	records := []*models.SaleRecord{
		sale("Recent", "", 100, true, 0, 2),
		sale("Old", "", 100, true, 0, 40),
		sale("Middle", "", 100, true, 0, 10),
	}

	entries := AggregateCredits(records, testShop)
	ClassifyAll(entries, testNow)
	SortByDaysOverdue(entries)

	require.Len(t, entries, 3)
	assert.Equal(t, "Old", entries[0].Name)
	assert.Equal(t, "Middle", entries[1].Name)
	assert.Equal(t, "Recent", entries[2].Name)
}
