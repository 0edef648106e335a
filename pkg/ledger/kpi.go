package ledger

import (
	"time"

	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/shopspring/decimal"
)

// DebtorSummary is the dashboard's compact view of a single debtor.
type DebtorSummary struct {
	Name    string          `json:"name"`
	Phone   string          `json:"phone,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

// KPISet is the shop-wide dashboard roll-up. Money totals cover the full
// sale set, cash and credit alike; the credit fields cover credit sales
// only.
type KPISet struct {
	TodayTotal          decimal.Decimal `json:"today_total"`
	YesterdayTotal      decimal.Decimal `json:"yesterday_total"`
	WeekTotal           decimal.Decimal `json:"week_total"`
	MonthTotal          decimal.Decimal `json:"month_total"`
	LastMonthTotal      decimal.Decimal `json:"last_month_total"`
	TodayVsYesterdayPct float64         `json:"today_vs_yesterday_pct"`
	MonthVsLastMonthPct float64         `json:"month_vs_last_month_pct"`
	TotalCredit         decimal.Decimal `json:"total_credit"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	Outstanding         decimal.Decimal `json:"outstanding"`
	CollectionRate      float64         `json:"collection_rate"`
	ActiveDebtors       int             `json:"active_debtors"`
	TopDebtor           *DebtorSummary  `json:"top_debtor,omitempty"`
}

// ComputeKPIs rolls up the dashboard figures for one shop at a given
// moment. Calendar windows (today, yesterday, this month, last month) use
// now's location with day boundaries at midnight; the week window is the
// trailing seven calendar days including today.
func ComputeKPIs(records []*models.SaleRecord, shopID string, now time.Time) KPISet {
	todayStart := startOfDay(now)
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -6)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	k := KPISet{
		TodayTotal:     decimal.Zero,
		YesterdayTotal: decimal.Zero,
		WeekTotal:      decimal.Zero,
		MonthTotal:     decimal.Zero,
		LastMonthTotal: decimal.Zero,
		TotalCredit:    decimal.Zero,
		TotalPaid:      decimal.Zero,
	}

	for _, r := range records {
		if r == nil || r.ShopID != shopID {
			continue
		}
		t := r.Timestamp.In(now.Location())
		if !t.Before(todayStart) {
			k.TodayTotal = k.TodayTotal.Add(r.Amount)
		}
		if !t.Before(yesterdayStart) && t.Before(todayStart) {
			k.YesterdayTotal = k.YesterdayTotal.Add(r.Amount)
		}
		if !t.Before(weekStart) {
			k.WeekTotal = k.WeekTotal.Add(r.Amount)
		}
		if !t.Before(monthStart) {
			k.MonthTotal = k.MonthTotal.Add(r.Amount)
		}
		if !t.Before(lastMonthStart) && t.Before(monthStart) {
			k.LastMonthTotal = k.LastMonthTotal.Add(r.Amount)
		}
		if r.IsCredit {
			k.TotalCredit = k.TotalCredit.Add(r.Amount)
			k.TotalPaid = k.TotalPaid.Add(r.PaidAmount)
		}
	}

	k.TodayVsYesterdayPct = percentChange(k.TodayTotal, k.YesterdayTotal)
	k.MonthVsLastMonthPct = percentChange(k.MonthTotal, k.LastMonthTotal)
	k.Outstanding = k.TotalCredit.Sub(k.TotalPaid)
	k.CollectionRate = collectionRate(k.TotalPaid, k.TotalCredit)

	entries := AggregateCredits(records, shopID)
	k.ActiveDebtors = len(entries)
	if top := TopDebtor(entries); top != nil {
		k.TopDebtor = &DebtorSummary{
			Name:    top.Name,
			Phone:   top.Phone,
			Balance: top.RemainingBalance(),
		}
	}

	return k
}

// percentChange computes (current-previous)/|previous|*100. A zero
// previous period would divide by zero, so it maps to 0 when nothing
// happened in either period and 100 when activity is new.
func percentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	return current.Sub(previous).Div(previous.Abs()).InexactFloat64() * 100
}

// collectionRate is the share of credit ever extended that has been paid
// back, as a percentage. Zero when no credit has been extended.
func collectionRate(paid, credit decimal.Decimal) float64 {
	if credit.IsZero() {
		return 0
	}
	return paid.Div(credit).InexactFloat64() * 100
}

// DayBucket is one bar of the daily sales chart.
type DayBucket struct {
	Date  time.Time       `json:"date"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// DailyBuckets sums sale amounts into one bucket per calendar day for the
// trailing days ending today. Empty days produce zero buckets so the
// chart has a continuous axis.
func DailyBuckets(records []*models.SaleRecord, shopID string, days int, now time.Time) []DayBucket {
	todayStart := startOfDay(now)
	buckets := make([]DayBucket, days)
	for i := range buckets {
		d := todayStart.AddDate(0, 0, i-days+1)
		buckets[i] = DayBucket{Date: d, Label: d.Format("Jan 2"), Total: decimal.Zero}
	}

	for _, r := range records {
		if r == nil || r.ShopID != shopID {
			continue
		}
		day := startOfDay(r.Timestamp.In(now.Location()))
		for i := range buckets {
			if buckets[i].Date.Equal(day) {
				buckets[i].Total = buckets[i].Total.Add(r.Amount)
				break
			}
		}
	}
	return buckets
}

// ActivityItem is one line of the dashboard activity feed.
type ActivityItem struct {
	ID       string          `json:"id"`
	Customer string          `json:"customer"`
	Kind     string          `json:"kind"` // "Credit" or "Cash"
	Amount   decimal.Decimal `json:"amount"`
	Time     time.Time       `json:"time"`
}

// ActivityFeed lists the most recent sales, newest first, up to limit.
// The input is assumed already sorted newest first, as the store returns
// it.
func ActivityFeed(records []*models.SaleRecord, shopID string, limit int) []ActivityItem {
	var feed []ActivityItem
	for _, r := range records {
		if r == nil || r.ShopID != shopID {
			continue
		}
		kind := "Cash"
		if r.IsCredit {
			kind = "Credit"
		}
		feed = append(feed, ActivityItem{
			ID:       r.ID.String(),
			Customer: r.CustomerName,
			Kind:     kind,
			Amount:   r.Amount,
			Time:     r.Timestamp,
		})
		if len(feed) == limit {
			break
		}
	}
	return feed
}
