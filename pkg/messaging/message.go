package messaging

import (
	"fmt"
	"strings"

	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/shopspring/decimal"
)

// Template types for outgoing messages.
const (
	TypeReminder = "reminder"
	TypeOverdue  = "overdue"
	TypeThankYou = "thankyou"
)

// Template carries everything needed to render one reminder message.
type Template struct {
	Type         string
	CustomerName string
	Amount       decimal.Decimal
	DaysOverdue  int
	Settings     *models.ShopSettings
}

// formatAmount renders a birr amount with thousands separators, the way
// the customer will read it in a message.
func formatAmount(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

// paymentInfo appends the owner's payment accounts, one line per account
// that is actually configured.
func paymentInfo(settings *models.ShopSettings) string {
	if settings == nil {
		return ""
	}
	var b strings.Builder
	if settings.Telebirr != "" {
		b.WriteString("\nTelebirr: " + settings.Telebirr)
	}
	if settings.CBEAccount != "" {
		b.WriteString("\nCBE: " + settings.CBEAccount)
	}
	if settings.OtherAccount != "" {
		b.WriteString("\nሌላ: " + settings.OtherAccount)
	}
	return b.String()
}

func shopName(settings *models.ShopSettings) string {
	if settings != nil && settings.ShopName != "" {
		return settings.ShopName
	}
	return "Our Shop"
}

// Render produces the Amharic reminder text for a template. Unknown
// types fall back to a one-line reminder.
func Render(t Template) string {
	shop := shopName(t.Settings)
	amount := formatAmount(t.Amount)
	info := paymentInfo(t.Settings)

	switch t.Type {
	case TypeReminder:
		return fmt.Sprintf("ሰላም %s!\n\nከ%s ጋር %s ብር ብድር አለብዎት።\n\nእባክዎን በተመቸዎት ጊዜ ይክፈሉን።%s\n\nአመሰግናለሁ! 🙏",
			t.CustomerName, shop, amount, info)

	case TypeOverdue:
		days := t.DaysOverdue
		if days <= 0 {
			days = 7
		}
		return fmt.Sprintf("ሰላም %s!\n\n⚠️ ይሄ አስቸኳይ ማስታወቂያ ነው!\n\n%s ብር ብድር ለ%d+ ቀናት አልተከፈለም።\n\nከ%s%s\n\nዛሬ ይክፈሉን! 🙏",
			t.CustomerName, amount, days, shop, info)

	case TypeThankYou:
		return fmt.Sprintf("ሰላም %s!\n\nክፍያዎን አመሰግናለሁ! ✅\n\nእናመሰግናለን ከ%s ጋር ለሆኑ!\n\nእንደገና ይምጡ! 🛍️",
			t.CustomerName, shop)

	default:
		return fmt.Sprintf("ሰላም %s! %s ብር ብድር አለብዎት።", t.CustomerName, amount)
	}
}
