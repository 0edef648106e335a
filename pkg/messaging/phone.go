// Package messaging turns ledger output into payment-reminder messages
// and OS deep links (tel, SMS, Telegram, WhatsApp) for contacting
// debtors.
package messaging

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

const regionET = "ET"

func digitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone converts whatever the shop owner typed into E.164 form
// for an Ethiopian number. Owners enter local forms like 0911234567 or
// 911234567; both become +251911234567. Anything with fewer than nine
// digits normalizes to the empty string.
func NormalizePhone(phone string) string {
	if strings.TrimSpace(phone) == "" {
		return ""
	}

	cleaned := digitsOnly(phone)
	if strings.HasPrefix(cleaned, "251") {
		cleaned = cleaned[3:]
	}
	if strings.HasPrefix(cleaned, "0") {
		cleaned = cleaned[1:]
	}
	if len(cleaned) < 9 {
		return ""
	}
	return "+251" + cleaned
}

// IsValidPhone reports whether the input normalizes to a number
// libphonenumber accepts as a valid Ethiopian number.
func IsValidPhone(phone string) bool {
	normalized := NormalizePhone(phone)
	if len(normalized) < 13 {
		return false
	}
	num, err := libphonenumber.Parse(normalized, regionET)
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(num)
}

// TelegramPhone is the normalized number without the leading plus, the
// form Telegram expects in its URLs.
func TelegramPhone(phone string) string {
	return strings.TrimPrefix(NormalizePhone(phone), "+")
}

// DialDigits strips everything but digits, the form the tel: scheme
// accepts as typed.
func DialDigits(phone string) string {
	return digitsOnly(phone)
}
