package messaging

import (
	"fmt"
	"net/url"
)

// DeepLinks holds every handoff URL for one debtor and message, so the
// client can pick whichever app the owner prefers.
type DeepLinks struct {
	Tel           string `json:"tel"`
	SMS           string `json:"sms"`
	TelegramApp   string `json:"telegram_app"`
	TelegramWeb   string `json:"telegram_web"`
	TelegramShare string `json:"telegram_share"`
	WhatsApp      string `json:"whatsapp"`
}

// TelLink opens the dialer.
func TelLink(phone string) string {
	return "tel:" + DialDigits(phone)
}

// SMSLink opens the SMS composer with the message prefilled. iOS wants
// an ampersand before body, everything else a question mark.
func SMSLink(phone, message string, ios bool) string {
	separator := "?"
	if ios {
		separator = "&"
	}
	return fmt.Sprintf("sms:%s%sbody=%s", NormalizePhone(phone), separator, url.QueryEscape(message))
}

// TelegramAppLink tries the installed Telegram app directly.
func TelegramAppLink(phone, message string) string {
	return fmt.Sprintf("tg://resolve?domain=%s&text=%s", TelegramPhone(phone), url.QueryEscape(message))
}

// TelegramWebLink is the always-works web fallback.
func TelegramWebLink(phone string) string {
	return "https://t.me/" + TelegramPhone(phone)
}

// TelegramShareLink is the final fallback: a share composer with only
// the text, for when the number has no Telegram account.
func TelegramShareLink(message string) string {
	return "https://t.me/share/url?text=" + url.QueryEscape(message)
}

// WhatsAppLink opens a WhatsApp chat with the message prefilled.
func WhatsAppLink(phone, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", TelegramPhone(phone), url.QueryEscape(message))
}

// BuildLinks assembles the full link set for one phone and message.
func BuildLinks(phone, message string, ios bool) DeepLinks {
	return DeepLinks{
		Tel:           TelLink(phone),
		SMS:           SMSLink(phone, message, ios),
		TelegramApp:   TelegramAppLink(phone, message),
		TelegramWeb:   TelegramWebLink(phone),
		TelegramShare: TelegramShareLink(message),
		WhatsApp:      WhatsAppLink(phone, message),
	}
}
