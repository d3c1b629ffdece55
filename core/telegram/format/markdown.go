package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

const (
	mdV1Specials = "_*`["
	mdV2Specials = "_*[]()~`>#+-=|{}.!\\"
)

// EscapeMarkdown escapes special characters for MarkdownV1 or V2.
func EscapeMarkdown(text string, version int) (string, error) {
	var specials string
	switch version {
	case MarkdownV1:
		specials = mdV1Specials
	case MarkdownV2:
		specials = mdV2Specials
	default:
		return "", fmt.Errorf("unsupported markdown version: %d", version)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// Escape escapes user-provided text for MarkdownV1 messages.
func Escape(text string) string {
	out, _ := EscapeMarkdown(text, MarkdownV1)
	return out
}

// Money renders an amount as $12.34.
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
