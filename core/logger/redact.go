package logger

import (
	"strings"
	"unicode"
)

// redactor rewrites a field value that must not reach log sinks verbatim.
type redactor func(string) string

const redacted = "[redacted]"

var defaultRedactions = map[string]redactor{
	"phone":         maskPhone,
	"customer_name": func(string) string { return redacted },
	"address":       func(string) string { return redacted },
	"instructions":  func(string) string { return redacted },
	"text":          func(string) string { return redacted },
}

// maskPhone keeps the last two digits.
func maskPhone(s string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
	if len(digits) <= 2 {
		return redacted
	}
	return strings.Repeat("*", len(digits)-2) + digits[len(digits)-2:]
}

func redactFields(fields map[string]any, rules map[string]redactor) {
	for key, fn := range rules {
		v, ok := fields[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		fields[key] = fn(s)
	}
}
