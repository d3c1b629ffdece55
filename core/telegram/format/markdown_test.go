package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEscapeMarkdownV1(t *testing.T) {
	got, err := EscapeMarkdown("john_doe *vip* [x] `c`", MarkdownV1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "john\\_doe \\*vip\\* \\[x] \\`c\\`"
	if got != want {
		t.Fatalf("unexpected escape:\n got: %q\nwant: %q", got, want)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	got, err := EscapeMarkdown("1.5-2 (kg)!", MarkdownV2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1\\.5\\-2 \\(kg\\)\\!"
	if got != want {
		t.Fatalf("unexpected escape:\n got: %q\nwant: %q", got, want)
	}
	if plain, _ := EscapeMarkdown("abc 123", MarkdownV2); plain != "abc 123" {
		t.Fatalf("plain text must be unchanged, got %q", plain)
	}
}

func TestEscapeMarkdownUnsupported(t *testing.T) {
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestMoney(t *testing.T) {
	if got := Money(decimal.RequireFromString("15.9")); got != "$15.90" {
		t.Fatalf("unexpected money: %q", got)
	}
}
