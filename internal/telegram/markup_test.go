package telegram_test

import (
	"testing"

	"pharmabot/internal/telegram"
)

func TestEscapeMarkdown(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Aspirin", "Aspirin"},
		{"Aspirin 500mg (EU)", `Aspirin 500mg \(EU\)`},
		{"a.b-c!d", `a\.b\-c\!d`},
		{"_*[]()~`>#+-=|{}.!", "\\_\\*\\[\\]\\(\\)\\~\\`\\>\\#\\+\\-\\=\\|\\{\\}\\.\\!"},
		{"", ""},
	}
	for _, c := range cases {
		if got := telegram.EscapeMarkdown(c.in); got != c.want {
			t.Errorf("EscapeMarkdown(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
