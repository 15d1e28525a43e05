package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reQuery  = regexp.MustCompile(`^[A-Za-z0-9 '\-]{1,50}$`)
	reChatID = regexp.MustCompile(`^-?[0-9]{1,19}$`)
)

// MedicineQuery validates a medicine search fragment typed in chat:
// trims, enforces allowed characters and max length.
func MedicineQuery(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQuery.MatchString(s)
}

// Qty parses an order quantity, clamping to a sane window to avoid abuse.
func Qty(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	}
	return n
}

// ChatID parses a Telegram chat id from a deep-link payload.
func ChatID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !reChatID.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
