package telegram

import "strings"

const reserved = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdown backslash-escapes MarkdownV2 reserved characters so
// arbitrary text (medicine names, user input) renders literally.
func EscapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
