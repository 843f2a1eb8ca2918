package records

import "strings"

var bibtexUnescaper = strings.NewReplacer(
	`\{`, "{",
	`\}`, "}",
	`\%`, "%",
	`\&`, "&",
	`\_`, "_",
	`\$`, "$",
)

// Unescape resolves the common BibTeX backslash escapes in a field value.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return bibtexUnescaper.Replace(s)
}
