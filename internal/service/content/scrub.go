package content

import "regexp"

type scrubRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Order matters: URLs go first so the email rule never sees "user@host" inside
// a link, and phone numbers last so digits in links are already gone.
var scrubRules = []scrubRule{
	{regexp.MustCompile(`(?i)\bhttps?://\S+`), "[link]"},
	{regexp.MustCompile(`(?i)\bwww\.\S+`), "[link]"},
	{regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`), "[email]"},
	// International numbers need a leading "+"; local ones the 3-3-4
	// grouping. Dates, year ranges and 1.000.000 style figures fit neither.
	{regexp.MustCompile(`\+\d{1,3}[\s.\-]?\(?\d{1,4}\)?(?:[\s.\-]?\d{2,4}){2,4}\b`), "[phone]"},
	{regexp.MustCompile(`(?:\(\d{3}\)\s?|\b\d{3}[\s.\-])\d{3}[\s.\-]\d{4}\b`), "[phone]"},
}

// Scrub masks contact details and links in scraped text before it is sent
// to the language model or stored.
func Scrub(text string) string {
	for _, rule := range scrubRules {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text
}
