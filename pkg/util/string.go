package util

import (
	"strings"
	"unicode/utf8"
)

// Truncate cuts s to at most max runes without splitting a multi-byte character.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// RuneLen is the length of s in characters rather than bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// ParseList splits a comma or newline separated list, trimming quotes and
// dropping blanks and duplicates (case-insensitive) while keeping order.
func ParseList(raw string) []string {
	if raw == "" {
		return []string{}
	}

	raw = strings.Trim(raw, "[]")
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	for i, f := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(f), "\"'")
	}

	return UniqueFold(CleanList(fields))
}

// UniqueFold drops case-insensitive duplicates, keeping the first spelling.
func UniqueFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// CleanList trims every entry and drops blanks.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Plural picks between the singular and plural noun for n.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
