package models

import "strings"

// SplitTokens normalizes a comma-joined token string into an ordered token
// list. Each segment is trimmed and empty segments are dropped. Token fields
// arrive from the CRUD layer either as arrays or comma-joined strings, so
// normalization happens here, at the model boundary, and nowhere else.
func SplitTokens(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tokens = append(tokens, p)
	}
	return tokens
}

// JoinTokens is the inverse of SplitTokens for persistence.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, ", ")
}

// dedupeTokens preserves first-occurrence order.
func dedupeTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
