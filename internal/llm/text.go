package llm

import "strings"

// StripCodeFence removes a Markdown code fence around model output, e.g.
// "```json\n{...}\n```". Text without a fence is returned trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)

	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	body := s[start+3:]

	// Drop the info string ("json", "JSON", ...).
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[\"") {
		body = body[nl+1:]
	} else {
		body = strings.TrimLeftFunc(body, func(r rune) bool {
			return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		})
	}

	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// Text returns the response content as plain text. Providers place raw model
// text in Content when no Schema was requested.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Content))
}
