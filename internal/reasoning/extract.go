package reasoning

import "strings"

// ExtractJSONObject pulls the first balanced JSON object out of free-form
// model output. It tolerates ``` fences and leading or trailing prose, and
// tracks string literals so braces inside strings do not confuse the scan.
func ExtractJSONObject(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	// Strip a fenced block if the whole payload is wrapped in one.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
