package ai

import "errors"

// ErrNoJSONObject is returned when a response contains no balanced JSON object.
var ErrNoJSONObject = errors.New("no JSON object found in response")

// FirstJSONObject returns the first balanced {...} span in s. Model responses
// are often wrapped in prose or markdown fences; only the object itself is
// parseable. Braces inside JSON strings (including escaped quotes) are ignored.
func FirstJSONObject(s string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", ErrNoJSONObject
}
