package llm

// ExtractJSONObject returns the first balanced JSON object found in free-form
// model output, or ok=false when there is none. Models wrap JSON in prose and
// code fences often enough that this lives behind one function; nothing else
// in the pipeline touches partial JSON.
func ExtractJSONObject(s string) ([]byte, bool) {
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
				return []byte(s[start : i+1]), true
			}
		}
	}
	return nil, false
}
