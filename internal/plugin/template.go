package plugin

import "strings"

// Fill replaces every ${key} in s with lookup(key). Placeholders whose key
// is unknown are left untouched.
func Fill(s string, lookup func(key string) (string, bool)) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.IndexByte(s[start+2:], '}')
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		end += start + 2

		b.WriteString(s[:start])
		key := s[start+2 : end]
		if v, ok := lookup(key); ok {
			b.WriteString(v)
		} else {
			b.WriteString(s[start : end+1])
		}
		s = s[end+1:]
	}
}

// FillVersion substitutes ${version}.
func FillVersion(s, version string) string {
	return Fill(s, func(key string) (string, bool) {
		if key == "version" {
			return version, true
		}
		return "", false
	})
}
