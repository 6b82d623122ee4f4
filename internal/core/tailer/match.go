package tailer

import "strings"

// Match returns the first keyword, in declared order, contained in line.
// Comparison is a case-insensitive substring test; keywords must already be
// lowercase.
func Match(line string, keywords []string) (string, bool) {
	lowerLine := strings.ToLower(line)
	for _, keyword := range keywords {
		if strings.Contains(lowerLine, keyword) {
			return keyword, true
		}
	}
	return "", false
}
