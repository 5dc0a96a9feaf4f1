package letter

import "strings"

// Sanitize normalizes model output for editing and rendering. Every line is
// trimmed and each run of blank lines collapses to a single empty line.
// Applying it twice gives the same result as applying it once.
func Sanitize(text string) (sanitized string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	inBlankRun := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if !inBlankRun {
				cleaned = append(cleaned, "")
			}
			inBlankRun = true
			continue
		}
		inBlankRun = false
		cleaned = append(cleaned, trimmed)
	}

	sanitized = strings.Join(cleaned, "\n")
	return sanitized
}
