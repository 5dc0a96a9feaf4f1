package letter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCompanyName is returned when no company line can be found.
const DefaultCompanyName = "Company"

//nolint:gochecknoglobals // read-only lookup table
var companySuffixes = []string{
	", inc.", ", inc", ", llc",
	" incorporated", " inc.", " inc",
	" llc", " corporation", " corp.", " corp",
	" limited", " ltd.", " ltd",
	" co.", " co",
}

// ExtractCompanyName returns the first non-empty line after the "Date:" line
// of a letter header.
func ExtractCompanyName(text string) (company string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "Date:") {
			continue
		}
		for _, next := range lines[i+1:] {
			candidate := strings.TrimSpace(StripBold(next))
			if candidate != "" {
				company = candidate
				return company
			}
		}
	}

	company = DefaultCompanyName
	return company
}

// ExtractCandidateName returns the title-cased first line of the letter.
func ExtractCandidateName(text string) (name string) {
	for _, line := range strings.Split(text, "\n") {
		candidate := strings.TrimSpace(StripBold(line))
		if candidate == "" {
			continue
		}
		name = cases.Title(language.English).String(candidate)
		return name
	}
	return name
}

// Slug converts a company or person name into a lowercase, hyphenated
// filename component. Common company suffixes are dropped.
func Slug(name string) (slug string) {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	for _, suffix := range companySuffixes {
		if len(lower) > len(suffix) && strings.HasSuffix(lower, suffix) {
			lower = lower[:len(lower)-len(suffix)]
			break
		}
	}

	words := strings.FieldsFunc(lower, func(r rune) (separator bool) {
		separator = !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
		return separator
	})

	slug = strings.Join(words, "-")
	return slug
}
