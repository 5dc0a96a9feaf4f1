package letter

import "strings"

// Segment is a run of text drawn in a single font weight.
type Segment struct {
	Text string
	Bold bool
}

// ParseBold splits a line on ** markers. Bold toggles at every marker,
// starting off, and an unterminated bold run continues to the end of the line.
// Markers never appear in the output and empty segments are not emitted.
func ParseBold(line string) (segments []Segment) {
	bold := false
	start := 0

	i := 0
	for i < len(line) {
		if line[i] == '*' && i+1 < len(line) && line[i+1] == '*' {
			segments = appendSegment(segments, line[start:i], bold)
			bold = !bold
			i += 2
			start = i
			continue
		}
		i++
	}

	segments = appendSegment(segments, line[start:], bold)

	return segments
}

// StripBold returns the line with every ** marker removed.
func StripBold(line string) (plain string) {
	var builder strings.Builder
	for _, segment := range ParseBold(line) {
		builder.WriteString(segment.Text)
	}
	plain = builder.String()
	return plain
}

func appendSegment(segments []Segment, text string, bold bool) (result []Segment) {
	result = segments
	if text == "" {
		return result
	}
	result = append(result, Segment{Text: text, Bold: bold})
	return result
}
