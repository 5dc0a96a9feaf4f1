package letter

import (
	"strings"
	"testing"
	"testing/quick"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses blank run",
			input: "Line1\n\n\n\nLine2",
			want:  "Line1\n\nLine2",
		},
		{
			name:  "keeps single blank",
			input: "Line1\n\nLine2",
			want:  "Line1\n\nLine2",
		},
		{
			name:  "whitespace-only lines are blank",
			input: "Line1\n   \n\t\nLine2",
			want:  "Line1\n\nLine2",
		},
		{
			name:  "trims lines",
			input: "  Dear Hiring Manager,   \nBody text\t",
			want:  "Dear Hiring Manager,\nBody text",
		},
		{
			name:  "crlf",
			input: "Line1\r\n\r\n\r\nLine2\r\n",
			want:  "Line1\n\nLine2\n",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "leading blank run",
			input: "\n\n\nSincerely,",
			want:  "\nSincerely,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	idempotent := func(lines []string) (ok bool) {
		input := strings.Join(lines, "\n")
		once := Sanitize(input)
		ok = Sanitize(once) == once
		return ok
	}

	err := quick.Check(idempotent, nil)
	if err != nil {
		t.Error(err)
	}

	samples := []string{
		"\n\n\n",
		" a \n\n \n b \n\n",
		"**Name**\nEmail: x\n\n\n\nDate: January 05, 2025\r\n\r\nAcme",
	}
	for _, sample := range samples {
		once := Sanitize(sample)
		if Sanitize(once) != once {
			t.Errorf("Sanitize not idempotent for %q", sample)
		}
	}
}

func TestSanitizeNoConsecutiveBlankLines(t *testing.T) {
	input := "a\n\n\n\nb\n \n\t\n\nc\n\n\n"
	output := Sanitize(input)

	if strings.Contains(output, "\n\n\n") {
		t.Errorf("Output still contains consecutive blank lines: %q", output)
	}

	for _, line := range strings.Split(output, "\n") {
		if line != strings.TrimSpace(line) {
			t.Errorf("Line %q was not trimmed", line)
		}
	}
}
