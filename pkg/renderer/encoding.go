package renderer

import (
	"golang.org/x/text/encoding/charmap"
)

// Placeholder replaces runes the core fonts cannot show.
const Placeholder = '?'

// encodeWinAnsi converts text to Windows-1252, the encoding of the PDF core
// fonts. Tabs become spaces, other control characters and unsupported
// runes become Placeholder.
func encodeWinAnsi(text string) (encoded string) {
	buf := make([]byte, 0, len(text))
	for _, r := range text {
		if r == '\t' {
			buf = append(buf, ' ')
			continue
		}
		if r < 0x20 {
			buf = append(buf, Placeholder)
			continue
		}
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = Placeholder
		}
		buf = append(buf, b)
	}
	encoded = string(buf)
	return encoded
}
