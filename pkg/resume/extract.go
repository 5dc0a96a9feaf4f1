package resume

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// ExtractText returns the plain text of a PDF résumé, one entry per page
// joined with newlines. Pages without text contribute an empty string.
func ExtractText(data []byte) (text string, err error) {
	if len(data) == 0 {
		err = errors.New("resume PDF is empty")
		return text, err
	}

	// The PDF reader panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = errors.Errorf("failed to read resume PDF: %v", r)
		}
	}()

	var reader *pdf.Reader
	reader, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		err = errors.Wrap(err, "failed to open resume PDF")
		return text, err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		var pageText string
		pageText, err = page.GetPlainText(nil)
		if err != nil {
			err = errors.Wrapf(err, "failed to extract text from page %d", i)
			return text, err
		}
		pages = append(pages, pageText)
	}

	text = strings.Join(pages, "\n")
	return text, err
}

// Load reads a résumé from disk. PDFs are extracted, plain text and
// markdown files are returned as is.
func Load(path string) (text string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read resume file: %s", path)
		return text, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		text, err = ExtractText(data)
		if err != nil {
			err = errors.Wrapf(err, "resume %s", path)
			return text, err
		}
	case ".txt", ".md":
		text = string(data)
	default:
		err = errors.Errorf("unsupported resume format %q: use .pdf, .txt or .md", ext)
		return text, err
	}

	return text, err
}
