package renderer

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"github.com/nikogura/cover-letter/pkg/letter"
	"github.com/pkg/errors"
)

// ErrOutputTooSmall is returned when the generated document is implausibly short.
var ErrOutputTooSmall = errors.New("generated PDF seems too small to be valid")

// DefaultMinOutputBytes is the smallest output accepted as a real document.
const DefaultMinOutputBytes = 100

// Options controls page geometry and typography. Lengths are millimetres,
// FontSize is points.
type Options struct {
	PageWidth        float64
	PageHeight       float64
	Margin           float64
	FontFamily       string
	FontSize         float64
	LineHeight       float64
	BlankLineSpacing float64
	MinOutputBytes   int
	Title            string
	Author           string
}

// DefaultOptions returns A4 with 25.4 mm margins, Helvetica 11 pt, 6 mm lines
// and 4 mm spacing for blank lines.
func DefaultOptions() (opts Options) {
	opts = Options{
		PageWidth:        210,
		PageHeight:       297,
		Margin:           25.4,
		FontFamily:       "Helvetica",
		FontSize:         11,
		LineHeight:       6,
		BlankLineSpacing: 4,
		MinOutputBytes:   DefaultMinOutputBytes,
		Title:            "Cover Letter",
	}
	return opts
}

// Renderer lays out letter text onto PDF pages.
type Renderer struct {
	opts Options
}

// New validates opts and returns a Renderer.
func New(opts Options) (r *Renderer, err error) {
	if opts.PageWidth <= 0 || opts.PageHeight <= 0 {
		err = errors.Errorf("page size must be positive, got %vx%v", opts.PageWidth, opts.PageHeight)
		return r, err
	}

	if opts.Margin < 0 {
		err = errors.Errorf("margin must not be negative, got %v", opts.Margin)
		return r, err
	}

	if opts.FontSize <= 0 || opts.LineHeight <= 0 || opts.BlankLineSpacing < 0 {
		err = errors.New("font size and line height must be positive")
		return r, err
	}

	if opts.PageWidth-2*opts.Margin <= 0 || opts.PageHeight-2*opts.Margin < opts.LineHeight {
		err = errors.Errorf("margin %v leaves no writing area on a %vx%v page", opts.Margin, opts.PageWidth, opts.PageHeight)
		return r, err
	}

	if opts.FontFamily == "" {
		opts.FontFamily = "Helvetica"
	}

	if opts.MinOutputBytes <= 0 {
		opts.MinOutputBytes = DefaultMinOutputBytes
	}

	r = &Renderer{opts: opts}
	return r, err
}

// Render lays out text and returns the PDF bytes. Nothing is returned
// unless the whole document was produced and passes the size check.
func (r *Renderer) Render(text string) (pdfBytes []byte, err error) {
	var doc *gofpdf.Fpdf
	doc, _, err = r.layout(text)
	if err != nil {
		return pdfBytes, err
	}

	var buf bytes.Buffer
	err = doc.Output(&buf)
	if err != nil {
		err = errors.Wrap(err, "failed to generate PDF output")
		return pdfBytes, err
	}

	if buf.Len() < r.opts.MinOutputBytes {
		err = errors.Wrapf(ErrOutputTooSmall, "got %d bytes, want at least %d", buf.Len(), r.opts.MinOutputBytes)
		return pdfBytes, err
	}

	pdfBytes = buf.Bytes()
	return pdfBytes, err
}

// placement records one drawn run of text. Y is the top of its line box.
type placement struct {
	Page  int
	X     float64
	Y     float64
	Width float64
	Text  string
	Bold  bool
}

// layout draws every line of text and returns the document with what was placed where.
func (r *Renderer) layout(text string) (doc *gofpdf.Fpdf, placed []placement, err error) {
	doc = gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: r.opts.PageWidth, Ht: r.opts.PageHeight},
	})
	doc.SetMargins(r.opts.Margin, r.opts.Margin, r.opts.Margin)
	doc.SetAutoPageBreak(false, r.opts.Margin)
	doc.SetCreator("cover-letter", true)
	if r.opts.Title != "" {
		doc.SetTitle(r.opts.Title, true)
	}
	if r.opts.Author != "" {
		doc.SetAuthor(r.opts.Author, true)
	}

	doc.AddPage()
	doc.SetTextColor(0, 0, 0)
	doc.SetFont(r.opts.FontFamily, "", r.opts.FontSize)

	cursor := &pageCursor{
		doc:    doc,
		opts:   r.opts,
		x:      r.opts.Margin,
		y:      r.opts.Margin,
		page:   1,
		bolded: false,
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			cursor.y += r.opts.BlankLineSpacing
			continue
		}

		cursor.ensureRoom()
		for _, segment := range letter.ParseBold(line) {
			cursor.writeSegment(segment)
		}
		cursor.endLine()
	}

	err = doc.Error()
	if err != nil {
		err = errors.Wrap(err, "PDF layout failed")
		return doc, cursor.placed, err
	}

	placed = cursor.placed
	return doc, placed, err
}

// pageCursor is the writing position for a single layout call.
type pageCursor struct {
	doc     *gofpdf.Fpdf
	opts    Options
	x       float64
	y       float64
	page    int
	bolded  bool
	wrapped bool
	placed  []placement
}

func (c *pageCursor) left() (x float64) {
	x = c.opts.Margin
	return x
}

func (c *pageCursor) right() (x float64) {
	x = c.opts.PageWidth - c.opts.Margin
	return x
}

func (c *pageCursor) bottom() (y float64) {
	y = c.opts.PageHeight - c.opts.Margin
	return y
}

// ensureRoom starts a new page when the next line box would cross the bottom margin.
func (c *pageCursor) ensureRoom() {
	if c.y+c.opts.LineHeight <= c.bottom() {
		return
	}
	c.doc.AddPage()
	c.page++
	c.y = c.opts.Margin
}

// wrap moves to the start of the next visual line.
func (c *pageCursor) wrap() {
	c.y += c.opts.LineHeight
	c.x = c.left()
	c.wrapped = true
	c.ensureRoom()
}

// endLine finishes a source line.
func (c *pageCursor) endLine() {
	c.y += c.opts.LineHeight
	c.x = c.left()
	c.wrapped = false
}

func (c *pageCursor) setWeight(bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	c.doc.SetFont(c.opts.FontFamily, style, c.opts.FontSize)
	c.bolded = bold
}

// writeSegment draws a segment whole when it fits on the current or next
// line, otherwise word by word.
func (c *pageCursor) writeSegment(segment letter.Segment) {
	c.setWeight(segment.Bold)
	text := encodeWinAnsi(segment.Text)
	width := c.doc.GetStringWidth(text)

	if c.x+width <= c.right() {
		c.draw(text)
		return
	}

	if width <= c.right()-c.left() {
		c.wrap()
		c.draw(text)
		return
	}

	for _, word := range splitWords(text) {
		c.writeWord(word)
	}
}

func (c *pageCursor) writeWord(word string) {
	width := c.doc.GetStringWidth(word)
	if c.x+width > c.right() && c.x > c.left() {
		c.wrap()
	}

	if width > c.right()-c.left() {
		// Single word wider than the line: break between characters.
		for i := 0; i < len(word); i++ {
			char := word[i : i+1]
			if c.x+c.doc.GetStringWidth(char) > c.right() && c.x > c.left() {
				c.wrap()
			}
			c.draw(char)
		}
		return
	}

	c.draw(word)
}

// draw writes text at the cursor and advances x. Leading spaces are dropped
// at the start of a wrapped line.
func (c *pageCursor) draw(text string) {
	if c.wrapped && c.x == c.left() {
		text = strings.TrimLeft(text, " ")
	}
	if text == "" {
		return
	}

	width := c.doc.GetStringWidth(text)
	_, fontHeight := c.doc.GetFontSize()
	baseline := c.y + 0.5*c.opts.LineHeight + 0.3*fontHeight
	c.doc.Text(c.x, baseline, text)

	c.placed = append(c.placed, placement{
		Page:  c.page,
		X:     c.x,
		Y:     c.y,
		Width: width,
		Text:  text,
		Bold:  c.bolded,
	})

	c.x += width
	c.wrapped = false
}

// splitWords splits text into alternating runs of spaces and non-spaces.
func splitWords(text string) (words []string) {
	start := 0
	for i := 1; i <= len(text); i++ {
		if i == len(text) || isSpaceByte(text[i]) != isSpaceByte(text[i-1]) {
			words = append(words, text[start:i])
			start = i
		}
	}
	return words
}

func isSpaceByte(b byte) (space bool) {
	space = unicode.IsSpace(rune(b)) && b < 0x80
	return space
}
