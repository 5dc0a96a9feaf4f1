package jd

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// htmlToText returns the visible text of an HTML document. Script and style
// content is dropped, block elements start new lines, and runs of
// whitespace inside a line collapse to a single space.
func htmlToText(r io.Reader) (text string, err error) {
	var doc *html.Node
	doc, err = html.Parse(r)
	if err != nil {
		err = errors.Wrap(err, "failed to parse HTML")
		return text, err
	}

	var b strings.Builder
	collectText(doc, &b)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	text = strings.Join(lines, "\n")
	return text, err
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if isHidden(n.DataAtom) {
			return
		}
	}

	block := n.Type == html.ElementNode && isBlock(n.DataAtom)
	if block {
		b.WriteString("\n")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}

	if block {
		b.WriteString("\n")
	}
}

func isHidden(a atom.Atom) (hidden bool) {
	switch a {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg:
		hidden = true
	}
	return hidden
}

func isBlock(a atom.Atom) (block bool) {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.Li, atom.Ul, atom.Ol,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Table, atom.Tr, atom.Section, atom.Article, atom.Header,
		atom.Footer, atom.Title, atom.Pre, atom.Blockquote, atom.Dd, atom.Dt:
		block = true
	}
	return block
}
