// Package htmltext projects stored rich-text HTML onto a plain-text view and
// maps plain-text offsets back into the document structure. The editor session
// and the ghost-text coordinator address the document exclusively through
// these plain-text offsets, so projection and mutation must stay consistent
// with each other. All offsets count runes, not bytes.
package htmltext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "blockquote": true, "pre": true, "div": true,
	"ul": true, "ol": true,
}

// Doc is a parsed HTML fragment open for offset-addressed mutation.
type Doc struct {
	nodes []*html.Node
}

// Parse parses an HTML fragment as it would appear inside <body>.
func Parse(fragment string) (*Doc, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return nil, err
	}
	return &Doc{nodes: nodes}, nil
}

// Render serializes the fragment back to HTML.
func (d *Doc) Render() string {
	var b strings.Builder
	for _, n := range d.nodes {
		// Render only fails on unsupported node types, which ParseFragment
		// never produces.
		_ = html.Render(&b, n)
	}
	return b.String()
}

// span records where a text node's content starts in the plain projection,
// as a rune offset.
type span struct {
	node  *html.Node
	start int
}

// collect walks the fragment depth-first, building the plain-text projection.
// Text nodes contribute their data; <br> and block-element boundaries
// contribute a single newline. The trailing block newline is trimmed so the
// projection's length equals the last addressable offset.
func (d *Doc) collect() ([]span, string) {
	var spans []span
	var b strings.Builder
	pos := 0 // rune offset into the projection

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			spans = append(spans, span{node: n, start: pos})
			b.WriteString(n.Data)
			pos += utf8.RuneCountInString(n.Data)
		case html.ElementNode:
			if n.Data == "br" {
				b.WriteString("\n")
				pos++
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if blockTags[n.Data] && b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
				pos++
			}
		}
	}
	for _, n := range d.nodes {
		walk(n)
	}
	return spans, strings.TrimSuffix(b.String(), "\n")
}

// Text returns the plain-text projection of the fragment.
func (d *Doc) Text() string {
	_, text := d.collect()
	return text
}

// Len returns the rune length of the plain-text projection.
func (d *Doc) Len() int {
	return utf8.RuneCountInString(d.Text())
}

// InsertAt inserts s at the given plain-text rune offset. An offset < 0 or
// past the end appends after the last text in the document. Offsets that fall
// on a block separator insert at the start of the following text run.
func (d *Doc) InsertAt(offset int, s string) {
	spans, text := d.collect()
	if len(spans) == 0 {
		d.appendParagraph(s)
		return
	}
	if offset < 0 || offset >= utf8.RuneCountInString(text) {
		last := spans[len(spans)-1].node
		last.Data += s
		return
	}
	for i, sp := range spans {
		runes := []rune(sp.node.Data)
		end := sp.start + len(runes)
		if offset >= sp.start && offset < end {
			local := offset - sp.start
			sp.node.Data = string(runes[:local]) + s + string(runes[local:])
			return
		}
		// Offset sits on a separator before the next text run.
		if offset < sp.start {
			sp.node.Data = s + sp.node.Data
			return
		}
		if i == len(spans)-1 {
			sp.node.Data += s
		}
	}
}

// ReplaceRange removes the plain-text rune range [from, to) and inserts repl
// in its place. Offsets are clamped to the document bounds.
func (d *Doc) ReplaceRange(from, to int, repl string) {
	_, text := d.collect()
	n := utf8.RuneCountInString(text)
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from > to {
		from = to
	}
	if from == to {
		d.InsertAt(from, repl)
		return
	}
	spans, _ := d.collect()
	inserted := false
	for _, sp := range spans {
		runes := []rune(sp.node.Data)
		end := sp.start + len(runes)
		if end <= from || sp.start >= to {
			continue
		}
		cutFrom := max(from-sp.start, 0)
		cutTo := min(to-sp.start, len(runes))
		// The replacement goes where the range starts: the first text run
		// the range touches.
		ins := ""
		if !inserted {
			ins = repl
			inserted = true
		}
		sp.node.Data = string(runes[:cutFrom]) + ins + string(runes[cutTo:])
	}
	if !inserted {
		d.InsertAt(from, repl)
	}
}

// appendParagraph adds a new <p> holding s to a document with no text.
func (d *Doc) appendParagraph(s string) {
	text := &html.Node{Type: html.TextNode, Data: s}
	if last := d.lastElement(); last != nil {
		last.AppendChild(text)
		return
	}
	p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
	p.AppendChild(text)
	d.nodes = append(d.nodes, p)
}

func (d *Doc) lastElement() *html.Node {
	for i := len(d.nodes) - 1; i >= 0; i-- {
		if d.nodes[i].Type == html.ElementNode {
			return d.nodes[i]
		}
	}
	return nil
}

// FirstHeading returns the text of the first <h1>, or "" if none exists.
func (d *Doc) FirstHeading() string {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "h1" {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range d.nodes {
		walk(n)
	}
	if found == nil {
		return ""
	}
	sub := &Doc{nodes: []*html.Node{found}}
	return strings.TrimSpace(sub.Text())
}

// Text returns the plain-text projection of an HTML fragment. Unparseable
// input degrades to the raw string rather than failing.
func Text(fragment string) string {
	doc, err := Parse(fragment)
	if err != nil {
		return fragment
	}
	return doc.Text()
}

// FirstHeading returns the first <h1> text of an HTML fragment, or "".
func FirstHeading(fragment string) string {
	doc, err := Parse(fragment)
	if err != nil {
		return ""
	}
	return doc.FirstHeading()
}

// InsertAt returns the fragment with s inserted at the plain-text offset.
func InsertAt(fragment string, offset int, s string) (string, error) {
	doc, err := Parse(fragment)
	if err != nil {
		return "", err
	}
	doc.InsertAt(offset, s)
	return doc.Render(), nil
}

// ReplaceRange returns the fragment with the plain-text range [from, to)
// replaced by repl.
func ReplaceRange(fragment string, from, to int, repl string) (string, error) {
	doc, err := Parse(fragment)
	if err != nil {
		return "", err
	}
	doc.ReplaceRange(from, to, repl)
	return doc.Render(), nil
}

// Collapse reduces all whitespace runs in s to single spaces and trims the
// ends, matching the assistant's stripped document projection.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
