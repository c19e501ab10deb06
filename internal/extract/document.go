package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Document is a read-only view over parsed page markup. It answers the tag and
// attribute queries the signal rules need and exposes a plain-text rendering.
// A zero Document (or nil) behaves like an empty page.
type Document struct {
	root *html.Node
	text string
	// markup records whether the raw input held any tag at all.
	markup bool
}

// Parse builds a Document from raw markup. Malformed input never fails: the
// HTML5 parser recovers what it can and an unusable body yields an empty
// document.
func Parse(input []byte) *Document {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return &Document{}
	}
	d := &Document{root: node, markup: hasTag(input)}
	var b strings.Builder
	collectPlainText(&b, node)
	d.text = b.String()
	return d
}

// Text returns every text node outside script/style/template, concatenated
// without separators.
func (d *Document) Text() string {
	if d == nil {
		return ""
	}
	return d.text
}

// Title returns the trimmed <title> text, if any.
func (d *Document) Title() string {
	t := d.First("title")
	if t == nil {
		return ""
	}
	return strings.TrimSpace(nodeText(t))
}

// Empty reports whether the input was not markup at all (no tag anywhere),
// or was a bare html/head/body skeleton with no text. A body holding only
// text is not empty.
func (d *Document) Empty() bool {
	if d == nil || d.root == nil || !d.markup {
		return true
	}
	skeleton := d.Find(func(n *html.Node) bool {
		switch strings.ToLower(n.Data) {
		case "html", "head", "body":
			return false
		}
		return true
	}) == nil
	return skeleton && strings.TrimSpace(d.text) == ""
}

// hasTag reports whether the tokenizer sees a start tag, self-closing tag
// or doctype in input.
func hasTag(input []byte) bool {
	z := html.NewTokenizer(bytes.NewReader(input))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken, html.DoctypeToken:
			return true
		}
	}
}

// Has reports whether any element with one of the given tag names exists.
func (d *Document) Has(tags ...string) bool {
	return d.Find(matchTags(tags)) != nil
}

// Count returns the number of elements matching any of the given tag names.
func (d *Document) Count(tags ...string) int {
	n := 0
	d.Each(matchTags(tags), func(*html.Node) { n++ })
	return n
}

// First returns the first element with the given tag name in document order.
func (d *Document) First(tag string) *html.Node {
	return d.Find(matchTags([]string{tag}))
}

// Find returns the first element node for which match returns true.
func (d *Document) Find(match func(*html.Node) bool) *html.Node {
	if d == nil || d.root == nil {
		return nil
	}
	var res *html.Node
	var dfs func(*html.Node) bool
	dfs = func(cur *html.Node) bool {
		if cur.Type == html.ElementNode && match(cur) {
			res = cur
			return true
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if dfs(c) {
				return true
			}
		}
		return false
	}
	dfs(d.root)
	return res
}

// Each calls fn for every element node accepted by match, in document order.
func (d *Document) Each(match func(*html.Node) bool, fn func(*html.Node)) {
	if d == nil || d.root == nil {
		return
	}
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.ElementNode && match(cur) {
			fn(cur)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
}

// Attr returns the value of the named attribute and whether it was present.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func matchTags(tags []string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, t := range tags {
			if strings.EqualFold(n.Data, t) {
				return true
			}
		}
		return false
	}
}

// nodeText returns the descendant text of n, skipping non-content containers.
func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectPlainText(&b, c)
	}
	return b.String()
}

func collectPlainText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch strings.ToLower(n.Data) {
		case "script", "style", "template":
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectPlainText(b, c)
	}
}
