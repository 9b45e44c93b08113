package extract

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"

	"github.com/sells-group/seo-leads/internal/model"
)

// skipText lists elements whose text is never rendered.
var skipText = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"svg":      true,
}

// blockTags get a line break after their content so text from adjacent
// blocks does not run together.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// ParseHTML builds a PageSnapshot from an HTML document. Relative anchor
// hrefs are resolved against pageURL the way a browser reports a.href.
func ParseHTML(pageURL string, r io.Reader) (model.PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return model.PageSnapshot{}, eris.Wrap(err, "extract: parse html")
	}
	return FromDocument(pageURL, doc), nil
}

// FromDocument builds a PageSnapshot from an already parsed document.
func FromDocument(pageURL string, doc *goquery.Document) model.PageSnapshot {
	base, _ := url.Parse(pageURL)

	snap := model.PageSnapshot{
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	var sb strings.Builder
	for _, n := range doc.Nodes {
		visibleText(&sb, n)
	}
	snap.Text = strings.TrimSpace(sb.String())

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		snap.Anchors = append(snap.Anchors, model.Anchor{
			Href: resolveHref(base, strings.TrimSpace(href)),
			Text: strings.Join(strings.Fields(s.Text()), " "),
		})
	})

	return snap
}

func visibleText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipText[n.Data] {
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visibleText(sb, c)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		sb.WriteByte('\n')
	}
}

func resolveHref(base *url.URL, href string) string {
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.Scheme != "" {
		return href
	}
	return base.ResolveReference(ref).String()
}
