// Package seo scores a page against an on-page SEO checklist.
package seo

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/seo-leads/internal/model"
)

// DefaultRobots is assumed when a page has no robots meta tag.
const DefaultRobots = "index,follow"

var noindexRe = regexp.MustCompile(`(?i)noindex`)

// Schema counts structured-data markers on the page.
type Schema struct {
	JSONLD    int `json:"jsonLd"`
	Microdata int `json:"microdata"`
	RDFa      int `json:"rdfa"`
}

// Report is the checklist outcome for one page.
type Report struct {
	Score          int      `json:"score"`
	Issues         []string `json:"issues"`
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	TitleLength    int      `json:"titleLength"`
	MetaDesc       string   `json:"metaDesc"`
	MetaDescLength int      `json:"metaDescLength"`
	Canonical      string   `json:"canonical"`
	MetaRobots     string   `json:"metaRobots"`
	Indexable      bool     `json:"indexable"`
	Headings       [6]int   `json:"headings"`
	LinkCount      int      `json:"linkCount"`
	ImageCount     int      `json:"imageCount"`
	MissingAlts    int      `json:"missingAlts"`
	BrokenLinks    int      `json:"brokenLinks"`
	RobotsTxt      string   `json:"robotsTxt"`
	Sitemap        string   `json:"sitemap"`
	Schema         Schema   `json:"schema"`
	OpenGraph      bool     `json:"openGraph"`
	Favicon        string   `json:"favicon"`
	Viewport       string   `json:"viewport"`
	Lang           string   `json:"langAttr"`
}

// Parse reads HTML from r and audits it as pageURL.
func Parse(pageURL string, r io.Reader) (*Report, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "seo: parse html")
	}
	return Audit(pageURL, doc), nil
}

// Audit runs the checklist. The score starts at 100 and each failed check
// deducts a fixed amount.
func Audit(pageURL string, doc *goquery.Document) *Report {
	base, _ := url.Parse(pageURL)
	rep := &Report{Score: 100, URL: pageURL}
	deduct := func(points int, issue string) {
		rep.Score -= points
		rep.Issues = append(rep.Issues, issue)
	}

	rep.Title = doc.Find("title").First().Text()
	rep.TitleLength = utf8.RuneCountInString(rep.Title)
	if rep.Title == "" || rep.TitleLength < 10 || rep.TitleLength > 60 {
		deduct(10, "Title is missing, too short, or too long.")
	}

	rep.MetaDesc = attr(doc, `meta[name="description"]`, "content")
	rep.MetaDescLength = utf8.RuneCountInString(rep.MetaDesc)
	if rep.MetaDesc == "" || rep.MetaDescLength < 50 || rep.MetaDescLength > 160 {
		deduct(10, "Meta description missing, too short, or too long.")
	}

	rep.Canonical = resolve(base, attr(doc, `link[rel="canonical"]`, "href"))
	if rep.Canonical == "" {
		deduct(5, "No canonical tag found.")
	}

	rep.MetaRobots = attr(doc, `meta[name="robots"]`, "content")
	if rep.MetaRobots == "" {
		rep.MetaRobots = DefaultRobots
	}
	rep.Indexable = !noindexRe.MatchString(rep.MetaRobots)

	for i := range rep.Headings {
		rep.Headings[i] = doc.Find(fmt.Sprintf("h%d", i+1)).Length()
	}
	switch {
	case rep.Headings[0] == 0:
		deduct(10, "No H1 tag found.")
	case rep.Headings[0] > 1:
		deduct(5, "Multiple H1 tags found.")
	}

	images := doc.Find("img")
	rep.ImageCount = images.Length()
	images.Each(func(_ int, s *goquery.Selection) {
		if alt, _ := s.Attr("alt"); alt == "" {
			rep.MissingAlts++
		}
	})
	if rep.MissingAlts > 0 {
		deduct(5, fmt.Sprintf("%d image(s) missing alt attributes.", rep.MissingAlts))
	}

	links := doc.Find("a[href]")
	rep.LinkCount = links.Length()
	links.Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || href == "#" {
			rep.BrokenLinks++
		}
	})
	if rep.BrokenLinks > 0 {
		deduct(5, fmt.Sprintf("%d broken link(s) found.", rep.BrokenLinks))
	}

	rep.Schema = Schema{
		JSONLD:    doc.Find(`script[type="application/ld+json"]`).Length(),
		Microdata: doc.Find("[itemscope]").Length(),
		RDFa:      doc.Find("[typeof]").Length(),
	}
	if rep.Schema == (Schema{}) {
		deduct(5, "No schema markup found.")
	}

	rep.OpenGraph = doc.Find(`meta[property^="og:"]`).Length() > 0
	if !rep.OpenGraph {
		deduct(3, "Open Graph tags missing.")
	}

	rep.Favicon = resolve(base, attr(doc, `link[rel*="icon"]`, "href"))
	if rep.Favicon == "" {
		deduct(2, "Favicon missing.")
	}

	rep.Viewport = attr(doc, `meta[name="viewport"]`, "content")
	if rep.Viewport == "" {
		deduct(2, "Viewport meta tag missing.")
	}

	rep.Lang, _ = doc.Find("html").First().Attr("lang")
	rep.Lang = strings.TrimSpace(rep.Lang)
	if rep.Lang == "" {
		deduct(2, "Missing HTML lang attribute.")
	}

	if origin, err := model.Origin(pageURL); err == nil {
		rep.RobotsTxt = origin + "/robots.txt"
		rep.Sitemap = origin + "/sitemap.xml"
	}
	return rep
}

func attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

func resolve(base *url.URL, href string) string {
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
