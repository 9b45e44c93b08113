// Package report renders combined SEO, page-speed and lead reports and
// exports the lead table.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/internal/seo"
	"github.com/sells-group/seo-leads/internal/speed"
	"github.com/sells-group/seo-leads/pkg/pagerank"
	"github.com/sells-group/seo-leads/pkg/pagespeed"
)

// Input gathers everything known about one page. Any part may be nil.
type Input struct {
	SEO         *seo.Report
	PageRank    *pagerank.Entry
	Audit       *speed.Audit
	Lead        *model.Lead
	GeneratedAt time.Time
}

// WriteMarkdown renders in as a markdown document.
func WriteMarkdown(w io.Writer, in Input) error {
	md := markdown.NewMarkdown(w)

	md.H1("SEO Report")
	md.PlainText("")
	if !in.GeneratedAt.IsZero() {
		md.PlainText("Generated " + in.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
		md.PlainText("")
	}

	writeSEO(md, in.SEO, in.PageRank)
	writeSpeed(md, in.Audit)
	writeLead(md, in.Lead)

	return md.Build()
}

func writeSEO(md *markdown.Markdown, r *seo.Report, rank *pagerank.Entry) {
	if r == nil {
		md.PlainText("No SEO data available.")
		md.PlainText("")
		return
	}

	rows := [][]string{
		{"Score", fmt.Sprintf("%d/100", r.Score)},
		{"URL", r.URL},
		{"Title", fmt.Sprintf("%s (%d chars)", dash(r.Title), r.TitleLength)},
		{"Description", fmt.Sprintf("%s (%d chars)", dash(r.MetaDesc), r.MetaDescLength)},
		{"Canonical", orMissing(r.Canonical)},
		{"Meta Robots", r.MetaRobots},
		{"Indexable", yesNo(r.Indexable)},
	}
	if rank != nil {
		rows = append(rows, []string{"PageRank", strconv.FormatFloat(rank.PageRankDecimal, 'f', -1, 64)})
	}
	md.Table(markdown.TableSet{Header: []string{"Check", "Value"}, Rows: rows})
	md.PlainText("")

	md.H3("Other Checks")
	md.PlainText("")
	md.BulletList(
		"Open Graph: "+found(r.OpenGraph),
		"Favicon: "+found(r.Favicon != ""),
		"Viewport: "+found(r.Viewport != ""),
		"Language Attribute: "+orMissing(r.Lang),
		fmt.Sprintf("Schema: JSON-LD %d, Microdata %d, RDFa %d", r.Schema.JSONLD, r.Schema.Microdata, r.Schema.RDFa),
	)
	md.PlainText("")

	md.H3("Issues")
	md.PlainText("")
	if len(r.Issues) == 0 {
		md.PlainText("No major issues found.")
	} else {
		md.BulletList(r.Issues...)
	}
	md.PlainText("")

	md.H3("Files")
	md.PlainText("")
	md.BulletList("Robots.txt: "+dash(r.RobotsTxt), "Sitemap.xml: "+dash(r.Sitemap))
	md.PlainText("")

	md.H3("Headings Count")
	md.PlainText("")
	h := r.Headings
	md.PlainText(fmt.Sprintf("H1: %d, H2: %d, H3: %d, H4: %d, H5: %d, H6: %d", h[0], h[1], h[2], h[3], h[4], h[5]))
	md.PlainText(fmt.Sprintf("Links: %d, Images: %d", r.LinkCount, r.ImageCount))
	md.PlainText("")
}

func writeSpeed(md *markdown.Markdown, a *speed.Audit) {
	md.H2("PageSpeed Insights")
	md.PlainText("")

	var desktop, mobile *pagespeed.Result
	if a != nil {
		desktop, mobile = a.Desktop, a.Mobile
	}
	writeStrategy(md, "Desktop", desktop)
	writeStrategy(md, "Mobile", mobile)
}

func writeStrategy(md *markdown.Markdown, label string, r *pagespeed.Result) {
	md.H3(label)
	md.PlainText("")
	if r == nil {
		md.PlainText(fmt.Sprintf("No %s data available.", strings.ToLower(label)))
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Performance", scoreText(r.PerformanceScore)},
			{"FCP", na(r.FCP)},
			{"LCP", na(r.LCP)},
			{"CLS", na(r.CLS)},
			{"TBT", na(r.TBT)},
		},
	})
	md.PlainText("")
}

func writeLead(md *markdown.Markdown, l *model.Lead) {
	md.H2("Lead Data")
	md.PlainText("")
	if l == nil {
		md.PlainText("No lead data available.")
		md.PlainText("")
		return
	}
	rows := make([][]string, 0, len(Columns))
	for i, v := range Row(*l) {
		rows = append(rows, []string{Columns[i], dash(v)})
	}
	md.Table(markdown.TableSet{Header: []string{"Field", "Value"}, Rows: rows})
	md.PlainText("")
}

func scoreText(n *int) string {
	if n == nil {
		return pagespeed.NotAvailable
	}
	return fmt.Sprintf("%d/100", *n)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func na(s string) string {
	if s == "" {
		return pagespeed.NotAvailable
	}
	return s
}

func orMissing(s string) string {
	if s == "" {
		return "Missing"
	}
	return s
}

func found(ok bool) string {
	if ok {
		return "Found"
	}
	return "Missing"
}

func yesNo(ok bool) string {
	if ok {
		return "Yes"
	}
	return "No"
}
