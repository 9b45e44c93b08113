// Package extract scrapes raw lead candidates (emails, phones, social links,
// address and business name) out of a rendered page snapshot.
package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/seo-leads/internal/model"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Optional +CC, optional (area) group, then digit runs joined by a single
	// space, dot or hyphen. Digit count is checked separately.
	phoneRe = regexp.MustCompile(`(?:\+\d{1,3}[ .\-]?)?(?:\(\d{1,4}\)[ .\-]?)?\d{1,4}(?:[ .\-]?\d{2,4}){1,4}`)

	zipRe = regexp.MustCompile(`\b\d{4,6}\b`)
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 13

	// Address text must be longer than this after whitespace collapsing.
	minAddressLen = 8
)

// mapLinkPatterns are the href fragments that mark an anchor as a map link.
var mapLinkPatterns = []string{
	"google.com/maps",
	"maps.google.",
	"goo.gl/maps",
	"maps.app.goo.gl",
}

// socialDomains lists the hosts accepted for each network.
var socialDomains = map[model.Network][]string{
	model.NetworkFacebook:  {"facebook.com", "fb.com"},
	model.NetworkInstagram: {"instagram.com"},
	model.NetworkTwitter:   {"twitter.com", "x.com"},
	model.NetworkLinkedIn:  {"linkedin.com"},
	model.NetworkYouTube:   {"youtube.com", "youtu.be"},
}

// Extract returns every raw candidate found on the page. It performs no I/O
// and never fails: missing or malformed content yields empty values.
func Extract(snap model.PageSnapshot) model.RawScrape {
	raw := model.RawScrape{
		Emails:  extractEmails(snap),
		Phones:  extractPhones(snap),
		Socials: extractSocials(snap.Anchors),
		Title:   NameFromTitle(snap.Title),
	}
	raw.Address, raw.Zip = extractAddress(snap.Anchors)
	return raw
}

func extractEmails(snap model.PageSnapshot) []string {
	var set stringSet
	for _, a := range snap.Anchors {
		rest, ok := cutSchemeFold(a.Href, "mailto:")
		if !ok {
			continue
		}
		if i := strings.IndexByte(rest, '?'); i >= 0 {
			rest = rest[:i]
		}
		if dec, err := url.PathUnescape(rest); err == nil {
			rest = dec
		}
		for _, addr := range strings.Split(rest, ",") {
			addr = strings.TrimSpace(addr)
			if strings.Contains(addr, "@") {
				set.add(addr)
			}
		}
	}
	for _, m := range emailRe.FindAllString(snap.Text, -1) {
		set.add(m)
	}
	return set.items
}

func extractPhones(snap model.PageSnapshot) []string {
	var set stringSet
	for _, a := range snap.Anchors {
		rest, ok := cutSchemeFold(a.Href, "tel:")
		if !ok {
			continue
		}
		if dec, err := url.PathUnescape(rest); err == nil {
			rest = dec
		}
		set.add(strings.TrimSpace(rest))
	}
	for _, m := range phoneRe.FindAllString(snap.Text, -1) {
		if n := countDigits(m); n >= minPhoneDigits && n <= maxPhoneDigits && !looksLikeDate(m) {
			set.add(strings.TrimSpace(m))
		}
	}
	return set.items
}

func extractSocials(anchors []model.Anchor) map[model.Network][]string {
	out := make(map[model.Network][]string, len(socialDomains))
	for _, n := range model.AllNetworks() {
		out[n] = []string{}
	}
	for _, a := range anchors {
		href := strings.TrimSpace(a.Href)
		if href == "" {
			continue
		}
		for _, n := range model.AllNetworks() {
			if matchesDomain(href, socialDomains[n]) {
				out[n] = append(out[n], href)
			}
		}
	}
	return out
}

// matchesDomain reports whether href points at one of domains or a subdomain
// of it. Unparseable hrefs fall back to a bounded substring check.
func matchesDomain(href string, domains []string) bool {
	u, err := url.Parse(href)
	if err == nil && u.Hostname() != "" {
		host := strings.ToLower(u.Hostname())
		for _, d := range domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return true
			}
		}
		return false
	}
	lower := strings.ToLower(href)
	for _, d := range domains {
		if strings.Contains(lower, "/"+d) || strings.Contains(lower, "."+d) {
			return true
		}
	}
	return false
}

func extractAddress(anchors []model.Anchor) (address, zip string) {
	for _, a := range anchors {
		if !isMapLink(a.Href) {
			continue
		}
		text := strings.Join(strings.Fields(a.Text), " ")
		if utf8.RuneCountInString(text) <= minAddressLen {
			return "", ""
		}
		return text, zipRe.FindString(text)
	}
	return "", ""
}

func isMapLink(href string) bool {
	lower := strings.ToLower(href)
	for _, p := range mapLinkPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// NameFromTitle derives a business name from a document title. The part
// before the first dash separator (en or em dash) wins; otherwise the part
// before the first vertical bar.
func NameFromTitle(title string) string {
	t := strings.TrimSpace(title)
	if i := strings.IndexAny(t, "–—"); i >= 0 {
		return strings.TrimSpace(t[:i])
	}
	if i := strings.IndexByte(t, '|'); i >= 0 {
		return strings.TrimSpace(t[:i])
	}
	return t
}

func cutSchemeFold(href, scheme string) (string, bool) {
	href = strings.TrimSpace(href)
	if len(href) < len(scheme) || !strings.EqualFold(href[:len(scheme)], scheme) {
		return "", false
	}
	return href[len(scheme):], true
}

// looksLikeDate reports whether a bare digit match is a year range or a
// calendar date ("2019-2024", "2024-01-15", "20240115") rather than a number.
func looksLikeDate(m string) bool {
	if strings.ContainsAny(m, "+(") {
		return false
	}
	groups := strings.FieldsFunc(m, func(r rune) bool { return r < '0' || r > '9' })
	if len(groups) == 1 {
		g := groups[0]
		return len(g) == 8 && isYear(g[:4]) && inRange(g[4:6], 1, 12) && inRange(g[6:], 1, 31)
	}
	if !isYear(groups[0]) {
		return false
	}
	for _, g := range groups[1:] {
		if !isYear(g) && !(len(g) <= 2 && inRange(g, 1, 31)) {
			return false
		}
	}
	return true
}

func isYear(g string) bool {
	return len(g) == 4 && inRange(g, 1900, 2099)
}

func inRange(g string, lo, hi int) bool {
	n, err := strconv.Atoi(g)
	return err == nil && n >= lo && n <= hi
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

// stringSet collects non-empty strings once each, in discovery order.
type stringSet struct {
	seen  map[string]struct{}
	items []string
}

func (s *stringSet) add(v string) {
	if v == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
		s.items = []string{}
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
