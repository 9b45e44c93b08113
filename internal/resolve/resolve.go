// Package resolve reduces raw scrape candidates to a single value per lead
// field.
package resolve

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/seo-leads/internal/model"
)

// freeMailDomains are webmail providers that lose to corporate domains.
var freeMailDomains = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
	"outlook.com": true,
}

// Resolve picks the best value for every field of raw. origin is the site
// origin the page was captured from and drives email ranking.
func Resolve(raw model.RawScrape, origin string) model.Fragment {
	return model.Fragment{
		Name:      Clean(raw.Title),
		Email:     BestEmail(Uniq(raw.Emails), origin),
		Phone:     PickPhone(raw.Phones),
		Address:   Clean(raw.Address),
		Zip:       strings.TrimSpace(raw.Zip),
		Facebook:  PickSocial(raw.Socials[model.NetworkFacebook]),
		Instagram: PickSocial(raw.Socials[model.NetworkInstagram]),
		Twitter:   PickSocial(raw.Socials[model.NetworkTwitter]),
		LinkedIn:  PickSocial(raw.Socials[model.NetworkLinkedIn]),
		YouTube:   PickSocial(raw.Socials[model.NetworkYouTube]),
	}
}

// Uniq drops empty entries and duplicates, keeping first-seen order.
func Uniq(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// PickPhone returns the first distinct phone candidate, or "".
func PickPhone(phones []string) string {
	if u := Uniq(phones); len(u) > 0 {
		return strings.TrimSpace(u[0])
	}
	return ""
}

// PickSocial returns the first valid, canonicalized URL among candidates.
func PickSocial(candidates []string) string {
	var valid []string
	for _, c := range candidates {
		if canon, ok := CanonicalURL(c); ok {
			valid = append(valid, canon)
		}
	}
	if u := Uniq(valid); len(u) > 0 {
		return u[0]
	}
	return ""
}

// CanonicalURL validates an absolute URL and re-serializes it. An empty path
// becomes "/" so equivalent links compare equal.
func CanonicalURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return u.String(), true
}

// BestEmail ranks candidates and returns the winner, or "" when there are
// none. Candidates whose domain matches the site host rank first, then
// non-webmail domains, then domains in lexicographic order.
func BestEmail(emails []string, origin string) string {
	if len(emails) == 0 {
		return ""
	}
	host := siteHost(origin)

	type ranked struct {
		email     string
		domain    string
		hostMatch bool
		corporate bool
	}
	cands := make([]ranked, 0, len(emails))
	for _, e := range emails {
		d := emailDomain(e)
		cands = append(cands, ranked{
			email:     e,
			domain:    d,
			hostMatch: host != "" && (d == host || strings.HasSuffix(d, "."+host)),
			corporate: !freeMailDomains[d],
		})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.hostMatch != b.hostMatch {
			return a.hostMatch
		}
		if a.corporate != b.corporate {
			return a.corporate
		}
		if a.domain != b.domain {
			return a.domain < b.domain
		}
		return a.email < b.email
	})
	return cands[0].email
}

// Clean trims, NFKC-normalizes and collapses internal whitespace.
func Clean(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

func emailDomain(email string) string {
	i := strings.LastIndexByte(email, '@')
	if i < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[i+1:]))
}

func siteHost(origin string) string {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return ""
	}
	h := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(h, "www.")
}
