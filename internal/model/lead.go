// Package model defines the lead, scrape and snapshot types shared across the
// capture pipeline.
package model

import "time"

// DateLayout is the calendar-date format used for lead timestamps.
const DateLayout = "2006-01-02"

// Network identifies a social network tracked on a lead.
type Network string

const (
	NetworkFacebook  Network = "facebook"
	NetworkInstagram Network = "instagram"
	NetworkTwitter   Network = "twitter"
	NetworkLinkedIn  Network = "linkedin"
	NetworkYouTube   Network = "youtube"
)

// AllNetworks returns the tracked social networks in display order.
func AllNetworks() []Network {
	return []Network{
		NetworkFacebook,
		NetworkInstagram,
		NetworkTwitter,
		NetworkLinkedIn,
		NetworkYouTube,
	}
}

// Lead is the persisted contact record for one site origin.
type Lead struct {
	Website      string `json:"website" yaml:"website"`
	Name         string `json:"name" yaml:"name"`
	Email        string `json:"email" yaml:"email"`
	Phone        string `json:"phone" yaml:"phone"`
	Address      string `json:"address" yaml:"address"`
	Country      string `json:"country" yaml:"country"`
	City         string `json:"city" yaml:"city"`
	Zip          string `json:"zip" yaml:"zip"`
	Facebook     string `json:"facebook" yaml:"facebook"`
	Instagram    string `json:"instagram" yaml:"instagram"`
	Twitter      string `json:"twitter" yaml:"twitter"`
	LinkedIn     string `json:"linkedin" yaml:"linkedin"`
	YouTube      string `json:"youtube" yaml:"youtube"`
	DateCaptured string `json:"dateCaptured" yaml:"dateCaptured"`
	DateUpdated  string `json:"dateUpdated" yaml:"dateUpdated"`
}

// Social returns the stored URL for the given network.
func (l Lead) Social(n Network) string {
	switch n {
	case NetworkFacebook:
		return l.Facebook
	case NetworkInstagram:
		return l.Instagram
	case NetworkTwitter:
		return l.Twitter
	case NetworkLinkedIn:
		return l.LinkedIn
	case NetworkYouTube:
		return l.YouTube
	default:
		return ""
	}
}

// RawScrape holds the unresolved candidates found on one page. It is produced
// fresh for every extraction and discarded after resolution.
type RawScrape struct {
	Emails  []string             `json:"emails"`
	Phones  []string             `json:"phones"`
	Socials map[Network][]string `json:"socials"`
	Address string               `json:"address"`
	Zip     string               `json:"zip"`
	Title   string               `json:"title"`
}

// Fragment is the single-valued result of resolving a RawScrape.
type Fragment struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Country   string `json:"country"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`
	YouTube   string `json:"youtube"`
}

// Today formats t as a lead calendar date.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}
