package model

// Anchor is a single <a> element as seen in the rendered page.
type Anchor struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// PageSnapshot is the read-only view of a rendered page that extraction runs
// against. It carries no live DOM handles so it can be built from posted HTML,
// fetched HTML, or constructed directly in tests.
type PageSnapshot struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Anchors []Anchor `json:"anchors"`
}
