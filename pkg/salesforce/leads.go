package salesforce

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/rotisserie/eris"
)

// LeadObject is the sObject name for web leads.
const LeadObject = "Lead"

// LeadRef is the subset of a Salesforce Lead needed to decide between insert
// and update.
type LeadRef struct {
	ID      string `json:"Id" salesforce:"Id"`
	Website string `json:"Website" salesforce:"Website"`
}

// FindLeadByWebsite returns the Lead whose Website equals website, or nil.
func FindLeadByWebsite(ctx context.Context, c Client, website string) (*LeadRef, error) {
	soql := fmt.Sprintf(
		"SELECT Id, Website FROM Lead WHERE Website = '%s' LIMIT 1",
		escapeSoql(website),
	)
	var refs []LeadRef
	if err := c.Query(ctx, soql, &refs); err != nil {
		return nil, eris.Wrapf(err, "sf: find lead by website %s", website)
	}
	if len(refs) == 0 {
		return nil, nil
	}
	return &refs[0], nil
}

// UpsertLead updates the Lead matching fields["Website"] or creates one.
// Salesforce requires Company and LastName on insert; empty values are
// filled from the website.
func UpsertLead(ctx context.Context, c Client, fields map[string]any) (string, error) {
	website, _ := fields["Website"].(string)
	if website == "" {
		return "", eris.New("sf: lead Website is required")
	}

	existing, err := FindLeadByWebsite(ctx, c, website)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := c.UpdateOne(ctx, LeadObject, existing.ID, fields); err != nil {
			return "", eris.Wrapf(err, "sf: update lead %s", existing.ID)
		}
		return existing.ID, nil
	}

	record := maps.Clone(fields)
	if s, _ := record["Company"].(string); s == "" {
		record["Company"] = website
	}
	if s, _ := record["LastName"].(string); s == "" {
		record["LastName"] = record["Company"]
	}
	id, err := c.InsertOne(ctx, LeadObject, record)
	if err != nil {
		return "", eris.Wrap(err, "sf: create lead")
	}
	return id, nil
}

// escapeSoql escapes backslashes and single quotes in SOQL string literals.
func escapeSoql(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}
