package forward

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/pkg/salesforce"
)

// Salesforce upserts a Lead sObject keyed on Website.
type Salesforce struct {
	client salesforce.Client
}

// NewSalesforce creates a Salesforce forwarder.
func NewSalesforce(c salesforce.Client) *Salesforce {
	return &Salesforce{client: c}
}

func (s *Salesforce) Name() string { return "salesforce" }

func (s *Salesforce) Forward(ctx context.Context, lead model.Lead) error {
	_, err := salesforce.UpsertLead(ctx, s.client, salesforceFields(Label(lead)))
	return eris.Wrap(err, "salesforce: forward lead")
}

// salesforceFields maps labeled keys onto standard Lead fields. Social links
// have no standard field and go into Description.
func salesforceFields(l Labeled) map[string]any {
	fields := map[string]any{
		"Website":    l.Website,
		"LeadSource": "Web",
	}
	set := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}
	set("Company", l.Name)
	set("Email", l.Email)
	set("Phone", l.Phone)
	set("Street", l.Address)
	set("Country", l.Country)
	set("City", l.City)
	set("PostalCode", l.Zip)

	var social []string
	for _, kv := range [][2]string{
		{"Facebook", l.Facebook},
		{"Instagram", l.Instagram},
		{"Twitter X", l.Twitter},
		{"LinkedIn", l.LinkedIn},
		{"Youtube", l.YouTube},
	} {
		if kv[1] != "" {
			social = append(social, kv[0]+": "+kv[1])
		}
	}
	if len(social) > 0 {
		fields["Description"] = strings.Join(social, "\n")
	}
	return fields
}
