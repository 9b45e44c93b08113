package forward

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/seo-leads/internal/model"
	"github.com/sells-group/seo-leads/pkg/notion"
)

// Notion keeps one database row per website. Name is the title property;
// every other labeled key is a rich_text or url column of the same name.
type Notion struct {
	client notion.Client
	dbID   string
}

// NewNotion creates a Notion forwarder writing to database dbID.
func NewNotion(c notion.Client, dbID string) *Notion {
	return &Notion{client: c, dbID: dbID}
}

func (n *Notion) Name() string { return "notion" }

func (n *Notion) Forward(ctx context.Context, lead model.Lead) error {
	props := notionProperties(Label(lead))

	existing, err := notion.FindByText(ctx, n.client, n.dbID, "Website", lead.Website)
	if err != nil {
		return eris.Wrap(err, "notion: lookup lead")
	}
	if existing != nil {
		_, err := n.client.UpdatePage(ctx, string(existing.ID), &notionapi.PageUpdateRequest{Properties: props})
		return eris.Wrap(err, "notion: update lead")
	}

	_, err = n.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(n.dbID),
		},
		Properties: props,
	})
	return eris.Wrap(err, "notion: create lead")
}

func notionProperties(l Labeled) notionapi.Properties {
	title := l.Name
	if title == "" {
		title = l.Website
	}
	props := notionapi.Properties{
		"Name":    notion.Title(title),
		"Website": notion.Text(l.Website),
	}
	text := map[string]string{
		"Email":   l.Email,
		"Phone":   l.Phone,
		"Address": l.Address,
		"Country": l.Country,
		"City":    l.City,
		"Zip":     l.Zip,
	}
	for k, v := range text {
		if v != "" {
			props[k] = notion.Text(v)
		}
	}
	links := map[string]string{
		"Facebook":  l.Facebook,
		"Instagram": l.Instagram,
		"Twitter X": l.Twitter,
		"LinkedIn":  l.LinkedIn,
		"Youtube":   l.YouTube,
	}
	for k, v := range links {
		if v != "" {
			props[k] = notion.URL(v)
		}
	}
	return props
}

// Row is one lead read back from the Notion database.
type Row struct {
	Website  string
	Fragment model.Fragment
}

// Pull reads every row of the lead database. Rows without a Website are
// skipped.
func (n *Notion) Pull(ctx context.Context) ([]Row, error) {
	pages, err := notion.QueryAll(ctx, n.client, n.dbID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "notion: pull leads")
	}
	rows := make([]Row, 0, len(pages))
	for _, p := range pages {
		get := func(k string) string {
			if prop, ok := p.Properties[k]; ok {
				return notion.PlainText(prop)
			}
			return ""
		}
		website := get("Website")
		if website == "" {
			continue
		}
		name := get("Name")
		if name == website {
			name = ""
		}
		rows = append(rows, Row{Website: website, Fragment: model.Fragment{
			Name:      name,
			Email:     get("Email"),
			Phone:     get("Phone"),
			Address:   get("Address"),
			Country:   get("Country"),
			City:      get("City"),
			Zip:       get("Zip"),
			Facebook:  get("Facebook"),
			Instagram: get("Instagram"),
			Twitter:   get("Twitter X"),
			LinkedIn:  get("LinkedIn"),
			YouTube:   get("Youtube"),
		}})
	}
	return rows, nil
}
