package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll fetches all pages from a Notion database, following cursors until
// the result set is exhausted.
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}
	if filter != nil {
		req.Filter = filter.Filter
		req.Sorts = filter.Sorts
		req.PageSize = filter.PageSize
	}

	for {
		resp, err := c.QueryDatabase(ctx, dbID, req)
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}
		all = append(all, resp.Results...)
		if !resp.HasMore {
			break
		}
		req = &notionapi.DatabaseQueryRequest{
			Filter:      req.Filter,
			Sorts:       req.Sorts,
			PageSize:    req.PageSize,
			StartCursor: resp.NextCursor,
		}
	}

	return all, nil
}

// FindByText returns the first page whose text property equals value, or nil.
func FindByText(ctx context.Context, c Client, dbID, property, value string) (*notionapi.Page, error) {
	filter := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: property,
			RichText: &notionapi.TextFilterCondition{
				Equals: value,
			},
		},
		PageSize: 1,
	}
	resp, err := c.QueryDatabase(ctx, dbID, filter)
	if err != nil {
		return nil, eris.Wrapf(err, "notion: find %s=%s", property, value)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	page := resp.Results[0]
	return &page, nil
}
