package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQueryAll_Pagination(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-1", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == ""
	})).Return(&notionapi.DatabaseQueryResponse{
		Results:    []notionapi.Page{{ID: "p1"}},
		HasMore:    true,
		NextCursor: "cursor-2",
	}, nil).Once()

	mc.On("QueryDatabase", ctx, "db-1", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == "cursor-2"
	})).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{{ID: "p2"}},
	}, nil).Once()

	pages, err := QueryAll(ctx, mc, "db-1", nil)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, notionapi.ObjectID("p2"), pages[1].ID)
	mc.AssertExpectations(t)
}

func TestQueryAll_Error(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-err", mock.Anything).Return(nil, assert.AnError).Once()

	pages, err := QueryAll(ctx, mc, "db-err", nil)
	assert.Error(t, err)
	assert.Nil(t, pages)
	assert.Contains(t, err.Error(), "notion: query all page")
}

func TestFindByText(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-leads", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		pf, ok := req.Filter.(notionapi.PropertyFilter)
		if !ok {
			return false
		}
		return pf.Property == "Website" && pf.RichText != nil && pf.RichText.Equals == "https://acme.com"
	})).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{{ID: "page-acme"}},
	}, nil).Once()

	page, err := FindByText(ctx, mc, "db-leads", "Website", "https://acme.com")
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, notionapi.ObjectID("page-acme"), page.ID)
	mc.AssertExpectations(t)
}

func TestFindByText_NotFound(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-leads", mock.Anything).
		Return(&notionapi.DatabaseQueryResponse{}, nil).Once()

	page, err := FindByText(ctx, mc, "db-leads", "Website", "https://none.example")
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestPropertyBuilders(t *testing.T) {
	title := Title("Acme")
	assert.Equal(t, "Acme", title.Title[0].Text.Content)

	text := Text("+1-555-0100")
	assert.Equal(t, "+1-555-0100", text.RichText[0].Text.Content)

	u := URL("https://facebook.com/acme")
	assert.Equal(t, "https://facebook.com/acme", u.URL)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Acme Corp", PlainText(&notionapi.TitleProperty{
		Title: []notionapi.RichText{{PlainText: "Acme "}, {PlainText: "Corp"}},
	}))
	assert.Equal(t, "note", PlainText(&notionapi.RichTextProperty{
		RichText: []notionapi.RichText{{PlainText: " note "}},
	}))
	assert.Equal(t, "https://acme.com", PlainText(&notionapi.URLProperty{URL: "https://acme.com"}))
	assert.Equal(t, "", PlainText(&notionapi.CheckboxProperty{}))
}

func TestPlainText_ValueProperties(t *testing.T) {
	assert.Equal(t, "Acme", PlainText(Title("Acme")))
	assert.Equal(t, "+1-555-0100", PlainText(Text("+1-555-0100")))
	assert.Equal(t, "https://acme.com", PlainText(URL("https://acme.com")))
}
