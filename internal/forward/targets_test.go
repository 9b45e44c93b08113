package forward

import (
	"context"
	"errors"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotion struct {
	mock.Mock
}

func (m *mockNotion) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

func (m *mockNotion) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func (m *mockNotion) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func TestNotion_CreatesRow(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-leads", mock.Anything).
		Return(&notionapi.DatabaseQueryResponse{}, nil).Once()
	mc.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		title, ok := req.Properties["Name"].(notionapi.TitleProperty)
		if !ok || title.Title[0].Text.Content != "Acme" {
			return false
		}
		tw, ok := req.Properties["Twitter X"].(notionapi.URLProperty)
		if !ok || tw.URL != "https://x.com/acme" {
			return false
		}
		_, hasAddress := req.Properties["Address"]
		return string(req.Parent.DatabaseID) == "db-leads" && !hasAddress
	})).Return(&notionapi.Page{ID: "page-new"}, nil).Once()

	require.NoError(t, NewNotion(mc, "db-leads").Forward(ctx, sampleLead()))
	mc.AssertExpectations(t)
}

func TestNotion_UpdatesExistingRow(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-leads", mock.Anything).
		Return(&notionapi.DatabaseQueryResponse{Results: []notionapi.Page{{ID: "page-acme"}}}, nil).Once()
	mc.On("UpdatePage", ctx, "page-acme", mock.AnythingOfType("*notionapi.PageUpdateRequest")).
		Return(&notionapi.Page{ID: "page-acme"}, nil).Once()

	require.NoError(t, NewNotion(mc, "db-leads").Forward(ctx, sampleLead()))
	mc.AssertExpectations(t)
	mc.AssertNotCalled(t, "CreatePage", mock.Anything, mock.Anything)
}

func TestNotion_LookupError(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-leads", mock.Anything).Return(nil, assert.AnError).Once()

	err := NewNotion(mc, "db-leads").Forward(ctx, sampleLead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion: lookup lead")
}

func TestNotionProperties_TitleFallsBackToWebsite(t *testing.T) {
	props := notionProperties(Labeled{Website: "https://acme.com"})
	title := props["Name"].(notionapi.TitleProperty)
	assert.Equal(t, "https://acme.com", title.Title[0].Text.Content)
}

type fakeSF struct {
	inserted map[string]any
	queryErr error
}

func (f *fakeSF) Query(context.Context, string, any) error { return f.queryErr }

func (f *fakeSF) InsertOne(_ context.Context, _ string, record map[string]any) (string, error) {
	f.inserted = record
	return "00QNEW", nil
}

func (f *fakeSF) UpdateOne(context.Context, string, string, map[string]any) error { return nil }

func TestSalesforce_CreatesLead(t *testing.T) {
	sf := &fakeSF{}
	require.NoError(t, NewSalesforce(sf).Forward(context.Background(), sampleLead()))

	assert.Equal(t, "https://acme.com", sf.inserted["Website"])
	assert.Equal(t, "Acme", sf.inserted["Company"])
	assert.Equal(t, "info@acme.com", sf.inserted["Email"])
	assert.Equal(t, "Web", sf.inserted["LeadSource"])
	assert.Equal(t, "Twitter X: https://x.com/acme\nYoutube: https://youtube.com/@acme", sf.inserted["Description"])
	_, hasStreet := sf.inserted["Street"]
	assert.False(t, hasStreet)
}

func TestSalesforce_Error(t *testing.T) {
	sf := &fakeSF{queryErr: errors.New("invalid session")}
	err := NewSalesforce(sf).Forward(context.Background(), sampleLead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salesforce: forward lead")
}

func TestNotion_PullPagesThroughDatabase(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()

	first := &notionapi.DatabaseQueryResponse{
		HasMore:    true,
		NextCursor: notionapi.Cursor("c1"),
		Results: []notionapi.Page{{ID: "p1", Properties: notionapi.Properties{
			"Name":     &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: "Acme"}}},
			"Website":  &notionapi.RichTextProperty{RichText: []notionapi.RichText{{PlainText: "https://acme.com"}}},
			"Email":    &notionapi.RichTextProperty{RichText: []notionapi.RichText{{PlainText: "info@acme.com"}}},
			"Facebook": &notionapi.URLProperty{URL: "https://facebook.com/acme"},
		}}},
	}
	second := &notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{
			{ID: "p2", Properties: notionapi.Properties{
				"Name":    &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: "https://beta.io"}}},
				"Website": &notionapi.RichTextProperty{RichText: []notionapi.RichText{{PlainText: "https://beta.io"}}},
			}},
			{ID: "p3", Properties: notionapi.Properties{
				"Name": &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: "orphan"}}},
			}},
		},
	}
	mc.On("QueryDatabase", ctx, "db-leads", mock.MatchedBy(func(r *notionapi.DatabaseQueryRequest) bool {
		return r.StartCursor == ""
	})).Return(first, nil).Once()
	mc.On("QueryDatabase", ctx, "db-leads", mock.MatchedBy(func(r *notionapi.DatabaseQueryRequest) bool {
		return r.StartCursor == "c1"
	})).Return(second, nil).Once()

	rows, err := NewNotion(mc, "db-leads").Pull(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "https://acme.com", rows[0].Website)
	assert.Equal(t, "Acme", rows[0].Fragment.Name)
	assert.Equal(t, "info@acme.com", rows[0].Fragment.Email)
	assert.Equal(t, "https://facebook.com/acme", rows[0].Fragment.Facebook)

	assert.Equal(t, "https://beta.io", rows[1].Website)
	assert.Empty(t, rows[1].Fragment.Name, "title equal to website is a placeholder")
	mc.AssertExpectations(t)
}

func TestNotion_PullError(t *testing.T) {
	mc := new(mockNotion)
	ctx := context.Background()
	mc.On("QueryDatabase", ctx, "db-leads", mock.Anything).Return(nil, errors.New("boom")).Once()

	_, err := NewNotion(mc, "db-leads").Pull(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion: pull leads")
}
