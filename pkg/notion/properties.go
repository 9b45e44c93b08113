package notion

import (
	"strings"

	"github.com/jomei/notionapi"
)

// Title builds a title property.
func Title(v string) notionapi.TitleProperty {
	return notionapi.TitleProperty{
		Type:  notionapi.PropertyTypeTitle,
		Title: []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: v}}},
	}
}

// Text builds a rich_text property.
func Text(v string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type:     notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: v}}},
	}
}

// URL builds a url property.
func URL(v string) notionapi.URLProperty {
	return notionapi.URLProperty{Type: notionapi.PropertyTypeURL, URL: v}
}

// PlainText flattens a title, rich_text or url property to a string. Both
// decoded (pointer) and locally built (value) properties are accepted.
func PlainText(p notionapi.Property) string {
	var b strings.Builder
	write := func(rts []notionapi.RichText) {
		for _, rt := range rts {
			if rt.PlainText == "" && rt.Text != nil {
				b.WriteString(rt.Text.Content)
				continue
			}
			b.WriteString(rt.PlainText)
		}
	}
	switch v := p.(type) {
	case *notionapi.TitleProperty:
		write(v.Title)
	case notionapi.TitleProperty:
		write(v.Title)
	case *notionapi.RichTextProperty:
		write(v.RichText)
	case notionapi.RichTextProperty:
		write(v.RichText)
	case *notionapi.URLProperty:
		b.WriteString(v.URL)
	case notionapi.URLProperty:
		b.WriteString(v.URL)
	}
	return strings.TrimSpace(b.String())
}
