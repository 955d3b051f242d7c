package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/wikisift/internal/model"
)

const previewStyle = `
body { font-family: sans-serif; margin: 2em; background: #fafafa; }
.item { display: flex; gap: 1em; padding: 1em; margin-bottom: 1em; background: #fff; border: 1px solid #ddd; }
.item img { width: 150px; object-fit: contain; }
.meta { color: #555; font-size: 0.9em; }
`

// RenderPreview writes a standalone HTML page listing items for review.
// props supplies the human readable names of date properties.
func RenderPreview(w io.Writer, title string, items []model.Item, props []model.DateProperty) error {
	body := element(atom.Body, nil,
		element(atom.H1, nil, text(title)),
		element(atom.P, attrs("class", "meta"), text(fmt.Sprintf("%s items", humanize.Comma(int64(len(items)))))),
	)
	for i := range items {
		body.AppendChild(itemNode(&items[i], props))
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(element(atom.Html, attrs("lang", "en"),
		element(atom.Head, nil,
			element(atom.Meta, attrs("charset", "utf-8")),
			element(atom.Title, nil, text(title)),
			element(atom.Style, nil, text(previewStyle)),
		),
		body,
	))

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	return nil
}

func itemNode(item *model.Item, props []model.DateProperty) *html.Node {
	details := element(atom.Div, attrs("class", "details"),
		element(atom.H2, nil,
			element(atom.A, attrs("href", item.WikipediaURL()), text(item.Label)),
		),
		element(atom.P, nil, text(item.Description)),
		element(atom.P, attrs("class", "meta"),
			text(fmt.Sprintf("%s: %s", model.DatePropertyDescription(props, item.DatePropID), formatYear(item.Year))),
		),
		element(atom.P, attrs("class", "meta"),
			text("Instance of: "+strings.Join(item.InstanceOf, ", ")),
		),
	)
	if len(item.Occupations) > 0 {
		details.AppendChild(element(atom.P, attrs("class", "meta"),
			text("Occupations: "+strings.Join(item.Occupations, ", "))))
	}
	details.AppendChild(element(atom.P, attrs("class", "meta"),
		text(fmt.Sprintf("%s page views · %s", humanize.Comma(int64(item.PageViews)), item.ID))))

	card := element(atom.Div, attrs("class", "item", "id", item.ID))
	if src := item.ImageURL(); src != "" {
		card.AppendChild(element(atom.Img, attrs("src", src, "alt", item.Label, "loading", "lazy")))
	}
	card.AppendChild(details)
	return card
}

// formatYear renders negative years as BCE.
func formatYear(year int64) string {
	if year < 0 {
		return strconv.FormatInt(-year, 10) + " BCE"
	}
	return strconv.FormatInt(year, 10)
}

func element(a atom.Atom, attr []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attr}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// attrs builds attributes from key/value pairs.
func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}
