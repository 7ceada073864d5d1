package templates

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/louisbranch/restpanel/internal/dataprovider"
	"github.com/louisbranch/restpanel/internal/guesser"
	"github.com/louisbranch/restpanel/internal/record"
	"github.com/louisbranch/restpanel/internal/scaffold"
	"github.com/louisbranch/restpanel/internal/services/panel/i18n"
	"golang.org/x/net/html"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type fakeLocalizer struct {
	value string
}

func (f fakeLocalizer) Sprintf(key message.Reference, args ...any) string {
	return f.value
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func parse(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func englishPage() PageContext {
	loc := i18n.Printer(language.English)
	return PageContext{Lang: "en", Loc: loc, CurrentPath: "/", Languages: i18n.LanguageOptions("en", loc)}
}

func mustRecords(t *testing.T, doc string) []record.Record {
	t.Helper()
	records, err := record.ParseList([]byte(doc), "")
	if err != nil {
		t.Fatalf("parse records: %v", err)
	}
	return records
}

func TestTranslateFallback(t *testing.T) {
	if T(nil, "hello") != "hello" {
		t.Fatal("expected key fallback")
	}
	if T(nil, message.Reference(123)) != "" {
		t.Fatal("expected empty string for non-string key")
	}
	if T(fakeLocalizer{value: "translated"}, "hello") != "translated" {
		t.Fatal("expected localizer value")
	}
}

func TestStageHeaderRendersFormWithEscapedValue(t *testing.T) {
	markup := render(t, StageHeader(englishPage(), StageView{Endpoint: `http://x"><script>`}))
	doc := parse(t, markup)

	inputs := findAll(doc, byTag("input"))
	if len(inputs) != 1 {
		t.Fatalf("inputs = %d, want 1", len(inputs))
	}
	if got := attr(inputs[0], "value"); got != `http://x"><script>` {
		t.Fatalf("input value = %q", got)
	}
	if attr(inputs[0], "name") != LinkField {
		t.Fatalf("input name = %q", attr(inputs[0], "name"))
	}
	if scripts := findAll(doc, byTag("script")); len(scripts) != 0 {
		t.Fatal("endpoint value must not inject markup")
	}
	buttons := findAll(doc, byTag("button"))
	if len(buttons) != 1 || attr(buttons[0], "name") != OKField || textContent(buttons[0]) != "ok" {
		t.Fatalf("ok button missing: %q", markup)
	}
	forms := findAll(doc, byTag("form"))
	if len(forms) != 1 || attr(forms[0], "method") != "post" || attr(forms[0], "action") != "/" {
		t.Fatalf("form = %q", markup)
	}
}

func TestPageWrapsHeaderAndMain(t *testing.T) {
	page := englishPage()
	markup := render(t, Page(page, StageHeader(page, StageView{}), templ.Raw("<p>content</p>")))
	doc := parse(t, markup)

	if titles := findAll(doc, byTag("title")); len(titles) != 1 || textContent(titles[0]) != "REST Panel" {
		t.Fatalf("title missing in %q", markup)
	}
	mains := findAll(doc, byTag("main"))
	if len(mains) != 1 || textContent(mains[0]) != "content" {
		t.Fatalf("main = %q", markup)
	}
	if headers := findAll(doc, byTag("header")); len(headers) != 1 {
		t.Fatalf("header missing in %q", markup)
	}
}

func TestPanelRendersGuessedColumns(t *testing.T) {
	records := mustRecords(t, `[
		{"id": 1, "username": "ada", "email": "ada@example.com", "logins": 12345, "active": true, "created_at": "2026-03-01T09:30:00Z", "team_id": 7, "tags": ["a","b"], "home": "https://ada.dev"},
		{"id": 2, "username": "bob", "email": "bob@example.com", "logins": 2, "active": false, "created_at": "2026-03-02T10:00:00Z", "team_id": 8, "tags": [], "home": null}
	]`)
	params := scaffold.DefaultListParams()
	view := PanelView{
		Link:      "http://localhost:3000",
		Resources: []string{"users"},
		List: scaffold.ListView{
			Resource: "users",
			Params:   params,
			Columns:  guesser.InferColumns(records),
			Records:  records,
			Total:    25,
		},
		ListURL: func(resource string, p scaffold.ListParams) string {
			return "/panel/" + resource + "?page=" + string(rune('0'+p.Page)) + "&sort=" + p.Sort + "&order=" + string(p.Order)
		},
	}

	markup := render(t, Panel(englishPage(), view))
	doc := parse(t, markup)

	sections := findAll(doc, byTag("section"))
	if len(sections) != 1 || attr(sections[0], "id") != PanelSectionID || attr(sections[0], "data-link") != "http://localhost:3000" {
		t.Fatalf("section = %q", markup)
	}

	headers := findAll(doc, byTag("th"))
	var labels []string
	for _, th := range headers {
		labels = append(labels, strings.TrimSpace(textContent(th)))
	}
	wantLabels := []string{"Id", "Username", "Email", "Logins", "Active", "Created at", "Team id", "Tags", "Home"}
	if strings.Join(labels, ",") != strings.Join(wantLabels, ",") {
		t.Fatalf("headers = %v, want %v", labels, wantLabels)
	}
	if attr(headers[0], "aria-sort") != "ascending" {
		t.Fatalf("id header aria-sort = %q", attr(headers[0], "aria-sort"))
	}
	idLinks := findAll(headers[0], byTag("a"))
	if len(idLinks) != 1 || !strings.Contains(attr(idLinks[0], "hx-get"), "order=DESC") {
		t.Fatalf("id sort link should toggle order: %q", markup)
	}

	rows := findAll(doc, byTag("tr"))
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if attr(rows[1], "data-id") != "1" {
		t.Fatalf("row id = %q", attr(rows[1], "data-id"))
	}

	for _, want := range []string{
		`href="mailto:ada@example.com"`,
		`12,345`,
		`datetime="2026-03-01T09:30:00Z"`,
		`2026-03-01 09:30:00`,
		`data-reference="teams"`,
		`href="https://ada.dev"`,
		`<li>a</li>`,
		`1-2 of 25`,
	} {
		if !strings.Contains(markup, want) {
			t.Errorf("markup missing %q", want)
		}
	}

	anchors := findAll(doc, func(n *html.Node) bool {
		return byTag("a")(n) && textContent(n) == "Next"
	})
	if len(anchors) != 1 || !strings.Contains(attr(anchors[0], "hx-get"), "page=2") {
		t.Fatalf("next link = %q", markup)
	}
	disabled := findAll(doc, func(n *html.Node) bool {
		return byTag("span")(n) && textContent(n) == "Previous"
	})
	if len(disabled) != 1 {
		t.Fatal("expected disabled previous link on first page")
	}
}

func TestPanelRendersProviderError(t *testing.T) {
	view := PanelView{
		Resources: []string{"users"},
		List: scaffold.ListView{
			Resource: "users",
			Params:   scaffold.DefaultListParams(),
			Err:      &dataprovider.HTTPError{Status: 500, Body: "boom"},
		},
	}
	markup := render(t, Panel(englishPage(), view))
	doc := parse(t, markup)

	alerts := findAll(doc, func(n *html.Node) bool { return attr(n, "role") == "alert" })
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1: %q", len(alerts), markup)
	}
	if !strings.Contains(textContent(alerts[0]), "500") {
		t.Fatalf("alert text = %q", textContent(alerts[0]))
	}
	if tables := findAll(doc, byTag("table")); len(tables) != 0 {
		t.Fatal("expected no table on error")
	}
}

func TestPanelRendersEmptyState(t *testing.T) {
	view := PanelView{
		Resources: []string{"users"},
		List:      scaffold.ListView{Resource: "users", Params: scaffold.DefaultListParams(), Records: []record.Record{}},
	}
	markup := render(t, Panel(englishPage(), view))
	if !strings.Contains(markup, "No results found") {
		t.Fatalf("markup = %q", markup)
	}
}

func TestCellKinds(t *testing.T) {
	page := PageContext{}
	tests := []struct {
		name  string
		col   guesser.Column
		value record.Value
		want  string
	}{
		{name: "null", col: guesser.Column{Kind: guesser.KindText}, value: record.NullValue(), want: ""},
		{name: "text escapes", col: guesser.Column{Kind: guesser.KindText}, value: record.StringValue("<b>"), want: "&lt;b&gt;"},
		{name: "number without localizer", col: guesser.Column{Kind: guesser.KindNumber}, value: record.NumberValue(1.5), want: "1.5"},
		{name: "date only", col: guesser.Column{Kind: guesser.KindDate}, value: record.StringValue("2026-01-02"), want: `<time datetime="2026-01-02">2026-01-02</time>`},
		{name: "object", col: guesser.Column{Kind: guesser.KindObject}, value: record.ObjectValue(record.New(record.Field{Name: "city", Value: record.StringValue("Rio")})), want: `<code>{&#34;city&#34;:&#34;Rio&#34;}</code>`},
		{name: "unsafe url", col: guesser.Column{Kind: guesser.KindURL}, value: record.StringValue("javascript:alert(1)"), want: "about:invalid"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := render(t, Cell(page, tc.col, tc.value))
			if tc.want == "" {
				if got != "" {
					t.Fatalf("Cell = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tc.want) {
				t.Fatalf("Cell = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLanguageMenuMarksActive(t *testing.T) {
	page := englishPage()
	page.CurrentQuery = "link=x"
	markup := render(t, LanguageMenu(page))
	doc := parse(t, markup)
	links := findAll(doc, byTag("a"))
	if len(links) != 2 {
		t.Fatalf("links = %d, want 2", len(links))
	}
	if attr(links[0], "aria-current") != "true" {
		t.Fatal("expected english active")
	}
	if attr(links[1], "href") != "/?lang=pt-BR&link=x" {
		t.Fatalf("href = %q", attr(links[1], "href"))
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRenderReportsWriteErrors(t *testing.T) {
	err := StageHeader(PageContext{}, StageView{}).Render(context.Background(), failingWriter{})
	if err == nil {
		t.Fatal("expected write error")
	}
}

func TestOpenEscapesValuesAndDropsUnsafeAttrNames(t *testing.T) {
	var buf bytes.Buffer
	h := &htmlWriter{w: &buf}
	h.open("a", "href", `x" onclick="y`, `onclick="evil`, "z", "data-id", "7")

	got := buf.String()
	if strings.Contains(got, "evil") {
		t.Fatalf("unsafe attribute name written: %s", got)
	}
	if !strings.Contains(got, `data-id="7"`) {
		t.Fatalf("literal attribute missing: %s", got)
	}
	if strings.Contains(got, `x" onclick`) {
		t.Fatalf("attribute value not escaped: %s", got)
	}
}

func TestIsAttrName(t *testing.T) {
	for name, want := range map[string]bool{
		"class":     true,
		"hx-get":    true,
		"xml:lang":  true,
		"":          false,
		"a b":       false,
		`x"`:        false,
		"on<script": false,
	} {
		if got := isAttrName(name); got != want {
			t.Fatalf("isAttrName(%q) = %t, want %t", name, got, want)
		}
	}
}
