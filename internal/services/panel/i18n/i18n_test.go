package i18n

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestResolveTagPrefersQueryThenCookieThenHeader(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		cookie  string
		accept  string
		want    string
		persist bool
	}{
		{name: "default", target: "/", want: "en"},
		{name: "query", target: "/?lang=pt-BR", cookie: "en", want: "pt-BR", persist: true},
		{name: "unsupported query falls through", target: "/?lang=fr", cookie: "pt-BR", want: "pt-BR"},
		{name: "cookie", target: "/", cookie: "pt-BR", accept: "en", want: "pt-BR"},
		{name: "accept language", target: "/", accept: "pt-BR,pt;q=0.9", want: "pt-BR"},
		{name: "unmatched accept language", target: "/", accept: "ja", want: "en"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookieName, Value: tc.cookie})
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			tag, persist := ResolveTag(req)
			if tag.String() != tc.want {
				t.Fatalf("tag = %s, want %s", tag, tc.want)
			}
			if persist != tc.persist {
				t.Fatalf("persist = %v, want %v", persist, tc.persist)
			}
		})
	}
}

func TestResolveTagNilRequest(t *testing.T) {
	if tag, persist := ResolveTag(nil); tag != Default() || persist {
		t.Fatalf("ResolveTag(nil) = %s, %v", tag, persist)
	}
}

func TestSetLanguageCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetLanguageCookie(rec, language.MustParse("pt-BR"))
	header := rec.Header().Get("Set-Cookie")
	if !strings.Contains(header, LangCookieName+"=pt-BR") {
		t.Fatalf("Set-Cookie = %q", header)
	}
	SetLanguageCookie(nil, language.English)
}

func TestPrinterUsesCatalog(t *testing.T) {
	if got := Printer(language.MustParse("pt-BR")).Sprintf("stage.endpoint_label"); got != "Endpoint da API" {
		t.Fatalf("pt-BR label = %q", got)
	}
	if got := Printer(language.English).Sprintf("stage.endpoint_label"); got != "API endpoint" {
		t.Fatalf("en label = %q", got)
	}
}

func TestLanguageOptionsMarksActive(t *testing.T) {
	options := LanguageOptions("pt-BR", Printer(language.English))
	if len(options) != 2 {
		t.Fatalf("options = %v", options)
	}
	if options[0].Active || !options[1].Active {
		t.Fatalf("active flags = %+v", options)
	}
	if options[1].Label != "Português (Brasil)" {
		t.Fatalf("label = %q", options[1].Label)
	}

	fallback := LanguageOptions("xx", nil)
	if !fallback[0].Active || fallback[0].Label != "en" {
		t.Fatalf("fallback = %+v", fallback)
	}
}

func TestLanguageURL(t *testing.T) {
	if got := LanguageURL("/panel/users", "page=2&lang=en", "pt-BR"); got != "/panel/users?lang=pt-BR&page=2" {
		t.Fatalf("LanguageURL = %q", got)
	}
	if got := LanguageURL("", "%zz", "en"); got != "/?lang=en" {
		t.Fatalf("LanguageURL = %q", got)
	}
}
