package panel

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/louisbranch/restpanel/internal/dataprovider/jsonserver"
	"github.com/louisbranch/restpanel/internal/scaffold"
	"github.com/louisbranch/restpanel/internal/services/panel/htmx"
	"github.com/louisbranch/restpanel/internal/services/panel/i18n"
	"github.com/louisbranch/restpanel/internal/services/panel/routepath"
	"github.com/louisbranch/restpanel/internal/services/panel/stage"
	"github.com/louisbranch/restpanel/internal/services/panel/static"
	"github.com/louisbranch/restpanel/internal/services/panel/templates"
	"github.com/louisbranch/restpanel/internal/services/panel/transport/httpmux"
	"golang.org/x/text/message"
)

// staticCacheControl is applied to embedded assets.
const staticCacheControl = "public, max-age=3600"

// HandlerConfig tunes how the panel talks to the endpoint under inspection.
type HandlerConfig struct {
	// ProviderTimeout bounds each backend call; zero uses the platform default.
	ProviderTimeout time.Duration
	// RecordsPath and TotalPath read enveloped list responses when set.
	RecordsPath string
	TotalPath   string
	// HTTPClient overrides the provider's HTTP client.
	HTTPClient *http.Client
	// Guesses receives guessed list definitions; nil logs through log.Printf.
	Guesses *scaffold.GuessLog
}

// Handler routes panel requests.
type Handler struct {
	config  HandlerConfig
	guesses *scaffold.GuessLog
}

// NewHandler builds the HTTP handler for the panel server.
func NewHandler(config HandlerConfig) http.Handler {
	guesses := config.Guesses
	if guesses == nil {
		guesses = scaffold.NewGuessLog(nil)
	}
	h := &Handler{config: config, guesses: guesses}
	return h.routes()
}

// routes wires the HTTP routes for the panel handler.
func (h *Handler) routes() http.Handler {
	rootMux := http.NewServeMux()
	httpmux.MountStatic(rootMux, static.FS(), httpmux.WithCacheControl(staticCacheControl))

	panelMux := http.NewServeMux()
	panelMux.HandleFunc("GET /{$}", h.handleStage)
	panelMux.HandleFunc("POST /{$}", h.handleStageSubmit)
	panelMux.HandleFunc(routepath.PanelPrefix, h.handlePanelPath)
	httpmux.MountPanelRoutes(rootMux, panelMux)
	return rootMux
}

// handleStage renders the initial stage: empty endpoint, panel shown.
func (h *Handler) handleStage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, stage.NewInputStage(), scaffold.UsersResource, scaffold.DefaultListParams())
}

// handleStageSubmit replays the submitted form onto a fresh stage.
func (h *Handler) handleStageSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s := stage.NewInputStage()
	s.Apply(formEvents(r)...)
	h.render(w, r, s, scaffold.UsersResource, scaffold.DefaultListParams())
}

func formEvents(r *http.Request) []stage.Event {
	var events []stage.Event
	if values, ok := r.PostForm[templates.LinkField]; ok && len(values) > 0 {
		events = append(events, stage.TextChange(values[0]))
	}
	if _, ok := r.PostForm[templates.OKField]; ok {
		events = append(events, stage.Activate())
	}
	return events
}

// handlePanelPath renders a resource list for the link carried in the query.
// htmx requests receive only the panel section.
func (h *Handler) handlePanelPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if redirectTrailingSlash(w, r) {
		return
	}
	resource := strings.TrimPrefix(r.URL.Path, routepath.PanelPrefix)
	if resource == "" || strings.Contains(resource, "/") {
		http.NotFound(w, r)
		return
	}
	if _, ok := scaffold.NewUsersAdmin(nil, nil).Resource(resource); !ok {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	s := stage.NewInputStage()
	s.Apply(stage.TextChange(query.Get(routepath.LinkParam)), stage.Activate())
	h.render(w, r, s, resource, scaffold.ParseListParams(query))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, s *stage.InputStage, resource string, params scaffold.ListParams) {
	loc, lang := h.localizer(w, r)
	page := h.pageContext(lang, loc, r)
	view := s.View()

	header := templates.StageHeader(page, templates.StageView{Endpoint: view.Endpoint, Action: routepath.Root})
	var panel templ.Component
	if view.Panel != nil {
		panel = templates.Panel(page, h.panelView(r.Context(), view.Panel.Link, resource, params))
	}
	var fragment templ.Component
	if strings.HasPrefix(r.URL.Path, routepath.PanelPrefix) {
		fragment = panel
	}
	htmx.RenderPage(w, r, fragment, templates.Page(page, header, panel))
}

// panelView builds a provider and scaffold for link and loads one list page.
func (h *Handler) panelView(ctx context.Context, link, resource string, params scaffold.ListParams) templates.PanelView {
	admin := scaffold.NewUsersAdmin(jsonserver.New(link, h.providerOptions()...), h.guesses)
	admin.Timeout = h.config.ProviderTimeout

	list := admin.List(ctx, resource, params)
	if list.Err != nil {
		log.Printf("panel list %s from %q: %v", resource, link, list.Err)
	}

	names := make([]string, 0, len(admin.Resources))
	for _, res := range admin.Resources {
		names = append(names, res.Name)
	}
	return templates.PanelView{
		Link:      link,
		Resources: names,
		List:      list,
		ListURL: func(resource string, params scaffold.ListParams) string {
			return routepath.PanelList(resource, link, params)
		},
	}
}

func (h *Handler) providerOptions() []jsonserver.Option {
	opts := []jsonserver.Option{
		jsonserver.WithRecordsPath(h.config.RecordsPath),
		jsonserver.WithTotalPath(h.config.TotalPath),
	}
	if h.config.HTTPClient != nil {
		opts = append(opts, jsonserver.WithHTTPClient(h.config.HTTPClient))
	}
	return opts
}

func (h *Handler) localizer(w http.ResponseWriter, r *http.Request) (*message.Printer, string) {
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return i18n.Printer(tag), tag.String()
}

func (h *Handler) pageContext(lang string, loc *message.Printer, r *http.Request) templates.PageContext {
	page := templates.PageContext{
		Lang:      lang,
		Loc:       loc,
		Languages: i18n.LanguageOptions(lang, loc),
	}
	if r != nil && r.URL != nil {
		page.CurrentPath = r.URL.Path
		page.CurrentQuery = r.URL.RawQuery
	}
	return page
}

// redirectTrailingSlash strips trailing "/" from panel paths. It reports
// whether a redirect was written.
func redirectTrailingSlash(w http.ResponseWriter, r *http.Request) bool {
	canonical := strings.TrimRight(r.URL.Path, "/")
	if canonical == r.URL.Path || canonical+"/" == routepath.PanelPrefix || canonical == "" {
		return false
	}
	target := canonical
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
	return true
}
