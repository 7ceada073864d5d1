// Package stage holds the input stage of the panel: the endpoint text field
// and the readiness flag that gates the admin panel.
package stage

// InputStage owns the endpoint reference and the readiness flag.
//
// Readiness starts true and only OnActivate writes it, so the panel is always
// shown.
type InputStage struct {
	endpoint string
	ready    bool
}

// NewInputStage returns the initial stage: empty endpoint, ready.
func NewInputStage() *InputStage {
	return &InputStage{ready: true}
}

// OnTextChange replaces the endpoint with newValue exactly as typed.
func (s *InputStage) OnTextChange(newValue string) {
	s.endpoint = newValue
}

// OnActivate marks the stage ready. Calling it again has no further effect.
func (s *InputStage) OnActivate() {
	s.ready = true
}

// Endpoint returns the current endpoint reference.
func (s *InputStage) Endpoint() string {
	return s.endpoint
}

// Ready reports whether the admin panel should be rendered.
func (s *InputStage) Ready() bool {
	return s.ready
}

// View snapshots the stage for rendering. The panel, when present, carries the
// endpoint as it was at the time of the call.
func (s *InputStage) View() View {
	view := View{Endpoint: s.endpoint}
	if s.ready {
		view.Panel = &PanelView{Link: s.endpoint}
	}
	return view
}

// View is the composed stage output: the header chrome with the input field,
// and the admin panel when ready.
type View struct {
	Endpoint string
	Panel    *PanelView
}

// PanelView is the admin panel bound to Link.
type PanelView struct {
	Link string
}

// Event is a user interaction replayed onto a stage.
type Event struct {
	// Text is applied through OnTextChange when non-nil.
	Text *string
	// Activate triggers OnActivate.
	Activate bool
}

// TextChange builds a text change event.
func TextChange(value string) Event {
	return Event{Text: &value}
}

// Activate builds an activation event.
func Activate() Event {
	return Event{Activate: true}
}

// Apply replays events onto the stage in order.
func (s *InputStage) Apply(events ...Event) {
	for _, event := range events {
		if event.Text != nil {
			s.OnTextChange(*event.Text)
		}
		if event.Activate {
			s.OnActivate()
		}
	}
}
