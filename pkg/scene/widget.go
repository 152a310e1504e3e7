package scene

import "fmt"

// WidgetType distinguishes the kinds of input controls a node can carry.
type WidgetType int

const (
	WidgetNumber WidgetType = iota // numeric slider or spinner
	WidgetText                     // free-form text entry
	WidgetToggle                   // boolean switch
	WidgetCombo                    // selection from a fixed choice list
)

func (t WidgetType) String() string {
	switch t {
	case WidgetNumber:
		return "number"
	case WidgetText:
		return "text"
	case WidgetToggle:
		return "toggle"
	case WidgetCombo:
		return "combo"
	default:
		return fmt.Sprintf("WidgetType(%d)", int(t))
	}
}

// WidgetOptions constrains the values a widget accepts. All fields are
// advisory; the engine does not enforce them on writes.
type WidgetOptions struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Step      *float64 `json:"step,omitempty"`
	Precision int      `json:"precision,omitempty"` // decimal places for display
	Choices   []string `json:"choices,omitempty"`   // for WidgetCombo
	Multiline bool     `json:"multiline,omitempty"` // for WidgetText
}

// Widget is a single editable field on a node. Value is deliberately
// untyped: the engine accepts whatever a caller writes, and the overlay
// converts to a tagged variant at extraction time.
//
// Callback, when non-nil, is invoked after a UI-originated edit with the
// new value. Engines commonly register partial or no-op callbacks at
// construction; the overlay chains them rather than replacing them.
type Widget struct {
	Name     string
	Type     WidgetType
	Value    any
	Options  WidgetOptions
	Callback func(value any)
}

// WithRange sets min/max/step constraints and returns the widget.
func (w *Widget) WithRange(min, max, step float64) *Widget {
	w.Options.Min = &min
	w.Options.Max = &max
	w.Options.Step = &step
	return w
}

// WithChoices sets the choice list and returns the widget.
func (w *Widget) WithChoices(choices ...string) *Widget {
	w.Options.Choices = choices
	return w
}

// WithCallback sets the engine-side change callback and returns the widget.
func (w *Widget) WithCallback(fn func(value any)) *Widget {
	w.Callback = fn
	return w
}
