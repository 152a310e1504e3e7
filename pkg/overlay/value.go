package overlay

import (
	"encoding/json"
	"fmt"

	"github.com/chazu/vitrine/pkg/scene"
)

// ValueKind tags the payload carried by a Value.
type ValueKind int

const (
	KindText   ValueKind = iota // free-form string, also the safe fallback
	KindNumber                  // float64 payload
	KindToggle                  // boolean payload
	KindChoice                  // string payload constrained to a choice list
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindToggle:
		return "toggle"
	case KindChoice:
		return "choice"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// MarshalJSON encodes the kind as its string name so the rendering layer
// can dispatch on it without knowing Go enum ordinals.
func (k ValueKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind from its string name.
func (k *ValueKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "text":
		*k = KindText
	case "number":
		*k = KindNumber
	case "toggle":
		*k = KindToggle
	case "choice":
		*k = KindChoice
	default:
		return fmt.Errorf("overlay: unknown value kind %q", s)
	}
	return nil
}

// Value is a tagged variant for widget values crossing the overlay
// boundary. The rendering layer switches exhaustively on Kind instead of
// inspecting runtime types, and the engine's untyped values are converted
// into this form before any reactive wrapping can observe them.
type Value struct {
	Kind   ValueKind `json:"kind"`
	Number float64   `json:"number,omitempty"`
	Text   string    `json:"text,omitempty"`
	Bool   bool      `json:"bool,omitempty"`
}

// TextValue returns a text variant.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// NumberValue returns a numeric variant.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// ToggleValue returns a boolean variant.
func ToggleValue(b bool) Value { return Value{Kind: KindToggle, Bool: b} }

// ChoiceValue returns a choice variant.
func ChoiceValue(s string) Value { return Value{Kind: KindChoice, Text: s} }

// Equal reports whether two values carry the same kind and payload.
func (v Value) Equal(o Value) bool { return v == o }

// Any returns the untyped payload in the representation the engine's
// widgets expect: float64, string, or bool.
func (v Value) Any() any {
	switch v.Kind {
	case KindNumber:
		return v.Number
	case KindToggle:
		return v.Bool
	default:
		return v.Text
	}
}

// convertValue turns an engine widget's untyped value into a tagged
// variant, guided by the widget's declared type. Unexpected payloads fall
// back to numeric or text interpretation before failing.
func convertValue(typ scene.WidgetType, raw any) (Value, error) {
	if f, ok := asFloat(raw); ok {
		switch typ {
		case scene.WidgetToggle:
			return ToggleValue(f != 0), nil
		case scene.WidgetText:
			return TextValue(fmt.Sprintf("%v", raw)), nil
		default:
			return NumberValue(f), nil
		}
	}
	switch x := raw.(type) {
	case nil:
		return Value{}, fmt.Errorf("overlay: nil widget value")
	case bool:
		if typ == scene.WidgetNumber {
			if x {
				return NumberValue(1), nil
			}
			return NumberValue(0), nil
		}
		return ToggleValue(x), nil
	case string:
		if typ == scene.WidgetCombo {
			return ChoiceValue(x), nil
		}
		return TextValue(x), nil
	case Value:
		return x, nil
	case fmt.Stringer:
		return TextValue(x.String()), nil
	}
	return Value{}, fmt.Errorf("overlay: unsupported widget value type %T", raw)
}

// asFloat widens any numeric Go type to float64.
func asFloat(raw any) (float64, bool) {
	switch x := raw.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
